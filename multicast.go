package sockutil

import (
	"context"

	"go.uber.org/zap"

	"github.com/netkitio/sockutil/internal/sockapi"
)

// DefaultMultiTTL is the standard hop limit for outgoing multicast (64);
// pass it to SetMultiTTL when no tighter scope is needed.
const DefaultMultiTTL = 64

// SetMultiTTL sets the hop limit for multicast datagrams sent on sock. A TTL
// of 1 keeps traffic on the local link; DefaultMultiTTL lets it cross
// routers that forward multicast.
func SetMultiTTL(sock int, ttl uint8) error {
	if err := sockapi.SetMulticastTTL(sock, int(ttl)); err != nil {
		return sysError("configure socket", "IP_MULTICAST_TTL", err)
	}
	return nil
}

// SetMultiIF selects the local interface multicast is sent from, named by
// the interface's unicast address. localIP resolves through the same path as
// GetDomainIP, so a literal, a hostname, or the wildcard all work; the
// wildcard hands the choice back to the kernel's routing table.
func SetMultiIF(sock int, localIP string) error {
	ifaceIP, err := multiIfaceAddr(localIP)
	if err != nil {
		return err
	}
	if err := sockapi.SetMulticastIF(sock, ifaceIP); err != nil {
		return sysError("configure socket", "IP_MULTICAST_IF", err)
	}
	return nil
}

// SetMultiLOOP controls whether multicast sent on sock is delivered back to
// listeners on this host. Receivers testing against a local sender want it
// on; production senders usually leave it off.
func SetMultiLOOP(sock int, accept bool) error {
	if err := sockapi.SetMulticastLoop(sock, accept); err != nil {
		return sysError("configure socket", "IP_MULTICAST_LOOP", err)
	}
	return nil
}

// JoinMultiAddr subscribes sock to the multicast group addr on the interface
// owning localIP (any-source membership). The wildcard localIP lets the
// kernel pick the interface. Membership lives in the kernel, keyed by the
// (group, interface) pair; joining twice fails with EADDRINUSE on most
// platforms.
func JoinMultiAddr(sock int, addr string, localIP string) error {
	group, ifaceIP, err := multiGroupPair(addr, localIP)
	if err != nil {
		return err
	}
	if err := sockapi.JoinGroup(sock, group, ifaceIP); err != nil {
		Logger().Warn("multicast join failed",
			zap.String("group", addr), zap.String("iface", localIP), zap.Error(err))
		return sysError("join multicast", addr, err)
	}
	Logger().Debug("multicast joined",
		zap.String("group", addr), zap.String("iface", localIP), zap.Int("sock", sock))
	return nil
}

// LeaveMultiAddr drops a membership previously added with JoinMultiAddr. The
// (addr, localIP) pair must match the join; leaving a group the socket never
// joined fails with EADDRNOTAVAIL.
func LeaveMultiAddr(sock int, addr string, localIP string) error {
	group, ifaceIP, err := multiGroupPair(addr, localIP)
	if err != nil {
		return err
	}
	if err := sockapi.LeaveGroup(sock, group, ifaceIP); err != nil {
		return sysError("leave multicast", addr, err)
	}
	Logger().Debug("multicast left",
		zap.String("group", addr), zap.String("iface", localIP), zap.Int("sock", sock))
	return nil
}

// JoinMultiAddrFilter subscribes sock to the group addr restricted to
// datagrams sent by srcIP (source-specific membership). Platforms without
// the source-filtering API (OpenBSD, NetBSD, Solaris, AIX) report a
// KindUnsupported error; the membership is never silently widened to
// any-source.
func JoinMultiAddrFilter(sock int, addr, srcIP, localIP string) error {
	group, source, ifaceIP, err := multiSourceTriple(addr, srcIP, localIP)
	if err != nil {
		return err
	}
	if err := sockapi.JoinSourceGroup(sock, group, source, ifaceIP); err != nil {
		Logger().Warn("source-filtered multicast join failed",
			zap.String("group", addr), zap.String("source", srcIP), zap.Error(err))
		return sysError("join multicast source", addr, err)
	}
	Logger().Debug("source-filtered multicast joined",
		zap.String("group", addr), zap.String("source", srcIP), zap.Int("sock", sock))
	return nil
}

// LeaveMultiAddrFilter drops a membership previously added with
// JoinMultiAddrFilter. All three addresses must match the join.
func LeaveMultiAddrFilter(sock int, addr, srcIP, localIP string) error {
	group, source, ifaceIP, err := multiSourceTriple(addr, srcIP, localIP)
	if err != nil {
		return err
	}
	if err := sockapi.LeaveSourceGroup(sock, group, source, ifaceIP); err != nil {
		return sysError("leave multicast source", addr, err)
	}
	Logger().Debug("source-filtered multicast left",
		zap.String("group", addr), zap.String("source", srcIP), zap.Int("sock", sock))
	return nil
}

// multiIfaceAddr resolves the local interface address of a multicast option.
// Empty and wildcard collapse to 0.0.0.0, telling the kernel to choose.
func multiIfaceAddr(localIP string) (sockapi.Addr4, error) {
	if isWildcard(localIP) {
		return sockapi.Addr4{}, nil
	}
	addr, err := resolveIPv4(context.Background(), localIP)
	if err != nil {
		return sockapi.Addr4{}, &Error{Op: "resolve interface", Detail: localIP, Kind: KindResolve, Err: err}
	}
	return addr.As4(), nil
}

// multiGroupPair validates a group literal and resolves the interface
// address. Group addresses are always literals; resolving a hostname into a
// multicast group would hide a configuration mistake.
func multiGroupPair(addr, localIP string) (group, ifaceIP sockapi.Addr4, err error) {
	g, ok := parseIPv4(addr)
	if !ok {
		return sockapi.Addr4{}, sockapi.Addr4{},
			&Error{Op: "parse multicast group", Detail: addr, Kind: KindResolve}
	}
	ifaceIP, err = multiIfaceAddr(localIP)
	if err != nil {
		return sockapi.Addr4{}, sockapi.Addr4{}, err
	}
	return g.As4(), ifaceIP, nil
}

func multiSourceTriple(addr, srcIP, localIP string) (group, source, ifaceIP sockapi.Addr4, err error) {
	group, ifaceIP, err = multiGroupPair(addr, localIP)
	if err != nil {
		return sockapi.Addr4{}, sockapi.Addr4{}, sockapi.Addr4{}, err
	}
	s, ok := parseIPv4(srcIP)
	if !ok {
		return sockapi.Addr4{}, sockapi.Addr4{}, sockapi.Addr4{},
			&Error{Op: "parse multicast source", Detail: srcIP, Kind: KindResolve}
	}
	return group, s.As4(), ifaceIP, nil
}
