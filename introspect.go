package sockutil

import (
	"net"
	"net/netip"

	"github.com/netkitio/sockutil/internal/sockapi"
)

// InterfaceInfo describes one local interface address: the interface name
// and one IPv4 address assigned to it. An interface holding several
// addresses appears once per address, mirroring what the kernel's interface
// enumeration reports.
type InterfaceInfo struct {
	Name string
	IP   string
}

// GetInterfaceList enumerates the local interfaces that are up and hold at
// least one IPv4 address, loopback included. Down or addressless interfaces
// are skipped. The order is the OS enumeration order; nothing is sorted.
func GetInterfaceList() ([]InterfaceInfo, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, sysError("list interfaces", "", err)
	}
	var list []InterfaceInfo
	for _, ifi := range ifaces {
		if ifi.Flags&net.FlagUp == 0 {
			continue
		}
		for _, ipnet := range interfaceNets(&ifi) {
			list = append(list, InterfaceInfo{Name: ifi.Name, IP: ipnet.IP.To4().String()})
		}
	}
	return list, nil
}

// GetDefaultLocalIP picks the machine's default IPv4 address: the first
// non-loopback entry of GetInterfaceList, in enumeration order. The
// tie-break is deliberately the OS ordering rather than a routing heuristic.
// When only loopback is up, its address is returned; with no usable
// interface at all the result is a KindNotFound error.
func GetDefaultLocalIP() (string, error) {
	list, err := GetInterfaceList()
	if err != nil {
		return "", err
	}
	loopback := ""
	for _, entry := range list {
		addr, ok := parseIPv4(entry.IP)
		if !ok {
			continue
		}
		if addr.IsLoopback() {
			if loopback == "" {
				loopback = entry.IP
			}
			continue
		}
		return entry.IP, nil
	}
	if loopback != "" {
		return loopback, nil
	}
	return "", &Error{Op: "default local ip", Kind: KindNotFound}
}

// GetLocalIP returns the local address sock is bound to, in dotted-decimal
// form. A socket that was never bound reports the wildcard address on POSIX
// systems; the query itself failing returns the empty string and an error.
func GetLocalIP(sock int) (string, error) {
	ap, err := sockapi.LocalAddr(sock)
	if err != nil {
		return "", sysError("query socket", "local address", err)
	}
	return InetNtoa(ap.Addr), nil
}

// GetLocalPort returns the local port sock is bound to, zero with an error
// when the query fails. After binding port 0 this reads back the ephemeral
// port the kernel picked.
func GetLocalPort(sock int) (uint16, error) {
	ap, err := sockapi.LocalAddr(sock)
	if err != nil {
		return 0, sysError("query socket", "local port", err)
	}
	return ap.Port, nil
}

// GetPeerIP returns the remote address sock is connected to. Unconnected
// sockets fail with the platform's not-connected error and an empty string.
func GetPeerIP(sock int) (string, error) {
	ap, err := sockapi.RemoteAddr(sock)
	if err != nil {
		return "", sysError("query socket", "peer address", err)
	}
	return InetNtoa(ap.Addr), nil
}

// GetPeerPort returns the remote port sock is connected to, zero with an
// error when unconnected.
func GetPeerPort(sock int) (uint16, error) {
	ap, err := sockapi.RemoteAddr(sock)
	if err != nil {
		return 0, sysError("query socket", "peer port", err)
	}
	return ap.Port, nil
}

// InetNtoa renders a raw network-order IPv4 address as a dotted-decimal
// string. Unlike the classic libc call it keeps no shared buffer, so
// concurrent callers never observe each other's results.
func InetNtoa(addr [4]byte) string {
	return netip.AddrFrom4(addr).String()
}

// GetIfrIP returns the first IPv4 address of the named interface, or a
// KindNotFound error when the interface does not exist or holds no IPv4
// address.
func GetIfrIP(ifrName string) (string, error) {
	ipnet, err := ifaceFirstNet(ifrName)
	if err != nil {
		return "", err
	}
	return ipnet.IP.To4().String(), nil
}

// GetIfrMask returns the netmask of the named interface's first IPv4
// address in dotted-decimal form (for example 255.255.255.0).
func GetIfrMask(ifrName string) (string, error) {
	ipnet, err := ifaceFirstNet(ifrName)
	if err != nil {
		return "", err
	}
	return InetNtoa(mask4(ipnet.Mask)), nil
}

// GetIfrBrdAddr returns the directed broadcast address of the named
// interface's first IPv4 network, computed as address OR inverted mask.
// Interfaces without broadcast capability (loopback, point-to-point) report
// KindNotFound.
func GetIfrBrdAddr(ifrName string) (string, error) {
	ifi, err := net.InterfaceByName(ifrName)
	if err != nil {
		return "", &Error{Op: "find interface", Detail: ifrName, Kind: KindNotFound, Err: err}
	}
	if ifi.Flags&net.FlagBroadcast == 0 {
		return "", &Error{Op: "broadcast address", Detail: ifrName, Kind: KindNotFound}
	}
	nets := interfaceNets(ifi)
	if len(nets) == 0 {
		return "", &Error{Op: "broadcast address", Detail: ifrName, Kind: KindNotFound}
	}
	ip := nets[0].IP.To4()
	mask := mask4(nets[0].Mask)
	var brd [4]byte
	for i := range brd {
		brd[i] = ip[i] | ^mask[i]
	}
	return InetNtoa(brd), nil
}

// GetIfrName finds which interface owns localIP (exact address match) and
// returns its name. The reverse of GetIfrIP.
func GetIfrName(localIP string) (string, error) {
	want, ok := parseIPv4(localIP)
	if !ok {
		return "", &Error{Op: "parse address", Detail: localIP, Kind: KindResolve}
	}
	name, _, err := ownerInterface(want)
	if err != nil {
		return "", err
	}
	return name, nil
}

// InSameLAN reports whether dstIP sits in the same IPv4 subnet as myIP,
// using the netmask of the interface that owns myIP. When no local
// interface holds myIP, or either address fails to parse, the answer is
// false; two addresses this host cannot place are never "same LAN".
func InSameLAN(myIP, dstIP string) bool {
	mine, ok := parseIPv4(myIP)
	if !ok {
		return false
	}
	dst, ok := parseIPv4(dstIP)
	if !ok {
		return false
	}
	_, ipnet, err := ownerInterface(mine)
	if err != nil {
		return false
	}
	mask := mask4(ipnet.Mask)
	m, d := mine.As4(), dst.As4()
	for i := range mask {
		if m[i]&mask[i] != d[i]&mask[i] {
			return false
		}
	}
	return true
}

// interfaceNets returns the IPv4 networks assigned to ifi, skipping
// everything else. Errors reading the address list fold into an empty
// result: an interface whose addresses cannot be read has none to report.
func interfaceNets(ifi *net.Interface) []*net.IPNet {
	addrs, err := ifi.Addrs()
	if err != nil {
		return nil
	}
	var nets []*net.IPNet
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.To4() == nil {
			continue
		}
		nets = append(nets, ipnet)
	}
	return nets
}

func ifaceFirstNet(ifrName string) (*net.IPNet, error) {
	ifi, err := net.InterfaceByName(ifrName)
	if err != nil {
		return nil, &Error{Op: "find interface", Detail: ifrName, Kind: KindNotFound, Err: err}
	}
	nets := interfaceNets(ifi)
	if len(nets) == 0 {
		return nil, &Error{Op: "interface address", Detail: ifrName, Kind: KindNotFound}
	}
	return nets[0], nil
}

// ownerInterface locates the interface holding exactly the address want.
func ownerInterface(want netip.Addr) (string, *net.IPNet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", nil, sysError("list interfaces", "", err)
	}
	wantIP := want.As4()
	for _, ifi := range ifaces {
		for _, ipnet := range interfaceNets(&ifi) {
			if [4]byte(ipnet.IP.To4()) == wantIP {
				return ifi.Name, ipnet, nil
			}
		}
	}
	return "", nil, &Error{Op: "find interface", Detail: want.String(), Kind: KindNotFound}
}

// mask4 normalizes an IPMask to its 4-byte form. Masks for IPv4 networks
// occasionally come back 16 bytes long from the address list.
func mask4(m net.IPMask) [4]byte {
	if len(m) == net.IPv6len {
		m = m[12:]
	}
	var out [4]byte
	copy(out[:], m)
	return out
}
