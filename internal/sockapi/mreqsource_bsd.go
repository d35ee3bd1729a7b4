//go:build darwin || freebsd

package sockapi

import "golang.org/x/sys/unix"

// ip_mreq_source on the BSDs orders its fields multiaddr, sourceaddr,
// interface (netinet/in.h), unlike Linux.
func sourceMreq(group, source, ifaceIP Addr4) []byte {
	b := make([]byte, 0, 12)
	b = append(b, group[:]...)
	b = append(b, source[:]...)
	b = append(b, ifaceIP[:]...)
	return b
}

// JoinSourceGroup subscribes sock to group restricted to datagrams from
// source (IGMPv3 source-specific membership).
func JoinSourceGroup(sock int, group, source, ifaceIP Addr4) error {
	return unix.SetsockoptString(sock, unix.IPPROTO_IP, unix.IP_ADD_SOURCE_MEMBERSHIP,
		string(sourceMreq(group, source, ifaceIP)))
}

// LeaveSourceGroup drops a membership previously added with JoinSourceGroup.
func LeaveSourceGroup(sock int, group, source, ifaceIP Addr4) error {
	return unix.SetsockoptString(sock, unix.IPPROTO_IP, unix.IP_DROP_SOURCE_MEMBERSHIP,
		string(sourceMreq(group, source, ifaceIP)))
}
