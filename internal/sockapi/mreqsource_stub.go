//go:build unix && !linux && !darwin && !freebsd

package sockapi

// Source-specific membership needs IGMPv3 kernel support and the
// IP_ADD_SOURCE_MEMBERSHIP option, absent on these targets. The layer above
// turns ErrUnsupported into a defined failure; a silent fall-back to
// any-source membership would change what the caller receives.

func JoinSourceGroup(sock int, group, source, ifaceIP Addr4) error {
	return ErrUnsupported
}

func LeaveSourceGroup(sock int, group, source, ifaceIP Addr4) error {
	return ErrUnsupported
}
