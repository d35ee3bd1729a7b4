// Package sockapi is the platform capability layer beneath the public socket
// utilities. It exposes one function surface over raw IPv4 socket descriptors;
// build tags select the POSIX implementation (x/sys/unix) or the Winsock
// implementation (x/sys/windows). Descriptors are plain ints: the native fd on
// POSIX, the SOCKET handle value on Windows.
//
// Functions here return raw OS errors (syscall.Errno where the kernel spoke).
// Classification and wrapping happen one layer up; this package only reports
// what the platform said.
package sockapi

import "errors"

// ErrUnsupported is returned by capabilities the current platform does not
// provide (for example SO_REUSEPORT on Windows, or source-specific multicast
// membership on OpenBSD). Callers must surface it as a defined failure rather
// than degrade silently.
var ErrUnsupported = errors.New("operation not supported on this platform")

// ErrNotIPv4 is returned by name queries on sockets whose bound address is not
// AF_INET. The layer above only deals in IPv4 descriptors.
var ErrNotIPv4 = errors.New("not an IPv4 socket address")

func boolint(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Addr4 is a raw IPv4 address in network byte order, the form setsockopt
// structures want on every platform.
type Addr4 = [4]byte

// AddrPort4 is the result of a local or peer name query on an IPv4 socket.
type AddrPort4 struct {
	Addr Addr4
	Port uint16
}
