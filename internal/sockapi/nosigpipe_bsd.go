//go:build darwin || dragonfly || freebsd || netbsd

package sockapi

import "golang.org/x/sys/unix"

// SetNoSigpipe makes writes on a closed peer fail with EPIPE instead of
// raising SIGPIPE (SO_NOSIGPIPE; OpenBSD never adopted the option).
func SetNoSigpipe(sock int) error {
	return unix.SetsockoptInt(sock, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}
