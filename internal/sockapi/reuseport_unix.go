//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package sockapi

import "golang.org/x/sys/unix"

// SetReusePort toggles SO_REUSEPORT, letting multiple sockets bind the exact
// same address and port for kernel-level load distribution.
func SetReusePort(sock int, on bool) error {
	return unix.SetsockoptInt(sock, unix.SOL_SOCKET, unix.SO_REUSEPORT, boolint(on))
}
