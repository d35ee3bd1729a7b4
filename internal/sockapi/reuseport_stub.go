//go:build unix && !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package sockapi

// SetReusePort reports ErrUnsupported on POSIX targets without SO_REUSEPORT.
func SetReusePort(sock int, on bool) error {
	return ErrUnsupported
}
