//go:build unix && !darwin && !dragonfly && !freebsd && !netbsd

package sockapi

// SetNoSigpipe is a no-op here: Linux suppresses SIGPIPE per send with
// MSG_NOSIGNAL rather than per socket, and the remaining POSIX targets
// (OpenBSD included) have no SO_NOSIGPIPE. Callers that need the suppression
// get it where it exists.
func SetNoSigpipe(sock int) error {
	return nil
}
