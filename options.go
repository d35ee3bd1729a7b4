package sockutil

import (
	"time"

	"github.com/netkitio/sockutil/internal/sockapi"
)

// DefaultBufSize is the standard socket buffer request (256 KiB) for
// SetRecvBuf/SetSendBuf, sized for sustained datagram bursts.
const DefaultBufSize = 256 * 1024

// SetNoDelay toggles TCP_NODELAY. With on set, small writes go out
// immediately instead of waiting for Nagle coalescing.
func SetNoDelay(sock int, on bool) error {
	if err := sockapi.SetNoDelay(sock, on); err != nil {
		return sysError("configure socket", "TCP_NODELAY", err)
	}
	return nil
}

// SetNoSigpipe suppresses SIGPIPE for writes on sock where the platform has
// a per-socket switch (SO_NOSIGPIPE: macOS, FreeBSD, NetBSD, DragonFly).
// Elsewhere it is a harmless no-op; Linux callers suppress the signal per
// send and Windows has no SIGPIPE at all.
func SetNoSigpipe(sock int) error {
	if err := sockapi.SetNoSigpipe(sock); err != nil {
		return sysError("configure socket", "SO_NOSIGPIPE", err)
	}
	return nil
}

// SetNoBlocked switches the blocking mode of sock. With noblock set,
// operations that would block return immediately with the platform's
// would-block error instead of parking the caller.
func SetNoBlocked(sock int, noblock bool) error {
	if err := sockapi.SetNonblock(sock, noblock); err != nil {
		return sysError("configure socket", "non-blocking", err)
	}
	return nil
}

// SetRecvBuf requests a kernel receive buffer of size bytes. The kernel may
// round the request or clamp it to its limits; the effective size is not
// verified here.
func SetRecvBuf(sock, size int) error {
	if err := sockapi.SetRecvBuf(sock, size); err != nil {
		return sysError("configure socket", "SO_RCVBUF", err)
	}
	return nil
}

// SetSendBuf requests a kernel send buffer of size bytes, with the same
// rounding caveat as SetRecvBuf.
func SetSendBuf(sock, size int) error {
	if err := sockapi.SetSendBuf(sock, size); err != nil {
		return sysError("configure socket", "SO_SNDBUF", err)
	}
	return nil
}

// SetReuseable toggles address reuse (SO_REUSEADDR) so a bind can succeed
// while the previous owner of the address sits in post-close TIME_WAIT.
func SetReuseable(sock int, on bool) error {
	if err := sockapi.SetReuseAddr(sock, on); err != nil {
		return sysError("configure socket", "SO_REUSEADDR", err)
	}
	return nil
}

// SetReusePort toggles SO_REUSEPORT, letting several sockets bind the exact
// same address and port with the kernel balancing across them. Platforms
// without it (Windows, Solaris, AIX) report a KindUnsupported error.
func SetReusePort(sock int, on bool) error {
	if err := sockapi.SetReusePort(sock, on); err != nil {
		return sysError("configure socket", "SO_REUSEPORT", err)
	}
	return nil
}

// SetBroadcast permits sending to broadcast addresses on a datagram socket.
func SetBroadcast(sock int, on bool) error {
	if err := sockapi.SetBroadcast(sock, on); err != nil {
		return sysError("configure socket", "SO_BROADCAST", err)
	}
	return nil
}

// SetKeepAlive toggles periodic TCP keep-alive probes on an established
// connection.
func SetKeepAlive(sock int, on bool) error {
	if err := sockapi.SetKeepAlive(sock, on); err != nil {
		return sysError("configure socket", "SO_KEEPALIVE", err)
	}
	return nil
}

// SetCloExec controls whether fd survives exec: POSIX FD_CLOEXEC, or the
// handle-inheritance flag on Windows.
func SetCloExec(fd int, on bool) error {
	if err := sockapi.SetCloseOnExec(fd, on); err != nil {
		return sysError("configure socket", "close-on-exec", err)
	}
	return nil
}

// SetCloseWait bounds how long close blocks draining unsent data
// (SO_LINGER). Zero seconds makes close abort the connection immediately
// with a reset; a negative value restores the default close behavior.
func SetCloseWait(sock int, seconds int) error {
	if err := sockapi.SetLinger(sock, seconds >= 0, seconds); err != nil {
		return sysError("configure socket", "SO_LINGER", err)
	}
	return nil
}

// SetRecvTimeout bounds blocking reads on sock (SO_RCVTIMEO). A zero
// duration restores indefinite blocking.
func SetRecvTimeout(sock int, d time.Duration) error {
	if err := sockapi.SetRecvTimeout(sock, d); err != nil {
		return sysError("configure socket", "SO_RCVTIMEO", err)
	}
	return nil
}

// SetSendTimeout bounds blocking writes on sock (SO_SNDTIMEO). A zero
// duration restores indefinite blocking.
func SetSendTimeout(sock int, d time.Duration) error {
	if err := sockapi.SetSendTimeout(sock, d); err != nil {
		return sysError("configure socket", "SO_SNDTIMEO", err)
	}
	return nil
}

// GetSockError fetches and clears the pending asynchronous error on sock
// (SO_ERROR). It returns nil when nothing is pending. The usual consumer is
// an async Connect caller checking how the handshake settled once the
// descriptor turns writable; a non-nil result carries the platform code in
// its Errno field.
func GetSockError(sock int) error {
	errno, err := sockapi.SockError(sock)
	if err != nil {
		return sysError("query socket", "SO_ERROR", err)
	}
	if errno != 0 {
		return &Error{Op: "pending socket error", Kind: KindSystem, Errno: errno, Err: errno}
	}
	return nil
}
