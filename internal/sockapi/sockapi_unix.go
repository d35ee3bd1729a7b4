//go:build unix

package sockapi

import (
	"errors"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// NewTCP creates an unbound, blocking IPv4 stream socket.
func NewTCP() (int, error) {
	return unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
}

// NewUDP creates an unbound, blocking IPv4 datagram socket.
func NewUDP() (int, error) {
	return unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
}

// Close releases the descriptor.
func Close(sock int) error {
	return unix.Close(sock)
}

// Bind assigns the local address of sock.
func Bind(sock int, addr Addr4, port uint16) error {
	return unix.Bind(sock, &unix.SockaddrInet4{Port: int(port), Addr: addr})
}

// Connect initiates a connection to addr:port. On a non-blocking socket the
// expected outcome is EINPROGRESS; see ConnectInProgress.
func Connect(sock int, addr Addr4, port uint16) error {
	return unix.Connect(sock, &unix.SockaddrInet4{Port: int(port), Addr: addr})
}

// Listen marks sock as a passive socket with the given backlog.
func Listen(sock, backlog int) error {
	return unix.Listen(sock, backlog)
}

// ConnectInProgress reports whether the error from Connect means the
// handshake was successfully initiated on a non-blocking socket and will
// complete asynchronously.
func ConnectInProgress(err error) bool {
	return errors.Is(err, unix.EINPROGRESS)
}

// SetNonblock switches sock between blocking and non-blocking mode
// (fcntl O_NONBLOCK).
func SetNonblock(sock int, nonblocking bool) error {
	return unix.SetNonblock(sock, nonblocking)
}

// SetNoDelay disables (or re-enables) Nagle's algorithm on a TCP socket.
func SetNoDelay(sock int, on bool) error {
	return unix.SetsockoptInt(sock, unix.IPPROTO_TCP, unix.TCP_NODELAY, boolint(on))
}

// SetKeepAlive toggles periodic TCP keep-alive probes.
func SetKeepAlive(sock int, on bool) error {
	return unix.SetsockoptInt(sock, unix.SOL_SOCKET, unix.SO_KEEPALIVE, boolint(on))
}

// SetReuseAddr toggles SO_REUSEADDR, allowing a bind while a previous socket
// on the same address sits in TIME_WAIT.
func SetReuseAddr(sock int, on bool) error {
	return unix.SetsockoptInt(sock, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolint(on))
}

// SetBroadcast permits sending to broadcast addresses on a datagram socket.
func SetBroadcast(sock int, on bool) error {
	return unix.SetsockoptInt(sock, unix.SOL_SOCKET, unix.SO_BROADCAST, boolint(on))
}

// SetRecvBuf requests a kernel receive buffer of the given size in bytes. The
// kernel may round or clamp the value; no verification is performed here.
func SetRecvBuf(sock, bytes int) error {
	return unix.SetsockoptInt(sock, unix.SOL_SOCKET, unix.SO_RCVBUF, bytes)
}

// SetSendBuf requests a kernel send buffer of the given size in bytes.
func SetSendBuf(sock, bytes int) error {
	return unix.SetsockoptInt(sock, unix.SOL_SOCKET, unix.SO_SNDBUF, bytes)
}

// SetRecvTimeout bounds blocking reads on sock (SO_RCVTIMEO).
func SetRecvTimeout(sock int, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.SetsockoptTimeval(sock, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
}

// SetSendTimeout bounds blocking writes on sock (SO_SNDTIMEO).
func SetSendTimeout(sock int, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.SetsockoptTimeval(sock, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv)
}

// SetLinger configures SO_LINGER. With enable set, close blocks up to seconds
// while unsent data drains; zero seconds aborts the connection with a reset.
func SetLinger(sock int, enable bool, seconds int) error {
	l := &unix.Linger{}
	if enable {
		l.Onoff = 1
		l.Linger = int32(seconds)
	}
	return unix.SetsockoptLinger(sock, unix.SOL_SOCKET, unix.SO_LINGER, l)
}

// SetCloseOnExec toggles the FD_CLOEXEC flag so the descriptor does not leak
// across exec.
func SetCloseOnExec(fd int, on bool) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return err
	}
	if on {
		flags |= unix.FD_CLOEXEC
	} else {
		flags &^= unix.FD_CLOEXEC
	}
	_, err = unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags)
	return err
}

// SockError fetches and clears the pending error on sock (SO_ERROR). A zero
// Errno means no error is pending; the second return value reports a failure
// of the query itself.
func SockError(sock int) (syscall.Errno, error) {
	v, err := unix.GetsockoptInt(sock, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return 0, err
	}
	return syscall.Errno(v), nil
}

// LocalAddr returns the bound address of sock. An unbound socket reports the
// wildcard address and port zero on POSIX systems.
func LocalAddr(sock int) (AddrPort4, error) {
	sa, err := unix.Getsockname(sock)
	if err != nil {
		return AddrPort4{}, err
	}
	return fromSockaddr(sa)
}

// RemoteAddr returns the peer address of a connected sock. Unconnected
// sockets fail with ENOTCONN.
func RemoteAddr(sock int) (AddrPort4, error) {
	sa, err := unix.Getpeername(sock)
	if err != nil {
		return AddrPort4{}, err
	}
	return fromSockaddr(sa)
}

func fromSockaddr(sa unix.Sockaddr) (AddrPort4, error) {
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return AddrPort4{}, ErrNotIPv4
	}
	return AddrPort4{Addr: in4.Addr, Port: uint16(in4.Port)}, nil
}

// SetMulticastTTL sets the hop limit for outgoing multicast datagrams.
func SetMulticastTTL(sock, ttl int) error {
	return unix.SetsockoptInt(sock, unix.IPPROTO_IP, unix.IP_MULTICAST_TTL, ttl)
}

// SetMulticastIF selects the egress interface for outgoing multicast, by the
// interface's unicast address (the in_addr form of IP_MULTICAST_IF).
func SetMulticastIF(sock int, ifaceIP Addr4) error {
	return unix.SetsockoptInet4Addr(sock, unix.IPPROTO_IP, unix.IP_MULTICAST_IF, ifaceIP)
}

// SetMulticastLoop controls whether sent multicast is looped back to local
// listeners.
func SetMulticastLoop(sock int, on bool) error {
	return unix.SetsockoptInt(sock, unix.IPPROTO_IP, unix.IP_MULTICAST_LOOP, boolint(on))
}

// JoinGroup subscribes sock to a multicast group on the interface owning
// ifaceIP; the zero address lets the kernel choose.
func JoinGroup(sock int, group, ifaceIP Addr4) error {
	mreq := &unix.IPMreq{Multiaddr: group, Interface: ifaceIP}
	return unix.SetsockoptIPMreq(sock, unix.IPPROTO_IP, unix.IP_ADD_MEMBERSHIP, mreq)
}

// LeaveGroup drops a membership previously added with JoinGroup.
func LeaveGroup(sock int, group, ifaceIP Addr4) error {
	mreq := &unix.IPMreq{Multiaddr: group, Interface: ifaceIP}
	return unix.SetsockoptIPMreq(sock, unix.IPPROTO_IP, unix.IP_DROP_MEMBERSHIP, mreq)
}
