//go:build windows

package sockapi

import (
	"errors"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Winsock numbers x/sys/windows does not export (winsock2.h, ws2ipdef.h).
const (
	soSndTimeo             = 0x1005     // SO_SNDTIMEO, milliseconds as DWORD
	soRcvTimeo             = 0x1006     // SO_RCVTIMEO, milliseconds as DWORD
	soError                = 0x1007     // SO_ERROR
	ipAddSourceMembership  = 15         // IP_ADD_SOURCE_MEMBERSHIP
	ipDropSourceMembership = 16         // IP_DROP_SOURCE_MEMBERSHIP
	fionbio                = 0x8004667e // FIONBIO, ioctlsocket blocking-mode switch
)

var winsockOnce sync.Once

// ensureWinsock runs WSAStartup once before the first socket call. The stdlib
// net package performs the same initialization on first use, but this layer
// cannot assume net was ever touched by the process.
func ensureWinsock() {
	winsockOnce.Do(func() {
		var data windows.WSAData
		_ = windows.WSAStartup(uint32(0x202), &data)
	})
}

// NewTCP creates an unbound, blocking IPv4 stream socket.
func NewTCP() (int, error) {
	ensureWinsock()
	h, err := windows.Socket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		return -1, err
	}
	return int(h), nil
}

// NewUDP creates an unbound, blocking IPv4 datagram socket.
func NewUDP() (int, error) {
	ensureWinsock()
	h, err := windows.Socket(windows.AF_INET, windows.SOCK_DGRAM, windows.IPPROTO_UDP)
	if err != nil {
		return -1, err
	}
	return int(h), nil
}

// Close releases the socket handle.
func Close(sock int) error {
	return windows.Closesocket(windows.Handle(sock))
}

// Bind assigns the local address of sock.
func Bind(sock int, addr Addr4, port uint16) error {
	return windows.Bind(windows.Handle(sock), &windows.SockaddrInet4{Port: int(port), Addr: addr})
}

// Connect initiates a connection to addr:port. On a non-blocking socket the
// expected outcome is WSAEWOULDBLOCK; see ConnectInProgress.
func Connect(sock int, addr Addr4, port uint16) error {
	return windows.Connect(windows.Handle(sock), &windows.SockaddrInet4{Port: int(port), Addr: addr})
}

// Listen marks sock as a passive socket with the given backlog.
func Listen(sock, backlog int) error {
	return windows.Listen(windows.Handle(sock), backlog)
}

// ConnectInProgress reports whether the error from Connect means the
// handshake was successfully initiated on a non-blocking socket and will
// complete asynchronously.
func ConnectInProgress(err error) bool {
	return errors.Is(err, windows.WSAEWOULDBLOCK)
}

// SetNonblock switches sock between blocking and non-blocking mode. Winsock
// has no fcntl; the switch is ioctlsocket(FIONBIO), reached through WSAIoctl.
func SetNonblock(sock int, nonblocking bool) error {
	arg := uint32(0)
	if nonblocking {
		arg = 1
	}
	var returned uint32
	return windows.WSAIoctl(windows.Handle(sock), fionbio,
		(*byte)(unsafe.Pointer(&arg)), uint32(unsafe.Sizeof(arg)),
		nil, 0, &returned, nil, 0)
}

// SetNoDelay disables (or re-enables) Nagle's algorithm on a TCP socket.
func SetNoDelay(sock int, on bool) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.IPPROTO_TCP, windows.TCP_NODELAY, boolint(on))
}

// SetKeepAlive toggles periodic TCP keep-alive probes.
func SetKeepAlive(sock int, on bool) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.SOL_SOCKET, windows.SO_KEEPALIVE, boolint(on))
}

// SetReuseAddr toggles SO_REUSEADDR. Winsock's SO_REUSEADDR is looser than
// the POSIX one (it also permits hijacking bound addresses); callers asking
// for rebind-after-close semantics get the closest native equivalent.
func SetReuseAddr(sock int, on bool) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.SOL_SOCKET, windows.SO_REUSEADDR, boolint(on))
}

// SetReusePort reports ErrUnsupported: Winsock has no SO_REUSEPORT; address
// sharing on Windows rides entirely on SO_REUSEADDR.
func SetReusePort(sock int, on bool) error {
	return ErrUnsupported
}

// SetBroadcast permits sending to broadcast addresses on a datagram socket.
func SetBroadcast(sock int, on bool) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.SOL_SOCKET, windows.SO_BROADCAST, boolint(on))
}

// SetRecvBuf requests a kernel receive buffer of the given size in bytes.
func SetRecvBuf(sock, bytes int) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.SOL_SOCKET, windows.SO_RCVBUF, bytes)
}

// SetSendBuf requests a kernel send buffer of the given size in bytes.
func SetSendBuf(sock, bytes int) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.SOL_SOCKET, windows.SO_SNDBUF, bytes)
}

// SetRecvTimeout bounds blocking reads on sock. Winsock takes the timeout as
// a DWORD in milliseconds rather than a timeval.
func SetRecvTimeout(sock int, d time.Duration) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.SOL_SOCKET, soRcvTimeo, int(d.Milliseconds()))
}

// SetSendTimeout bounds blocking writes on sock.
func SetSendTimeout(sock int, d time.Duration) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.SOL_SOCKET, soSndTimeo, int(d.Milliseconds()))
}

// SetLinger configures SO_LINGER. With enable set, closesocket blocks up to
// seconds while unsent data drains; zero seconds aborts with a reset.
func SetLinger(sock int, enable bool, seconds int) error {
	l := &windows.Linger{}
	if enable {
		l.Onoff = 1
		l.Linger = int32(seconds)
	}
	return windows.SetsockoptLinger(windows.Handle(sock), windows.SOL_SOCKET, windows.SO_LINGER, l)
}

// SetCloseOnExec controls handle inheritance, the Winsock analogue of
// FD_CLOEXEC: a non-inheritable socket does not leak into spawned processes.
func SetCloseOnExec(fd int, on bool) error {
	value := uint32(windows.HANDLE_FLAG_INHERIT)
	if on {
		value = 0
	}
	return windows.SetHandleInformation(windows.Handle(fd), windows.HANDLE_FLAG_INHERIT, value)
}

// SockError fetches and clears the pending error on sock (SO_ERROR). A zero
// Errno means no error is pending; the second return value reports a failure
// of the query itself.
func SockError(sock int) (syscall.Errno, error) {
	var v int32
	l := int32(unsafe.Sizeof(v))
	err := windows.Getsockopt(windows.Handle(sock), windows.SOL_SOCKET, soError,
		(*byte)(unsafe.Pointer(&v)), &l)
	if err != nil {
		return 0, err
	}
	return syscall.Errno(v), nil
}

// LocalAddr returns the bound address of sock. Unlike POSIX, Winsock fails a
// getsockname on a never-bound socket with WSAEINVAL.
func LocalAddr(sock int) (AddrPort4, error) {
	sa, err := windows.Getsockname(windows.Handle(sock))
	if err != nil {
		return AddrPort4{}, err
	}
	return fromSockaddr(sa)
}

// RemoteAddr returns the peer address of a connected sock.
func RemoteAddr(sock int) (AddrPort4, error) {
	sa, err := windows.Getpeername(windows.Handle(sock))
	if err != nil {
		return AddrPort4{}, err
	}
	return fromSockaddr(sa)
}

func fromSockaddr(sa windows.Sockaddr) (AddrPort4, error) {
	in4, ok := sa.(*windows.SockaddrInet4)
	if !ok {
		return AddrPort4{}, ErrNotIPv4
	}
	return AddrPort4{Addr: in4.Addr, Port: uint16(in4.Port)}, nil
}

// SetMulticastTTL sets the hop limit for outgoing multicast datagrams.
func SetMulticastTTL(sock, ttl int) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.IPPROTO_IP, windows.IP_MULTICAST_TTL, ttl)
}

// SetMulticastIF selects the egress interface for outgoing multicast, by the
// interface's unicast address.
func SetMulticastIF(sock int, ifaceIP Addr4) error {
	return windows.SetsockoptInet4Addr(windows.Handle(sock), windows.IPPROTO_IP, windows.IP_MULTICAST_IF, ifaceIP)
}

// SetMulticastLoop controls whether sent multicast is looped back to local
// listeners.
func SetMulticastLoop(sock int, on bool) error {
	return windows.SetsockoptInt(windows.Handle(sock), windows.IPPROTO_IP, windows.IP_MULTICAST_LOOP, boolint(on))
}

// JoinGroup subscribes sock to a multicast group on the interface owning
// ifaceIP; the zero address lets the stack choose.
func JoinGroup(sock int, group, ifaceIP Addr4) error {
	mreq := &windows.IPMreq{Multiaddr: group, Interface: ifaceIP}
	return windows.SetsockoptIPMreq(windows.Handle(sock), windows.IPPROTO_IP, windows.IP_ADD_MEMBERSHIP, mreq)
}

// LeaveGroup drops a membership previously added with JoinGroup.
func LeaveGroup(sock int, group, ifaceIP Addr4) error {
	mreq := &windows.IPMreq{Multiaddr: group, Interface: ifaceIP}
	return windows.SetsockoptIPMreq(windows.Handle(sock), windows.IPPROTO_IP, windows.IP_DROP_MEMBERSHIP, mreq)
}

// ip_mreq_source on Windows orders its fields multiaddr, sourceaddr,
// interface (ws2ipdef.h); Linux swaps the last two. Each platform file
// encodes its own layout.
func sourceMreq(group, source, ifaceIP Addr4) [12]byte {
	var b [12]byte
	copy(b[0:4], group[:])
	copy(b[4:8], source[:])
	copy(b[8:12], ifaceIP[:])
	return b
}

// JoinSourceGroup subscribes sock to group restricted to datagrams from
// source (source-specific multicast membership).
func JoinSourceGroup(sock int, group, source, ifaceIP Addr4) error {
	b := sourceMreq(group, source, ifaceIP)
	return windows.Setsockopt(windows.Handle(sock), windows.IPPROTO_IP, ipAddSourceMembership, &b[0], int32(len(b)))
}

// LeaveSourceGroup drops a membership previously added with JoinSourceGroup.
func LeaveSourceGroup(sock int, group, source, ifaceIP Addr4) error {
	b := sourceMreq(group, source, ifaceIP)
	return windows.Setsockopt(windows.Handle(sock), windows.IPPROTO_IP, ipDropSourceMembership, &b[0], int32(len(b)))
}

// SetNoSigpipe is a no-op: Windows has no SIGPIPE.
func SetNoSigpipe(sock int) error {
	return nil
}
