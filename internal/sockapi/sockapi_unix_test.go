//go:build unix

package sockapi

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func newUDP(t *testing.T) int {
	t.Helper()
	sock, err := NewUDP()
	if err != nil {
		t.Fatalf("NewUDP() error = %v", err)
	}
	t.Cleanup(func() { _ = Close(sock) })
	return sock
}

func TestNewSockets(t *testing.T) {
	tcp, err := NewTCP()
	if err != nil {
		t.Fatalf("NewTCP() error = %v", err)
	}
	if tcp < 0 {
		t.Errorf("NewTCP() = %d, want a non-negative descriptor", tcp)
	}
	if err := Close(tcp); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	udp, err := NewUDP()
	if err != nil {
		t.Fatalf("NewUDP() error = %v", err)
	}
	if udp < 0 {
		t.Errorf("NewUDP() = %d, want a non-negative descriptor", udp)
	}
	if err := Close(udp); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestBind_LocalAddrRoundTrip(t *testing.T) {
	sock := newUDP(t)

	loopback := Addr4{127, 0, 0, 1}
	if err := Bind(sock, loopback, 0); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	ap, err := LocalAddr(sock)
	if err != nil {
		t.Fatalf("LocalAddr() error = %v", err)
	}
	if ap.Addr != loopback {
		t.Errorf("LocalAddr().Addr = %v, want %v", ap.Addr, loopback)
	}
	if ap.Port == 0 {
		t.Error("LocalAddr().Port = 0 after binding port 0, want an assigned port")
	}
}

func TestRemoteAddr_Unconnected(t *testing.T) {
	sock := newUDP(t)
	if _, err := RemoteAddr(sock); err == nil {
		t.Error("RemoteAddr() on an unconnected socket = nil error, want failure")
	}
}

func TestSockError_FreshSocket(t *testing.T) {
	sock := newUDP(t)
	errno, err := SockError(sock)
	if err != nil {
		t.Fatalf("SockError() error = %v", err)
	}
	if errno != 0 {
		t.Errorf("SockError() = %v, want 0 on a fresh socket", errno)
	}
}

func TestConnectInProgress(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"EINPROGRESS", unix.EINPROGRESS, true},
		{"wrapped EINPROGRESS", errors.Join(errors.New("ctx"), unix.EINPROGRESS), true},
		{"ECONNREFUSED", unix.ECONNREFUSED, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConnectInProgress(tt.err); got != tt.want {
				t.Errorf("ConnectInProgress(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestFromSockaddr_RejectsNonIPv4(t *testing.T) {
	_, err := fromSockaddr(&unix.SockaddrInet6{})
	if !errors.Is(err, ErrNotIPv4) {
		t.Errorf("fromSockaddr(inet6) error = %v, want ErrNotIPv4", err)
	}
}

func TestSetNonblock_Toggle(t *testing.T) {
	sock := newUDP(t)

	if err := SetNonblock(sock, true); err != nil {
		t.Fatalf("SetNonblock(true) error = %v", err)
	}
	flags, err := unix.FcntlInt(uintptr(sock), unix.F_GETFL, 0)
	if err != nil {
		t.Fatalf("fcntl(F_GETFL) error = %v", err)
	}
	if flags&unix.O_NONBLOCK == 0 {
		t.Error("O_NONBLOCK clear after SetNonblock(true), want set")
	}

	if err := SetNonblock(sock, false); err != nil {
		t.Fatalf("SetNonblock(false) error = %v", err)
	}
	flags, err = unix.FcntlInt(uintptr(sock), unix.F_GETFL, 0)
	if err != nil {
		t.Fatalf("fcntl(F_GETFL) error = %v", err)
	}
	if flags&unix.O_NONBLOCK != 0 {
		t.Error("O_NONBLOCK still set after SetNonblock(false), want clear")
	}
}

func TestBoolint(t *testing.T) {
	if got := boolint(true); got != 1 {
		t.Errorf("boolint(true) = %d, want 1", got)
	}
	if got := boolint(false); got != 0 {
		t.Errorf("boolint(false) = %d, want 0", got)
	}
}
