//go:build unix

package sockutil

import (
	"net"
	"os"
	"testing"

	"golang.org/x/net/ipv4"
)

// Read back the multicast knobs through x/net's ipv4.PacketConn, the same
// wrapper the receive side of a multicast consumer uses. FilePacketConn
// works on a duplicate of the descriptor, so the wrapped view and the raw
// setters address one socket.
func TestMulticastSetters_ReadBack(t *testing.T) {
	sock, err := BindUDPSock(0, "127.0.0.1")
	if err != nil {
		t.Fatalf("BindUDPSock() error = %v", err)
	}

	const wantTTL = 9
	if err := SetMultiTTL(sock, wantTTL); err != nil {
		_ = Close(sock)
		t.Fatalf("SetMultiTTL() error = %v", err)
	}
	if err := SetMultiLOOP(sock, true); err != nil {
		_ = Close(sock)
		t.Fatalf("SetMultiLOOP() error = %v", err)
	}

	f := os.NewFile(uintptr(sock), "multicast-readback")
	pc, err := net.FilePacketConn(f)
	if err != nil {
		_ = f.Close()
		t.Fatalf("FilePacketConn() error = %v", err)
	}
	defer func() { _ = f.Close() }() // releases the descriptor from BindUDPSock
	defer func() { _ = pc.Close() }()

	p := ipv4.NewPacketConn(pc)

	ttl, err := p.MulticastTTL()
	if err != nil {
		t.Fatalf("MulticastTTL() error = %v", err)
	}
	if ttl != wantTTL {
		t.Errorf("MulticastTTL() = %d, want %d", ttl, wantTTL)
	}

	loop, err := p.MulticastLoopback()
	if err != nil {
		t.Fatalf("MulticastLoopback() error = %v", err)
	}
	if !loop {
		t.Error("MulticastLoopback() = false after SetMultiLOOP(true), want true")
	}
}
