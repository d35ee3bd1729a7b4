//go:build linux

package sockutil

import (
	"os"
	"testing"
)

func openFDCount(t *testing.T) int {
	t.Helper()
	ents, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Fatalf("reading /proc/self/fd: %v", err)
	}
	return len(ents)
}

// Every factory failure path must close the descriptor it created. The
// open-descriptor count before and after a burst of failing calls has to
// match; a warmup round first lets the runtime and resolver open whatever
// long-lived descriptors they keep.
func TestFactoryFailures_DoNotLeakDescriptors(t *testing.T) {
	resetDNSCache(t)
	swapResolver(t, brokenResolver())

	failingCalls := func() {
		if sock, err := Connect("leak.probe.invalid", 80, false, "", 0); err == nil {
			_ = Close(sock)
			t.Fatal("Connect(unresolvable) succeeded, want failure")
		}
		if sock, err := Connect("127.0.0.1", 9, false, nonLocalIP, 0); err == nil {
			_ = Close(sock)
			t.Fatal("Connect(bad local bind) succeeded, want failure")
		}
		if sock, err := Listen(0, nonLocalIP, 4); err == nil {
			_ = Close(sock)
			t.Fatal("Listen(non-local) succeeded, want failure")
		}
		if sock, err := BindUDPSock(0, nonLocalIP); err == nil {
			_ = Close(sock)
			t.Fatal("BindUDPSock(non-local) succeeded, want failure")
		}
	}

	failingCalls() // warmup

	before := openFDCount(t)
	for i := 0; i < 16; i++ {
		failingCalls()
	}
	after := openFDCount(t)

	if after != before {
		t.Errorf("open descriptor count drifted: before=%d after=%d", before, after)
	}
}
