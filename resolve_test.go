package sockutil

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"
)

func TestIsIPv4(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"127.0.0.1", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"239.255.0.1", true},
		{"256.0.0.1", false},
		{"1.2.3", false},
		{"1.2.3.4.5", false},
		{"::1", false},
		{"2001:db8::1", false},
		{"::ffff:1.2.3.4", false}, // 4-in-6 is not a dotted-decimal literal
		{"example.com", false},
		{"", false},
		{"1.2.3.4 ", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsIPv4(tt.in); got != tt.want {
				t.Errorf("IsIPv4(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetDomainIP_Literal(t *testing.T) {
	got, err := GetDomainIP("192.0.2.7", 8080)
	if err != nil {
		t.Fatalf("GetDomainIP() error = %v, want nil", err)
	}
	want := netip.AddrPortFrom(netip.MustParseAddr("192.0.2.7"), 8080)
	if got != want {
		t.Errorf("GetDomainIP() = %v, want %v", got, want)
	}
}

// A literal host must never consult the resolver, so even a canceled context
// succeeds.
func TestGetDomainIP_LiteralIgnoresContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := GetDomainIPContext(ctx, "10.1.2.3", 53)
	if err != nil {
		t.Fatalf("GetDomainIPContext() error = %v, want nil for a literal", err)
	}
	if got.Addr().String() != "10.1.2.3" || got.Port() != 53 {
		t.Errorf("GetDomainIPContext() = %v, want 10.1.2.3:53", got)
	}
}

// brokenResolver fails every lookup fast, without touching the network.
func brokenResolver() *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, errors.New("resolver unreachable")
		},
	}
}

func swapResolver(t *testing.T, r *net.Resolver) {
	t.Helper()
	old := resolver
	SetResolver(r)
	t.Cleanup(func() { SetResolver(old) })
}

func resetDNSCache(t *testing.T) {
	t.Helper()
	SetDNSCacheTTL(DefaultDNSCacheTTL)
	t.Cleanup(func() { SetDNSCacheTTL(DefaultDNSCacheTTL) })
}

func TestGetDomainIP_ResolutionFailure(t *testing.T) {
	resetDNSCache(t)
	swapResolver(t, brokenResolver())

	_, err := GetDomainIP("unresolvable.invalid", 80)
	if err == nil {
		t.Fatal("GetDomainIP() error = nil, want resolve failure")
	}
	if got := KindOf(err); got != KindResolve {
		t.Errorf("KindOf() = %q, want %q", got, KindResolve)
	}
}

func TestResolveIPv4_CacheHitSkipsResolver(t *testing.T) {
	resetDNSCache(t)
	swapResolver(t, brokenResolver())

	cached := netip.MustParseAddr("198.51.100.4")
	resolveCache.put("cached.host.test", cached)

	got, err := resolveIPv4(context.Background(), "cached.host.test")
	if err != nil {
		t.Fatalf("resolveIPv4() error = %v, want cache hit", err)
	}
	if got != cached {
		t.Errorf("resolveIPv4() = %v, want %v", got, cached)
	}
}

func TestDNSCache_Expiry(t *testing.T) {
	c := newDNSCache(8, 5*time.Millisecond)
	addr := netip.MustParseAddr("203.0.113.1")

	c.put("short.lived", addr)
	if got, ok := c.get("short.lived"); !ok || got != addr {
		t.Fatalf("get() right after put = (%v, %v), want (%v, true)", got, ok, addr)
	}

	time.Sleep(10 * time.Millisecond)
	if _, ok := c.get("short.lived"); ok {
		t.Error("get() after TTL elapsed = hit, want miss")
	}
}

func TestDNSCache_DisabledTTL(t *testing.T) {
	c := newDNSCache(8, 0)
	c.put("never.stored", netip.MustParseAddr("203.0.113.2"))
	if _, ok := c.get("never.stored"); ok {
		t.Error("get() with caching disabled = hit, want miss")
	}
}

func TestDNSCache_SetTTLDropsEntries(t *testing.T) {
	c := newDNSCache(8, time.Minute)
	c.put("old.entry", netip.MustParseAddr("203.0.113.3"))

	c.setTTL(time.Hour)
	if _, ok := c.get("old.entry"); ok {
		t.Error("get() after setTTL = hit, want everything dropped")
	}
}

func TestDNSCache_LRUEviction(t *testing.T) {
	c := newDNSCache(2, time.Minute)
	c.put("first", netip.MustParseAddr("203.0.113.10"))
	c.put("second", netip.MustParseAddr("203.0.113.11"))
	c.put("third", netip.MustParseAddr("203.0.113.12"))

	if _, ok := c.get("first"); ok {
		t.Error("oldest entry survived past MaxEntries, want eviction")
	}
	if _, ok := c.get("third"); !ok {
		t.Error("newest entry missing, want hit")
	}
}

func TestSetResolver_IgnoresNil(t *testing.T) {
	old := resolver
	t.Cleanup(func() { SetResolver(old) })

	SetResolver(nil)
	if resolver == nil {
		t.Fatal("SetResolver(nil) replaced the resolver, want it ignored")
	}
}

func BenchmarkIsIPv4(b *testing.B) {
	for i := 0; i < b.N; i++ {
		IsIPv4("192.168.1.100")
	}
}

func BenchmarkResolveLiteral(b *testing.B) {
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		if _, err := resolveIPv4(ctx, "192.168.1.100"); err != nil {
			b.Fatalf("resolveIPv4() error = %v", err)
		}
	}
}
