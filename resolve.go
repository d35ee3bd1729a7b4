package sockutil

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"
)

// DefaultDNSCacheTTL is how long a successful hostname resolution is reused
// before the resolver is consulted again.
const DefaultDNSCacheTTL = 10 * time.Minute

// dnsCacheEntries caps the resolution cache; least recently used hostnames
// are evicted beyond it.
const dnsCacheEntries = 128

var (
	resolver     = net.DefaultResolver
	resolveCache = newDNSCache(dnsCacheEntries, DefaultDNSCacheTTL)
)

// SetResolver replaces the resolver used for hostname lookups, for callers
// that need custom DNS transport or tests that stub resolution. A nil
// resolver is ignored.
func SetResolver(r *net.Resolver) {
	if r != nil {
		resolver = r
	}
}

// SetDNSCacheTTL adjusts how long resolved hostnames are reused; zero or a
// negative duration disables caching. Changing the TTL drops all cached
// entries.
func SetDNSCacheTTL(d time.Duration) {
	resolveCache.setTTL(d)
}

// IsIPv4 reports whether s is a dotted-decimal IPv4 literal.
func IsIPv4(s string) bool {
	_, ok := parseIPv4(s)
	return ok
}

func parseIPv4(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return netip.Addr{}, false
	}
	return addr, true
}

// GetDomainIP resolves host (IPv4 literal or name) and pairs it with port as
// a socket address. Equivalent to GetDomainIPContext with the background
// context.
func GetDomainIP(host string, port uint16) (netip.AddrPort, error) {
	return GetDomainIPContext(context.Background(), host, port)
}

// GetDomainIPContext resolves host and pairs it with port. Name resolution is
// the only blocking step in this package and the context bounds it. Results
// come back in resolver order, first IPv4 address wins; successful lookups
// are cached (see SetDNSCacheTTL).
func GetDomainIPContext(ctx context.Context, host string, port uint16) (netip.AddrPort, error) {
	addr, err := resolveIPv4(ctx, host)
	if err != nil {
		return netip.AddrPort{}, &Error{Op: "resolve host", Detail: host, Kind: KindResolve, Err: err}
	}
	return netip.AddrPortFrom(addr, port), nil
}

// resolveIPv4 turns host into an IPv4 address: literal fast path, then the
// cache, then the resolver.
func resolveIPv4(ctx context.Context, host string) (netip.Addr, error) {
	if addr, ok := parseIPv4(host); ok {
		return addr, nil
	}
	if addr, ok := resolveCache.get(host); ok {
		return addr, nil
	}
	ips, err := resolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		Logger().Debug("hostname lookup failed", zap.String("host", host), zap.Error(err))
		return netip.Addr{}, err
	}
	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			addr := netip.AddrFrom4([4]byte(ip4))
			resolveCache.put(host, addr)
			return addr, nil
		}
	}
	return netip.Addr{}, &net.DNSError{Err: "no IPv4 address", Name: host, IsNotFound: true}
}

// dnsCache is a TTL layer over an LRU cache of resolved hostnames, so hot
// reconnect paths do not hammer the system resolver.
type dnsCache struct {
	mu  sync.Mutex
	ttl time.Duration
	lru *lru.Cache
}

type dnsEntry struct {
	addr    netip.Addr
	expires time.Time
}

func newDNSCache(entries int, ttl time.Duration) *dnsCache {
	return &dnsCache{ttl: ttl, lru: lru.New(entries)}
}

func (c *dnsCache) get(host string) (netip.Addr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return netip.Addr{}, false
	}
	v, ok := c.lru.Get(host)
	if !ok {
		return netip.Addr{}, false
	}
	ent := v.(dnsEntry)
	if time.Now().After(ent.expires) {
		c.lru.Remove(host)
		return netip.Addr{}, false
	}
	return ent.addr, true
}

func (c *dnsCache) put(host string, addr netip.Addr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return
	}
	c.lru.Add(host, dnsEntry{addr: addr, expires: time.Now().Add(c.ttl)})
}

func (c *dnsCache) setTTL(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = d
	c.lru.Clear()
}
