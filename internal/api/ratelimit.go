package api

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/tradecalc/pkg/redis"
)

// ClientLimiter throttles requests per client IP.
// With Redis enabled the shared sliding window decides; otherwise an
// in-process token bucket per client does.
type ClientLimiter struct {
	rps    float64
	burst  int
	shared *redis.RateLimiter
	// proxies whose X-Forwarded-For is honored; empty means RemoteAddr only
	trusted []*net.IPNet

	mu      sync.Mutex
	clients map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter returns nil when rps is zero (limiting disabled)
func NewClientLimiter(rps float64, burst int, shared *redis.RateLimiter) *ClientLimiter {
	if rps <= 0 {
		return nil
	}
	return &ClientLimiter{
		rps:     rps,
		burst:   burst,
		shared:  shared,
		clients: make(map[string]*visitor),
	}
}

// TrustProxies sets the proxies allowed to report the client address via
// X-Forwarded-For. Entries are IPs or CIDRs.
func (l *ClientLimiter) TrustProxies(proxies []string) error {
	nets := make([]*net.IPNet, 0, len(proxies))
	for _, p := range proxies {
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return fmt.Errorf("invalid trusted proxy %q", p)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			return fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		nets = append(nets, n)
	}
	l.trusted = nets
	return nil
}

// Allow reports whether the client may proceed
func (l *ClientLimiter) Allow(ctx context.Context, client string) (bool, error) {
	if l.shared != nil && l.shared.Enabled() {
		allowed, _, err := l.shared.Allow(ctx, redis.PerSecond(client, l.sharedLimit()))
		return allowed, err
	}
	return l.local(client).Allow(), nil
}

// sharedLimit is the per-second window size matching the local sustained rate
func (l *ClientLimiter) sharedLimit() int {
	n := int(math.Ceil(l.rps))
	if n < 1 {
		return 1
	}
	return n
}

func (l *ClientLimiter) local(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.clients[client]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.clients[client] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Sweep drops clients idle for longer than maxIdle and returns how many were removed
func (l *ClientLimiter) Sweep(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for client, v := range l.clients {
		if v.lastSeen.Before(cutoff) {
			delete(l.clients, client)
			removed++
		}
	}
	return removed
}

// Clients returns the number of tracked clients
func (l *ClientLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// ClientID is the rate-limit identity of r. X-Forwarded-For is only read
// when the direct peer is a trusted proxy; the rightmost untrusted hop wins.
func (l *ClientLimiter) ClientID(r *http.Request) string {
	peer := remoteHost(r)
	if !l.isTrusted(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !l.isTrusted(hop) {
			return hop
		}
	}
	return peer
}

func (l *ClientLimiter) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range l.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
