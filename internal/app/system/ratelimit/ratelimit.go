// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"errors"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrTooManyAttempts is returned by LoginLimiter.Check when a caller is over
// its budget.
var ErrTooManyAttempts = errors.New("too many attempts")

// Limiter keeps one token bucket per key. It is safe for concurrent use.
// Buckets untouched for longer than idle are dropped on a later call.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// New creates a limiter allowing burst requests per key, refilled at one
// request every per/burst.
func New(burst int, per time.Duration) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		every:   rate.Every(per / time.Duration(burst)),
		burst:   burst,
		idle:    2 * per,
		now:     time.Now,
	}
}

// Allow reports whether a request for key may proceed and consumes a token
// if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idle {
		l.sweepLocked(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.every, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Reset forgets key, restoring its full budget.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweepLocked(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.idle {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}

// Proxies is the set of reverse proxies allowed to report the client
// address through X-Forwarded-For or X-Real-IP.
type Proxies []netip.Prefix

// ParseTrustedProxies parses a comma-separated list of IPs and CIDRs.
// A blank list yields no trusted proxies.
func ParseTrustedProxies(list string) (Proxies, error) {
	var out Proxies
	for _, f := range strings.Split(list, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if strings.Contains(f, "/") {
			p, err := netip.ParsePrefix(f)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(f)
		if err != nil {
			return nil, err
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

func (p Proxies) trusts(ip string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, pre := range p {
		if pre.Contains(a) {
			return true
		}
	}
	return false
}

// ClientIP returns the address the request came from. Forwarding headers
// are honoured only when the direct peer is a trusted proxy; X-Forwarded-For
// is then read right to left and the first untrusted hop wins.
func (p Proxies) ClientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !p.trusts(peer) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if !p.trusts(hop) || i == 0 {
				return hop
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}
	return peer
}

// LoginLimiter limits sign-in attempts per client IP and per email.
type LoginLimiter struct {
	ip      *Limiter
	email   *Limiter
	proxies Proxies
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per email
// per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig creates a login limiter with custom limits.
func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, emailLimit int, emailWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ip:    New(ipLimit, ipWindow),
		email: New(emailLimit, emailWindow),
	}
}

// TrustProxies sets the proxies whose forwarding headers identify the
// client. It returns ll for chaining.
func (ll *LoginLimiter) TrustProxies(p Proxies) *LoginLimiter {
	ll.proxies = p
	return ll
}

// ClientIP returns r's client address as the limiter keys it.
func (ll *LoginLimiter) ClientIP(r *http.Request) string {
	return ll.proxies.ClientIP(r)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Check consumes one attempt for r's client and email. It returns
// ErrTooManyAttempts when either budget is exhausted.
func (ll *LoginLimiter) Check(r *http.Request, email string) error {
	if !ll.ip.Allow(ll.ClientIP(r)) {
		return ErrTooManyAttempts
	}
	if k := emailKey(email); k != "" && !ll.email.Allow(k) {
		return ErrTooManyAttempts
	}
	return nil
}

// ResetEmail clears the per-email budget after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(email string) {
	if k := emailKey(email); k != "" {
		ll.email.Reset(k)
	}
}
