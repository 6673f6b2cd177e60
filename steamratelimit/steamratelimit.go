// Package steamratelimit provides a per-host token-bucket limiter and an
// http.RoundTripper that applies it, following the same transport-wrapper
// shape steamsession uses for transparent token refresh: a base
// http.RoundTripper, a private mutex-guarded state struct, and a RoundTrip
// method that intercepts, adjusts, and delegates.
package steamratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// bucket is a classic token bucket: tokens refill continuously at rate
// per second, capped at burst.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64
	rate       float64
	lastRefill time.Time
}

func newBucket(rate, burst float64) *bucket {
	return &bucket{
		tokens:     burst,
		burst:      burst,
		rate:       rate,
		lastRefill: time.Now(),
	}
}

func (b *bucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.lastRefill = now
	b.tokens += elapsed * b.rate
	if b.tokens > b.burst {
		b.tokens = b.burst
	}
}

// take blocks until a token is available, then consumes it.
func (b *bucket) take() {
	for {
		b.mu.Lock()
		b.refill()
		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return
		}
		wait := time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
		b.mu.Unlock()
		time.Sleep(wait)
	}
}

// halve cuts the bucket's available tokens in half, used on HTTP 429.
func (b *bucket) halve() {
	b.mu.Lock()
	b.tokens /= 2
	b.mu.Unlock()
}

// Limiter rate-limits outgoing requests on a per-host basis.
type Limiter struct {
	rate  float64
	burst float64

	mu      sync.Mutex
	buckets map[string]*bucket
}

// New creates a Limiter allowing rate requests/second per host, with burst
// capacity for short spikes.
func New(rate, burst float64) *Limiter {
	return &Limiter{
		rate:    rate,
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
}

func (l *Limiter) bucketFor(host string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[host]
	if !ok {
		b = newBucket(l.rate, l.burst)
		l.buckets[host] = b
	}
	return b
}

// Wait blocks until a request to host is permitted.
func (l *Limiter) Wait(host string) {
	l.bucketFor(host).take()
}

// Penalize halves the bucket for host, called after an HTTP 429.
func (l *Limiter) Penalize(host string) {
	l.bucketFor(host).halve()
}

// Transport wraps a base http.RoundTripper, gating every request through a
// shared Limiter keyed by request host. On HTTP 429 it halves that host's
// bucket and sleeps for the Retry-After duration if present before
// returning the response to the caller (the caller still sees the 429 and
// may choose to retry).
type Transport struct {
	Base    http.RoundTripper
	Limiter *Limiter
}

// Wrap returns an http.RoundTripper that rate-limits base using limiter. If
// base is nil, http.DefaultTransport is used.
func Wrap(base http.RoundTripper, limiter *Limiter) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Limiter: limiter}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Host
	t.Limiter.Wait(host)

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		t.Limiter.Penalize(host)
		if d := retryAfter(resp.Header.Get("Retry-After")); d > 0 {
			time.Sleep(d)
		}
	}

	return resp, nil
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}
