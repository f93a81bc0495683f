package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitor holds the rate limiter of a client and the last time it was seen.
// taken from alexedwards.net/blog/how-to-rate-limit-http-requests
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitors struct {
	mu    sync.Mutex
	seen  map[string]*visitor
	limit rate.Limit
	burst int
	now   func() time.Time
}

func newVisitors(limit rate.Limit, burst int) *visitors {
	return &visitors{
		seen:  make(map[string]*visitor),
		limit: limit,
		burst: burst,
		now:   time.Now,
	}
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	vis, exists := v.seen[ip]
	if !exists {
		limiter := rate.NewLimiter(v.limit, v.burst)
		v.seen[ip] = &visitor{limiter, v.now()}
		return limiter
	}

	vis.lastSeen = v.now()
	return vis.limiter
}

// forget drops visitors that haven't been seen for more than ttl.
func (v *visitors) forget(ttl time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for ip, vis := range v.seen {
		if v.now().Sub(vis.lastSeen) > ttl {
			delete(v.seen, ip)
		}
	}
}

// cleanup calls forget every interval until ctx is done.
func (v *visitors) cleanup(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.forget(ttl)
		}
	}
}

// middleware limits clients identified by the X-Real-Ip header set by the
// reverse proxy. Requests without it are not limited.
func (v *visitors) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.Header.Get("X-Real-Ip")
		if ip != "" {
			if !v.get(ip).Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
