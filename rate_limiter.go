package main

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter
type RateLimiter struct {
	rate       time.Duration
	capacity   int
	tokens     map[string]*TokenBucket
	mutex      sync.RWMutex
	cleanupTtl time.Duration
}

// TokenBucket represents a token bucket for a specific client
type TokenBucket struct {
	tokens     int
	lastRefill time.Time
	mutex      sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerMinute int, burstCapacity int) *RateLimiter {
	rate := time.Minute / time.Duration(requestsPerMinute)
	return &RateLimiter{
		rate:       rate,
		capacity:   burstCapacity,
		tokens:     make(map[string]*TokenBucket),
		cleanupTtl: 10 * time.Minute, // Clean up unused buckets after 10 minutes
	}
}

// Allow checks if a request from the given IP should be allowed
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mutex.RLock()
	bucket, exists := rl.tokens[ip]
	rl.mutex.RUnlock()

	if !exists {
		bucket = &TokenBucket{
			tokens:     rl.capacity,
			lastRefill: time.Now(),
		}
		rl.mutex.Lock()
		rl.tokens[ip] = bucket
		rl.mutex.Unlock()
	}

	return bucket.takeToken(rl.rate, rl.capacity)
}

// takeToken attempts to take a token from the bucket
func (tb *TokenBucket) takeToken(refillRate time.Duration, capacity int) bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	// Add tokens based on elapsed time
	tokensToAdd := int(elapsed / refillRate)
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > capacity {
			tb.tokens = capacity
		}
		tb.lastRefill = now
	}

	// Try to take a token
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// StartCleanupRoutine starts a background routine to clean up old token buckets
func (rl *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			rl.cleanup()
		}
	}()
}

func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for ip, bucket := range rl.tokens {
		bucket.mutex.Lock()
		lastActivity := bucket.lastRefill
		bucket.mutex.Unlock()

		if now.Sub(lastActivity) > rl.cleanupTtl {
			delete(rl.tokens, ip)
		}
	}
}

// RateLimitMiddleware applies different per-IP limits to the lookup and the
// sync-trigger routes: lookups are cheap reads, sync triggers fan out to the
// remote server and get a much tighter budget.
func (app *App) RateLimitMiddleware() func(http.Handler) http.Handler {
	lookupLimiter := NewRateLimiter(60, 120) // 60 requests per minute for lookups
	syncLimiter := NewRateLimiter(5, 5)      // 5 requests per minute for sync triggers

	lookupLimiter.StartCleanupRoutine()
	syncLimiter.StartCleanupRoutine()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := lookupLimiter
			if strings.HasPrefix(r.URL.Path, "/api/sync") {
				limiter = syncLimiter
			}

			ip := getRealIP(r)

			if !limiter.Allow(ip) {
				AppLogger.WithFields(map[string]interface{}{
					"ip":     ip,
					"method": r.Method,
					"path":   r.URL.Path,
				}).Warn("Rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": "Rate limit exceeded. Please try again later."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getRealIP extracts the real IP address from the request
func getRealIP(r *http.Request) string {
	// Check X-Real-IP header (nginx)
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	// Check X-Forwarded-For header (load balancers, proxies)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		if ip := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0]); ip != "" {
			return ip
		}
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
