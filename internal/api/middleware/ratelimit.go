package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/metrics"
)

// RateLimit defines limits for an endpoint pattern.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimiter implements fixed-window rate limiting on Redis counters. It is
// only installed when Redis is configured.
type RateLimiter struct {
	client       *redis.Client
	logger       zerolog.Logger
	limits       map[string]RateLimit
	whitelist    []*net.IPNet
	whitelistIPs map[string]bool
}

// NewRateLimiter creates a rate limiter with per-endpoint limits. Whitelist
// entries are single IPs or CIDRs exempt from limiting.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger, whitelist []string) *RateLimiter {
	rl := &RateLimiter{
		client: client,
		logger: logger,
		limits: map[string]RateLimit{
			"POST /login":                    {20, time.Hour},
			"POST /api/send_message":         {60, time.Minute},
			"POST /api/send_private_message": {60, time.Minute},
			"POST /api/create_room":          {10, time.Hour},
			"POST /api/nickname":             {10, time.Hour},
		},
		whitelistIPs: make(map[string]bool),
	}

	// Parse whitelist entries
	for _, entry := range whitelist {
		if strings.Contains(entry, "/") {
			// CIDR notation
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				logger.Warn().Str("entry", entry).Err(err).Msg("invalid CIDR in whitelist")
				continue
			}
			rl.whitelist = append(rl.whitelist, ipNet)
		} else {
			// Single IP
			rl.whitelistIPs[entry] = true
		}
	}

	if len(whitelist) > 0 {
		logger.Info().
			Int("ips", len(rl.whitelistIPs)).
			Int("cidrs", len(rl.whitelist)).
			Msg("rate limit whitelist configured")
	}

	return rl
}

// isWhitelisted checks if an IP is in the whitelist.
func (rl *RateLimiter) isWhitelisted(ipStr string) bool {
	if rl.whitelistIPs[ipStr] {
		return true
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, ipNet := range rl.whitelist {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// Middleware enforces the configured limits.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.Method + " " + normalizePath(r.URL.Path)
		limit, ok := rl.limits[endpoint]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		// Keyed by client IP (RealIP middleware runs earlier); fixed window
		// so a counter and an expiry are enough.
		ip := strings.SplitN(r.RemoteAddr, ":", 2)[0]
		if rl.isWhitelisted(ip) {
			next.ServeHTTP(w, r)
			return
		}
		window := time.Now().Unix() / int64(limit.Window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", endpoint, ip, window)

		count, err := rl.client.Incr(r.Context(), key).Result()
		if err != nil {
			// Redis trouble must not take the API down.
			rl.logger.Warn().Err(err).Msg("rate limit check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.client.Expire(r.Context(), key, limit.Window)
		}

		remaining := limit.Requests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > limit.Requests {
			metrics.RateLimitHits.WithLabelValues(endpoint).Inc()
			rl.logger.Info().
				Str("endpoint", endpoint).
				Str("ip", ip).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(limit.Window.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
