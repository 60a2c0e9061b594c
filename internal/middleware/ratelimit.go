package middleware

import (
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// IPRateLimiter throttles requests per client IP. Health and metrics probes
// are exempt so monitoring never competes with chat traffic for budget.
type IPRateLimiter struct {
	callers sync.Map
	rps     rate.Limit
	burst   int
	exempt  map[string]struct{}
	log     *zap.Logger
}

type callerState struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(perMinute int, logger *zap.Logger) *IPRateLimiter {
	// Allow short send bursts without opening the whole minute budget at once.
	burst := perMinute / 20
	if burst < 5 {
		burst = 5
	}
	l := &IPRateLimiter{
		rps:    rate.Limit(float64(perMinute) / 60.0),
		burst:  burst,
		exempt: map[string]struct{}{"/healthz": {}, "/metrics": {}},
		log:    logger,
	}
	go l.evictIdle()
	return l
}

func (l *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	if v, ok := l.callers.Load(ip); ok {
		c := v.(*callerState)
		c.lastSeen = time.Now()
		return c.limiter
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	l.callers.Store(ip, &callerState{limiter: lim, lastSeen: time.Now()})
	return lim
}

func (l *IPRateLimiter) evictIdle() {
	for {
		time.Sleep(time.Minute)
		cutoff := time.Now().Add(-5 * time.Minute)
		l.callers.Range(func(k, v any) bool {
			if v.(*callerState).lastSeen.Before(cutoff) {
				l.callers.Delete(k)
			}
			return true
		})
	}
}

func (l *IPRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := l.exempt[c.Path()]; ok {
			return c.Next()
		}
		ip := clientIP(c)
		if !l.limiterFor(ip).Allow() {
			l.log.Warn("request rate limited", zap.String("ip", ip), zap.String("path", c.Path()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		}
		return c.Next()
	}
}

func clientIP(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return ip
}
