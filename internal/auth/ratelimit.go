package auth

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL: bu süre boyunca istek gelmeyen IP'nin limiter'ı silinir
const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter: IP başına token bucket
type IPRateLimiter struct {
	ips *cache.Cache
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return newIPRateLimiter(r, b, limiterIdleTTL)
}

func newIPRateLimiter(r rate.Limit, b int, idle time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		ips: cache.New(idle, idle),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, ok := i.ips.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(i.r, i.b)
	}
	// Her erişimde süre yenilenir
	i.ips.SetDefault(ip, limiter)
	return limiter.(*rate.Limiter)
}

// RateLimit: giriş denemelerini IP başına sınırlar
func RateLimit(limiter *IPRateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.GetLimiter(c.IP()).Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "Çok fazla deneme, lütfen biraz bekleyin")
		}
		return c.Next()
	}
}
