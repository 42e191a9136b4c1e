package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/zhukata/shopbot/core/config"
	"github.com/zhukata/shopbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares is the standard global chain: recover, per-user
// serialization, optional rate limiting, then logging and send metrics.
// Serialization sits before everything that touches state so updates
// from one user never interleave inside carts or checkout sessions.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	chain := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "serialize", Use: middleware.SerializePerUser()},
	}
	if rl := rateLimiter(cfg, onLimited); rl != nil {
		chain = append(chain, Middleware{Name: "rate_limit", Use: rl})
	}
	return append(chain,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}

func rateLimiter(cfg *coreconfig.Config, onLimited tele.HandlerFunc) tele.MiddlewareFunc {
	if cfg == nil || cfg.RateLimit.IntervalMS <= 0 {
		return nil
	}
	exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		exclude[strings.ToLower(kind)] = struct{}{}
	}
	return middleware.RateLimitMiddleware(middleware.RateLimitOptions{
		Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		Exclude:   exclude,
		OnLimited: onLimited,
	})
}
