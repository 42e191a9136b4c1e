package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/zhukata/shopbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures RateLimitMiddleware. Exclude holds update
// kinds (see UpdateKind) that bypass the limiter; pre_checkout should
// always be in it because Telegram enforces an answer deadline.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// RateLimitMiddleware drops updates arriving faster than Interval from
// the same user. The limited user gets OnLimited, if set, instead of
// silence.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			now := time.Now()
			mu.Lock()
			last, seen := lastSeen[user.ID]
			limited := seen && now.Sub(last) < opts.Interval
			if !limited {
				lastSeen[user.ID] = now
			}
			mu.Unlock()

			if !limited {
				return next(c)
			}

			logger.TG.Warn("rate limit",
				slog.String("event", "tg.rate_limit"),
				slog.Int64("user_id", user.ID),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
