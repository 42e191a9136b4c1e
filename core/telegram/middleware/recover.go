package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/zhukata/shopbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns handler panics into an error log with a stack
// trace. It sits first in the chain so nothing above it can die with the
// process.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
