package router

import (
	"log/slog"
	"time"

	tg "github.com/zhukata/shopbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions supplies a fallback for callback keys the registry
// does not know; the registry's own fallback wins when both are set.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns the single OnCallback route. The callback query
// is answered immediately so the client stops its spinner, then the key
// is dispatched through the registry.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler: wrap(func(c tele.Context) error {
			cb := c.Callback()
			if cb == nil {
				return nil
			}
			start := time.Now()
			key := callbackKey(cb)
			name := "callback." + handlerName(key)
			tagged := slog.String("cb_key", key)

			_ = c.Respond()

			if h, ok := reg.GetCallback(key); ok && h != nil {
				return observe(c, name, start, h, tagged)
			}

			fallback := reg.CallbackNotFound()
			if fallback == nil {
				fallback = opts.NotFound
			}
			if fallback == nil {
				skipUpdate(c, name, start, "not_found")
				return nil
			}
			return observe(c, name, start, fallback, tagged, slog.String("reason", "not_found"))
		}),
	}
}
