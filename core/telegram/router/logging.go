// Package router connects the registry to telebot endpoints and writes
// one summary log line per handled update.
package router

import (
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/zhukata/shopbot/core/logger"
	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"
	"github.com/zhukata/shopbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// observe runs fn as the named handler and emits the handler.handled
// summary: status, outbound message counters, duration, and the error
// code when fn failed.
func observe(c tele.Context, name string, start time.Time, fn tele.HandlerFunc, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, name)
	err := fn(c)
	writeSummary(c, name, start, logger.Status(err), err, extras...)
	return err
}

// skipUpdate records an update the router deliberately did not handle.
func skipUpdate(c tele.Context, name string, start time.Time, reason string) {
	writeSummary(c, name, start, "skip", nil, slog.String("reason", reason))
}

func writeSummary(c tele.Context, name string, start time.Time, status string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, name)
	msgs, kb := middleware.GetCounters(c)

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", name),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	attrs = append(attrs, extras...)
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
}

// handlerName turns a command or callback key into the handler label
// used in logs.
func handlerName(raw string) string {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(raw, " ", "_"))
}

// errorCode prefers the taxonomy code carried by domain errors and
// falls back to the error's type name.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	if c, ok := err.(interface{ Code() string }); ok {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}

// wrap applies the per-route middleware chain shared by all routers.
func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}

// callbackKey extracts the routing key from a callback, tolerating both
// the parsed Unique form and raw \f-encoded data.
func callbackKey(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	key, _, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(key)
}
