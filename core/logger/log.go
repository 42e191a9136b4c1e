package logger

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Component returns a child logger tagged with the component name.
func Component(name string) *slog.Logger {
	if L == nil {
		return slog.Default()
	}
	return L.With("component", name)
}

// LogEvent emits a single event enriched with correlation metadata from context.
func LogEvent(ctx context.Context, log *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if log == nil {
		log = FromContext(ctx)
	}
	if log == nil {
		return
	}
	out := make([]slog.Attr, 0, len(attrs)+5)
	out = append(out, slog.String("event", event))
	out = append(out, attrs...)
	if rid := RIDFrom(ctx); rid != "" && !hasAttr(attrs, "rid") {
		out = append(out, slog.String("rid", rid))
	}
	if id := UpdateIDFrom(ctx); id != 0 && !hasAttr(attrs, "update_id") {
		out = append(out, slog.Int("update_id", id))
	}
	if id := UserIDFrom(ctx); id != 0 && !hasAttr(attrs, "user_id") {
		out = append(out, slog.Int64("user_id", id))
	}
	if h := HandlerFrom(ctx); h != "" && !hasAttr(attrs, "handler") {
		out = append(out, slog.String("handler", h))
	}
	log.LogAttrs(ctx, level, event, out...)
}

// Debug logs a debug event for the named component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

// Info logs an info event for the named component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

// Warn logs a warning event for the named component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

// Error logs an error event for the named component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

func hasAttr(attrs []slog.Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// Status maps an error to a unified status string for logs.
func Status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// RoundMS rounds a duration to the nearest millisecond for consistent logging.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Took returns the rounded duration since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// SummarizeStrings joins up to limit elements and reports whether truncation happened.
func SummarizeStrings(values []string, limit int) (string, bool) {
	if limit <= 0 {
		return "", len(values) > 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return strings.Join(values[:limit], ", "), true
}
