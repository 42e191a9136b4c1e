package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/zhukata/shopbot/core/logger"
	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Update kinds as classified for logging and rate-limit exclusions.
const (
	KindMessage     = "message"
	KindCallback    = "callback"
	KindInlineQuery = "inline_query"
	KindPreCheckout = "pre_checkout"
	KindOther       = "other"
)

// UpdateKind classifies an update into one of the Kind constants.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.PreCheckoutQuery != nil:
		return KindPreCheckout
	case upd.Callback != nil:
		return KindCallback
	case upd.Query != nil:
		return KindInlineQuery
	case upd.Message != nil:
		return KindMessage
	default:
		return KindOther
	}
}

// LoggerMiddleware derives the RID for the update, caches the logging
// context, and (at debug level) writes one update.received line. The
// receipt is deduplicated by update id because the middleware runs on
// every endpoint branch.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var userID, chatID int64
		if u := c.Sender(); u != nil {
			userID = u.ID
		}
		if ch := c.Chat(); ch != nil {
			chatID = ch.ID
		}

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.TG.Enabled(ctx, slog.LevelDebug) && receipts.firstSeen(upd.ID) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("rid", rid),
				slog.Int("update_id", upd.ID),
				slog.String("kind", UpdateKind(upd)),
			}
			if chatID != 0 {
				attrs = append(attrs,
					slog.Int64("chat_id", chatID),
					slog.String("chat_type", string(c.Chat().Type)),
				)
			}
			if userID != 0 {
				attrs = append(attrs, slog.Int64("user_id", userID))
				if name := c.Sender().Username; name != "" {
					attrs = append(attrs, slog.String("username", logger.SanitizeLimit(name, 64)))
				}
			}
			attrs = append(attrs, receiptPayload(c, upd)...)
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

// receiptPayload extracts the interesting part of each update kind for
// the receipt line. Payment payloads are short order tags, safe to log.
func receiptPayload(c tele.Context, upd tele.Update) []slog.Attr {
	switch {
	case upd.Callback != nil:
		var attrs []slog.Attr
		raw := strings.TrimPrefix(upd.Callback.Data, "\f")
		key, payload, _ := strings.Cut(raw, "|")
		if upd.Callback.Unique != "" {
			key, payload = upd.Callback.Unique, upd.Callback.Data
		}
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
		return attrs
	case upd.PreCheckoutQuery != nil:
		return []slog.Attr{slog.String("payload", logger.SanitizeLimit(upd.PreCheckoutQuery.Payload, 64))}
	case upd.Message != nil && upd.Message.Payment != nil:
		return []slog.Attr{slog.String("payload", logger.SanitizeLimit(upd.Message.Payment.Payload, 64))}
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			return []slog.Attr{slog.String("payload", logger.SanitizeLimit(t, 256))}
		}
	}
	return nil
}

// receiptSet remembers recently seen update ids for deduplication.
type receiptSet struct {
	mu   sync.Mutex
	seen map[int]time.Time
	ttl  time.Duration
}

var receipts = &receiptSet{seen: make(map[int]time.Time), ttl: 10 * time.Second}

// firstSeen records id and reports whether this was its first sighting.
// Stale entries are dropped on the way.
func (r *receiptSet) firstSeen(id int) bool {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for old, ts := range r.seen {
		if now.Sub(ts) > r.ttl {
			delete(r.seen, old)
		}
	}
	if _, dup := r.seen[id]; dup {
		return false
	}
	r.seen[id] = now
	return true
}
