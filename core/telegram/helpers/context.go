package helpers

import (
	"context"

	"github.com/zhukata/shopbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// The derived context is cached on tele.Context so every helper and
// service call in one update shares the same RID and metadata.
const ctxCacheKey = "logger_ctx"

// StoreContext caches ctx on the telebot context for later retrieval.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxCacheKey, ctx)
	}
}

// ContextFrom returns the context cached by middleware, if present.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxCacheKey).(context.Context)
	return ctx, ok
}

// BuildContext derives a context.Context for the current update: RID,
// update/user/chat ids, and the tg component logger. Repeated calls
// within one update return the cached value.
func BuildContext(c tele.Context) context.Context {
	if cached, ok := ContextFrom(c); ok {
		return cached
	}

	upd := c.Update()
	var userID, chatID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(upd.ID, chatID, userID)
	}

	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the cached context with the handler name so service
// logs can be traced back to the entry point.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}
