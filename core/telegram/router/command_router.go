package router

import (
	"log/slog"
	"time"

	"github.com/zhukata/shopbot/core/logger"
	tg "github.com/zhukata/shopbot/core/telegram"
	"github.com/zhukata/shopbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures the admin gate applied to admin-only
// commands.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes builds one route per registered command. Every handler
// is observed for the summary log; admin-only commands additionally pass
// through the admin gate.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	admin := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for key, cmd := range reg.Commands() {
		name := handlerName(key)
		inner := cmd.Handler
		h := wrap(func(c tele.Context) error {
			return observe(c, name, time.Now(), inner)
		})
		if cmd.AdminOnly {
			h = admin(h)
		}
		routes = append(routes, tg.Route{Endpoint: key, Handler: h})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
