package router

import (
	"time"

	tg "github.com/zhukata/shopbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// Flow is an in-progress conversation that claims the user's free-form
// input before any command matching happens.
type Flow interface {
	InProgress(userID int64) bool
	HandleText(c tele.Context) error
}

// TextOptions supplies the handler for text nothing else claimed.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the OnText and OnContact routes. Priority for text:
// active flow, then command or button-alias match, then the registry's
// text fallback, then opts.UnknownText. Contacts only make sense inside
// a flow (phone sharing during checkout) and are dropped otherwise.
func TextRoutes(flow Flow, reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		start := time.Now()

		if flow != nil && flow.InProgress(c.Sender().ID) {
			return observe(c, "flow", start, flow.HandleText)
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return observe(c, handlerName(key), start, cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return observe(c, "fallback", start, fb)
			}
		}
		if opts.UnknownText != nil {
			return observe(c, "unknown_text", start, opts.UnknownText)
		}
		skipUpdate(c, "unknown_text", start, "unmatched")
		return nil
	}

	contact := func(c tele.Context) error {
		start := time.Now()
		if flow != nil && flow.InProgress(c.Sender().ID) {
			return observe(c, "flow_contact", start, flow.HandleText)
		}
		skipUpdate(c, "unexpected_contact", start, "no_flow")
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(text)},
		{Endpoint: tele.OnContact, Handler: wrap(contact)},
	}
}
