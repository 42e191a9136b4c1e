package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/zhukata/shopbot/core/logger"
	"github.com/zhukata/shopbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs the async sender the helpers enqueue through.
// Pass nil to fall back to synchronous sends.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// sendAsync enqueues run on the dispatcher. A full or closed queue
// degrades to a synchronous send so the user still gets the message.
func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if err == nil {
		return nil
	}
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends plain text, no parse mode.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if len(opts) > 0 && opts[0] != nil {
			return c.Send(text, opts[0])
		}
		return c.Send(text)
	})
}

// SendMD sends Markdown text with optional inline markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, mdOptions(markup))
}

// EditOrSendMD edits the current message in place, or sends a new one
// when there is nothing to edit. Used by pagination to keep one catalog
// message per chat.
func EditOrSendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, mdOptions(markup))
}

// SendInvoice delivers a payment invoice synchronously: the payment
// handler needs the provider error on the spot, not from a worker.
func SendInvoice(c tele.Context, inv *tele.Invoice, markup ...*tele.ReplyMarkup) error {
	if len(markup) > 0 && markup[0] != nil {
		return c.Send(inv, markup[0])
	}
	return c.Send(inv)
}

func mdOptions(markup []*tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return opts
}
