package middleware

import tele "gopkg.in/telebot.v4"

// Context keys for the per-update outbound counters. The router reads
// them when it writes the handler summary line.
const (
	keyMessages = "messages"
	keyKeyboard = "kb"
)

// MessageMetricsMiddleware wraps the context so every outbound send is
// counted. The summary log then shows how many messages a handler
// produced and whether any carried a keyboard.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(keyMessages, 0)
		c.Set(keyKeyboard, false)
		return next(countingContext{Context: c})
	}
}

// GetCounters returns the outbound message count and keyboard flag
// accumulated during the current update.
func GetCounters(c tele.Context) (msgs int, keyboard bool) {
	if n, ok := c.Get(keyMessages).(int); ok {
		msgs = n
	}
	if b, ok := c.Get(keyKeyboard).(bool); ok {
		keyboard = b
	}
	return msgs, keyboard
}

// countingContext intercepts the send-like methods of tele.Context.
type countingContext struct{ tele.Context }

func (cc countingContext) sent(opts []interface{}) {
	n, _ := cc.Get(keyMessages).(int)
	cc.Set(keyMessages, n+1)
	if withKeyboard(opts) {
		cc.Set(keyKeyboard, true)
	}
}

func (cc countingContext) Send(what interface{}, opts ...interface{}) error {
	if err := cc.Context.Send(what, opts...); err != nil {
		return err
	}
	cc.sent(opts)
	return nil
}

func (cc countingContext) Reply(what interface{}, opts ...interface{}) error {
	if err := cc.Context.Reply(what, opts...); err != nil {
		return err
	}
	cc.sent(opts)
	return nil
}

func (cc countingContext) Edit(what interface{}, opts ...interface{}) error {
	if err := cc.Context.Edit(what, opts...); err != nil {
		return err
	}
	cc.sent(opts)
	return nil
}

func (cc countingContext) EditOrSend(what interface{}, opts ...interface{}) error {
	if err := cc.Context.EditOrSend(what, opts...); err != nil {
		return err
	}
	cc.sent(opts)
	return nil
}

func withKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}
