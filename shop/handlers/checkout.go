package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/zhukata/shopbot/core/logger"
	"github.com/zhukata/shopbot/core/telegram/format"
	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"
	"github.com/zhukata/shopbot/core/telegram/keyboard"
	"github.com/zhukata/shopbot/core/telegram/state"
	"github.com/zhukata/shopbot/shop/domain"

	tele "gopkg.in/telebot.v4"
)

// StartCheckout opens the checkout conversation from the cart view.
func (h *Handlers) StartCheckout(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := h.checkout.Start(ctx, c.Sender().ID); err != nil {
		if errors.Is(err, domain.ErrCartEmpty) {
			return tghelpers.EditOrSendMD(c, "Your cart is empty, nothing to check out.")
		}
		return err
	}
	return h.prompt(c, state.StepFullName)
}

// CancelCheckout abandons the conversation from any step.
func (h *Handlers) CancelCheckout(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := h.checkout.Cancel(ctx, c.Sender().ID); err != nil {
		return err
	}
	return tghelpers.EditOrSendMD(c, "Checkout cancelled. Your cart is untouched.")
}

func (h *Handlers) prompt(c tele.Context, step state.Step) error {
	cancel := keyboard.SingleCancelMarkup(cbCheckoutCancel)
	switch step {
	case state.StepFullName:
		return tghelpers.SendMD(c, "Let's check out! What is your *full name*?", cancel)
	case state.StepPhone:
		return tghelpers.SendMD(c, "Your *phone number*?", cancel)
	case state.StepAddress:
		return tghelpers.SendMD(c, "Where should we deliver? Please send the *full address*.", cancel)
	default:
		return nil
	}
}

// CheckoutFlow adapts the checkout service to the text router: while a
// session is open, every plain message from the user feeds the
// conversation.
type CheckoutFlow struct {
	handlers *Handlers
}

func (h *Handlers) Flow() *CheckoutFlow {
	return &CheckoutFlow{handlers: h}
}

// InProgress reports whether the user currently has an open session.
func (f *CheckoutFlow) InProgress(userID int64) bool {
	step, err := f.handlers.checkout.Step(logger.Background(), userID)
	if err != nil {
		return false
	}
	return step != state.StepIdle && step != ""
}

// HandleText feeds one message into the conversation and sends the next
// prompt, a re-prompt, or the created order summary.
func (f *CheckoutFlow) HandleText(c tele.Context) error {
	h := f.handlers
	ctx := tghelpers.BuildContext(c)

	adv, err := h.checkout.Submit(ctx, c.Sender().ID, flowInput(c))
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			// Invalid input keeps the step; re-prompt with the reason.
			return tghelpers.SendMD(c, verr.Reason, keyboard.SingleCancelMarkup(cbCheckoutCancel))
		}
		if errors.Is(err, domain.ErrCartEmpty) {
			return tghelpers.SendMD(c, "Your cart emptied out, checkout closed.")
		}
		return err
	}

	if adv.Order != nil {
		return h.sendOrderSummary(c, *adv.Order)
	}
	return h.prompt(c, adv.Next)
}

// flowInput extracts what the user submitted: the phone number when a
// contact was shared, the message text otherwise. Contact messages have
// empty text, so they must be unwrapped before validation.
func flowInput(c tele.Context) string {
	if msg := c.Message(); msg != nil && msg.Contact != nil {
		return msg.Contact.PhoneNumber
	}
	return c.Text()
}

func (h *Handlers) sendOrderSummary(c tele.Context, order domain.Order) error {
	text := fmt.Sprintf(
		"*Order #%d created* ✅\n\n"+
			"Name: %s\nPhone: %s\nAddress: %s\n\n"+
			"Total: *%s*\n\nReady to pay?",
		order.ID,
		format.EscapeMarkdown(order.FullName),
		format.EscapeMarkdown(order.Phone),
		format.EscapeMarkdown(order.Address),
		order.Total.StringFixed(2),
	)
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "💳 Pay", Unique: cbPay, Data: strconv.FormatInt(order.ID, 10)}},
		[]keyboard.InlineBtn{{Text: "❌ Not now", Unique: cbPayCancel, Data: strconv.FormatInt(order.ID, 10)}},
	)
	return tghelpers.SendMD(c, text, markup)
}
