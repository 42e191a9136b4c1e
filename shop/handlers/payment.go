package handlers

import (
	"errors"
	"fmt"

	"github.com/zhukata/shopbot/core/telegram/callbacks"
	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"
	"github.com/zhukata/shopbot/shop/domain"

	tele "gopkg.in/telebot.v4"
)

// Pay issues the invoice for a pending order. Pressing the button again
// re-sends the same invoice.
func (h *Handlers) Pay(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)

	inv, err := h.payments.Initiate(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderAlreadyPaid):
			return tghelpers.SendMD(c, fmt.Sprintf("Order #%d is already paid, thank you!", orderID))
		case errors.Is(err, domain.ErrOrderNotPending):
			return tghelpers.SendMD(c, fmt.Sprintf("Order #%d is no longer payable.", orderID))
		case errors.Is(err, domain.ErrOrderNotFound):
			return tghelpers.SendMD(c, "That order does not exist anymore.")
		}
		return err
	}

	invoice := tele.Invoice{
		Title:       inv.Title,
		Description: inv.Description,
		Payload:     inv.Payload,
		Currency:    inv.Currency,
		Token:       h.paymentToken,
		Prices: []tele.Price{
			{Label: "Order total", Amount: inv.Amount},
		},
	}
	return tghelpers.SendInvoice(c, &invoice)
}

// CancelPayment acknowledges backing out of payment. The order stays
// pending and the pay button keeps working.
func (h *Handlers) CancelPayment(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	if err := h.payments.HandleCancel(ctx, orderID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return tghelpers.SendMD(c, "That order does not exist anymore.")
		}
		return err
	}
	return tghelpers.SendMD(c, fmt.Sprintf(
		"No problem. Order #%d stays open, pay whenever you are ready from the order message.", orderID))
}

// OnPreCheckout answers Telegram's final pre-payment confirmation. The
// provider waits at most ten seconds, so the check is a single order
// lookup.
func (h *Handlers) OnPreCheckout(c tele.Context) error {
	q := c.PreCheckoutQuery()
	if q == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	if err := h.payments.PreCheckout(ctx, q.Payload, q.Total); err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderAlreadyPaid):
			return c.Accept("This order is already paid.")
		case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrOrderNotPending):
			return c.Accept("This order can no longer be paid. Please make a new one.")
		default:
			return c.Accept("Payment cannot be completed right now, please try again.")
		}
	}
	return c.Accept()
}

// OnPaymentSuccess finalizes the order after the provider confirms the
// charge: status flip, export, cart clear, confirmation message.
func (h *Handlers) OnPaymentSuccess(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Payment == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	order, err := h.payments.HandleSuccess(ctx, msg.Payment.Payload, c.Sender().ID)
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, fmt.Sprintf(
		"Payment received ✅\n\nOrder #%d for *%s* is confirmed. We will contact you shortly!",
		order.ID, order.Total.StringFixed(2)))
}
