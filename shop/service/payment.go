package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/zhukata/shopbot/core/logger"
	"github.com/zhukata/shopbot/shop/domain"
)

// ExportSink receives paid orders for out-of-band bookkeeping. Failures
// are logged and never surfaced to the paying user.
type ExportSink interface {
	ExportOrder(ctx context.Context, order domain.Order) error
}

// Invoice describes the payment request handed to the Telegram provider.
// Amount is in the currency's minor units.
type Invoice struct {
	OrderID     int64
	Title       string
	Description string
	Payload     string
	Currency    string
	Amount      int
}

// Payments coordinates the invoice flow around pending orders.
type Payments struct {
	orders   OrderStore
	carts    *Carts
	export   ExportSink
	currency string
}

func NewPayments(orders OrderStore, carts *Carts, export ExportSink, currency string) *Payments {
	return &Payments{orders: orders, carts: carts, export: export, currency: currency}
}

const payloadPrefix = "order:"

// OrderPayload encodes the order reference carried through the provider.
func OrderPayload(orderID int64) string {
	return payloadPrefix + strconv.FormatInt(orderID, 10)
}

// ParseOrderPayload decodes the payload back into an order id.
func ParseOrderPayload(payload string) (int64, error) {
	raw, ok := strings.CutPrefix(payload, payloadPrefix)
	if !ok {
		return 0, fmt.Errorf("unexpected invoice payload %q", logger.SanitizeLimit(payload, 64))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected invoice payload %q", logger.SanitizeLimit(payload, 64))
	}
	return id, nil
}

// Initiate builds the invoice for a pending order. Calling it again for
// the same order returns the same invoice, so a lost message can be
// retried safely.
func (p *Payments) Initiate(ctx context.Context, orderID int64) (Invoice, error) {
	order, err := p.orders.ByID(ctx, orderID)
	if err != nil {
		return Invoice{}, err
	}
	if order.Status != domain.OrderStatusPending {
		if order.Status == domain.OrderStatusPaid {
			return Invoice{}, domain.ErrOrderAlreadyPaid
		}
		return Invoice{}, domain.ErrOrderNotPending
	}

	inv := Invoice{
		OrderID:     order.ID,
		Title:       fmt.Sprintf("Order #%d", order.ID),
		Description: fmt.Sprintf("Payment for order #%d", order.ID),
		Payload:     OrderPayload(order.ID),
		Currency:    p.currency,
		Amount:      domain.MinorUnits(order.Total),
	}
	logger.Info(ctx, "svc.payment", "payment.initiate",
		slog.Int64("order_id", order.ID),
		slog.Int("amount_minor", inv.Amount),
	)
	return inv, nil
}

// PreCheckout answers the provider's final confirmation. It is on a tight
// deadline, so only the order's existence and status are checked. An
// amount mismatch is suspicious but not a reason to lose the sale; it is
// logged and the checkout approved.
func (p *Payments) PreCheckout(ctx context.Context, payload string, amountMinor int) error {
	orderID, err := ParseOrderPayload(payload)
	if err != nil {
		return err
	}
	order, err := p.orders.ByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusPending {
		if order.Status == domain.OrderStatusPaid {
			return domain.ErrOrderAlreadyPaid
		}
		return domain.ErrOrderNotPending
	}
	if expected := domain.MinorUnits(order.Total); expected != amountMinor {
		logger.Warn(ctx, "svc.payment", "payment.amount_mismatch",
			slog.Int64("order_id", order.ID),
			slog.Int("expected_minor", expected),
			slog.Int("got_minor", amountMinor),
		)
	}
	return nil
}

// HandleSuccess finalizes a paid order. The status flip is the single
// idempotency gate: a duplicate confirmation finds the order already paid
// and does nothing. Export and cart clearing run after the flip,
// best-effort and independent of each other.
func (p *Payments) HandleSuccess(ctx context.Context, payload string, telegramID int64) (domain.Order, error) {
	orderID, err := ParseOrderPayload(payload)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := p.orders.MarkPaid(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderAlreadyPaid) {
			logger.Info(ctx, "svc.payment", "payment.duplicate_success",
				slog.Int64("order_id", orderID),
			)
			return order, nil
		}
		return domain.Order{}, err
	}

	if p.export != nil {
		if err := p.export.ExportOrder(ctx, order); err != nil {
			logger.Error(ctx, "svc.payment", "payment.export_failed",
				slog.Int64("order_id", order.ID),
				slog.String("err", err.Error()),
			)
		}
	}
	if err := p.carts.Clear(ctx, telegramID); err != nil {
		logger.Error(ctx, "svc.payment", "payment.cart_clear_failed",
			slog.Int64("order_id", order.ID),
			slog.String("err", err.Error()),
		)
	}

	logger.Info(ctx, "svc.payment", "payment.success",
		slog.Int64("order_id", order.ID),
		slog.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

// HandleCancel records a user backing out of the payment screen. The
// order stays pending; the invoice can be re-issued later.
func (p *Payments) HandleCancel(ctx context.Context, orderID int64) error {
	order, err := p.orders.ByID(ctx, orderID)
	if err != nil {
		return err
	}
	logger.Info(ctx, "svc.payment", "payment.cancelled",
		slog.Int64("order_id", order.ID),
		slog.String("status", order.Status),
	)
	return nil
}
