package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zhukata/shopbot/core/logger"
	"github.com/zhukata/shopbot/core/telegram/state"
	"github.com/zhukata/shopbot/shop/domain"
)

// Checkout runs the multi-step order conversation: full name, phone,
// delivery address, then order creation. Progress lives in the session
// store keyed by Telegram user id, so a restart of the process (with the
// redis backend) does not lose a half-finished checkout.
type Checkout struct {
	clients  ClientStore
	carts    *Carts
	orders   OrderStore
	sessions state.Store
	validate *validator.Validate
}

func NewCheckout(clients ClientStore, carts *Carts, orders OrderStore, sessions state.Store) *Checkout {
	return &Checkout{
		clients:  clients,
		carts:    carts,
		orders:   orders,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Advance is the result of feeding one user message into the conversation.
type Advance struct {
	Next  state.Step
	Order *domain.Order
}

// Start opens a checkout session. The cart must be non-empty.
func (s *Checkout) Start(ctx context.Context, telegramID int64) error {
	view, err := s.carts.View(ctx, telegramID)
	if err != nil {
		return err
	}
	if view.Empty() {
		return domain.ErrCartEmpty
	}
	if err := s.sessions.Put(ctx, telegramID, state.Session{Step: state.StepFullName}); err != nil {
		return err
	}
	logger.Info(ctx, "svc.checkout", "checkout.start")
	return nil
}

// Step reports the user's current conversation step.
func (s *Checkout) Step(ctx context.Context, telegramID int64) (state.Step, error) {
	sess, err := s.sessions.Get(ctx, telegramID)
	if err != nil {
		return state.StepIdle, err
	}
	return sess.Step, nil
}

// Cancel abandons the conversation. Cancelling when nothing is in
// progress succeeds.
func (s *Checkout) Cancel(ctx context.Context, telegramID int64) error {
	return s.sessions.Clear(ctx, telegramID)
}

// Submit feeds one free-form message into the conversation. Rejected input
// returns a *domain.ValidationError and keeps the step unchanged so the
// handler re-prompts. Accepting the address creates the order and closes
// the session.
func (s *Checkout) Submit(ctx context.Context, telegramID int64, text string) (Advance, error) {
	sess, err := s.sessions.Get(ctx, telegramID)
	if err != nil {
		return Advance{}, err
	}

	switch sess.Step {
	case state.StepFullName:
		name := strings.TrimSpace(text)
		if s.validate.Var(name, "min=2") != nil {
			return Advance{Next: state.StepFullName}, &domain.ValidationError{
				Field:  "full_name",
				Reason: "please enter your full name (at least 2 characters)",
			}
		}
		sess.FullName = name
		sess.Step = state.StepPhone
		if err := s.sessions.Put(ctx, telegramID, sess); err != nil {
			return Advance{}, err
		}
		return Advance{Next: state.StepPhone}, nil

	case state.StepPhone:
		phone := strings.TrimSpace(text)
		digits := stripPhone(phone)
		if digits == "" || s.validate.Var(digits, "number") != nil {
			return Advance{Next: state.StepPhone}, &domain.ValidationError{
				Field:  "phone",
				Reason: "please enter a phone number, digits only (spaces, + and - are fine)",
			}
		}
		sess.Phone = phone
		sess.Step = state.StepAddress
		if err := s.sessions.Put(ctx, telegramID, sess); err != nil {
			return Advance{}, err
		}
		return Advance{Next: state.StepAddress}, nil

	case state.StepAddress:
		address := strings.TrimSpace(text)
		if s.validate.Var(address, "min=10") != nil {
			return Advance{Next: state.StepAddress}, &domain.ValidationError{
				Field:  "address",
				Reason: "please enter a delivery address (at least 10 characters)",
			}
		}
		return s.finish(ctx, telegramID, sess, address)

	default:
		return Advance{Next: state.StepIdle}, nil
	}
}

// finish re-checks the cart and creates the pending order with its item
// snapshots. The cart itself stays intact until payment succeeds.
func (s *Checkout) finish(ctx context.Context, telegramID int64, sess state.Session, address string) (Advance, error) {
	client, err := s.clients.ByTelegramID(ctx, telegramID)
	if err != nil {
		return Advance{}, err
	}
	view, err := s.carts.View(ctx, telegramID)
	if err != nil {
		return Advance{}, err
	}
	if view.Empty() {
		// Cart drained mid-conversation, nothing to order.
		_ = s.sessions.Clear(ctx, telegramID)
		return Advance{Next: state.StepIdle}, domain.ErrCartEmpty
	}

	items := make([]domain.OrderItem, 0, len(view.Lines))
	for _, l := range view.Lines {
		items = append(items, domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}

	order, err := s.orders.Create(ctx, domain.Order{
		ClientID: client.ID,
		FullName: sess.FullName,
		Phone:    sess.Phone,
		Address:  address,
		Total:    view.Total,
		Status:   domain.OrderStatusPending,
	}, items)
	if err != nil {
		return Advance{}, err
	}

	if err := s.sessions.Clear(ctx, telegramID); err != nil {
		logger.Warn(ctx, "svc.checkout", "checkout.session_clear_failed",
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, "svc.checkout", "checkout.order_created",
		slog.Int64("order_id", order.ID),
		slog.String("total", order.Total.StringFixed(2)),
		slog.Int("items", len(items)),
	)
	return Advance{Next: state.StepIdle, Order: &order}, nil
}

// stripPhone drops the separators users commonly type into phone numbers.
func stripPhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '+', ' ', '-':
			return -1
		}
		return r
	}, s)
}
