package service

import (
	"context"
	"errors"
	"testing"

	"github.com/zhukata/shopbot/core/telegram/state"
	"github.com/zhukata/shopbot/shop/domain"
)

func newCheckoutFixture(t *testing.T) (*fakeStore, *Carts, *Checkout) {
	t.Helper()
	f := newFakeStore()
	f.addProduct(10, "Beans", "100.00")
	f.addProduct(11, "Sencha", "50.00")
	if _, err := f.GetOrCreate(context.Background(), 100, "alice"); err != nil {
		t.Fatalf("register client: %v", err)
	}
	carts := newCartService(f)
	checkout := NewCheckout(f, carts, f, state.NewMemoryStore())
	return f, carts, checkout
}

func fillCart(t *testing.T, carts *Carts) {
	t.Helper()
	if _, err := carts.Add(context.Background(), 100, 10, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := carts.Add(context.Background(), 100, 11, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	_, _, checkout := newCheckoutFixture(t)

	if err := checkout.Start(context.Background(), 100); !errors.Is(err, domain.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	f, carts, checkout := newCheckoutFixture(t)
	fillCart(t, carts)
	ctx := context.Background()

	if err := checkout.Start(ctx, 100); err != nil {
		t.Fatalf("start: %v", err)
	}

	adv, err := checkout.Submit(ctx, 100, "Alice Smith")
	if err != nil {
		t.Fatalf("submit name: %v", err)
	}
	if adv.Next != state.StepPhone {
		t.Fatalf("expected phone step, got %s", adv.Next)
	}

	adv, err = checkout.Submit(ctx, 100, "+7 912 345-67-89")
	if err != nil {
		t.Fatalf("submit phone: %v", err)
	}
	if adv.Next != state.StepAddress {
		t.Fatalf("expected address step, got %s", adv.Next)
	}

	adv, err = checkout.Submit(ctx, 100, "221B Baker Street, London")
	if err != nil {
		t.Fatalf("submit address: %v", err)
	}
	if adv.Order == nil {
		t.Fatalf("expected created order")
	}
	if got := adv.Order.Total.StringFixed(2); got != "250.00" {
		t.Fatalf("expected total 250.00, got %s", got)
	}
	if adv.Order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", adv.Order.Status)
	}

	items, err := f.Items(ctx, adv.Order.ID)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(items))
	}

	// Session is closed, cart still intact until payment.
	step, err := checkout.Step(ctx, 100)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if step != state.StepIdle {
		t.Fatalf("expected idle session, got %s", step)
	}
	view, err := carts.View(ctx, 100)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Empty() {
		t.Fatalf("cart must stay intact until payment succeeds")
	}
}

func TestCheckoutValidation(t *testing.T) {
	cases := []struct {
		name  string
		step  state.Step
		input string
		field string
	}{
		{"name too short", state.StepFullName, "A", "full_name"},
		{"name whitespace", state.StepFullName, "   ", "full_name"},
		{"phone letters", state.StepPhone, "abc123", "phone"},
		{"phone empty after strip", state.StepPhone, "+ - ", "phone"},
		{"address too short", state.StepAddress, "short", "address"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, carts, checkout := newCheckoutFixture(t)
			fillCart(t, carts)
			ctx := context.Background()

			if err := checkout.Start(ctx, 100); err != nil {
				t.Fatalf("start: %v", err)
			}
			// Fast-forward to the step under test with valid inputs.
			if tc.step == state.StepPhone || tc.step == state.StepAddress {
				if _, err := checkout.Submit(ctx, 100, "Alice Smith"); err != nil {
					t.Fatalf("submit name: %v", err)
				}
			}
			if tc.step == state.StepAddress {
				if _, err := checkout.Submit(ctx, 100, "79123456789"); err != nil {
					t.Fatalf("submit phone: %v", err)
				}
			}

			adv, err := checkout.Submit(ctx, 100, tc.input)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
			}
			if adv.Next != tc.step {
				t.Fatalf("expected to stay on %s, got %s", tc.step, adv.Next)
			}
		})
	}
}

func TestCheckoutCancelMidway(t *testing.T) {
	_, carts, checkout := newCheckoutFixture(t)
	fillCart(t, carts)
	ctx := context.Background()

	if err := checkout.Start(ctx, 100); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := checkout.Submit(ctx, 100, "Alice Smith"); err != nil {
		t.Fatalf("submit name: %v", err)
	}
	if err := checkout.Cancel(ctx, 100); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	step, err := checkout.Step(ctx, 100)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if step != state.StepIdle {
		t.Fatalf("expected idle after cancel, got %s", step)
	}
	// Cancel with no session open is fine too.
	if err := checkout.Cancel(ctx, 100); err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}

	view, err := carts.View(ctx, 100)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Empty() {
		t.Fatalf("cancel must not touch the cart")
	}
}

func TestCheckoutCartDrainedBeforeFinish(t *testing.T) {
	_, carts, checkout := newCheckoutFixture(t)
	fillCart(t, carts)
	ctx := context.Background()

	if err := checkout.Start(ctx, 100); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := checkout.Submit(ctx, 100, "Alice Smith"); err != nil {
		t.Fatalf("submit name: %v", err)
	}
	if _, err := checkout.Submit(ctx, 100, "79123456789"); err != nil {
		t.Fatalf("submit phone: %v", err)
	}

	if err := carts.Clear(ctx, 100); err != nil {
		t.Fatalf("clear: %v", err)
	}
	_, err := checkout.Submit(ctx, 100, "221B Baker Street, London")
	if !errors.Is(err, domain.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}

	step, err := checkout.Step(ctx, 100)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if step != state.StepIdle {
		t.Fatalf("expected session closed, got %s", step)
	}
}
