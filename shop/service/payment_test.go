package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zhukata/shopbot/shop/domain"
)

type recordingSink struct {
	exported []int64
	fail     bool
}

func (s *recordingSink) ExportOrder(ctx context.Context, order domain.Order) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.exported = append(s.exported, order.ID)
	return nil
}

func newPaymentFixture(t *testing.T) (*fakeStore, *Carts, *recordingSink, *Payments) {
	t.Helper()
	f := newFakeStore()
	f.addProduct(10, "Beans", "100.00")
	if _, err := f.GetOrCreate(context.Background(), 100, "alice"); err != nil {
		t.Fatalf("register client: %v", err)
	}
	carts := newCartService(f)
	sink := &recordingSink{}
	return f, carts, sink, NewPayments(f, carts, sink, "USD")
}

func createOrder(t *testing.T, f *fakeStore, total string) domain.Order {
	t.Helper()
	order, err := f.Create(context.Background(), domain.Order{
		ClientID: 1,
		FullName: "Alice Smith",
		Phone:    "79123456789",
		Address:  "221B Baker Street, London",
		Total:    decimal.RequireFromString(total),
		Status:   domain.OrderStatusPending,
	}, nil)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestInitiateBuildsInvoice(t *testing.T) {
	f, _, _, payments := newPaymentFixture(t)
	order := createOrder(t, f, "199.99")

	inv, err := payments.Initiate(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if inv.Amount != 19999 {
		t.Fatalf("expected 19999 minor units, got %d", inv.Amount)
	}
	if inv.Currency != "USD" {
		t.Fatalf("expected USD, got %s", inv.Currency)
	}
	if inv.Payload != OrderPayload(order.ID) {
		t.Fatalf("unexpected payload %s", inv.Payload)
	}

	// Re-initiating a pending order yields the same invoice.
	again, err := payments.Initiate(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("re-initiate: %v", err)
	}
	if again != inv {
		t.Fatalf("expected identical invoice, got %+v vs %+v", again, inv)
	}
}

func TestInitiateUnknownOrder(t *testing.T) {
	_, _, _, payments := newPaymentFixture(t)

	if _, err := payments.Initiate(context.Background(), 42); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPreCheckout(t *testing.T) {
	f, _, _, payments := newPaymentFixture(t)
	order := createOrder(t, f, "100.00")
	ctx := context.Background()

	if err := payments.PreCheckout(ctx, OrderPayload(order.ID), 10000); err != nil {
		t.Fatalf("pre-checkout: %v", err)
	}
	// Amount mismatch is advisory, not a rejection.
	if err := payments.PreCheckout(ctx, OrderPayload(order.ID), 9999); err != nil {
		t.Fatalf("pre-checkout with mismatch: %v", err)
	}
	if err := payments.PreCheckout(ctx, OrderPayload(42), 10000); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if err := payments.PreCheckout(ctx, "garbage", 10000); err == nil {
		t.Fatalf("expected payload parse error")
	}

	if _, err := payments.HandleSuccess(ctx, OrderPayload(order.ID), 100); err != nil {
		t.Fatalf("success: %v", err)
	}
	if err := payments.PreCheckout(ctx, OrderPayload(order.ID), 10000); !errors.Is(err, domain.ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}
}

func TestHandleSuccessIdempotent(t *testing.T) {
	f, carts, sink, payments := newPaymentFixture(t)
	order := createOrder(t, f, "100.00")
	ctx := context.Background()

	if _, err := carts.Add(ctx, 100, 10, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	first, err := payments.HandleSuccess(ctx, OrderPayload(order.ID), 100)
	if err != nil {
		t.Fatalf("first success: %v", err)
	}
	if first.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", first.Status)
	}
	view, err := carts.View(ctx, 100)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !view.Empty() {
		t.Fatalf("cart must be cleared after payment")
	}
	if len(sink.exported) != 1 {
		t.Fatalf("expected one export, got %d", len(sink.exported))
	}

	// Duplicate confirmation: no error, no second export.
	second, err := payments.HandleSuccess(ctx, OrderPayload(order.ID), 100)
	if err != nil {
		t.Fatalf("duplicate success: %v", err)
	}
	if second.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", second.Status)
	}
	if len(sink.exported) != 1 {
		t.Fatalf("duplicate confirmation must not re-export, got %d", len(sink.exported))
	}
}

func TestHandleSuccessExportFailureIsolated(t *testing.T) {
	f, carts, sink, payments := newPaymentFixture(t)
	order := createOrder(t, f, "100.00")
	ctx := context.Background()
	sink.fail = true

	if _, err := carts.Add(ctx, 100, 10, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := payments.HandleSuccess(ctx, OrderPayload(order.ID), 100)
	if err != nil {
		t.Fatalf("success despite export failure: %v", err)
	}
	if got.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}
	view, err := carts.View(ctx, 100)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !view.Empty() {
		t.Fatalf("cart clear must run even when export fails")
	}
}

func TestHandleCancelKeepsOrderPending(t *testing.T) {
	f, _, _, payments := newPaymentFixture(t)
	order := createOrder(t, f, "100.00")
	ctx := context.Background()

	if err := payments.HandleCancel(ctx, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	after, err := f.ByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if after.Status != domain.OrderStatusPending {
		t.Fatalf("cancel must keep the order pending, got %s", after.Status)
	}
}

func TestParseOrderPayload(t *testing.T) {
	id, err := ParseOrderPayload(OrderPayload(77))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 77 {
		t.Fatalf("expected 77, got %d", id)
	}
	for _, bad := range []string{"", "order:", "order:xyz", "invoice:77"} {
		if _, err := ParseOrderPayload(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestMinorUnitsRounding(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"0.00", 0},
		{"0.01", 1},
		{"10.00", 1000},
		{"199.99", 19999},
		{"10.005", 1001}, // half rounds up
	}
	for _, tc := range cases {
		if got := domain.MinorUnits(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Fatalf("MinorUnits(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
