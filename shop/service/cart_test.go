package service

import (
	"context"
	"errors"
	"testing"

	"github.com/zhukata/shopbot/shop/domain"
)

func TestCartAddAccumulates(t *testing.T) {
	f := newFakeStore()
	f.addProduct(10, "Beans", "14.50")
	if _, err := f.GetOrCreate(context.Background(), 100, "alice"); err != nil {
		t.Fatalf("register client: %v", err)
	}
	carts := newCartService(f)

	for _, qty := range []int{1, 2, 3} {
		if _, err := carts.Add(context.Background(), 100, 10, qty); err != nil {
			t.Fatalf("add qty %d: %v", qty, err)
		}
	}

	view, err := carts.View(context.Background(), 100)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("expected one cart line, got %d", len(view.Lines))
	}
	if got := view.Lines[0].Quantity; got != 6 {
		t.Fatalf("expected accumulated quantity 6, got %d", got)
	}
	if got := view.Total.StringFixed(2); got != "87.00" {
		t.Fatalf("expected total 87.00, got %s", got)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	f := newFakeStore()
	if _, err := f.GetOrCreate(context.Background(), 100, "alice"); err != nil {
		t.Fatalf("register client: %v", err)
	}
	carts := newCartService(f)

	if _, err := carts.Add(context.Background(), 100, 999, 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCartAddUnregisteredUser(t *testing.T) {
	f := newFakeStore()
	f.addProduct(10, "Beans", "14.50")
	carts := newCartService(f)

	if _, err := carts.Add(context.Background(), 100, 10, 1); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestCartViewUnregisteredUserIsEmpty(t *testing.T) {
	f := newFakeStore()
	carts := newCartService(f)

	view, err := carts.View(context.Background(), 100)
	if err != nil {
		t.Fatalf("view for unregistered user: %v", err)
	}
	if !view.Empty() {
		t.Fatalf("expected empty view, got %d lines", len(view.Lines))
	}
	if !view.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", view.Total)
	}
}

func TestCartClearIdempotent(t *testing.T) {
	f := newFakeStore()
	f.addProduct(10, "Beans", "14.50")
	if _, err := f.GetOrCreate(context.Background(), 100, "alice"); err != nil {
		t.Fatalf("register client: %v", err)
	}
	carts := newCartService(f)

	if _, err := carts.Add(context.Background(), 100, 10, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := carts.Clear(context.Background(), 100); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
	}

	view, err := carts.View(context.Background(), 100)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !view.Empty() {
		t.Fatalf("expected empty cart after clear, got %d lines", len(view.Lines))
	}
}

func TestCartRemoveLine(t *testing.T) {
	f := newFakeStore()
	f.addProduct(10, "Beans", "14.50")
	f.addProduct(11, "Sencha", "9.50")
	if _, err := f.GetOrCreate(context.Background(), 100, "alice"); err != nil {
		t.Fatalf("register client: %v", err)
	}
	carts := newCartService(f)

	if _, err := carts.Add(context.Background(), 100, 10, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	item, err := carts.Add(context.Background(), 100, 11, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := carts.Remove(context.Background(), 100, item.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	view, err := carts.View(context.Background(), 100)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].ProductID != 10 {
		t.Fatalf("expected only product 10 left, got %+v", view.Lines)
	}
}
