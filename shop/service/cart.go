package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/zhukata/shopbot/core/logger"
	"github.com/zhukata/shopbot/shop/domain"
)

// Carts manages the per-user cart. Every operation resolves the client by
// Telegram id and works on that client's single cart.
type Carts struct {
	clients  ClientStore
	carts    CartStore
	products ProductStore
}

func NewCarts(clients ClientStore, carts CartStore, products ProductStore) *Carts {
	return &Carts{clients: clients, carts: carts, products: products}
}

// CartView is the cart as presented to the user.
type CartView struct {
	CartID int64
	Lines  []domain.CartLine
	Total  decimal.Decimal
}

func (v CartView) Empty() bool { return len(v.Lines) == 0 }

func (s *Carts) cartOf(ctx context.Context, telegramID int64) (domain.Cart, error) {
	client, err := s.clients.ByTelegramID(ctx, telegramID)
	if err != nil {
		return domain.Cart{}, err
	}
	return s.carts.GetOrCreate(ctx, client.ID)
}

// Add puts quantity units of the product into the user's cart. Adding a
// product already present accumulates into the existing line.
func (s *Carts) Add(ctx context.Context, telegramID, productID int64, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}
	if _, err := s.products.ProductByID(ctx, productID); err != nil {
		return domain.CartItem{}, err
	}
	cart, err := s.cartOf(ctx, telegramID)
	if err != nil {
		return domain.CartItem{}, err
	}
	item, err := s.carts.AddItem(ctx, cart.ID, productID, quantity)
	if err != nil {
		return domain.CartItem{}, err
	}
	logger.Info(ctx, "svc.cart", "cart.add",
		slog.Int64("product_id", productID),
		slog.Int("quantity", item.Quantity),
	)
	return item, nil
}

// Remove deletes one line from the user's cart.
func (s *Carts) Remove(ctx context.Context, telegramID, itemID int64) error {
	cart, err := s.cartOf(ctx, telegramID)
	if err != nil {
		return err
	}
	return s.carts.RemoveItem(ctx, cart.ID, itemID)
}

// View returns the cart lines with the grand total. A user who never
// registered has no cart and sees an empty view, not an error.
func (s *Carts) View(ctx context.Context, telegramID int64) (CartView, error) {
	cart, err := s.cartOf(ctx, telegramID)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return CartView{}, nil
		}
		return CartView{}, err
	}
	lines, err := s.carts.Lines(ctx, cart.ID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{CartID: cart.ID, Lines: lines, Total: domain.TotalOf(lines)}, nil
}

// Clear empties the user's cart. Clearing an empty cart is a no-op.
func (s *Carts) Clear(ctx context.Context, telegramID int64) error {
	cart, err := s.cartOf(ctx, telegramID)
	if err != nil {
		return err
	}
	return s.carts.Clear(ctx, cart.ID)
}
