package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zhukata/shopbot/shop/domain"
)

// CartRepo persists carts and their items. Quantity accumulation and the
// one-row-per-product rule live in the SQL statements, so concurrent adds
// from retried updates cannot duplicate rows.
type CartRepo struct {
	db *sqlx.DB
}

func NewCartRepo(db *sqlx.DB) *CartRepo {
	return &CartRepo{db: db}
}

// GetOrCreate returns the client's cart, creating it on first use.
// Every client has exactly one cart.
func (r *CartRepo) GetOrCreate(ctx context.Context, clientID int64) (domain.Cart, error) {
	const q = `
		INSERT INTO carts (client_id) VALUES ($1)
		ON CONFLICT (client_id) DO UPDATE SET client_id = EXCLUDED.client_id
		RETURNING id, client_id`

	var cart domain.Cart
	if err := r.db.GetContext(ctx, &cart, q, clientID); err != nil {
		return domain.Cart{}, fmt.Errorf("carts get-or-create: %w", err)
	}
	return cart, nil
}

// AddItem inserts a cart line or bumps the existing line's quantity in a
// single atomic statement.
func (r *CartRepo) AddItem(ctx context.Context, cartID, productID int64, quantity int) (domain.CartItem, error) {
	const q = `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_id, quantity`

	var item domain.CartItem
	if err := r.db.GetContext(ctx, &item, q, cartID, productID, quantity); err != nil {
		return domain.CartItem{}, fmt.Errorf("carts add item: %w", err)
	}
	return item, nil
}

// RemoveItem deletes a cart line. Removing an absent line is a no-op.
func (r *CartRepo) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID); err != nil {
		return fmt.Errorf("carts remove item: %w", err)
	}
	return nil
}

// Lines returns the cart contents joined with product names and prices.
func (r *CartRepo) Lines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	const q = `
		SELECT ci.id AS item_id, ci.product_id, p.name, p.price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	var lines []domain.CartLine
	if err := r.db.SelectContext(ctx, &lines, q, cartID); err != nil {
		return nil, fmt.Errorf("carts lines: %w", err)
	}
	return lines, nil
}

// Clear removes all items from the cart. Clearing an already empty cart
// succeeds.
func (r *CartRepo) Clear(ctx context.Context, cartID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("carts clear: %w", err)
	}
	return nil
}
