package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zhukata/shopbot/shop/domain"
)

// OrderRepo persists orders and their item snapshots.
type OrderRepo struct {
	db *sqlx.DB
}

func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create stores the order together with its items in one transaction,
// so no order can exist without its lines.
func (r *OrderRepo) Create(ctx context.Context, order domain.Order, items []domain.OrderItem) (domain.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insOrder = `
		INSERT INTO orders (client_id, full_name, phone, address, total, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, client_id, full_name, phone, address, total, status, created_at`

	var created domain.Order
	if err := tx.GetContext(ctx, &created, insOrder,
		order.ClientID, order.FullName, order.Phone, order.Address, order.Total, order.Status,
	); err != nil {
		return domain.Order{}, fmt.Errorf("orders insert: %w", err)
	}

	const insItem = `
		INSERT INTO order_items (order_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, insItem, created.ID, it.ProductID, it.Name, it.Price, it.Quantity); err != nil {
			return domain.Order{}, fmt.Errorf("orders insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("orders commit: %w", err)
	}
	return created, nil
}

// ByID returns the order or domain.ErrOrderNotFound.
func (r *OrderRepo) ByID(ctx context.Context, id int64) (domain.Order, error) {
	const q = `SELECT id, client_id, full_name, phone, address, total, status, created_at FROM orders WHERE id = $1`

	var o domain.Order
	if err := r.db.GetContext(ctx, &o, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("orders by id: %w", err)
	}
	return o, nil
}

// Items returns the priced item snapshots of an order.
func (r *OrderRepo) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const q = `
		SELECT id, order_id, product_id, name, price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY id`

	var items []domain.OrderItem
	if err := r.db.SelectContext(ctx, &items, q, orderID); err != nil {
		return nil, fmt.Errorf("orders items: %w", err)
	}
	return items, nil
}

// MarkPaid flips a pending order to paid. The guarded UPDATE makes repeated
// confirmations safe: a second call matches zero rows and reports
// domain.ErrOrderAlreadyPaid, missing orders report domain.ErrOrderNotFound.
func (r *OrderRepo) MarkPaid(ctx context.Context, id int64) (domain.Order, error) {
	const q = `
		UPDATE orders SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING id, client_id, full_name, phone, address, total, status, created_at`

	var o domain.Order
	err := r.db.GetContext(ctx, &o, q, id, domain.OrderStatusPaid, domain.OrderStatusPending)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("orders mark paid: %w", err)
	}

	existing, lookupErr := r.ByID(ctx, id)
	if lookupErr != nil {
		return domain.Order{}, lookupErr
	}
	if existing.Status == domain.OrderStatusPaid {
		return existing, domain.ErrOrderAlreadyPaid
	}
	return domain.Order{}, domain.ErrOrderNotPending
}

// Cancel marks a pending order cancelled. Paid orders are left untouched.
func (r *OrderRepo) Cancel(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
		id, domain.OrderStatusCancelled, domain.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("orders cancel: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, lookupErr := r.ByID(ctx, id); lookupErr != nil {
			return lookupErr
		}
		return domain.ErrOrderNotPending
	}
	return nil
}
