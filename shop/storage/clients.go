package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zhukata/shopbot/shop/domain"
)

// ClientRepo persists shop clients keyed by Telegram id.
type ClientRepo struct {
	db *sqlx.DB
}

func NewClientRepo(db *sqlx.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

// GetOrCreate registers the Telegram user on first contact and refreshes
// the stored username on subsequent ones.
func (r *ClientRepo) GetOrCreate(ctx context.Context, telegramID int64, username string) (domain.Client, error) {
	const q = `
		INSERT INTO clients (telegram_id, username)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, telegram_id, username, created_at`

	var c domain.Client
	if err := r.db.GetContext(ctx, &c, q, telegramID, username); err != nil {
		return domain.Client{}, fmt.Errorf("clients get-or-create: %w", err)
	}
	return c, nil
}

// ByTelegramID returns the client registered for the Telegram user.
func (r *ClientRepo) ByTelegramID(ctx context.Context, telegramID int64) (domain.Client, error) {
	const q = `SELECT id, telegram_id, username, created_at FROM clients WHERE telegram_id = $1`

	var c domain.Client
	if err := r.db.GetContext(ctx, &c, q, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Client{}, domain.ErrClientNotFound
		}
		return domain.Client{}, fmt.Errorf("clients by telegram id: %w", err)
	}
	return c, nil
}
