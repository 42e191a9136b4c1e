package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zhukata/shopbot/shop/domain"
)

// CatalogRepo reads the category / subcategory / product tree.
type CatalogRepo struct {
	db *sqlx.DB
}

func NewCatalogRepo(db *sqlx.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Categories(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	const q = `SELECT id, name FROM categories ORDER BY name, id LIMIT $1 OFFSET $2`

	var out []domain.Category
	if err := r.db.SelectContext(ctx, &out, q, limit, offset); err != nil {
		return nil, fmt.Errorf("catalog categories: %w", err)
	}
	return out, nil
}

func (r *CatalogRepo) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return 0, fmt.Errorf("catalog count categories: %w", err)
	}
	return n, nil
}

func (r *CatalogRepo) Subcategories(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Subcategory, error) {
	const q = `
		SELECT id, category_id, name FROM subcategories
		WHERE category_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`

	var out []domain.Subcategory
	if err := r.db.SelectContext(ctx, &out, q, categoryID, limit, offset); err != nil {
		return nil, fmt.Errorf("catalog subcategories: %w", err)
	}
	return out, nil
}

func (r *CatalogRepo) CountSubcategories(ctx context.Context, categoryID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM subcategories WHERE category_id = $1`, categoryID); err != nil {
		return 0, fmt.Errorf("catalog count subcategories: %w", err)
	}
	return n, nil
}

func (r *CatalogRepo) Products(ctx context.Context, subcategoryID int64, limit, offset int) ([]domain.Product, error) {
	const q = `
		SELECT id, subcategory_id, name, description, price FROM products
		WHERE subcategory_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`

	var out []domain.Product
	if err := r.db.SelectContext(ctx, &out, q, subcategoryID, limit, offset); err != nil {
		return nil, fmt.Errorf("catalog products: %w", err)
	}
	return out, nil
}

func (r *CatalogRepo) CountProducts(ctx context.Context, subcategoryID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE subcategory_id = $1`, subcategoryID); err != nil {
		return 0, fmt.Errorf("catalog count products: %w", err)
	}
	return n, nil
}

// ProductByID returns a single product or domain.ErrProductNotFound.
func (r *CatalogRepo) ProductByID(ctx context.Context, id int64) (domain.Product, error) {
	const q = `SELECT id, subcategory_id, name, description, price FROM products WHERE id = $1`

	var p domain.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("catalog product by id: %w", err)
	}
	return p, nil
}
