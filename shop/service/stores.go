package service

import (
	"context"

	"github.com/zhukata/shopbot/shop/domain"
)

// Store interfaces consumed by the services. The sqlx repositories in
// shop/storage satisfy them; tests substitute in-memory fakes.

type ClientStore interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (domain.Client, error)
	ByTelegramID(ctx context.Context, telegramID int64) (domain.Client, error)
}

type ProductStore interface {
	ProductByID(ctx context.Context, id int64) (domain.Product, error)
}

type CatalogStore interface {
	ProductStore
	Categories(ctx context.Context, limit, offset int) ([]domain.Category, error)
	CountCategories(ctx context.Context) (int, error)
	Subcategories(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Subcategory, error)
	CountSubcategories(ctx context.Context, categoryID int64) (int, error)
	Products(ctx context.Context, subcategoryID int64, limit, offset int) ([]domain.Product, error)
	CountProducts(ctx context.Context, subcategoryID int64) (int, error)
}

type CartStore interface {
	GetOrCreate(ctx context.Context, clientID int64) (domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) (domain.CartItem, error)
	RemoveItem(ctx context.Context, cartID, itemID int64) error
	Lines(ctx context.Context, cartID int64) ([]domain.CartLine, error)
	Clear(ctx context.Context, cartID int64) error
}

type OrderStore interface {
	Create(ctx context.Context, order domain.Order, items []domain.OrderItem) (domain.Order, error)
	ByID(ctx context.Context, id int64) (domain.Order, error)
	Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	MarkPaid(ctx context.Context, id int64) (domain.Order, error)
	Cancel(ctx context.Context, id int64) error
}
