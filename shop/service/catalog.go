package service

import (
	"context"
	"fmt"

	"github.com/zhukata/shopbot/shop/domain"
)

// PageSize is how many catalog entries a single bot message shows.
const PageSize = 3

// Page is one slice of a paginated listing. Num is 1-based.
type Page[T any] struct {
	Items []T
	Num   int
	Pages int
}

func (p Page[T]) HasPrev() bool { return p.Num > 1 }
func (p Page[T]) HasNext() bool { return p.Num < p.Pages }

// clampPage normalizes a requested page into [1, pages] and returns the
// page count for the given total. An empty listing still has one page.
func clampPage(total, page int) (int, int) {
	pages := (total + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return page, pages
}

// Catalog serves paginated catalog listings.
type Catalog struct {
	store CatalogStore
}

func NewCatalog(store CatalogStore) *Catalog {
	return &Catalog{store: store}
}

func (s *Catalog) Categories(ctx context.Context, page int) (Page[domain.Category], error) {
	total, err := s.store.CountCategories(ctx)
	if err != nil {
		return Page[domain.Category]{}, fmt.Errorf("catalog categories page: %w", err)
	}
	page, pages := clampPage(total, page)
	items, err := s.store.Categories(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return Page[domain.Category]{}, fmt.Errorf("catalog categories page: %w", err)
	}
	return Page[domain.Category]{Items: items, Num: page, Pages: pages}, nil
}

func (s *Catalog) Subcategories(ctx context.Context, categoryID int64, page int) (Page[domain.Subcategory], error) {
	total, err := s.store.CountSubcategories(ctx, categoryID)
	if err != nil {
		return Page[domain.Subcategory]{}, fmt.Errorf("catalog subcategories page: %w", err)
	}
	page, pages := clampPage(total, page)
	items, err := s.store.Subcategories(ctx, categoryID, PageSize, (page-1)*PageSize)
	if err != nil {
		return Page[domain.Subcategory]{}, fmt.Errorf("catalog subcategories page: %w", err)
	}
	return Page[domain.Subcategory]{Items: items, Num: page, Pages: pages}, nil
}

func (s *Catalog) Products(ctx context.Context, subcategoryID int64, page int) (Page[domain.Product], error) {
	total, err := s.store.CountProducts(ctx, subcategoryID)
	if err != nil {
		return Page[domain.Product]{}, fmt.Errorf("catalog products page: %w", err)
	}
	page, pages := clampPage(total, page)
	items, err := s.store.Products(ctx, subcategoryID, PageSize, (page-1)*PageSize)
	if err != nil {
		return Page[domain.Product]{}, fmt.Errorf("catalog products page: %w", err)
	}
	return Page[domain.Product]{Items: items, Num: page, Pages: pages}, nil
}

// Product returns a single product card.
func (s *Catalog) Product(ctx context.Context, id int64) (domain.Product, error) {
	return s.store.ProductByID(ctx, id)
}
