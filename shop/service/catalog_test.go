package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/zhukata/shopbot/shop/domain"
)

type fakeCatalog struct {
	categories []domain.Category
}

func (f *fakeCatalog) Categories(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	if offset >= len(f.categories) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.categories) {
		end = len(f.categories)
	}
	return f.categories[offset:end], nil
}

func (f *fakeCatalog) CountCategories(ctx context.Context) (int, error) {
	return len(f.categories), nil
}

func (f *fakeCatalog) Subcategories(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Subcategory, error) {
	return nil, nil
}

func (f *fakeCatalog) CountSubcategories(ctx context.Context, categoryID int64) (int, error) {
	return 0, nil
}

func (f *fakeCatalog) Products(ctx context.Context, subcategoryID int64, limit, offset int) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeCatalog) CountProducts(ctx context.Context, subcategoryID int64) (int, error) {
	return 0, nil
}

func (f *fakeCatalog) ProductByID(ctx context.Context, id int64) (domain.Product, error) {
	return domain.Product{}, domain.ErrProductNotFound
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		total, page     int
		wantPage, wantN int
	}{
		{0, 1, 1, 1},
		{1, 1, 1, 1},
		{3, 1, 1, 1},
		{4, 1, 1, 2},
		{4, 2, 2, 2},
		{4, 5, 2, 2},  // past the end clamps to last
		{7, 0, 1, 3},  // below range clamps to first
		{7, -3, 1, 3}, // negative too
		{9, 3, 3, 3},
	}
	for _, tc := range cases {
		page, pages := clampPage(tc.total, tc.page)
		if page != tc.wantPage || pages != tc.wantN {
			t.Fatalf("clampPage(%d, %d) = (%d, %d), want (%d, %d)",
				tc.total, tc.page, page, pages, tc.wantPage, tc.wantN)
		}
	}
}

func TestCategoriesPagination(t *testing.T) {
	f := &fakeCatalog{}
	for i := 1; i <= 7; i++ {
		f.categories = append(f.categories, domain.Category{ID: int64(i), Name: fmt.Sprintf("cat-%d", i)})
	}
	catalog := NewCatalog(f)
	ctx := context.Background()

	first, err := catalog.Categories(ctx, 1)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(first.Items) != 3 || first.Pages != 3 {
		t.Fatalf("expected 3 items over 3 pages, got %d items over %d", len(first.Items), first.Pages)
	}
	if first.HasPrev() || !first.HasNext() {
		t.Fatalf("page 1 nav wrong: prev=%v next=%v", first.HasPrev(), first.HasNext())
	}

	last, err := catalog.Categories(ctx, 3)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(last.Items) != 1 {
		t.Fatalf("expected 1 item on the last page, got %d", len(last.Items))
	}
	if !last.HasPrev() || last.HasNext() {
		t.Fatalf("last page nav wrong: prev=%v next=%v", last.HasPrev(), last.HasNext())
	}
	if last.Items[0].ID != 7 {
		t.Fatalf("expected category 7 on the last page, got %d", last.Items[0].ID)
	}

	beyond, err := catalog.Categories(ctx, 99)
	if err != nil {
		t.Fatalf("page 99: %v", err)
	}
	if beyond.Num != 3 {
		t.Fatalf("expected clamp to page 3, got %d", beyond.Num)
	}
}
