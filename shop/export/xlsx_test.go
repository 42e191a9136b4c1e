package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/zhukata/shopbot/shop/domain"
)

func testOrder(id int64, total string) domain.Order {
	return domain.Order{
		ID:        id,
		FullName:  "Alice Smith",
		Phone:     "79123456789",
		Address:   "221B Baker Street, London",
		Total:     decimal.RequireFromString(total),
		Status:    domain.OrderStatusPaid,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func readSheet(t *testing.T, path string) *xlsx.Sheet {
	t.Helper()
	file, err := xlsx.OpenFile(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	for _, sheet := range file.Sheets {
		if sheet.Name == sheetName {
			return sheet
		}
	}
	t.Fatalf("sheet %s not found", sheetName)
	return nil
}

func TestExportCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	sink := NewXLSXSink(path)

	if err := sink.ExportOrder(context.Background(), testOrder(1, "100.00")); err != nil {
		t.Fatalf("export: %v", err)
	}

	sheet := readSheet(t, path)
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(sheet.Rows))
	}
	if got := sheet.Rows[0].Cells[0].Value; got != "Order ID" {
		t.Fatalf("expected header, got %q", got)
	}
	if got := sheet.Rows[1].Cells[4].Value; got != "100.00" {
		t.Fatalf("expected total 100.00, got %q", got)
	}
}

func TestExportUpsertsByOrderID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	sink := NewXLSXSink(path)
	ctx := context.Background()

	if err := sink.ExportOrder(ctx, testOrder(1, "100.00")); err != nil {
		t.Fatalf("export #1: %v", err)
	}
	if err := sink.ExportOrder(ctx, testOrder(2, "50.00")); err != nil {
		t.Fatalf("export #2: %v", err)
	}
	// Same order again: the row is rewritten, not duplicated.
	if err := sink.ExportOrder(ctx, testOrder(1, "100.00")); err != nil {
		t.Fatalf("repeat export: %v", err)
	}

	sheet := readSheet(t, path)
	if len(sheet.Rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(sheet.Rows))
	}
}
