package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/tealeg/xlsx"

	"github.com/zhukata/shopbot/core/logger"
	"github.com/zhukata/shopbot/shop/domain"
)

const sheetName = "Orders"

var headers = []string{"Order ID", "Full Name", "Phone", "Address", "Total", "Created At"}

// XLSXSink appends paid orders to a spreadsheet on disk, one row per
// order. Rows are keyed by order id, so a repeated export of the same
// order rewrites its row instead of adding another.
type XLSXSink struct {
	mu   sync.Mutex
	path string
}

func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{path: path}
}

// ExportOrder upserts the order's row and saves the file.
func (s *XLSXSink) ExportOrder(ctx context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, sheet, err := s.open()
	if err != nil {
		return err
	}

	row := findRow(sheet, order.ID)
	if row == nil {
		row = sheet.AddRow()
	} else {
		row.Cells = nil
	}
	row.AddCell().SetValue(order.ID)
	row.AddCell().SetValue(order.FullName)
	row.AddCell().SetValue(order.Phone)
	row.AddCell().SetValue(order.Address)
	row.AddCell().SetValue(order.Total.StringFixed(2))
	row.AddCell().SetValue(order.CreatedAt.Format("2006-01-02 15:04:05"))

	if err := file.Save(s.path); err != nil {
		return fmt.Errorf("export save %s: %w", s.path, err)
	}
	logger.Info(ctx, "export", "export.order_written",
		slog.Int64("order_id", order.ID),
		slog.String("path", s.path),
	)
	return nil
}

// open loads the existing workbook or starts a fresh one with a header row.
func (s *XLSXSink) open() (*xlsx.File, *xlsx.Sheet, error) {
	if _, err := os.Stat(s.path); err == nil {
		file, err := xlsx.OpenFile(s.path)
		if err != nil {
			return nil, nil, fmt.Errorf("export open %s: %w", s.path, err)
		}
		for _, sheet := range file.Sheets {
			if sheet.Name == sheetName {
				return file, sheet, nil
			}
		}
		sheet, err := file.AddSheet(sheetName)
		if err != nil {
			return nil, nil, fmt.Errorf("export add sheet: %w", err)
		}
		writeHeader(sheet)
		return file, sheet, nil
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("export add sheet: %w", err)
	}
	writeHeader(sheet)
	return file, sheet, nil
}

func writeHeader(sheet *xlsx.Sheet) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetValue(h)
	}
}

func findRow(sheet *xlsx.Sheet, orderID int64) *xlsx.Row {
	key := strconv.FormatInt(orderID, 10)
	for i, row := range sheet.Rows {
		if i == 0 || len(row.Cells) == 0 {
			continue
		}
		if row.Cells[0].Value == key {
			return row
		}
	}
	return nil
}
