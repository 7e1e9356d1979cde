package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mgaillard/scandoc/internal/repository"
)

// Service is a tiny façade over the store that produces XLSX bytes for exports.
type Service struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewService(store *repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportXLSX returns an XLSX workbook (as bytes) with the most recent
// extraction rows, newest first. A limit of zero or less exports every row.
func (s *Service) ExportXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	recs, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"File",
		"Format",
		"Status",
		"Title",
		"Reference",
		"Description",
		"Price",
		"Quantity",
		"Notes",
		"Confidence",
		"Processed At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.FileName)
		write(2, r.Format)
		write(3, string(r.Status))
		write(4, r.Title)
		write(5, r.Reference)
		write(6, r.Description)
		write(7, r.Price)
		write(8, r.Quantity)
		write(9, r.Notes)
		write(10, r.Confidence)
		write(11, r.CreatedAt.UTC().Format(time.RFC3339))
		row++
	}

	out, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("xlsx export built",
		"rows", len(recs), "duration_ms", time.Since(start).Milliseconds())
	return out.Bytes(), nil
}
