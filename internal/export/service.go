package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/expiry"
)

// ContentType is the media type of InventoryXLSX output.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service produces XLSX bytes for kitchen exports.
type Service struct {
	logger *slog.Logger
	Now    func() time.Time
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// InventoryXLSX renders one sheet with a row per item.
func (s *Service) InventoryXLSX(kitchen *entity.Kitchen, items []*entity.Item) ([]byte, error) {
	start := time.Now()
	now := s.now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Inventory"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Name",
		"Brand",
		"Quantity",
		"Unit",
		"Category",
		"Location",
		"Purchase Date",
		"Expiry Date",
		"Days Left",
		"Status",
		"Notes",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}

	for i, it := range items {
		daysLeft := ""
		if it.ExpiryDate != nil {
			daysLeft = fmt.Sprint(expiry.DaysUntil(*it.ExpiryDate, now))
		}
		row := []any{
			it.Name,
			it.Brand,
			it.Quantity,
			it.Unit,
			it.CategoryName,
			it.Location,
			formatDate(it.PurchaseDate),
			formatDate(it.ExpiryDate),
			daysLeft,
			it.Status,
			truncate(it.Notes, 140),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // name
	_ = f.SetColWidth(sheet, "B", "B", 18)
	_ = f.SetColWidth(sheet, "C", "D", 10)
	_ = f.SetColWidth(sheet, "E", "F", 18)
	_ = f.SetColWidth(sheet, "G", "H", 14) // dates
	_ = f.SetColWidth(sheet, "K", "K", 48) // notes
	if len(items) > 0 {
		_ = f.AutoFilter(sheet, fmt.Sprintf("A1:K%d", len(items)+1), nil)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"kitchen_id", kitchen.ID.String(),
		"rows", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// FilenameFor names a download of kitchen made now.
func (s *Service) FilenameFor(kitchen *entity.Kitchen) string {
	return Filename(kitchen, s.now())
}

// Filename is the download name for a kitchen export.
func Filename(kitchen *entity.Kitchen, now time.Time) string {
	return fmt.Sprintf("inventory-%s-%s.xlsx", kitchen.ID.String()[:8], now.UTC().Format("20060102"))
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
