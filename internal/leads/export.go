package leads

import (
	"context"
	"fmt"
	"io"

	"github.com/rpattn/leadflow/internal/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Leads"

// exportHeaders use the first alias of every import field so exported workbooks re-import cleanly.
var exportHeaders = []any{
	"Dato",
	"Firmanavn",
	"Org.nr",
	"Status",
	"Kanal",
	"Ansvarlig selger",
	"Kontaktperson",
	"Eksisterende kunde",
	"kWp",
	"PPA pris",
}

// ExportFileName names the download for the given day.
func (s *Service) ExportFileName() string {
	return fmt.Sprintf("leads-%s.xlsx", s.now().Format(domain.DateLayout))
}

// ExportWorkbook streams every lead into an xlsx workbook written to w.
func (s *Service) ExportWorkbook(ctx context.Context, w io.Writer) error {
	leads, err := s.all(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	if err := sw.SetRow("A1", exportHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, lead := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, exportRow(lead)); err != nil {
			return fmt.Errorf("write lead row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush workbook: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("exported leads", zap.Int("rows", len(leads)))
	return nil
}

func exportRow(lead domain.Lead) []any {
	existing := "nei"
	if lead.IsExistingCustomer {
		existing = "ja"
	}
	row := []any{
		lead.Date,
		lead.Company,
		lead.OrgNumber,
		lead.Status,
		lead.Source,
		lead.Seller,
		"",
		existing,
		nil,
		nil,
	}
	if lead.Contact != nil {
		row[6] = *lead.Contact
	}
	if lead.Kwp != nil {
		row[8] = *lead.Kwp
	}
	if lead.PpaPrice != nil {
		row[9] = *lead.PpaPrice
	}
	return row
}
