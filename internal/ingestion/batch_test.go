package ingestion

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestProcessBatchAcmeAndBlankRow(t *testing.T) {
	processor := NewProcessor(testConfig())

	result := processor.ProcessBatch([]RawRow{
		RowFromMap(map[string]any{"Firmanavn": "Acme AS", "Org.nr": "999", "Status": "Ny", "Dato": "2024-01-05"}),
		RowFromMap(map[string]any{"Firmanavn": "", "Org.nr": "", "Status": "", "Dato": ""}),
	})

	if result.TotalRows != 2 || result.SkippedRows != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
	if len(result.ValidLeads) != 1 {
		t.Fatalf("expected one lead, got %d", len(result.ValidLeads))
	}

	lead := result.ValidLeads[0]
	if lead.Company != "Acme AS" || lead.OrgNumber != "999" || lead.Status != "Ny" || lead.Date != "2024-01-05" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if lead.Source != "Nettside" || lead.Seller != "Unknown" || lead.IsExistingCustomer {
		t.Fatalf("unexpected defaults: %+v", lead)
	}
}

func TestProcessBatchReportsMissingFieldsWithVisualRowNumber(t *testing.T) {
	processor := NewProcessor(testConfig().WithPolicy(PolicyCompanyAndOrgNumber))

	rows := []RawRow{
		NewRawRow(2, Cell{Header: "Firmanavn", Value: "Acme AS"}, Cell{Header: "Org.nr", Value: "999"}, Cell{Header: "Status", Value: "Ny"}),
		NewRawRow(3, Cell{Header: "Firmanavn", Value: "Beta AS"}, Cell{Header: "Org.nr", Value: ""}, Cell{Header: "Status", Value: ""}),
	}
	result := processor.ProcessBatch(rows)

	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	want := "Row 3: Missing required fields: Org.nr, Status"
	if result.Errors[0] != want {
		t.Fatalf("expected %q, got %q", want, result.Errors[0])
	}
	if len(result.ValidLeads) != 1 {
		t.Fatalf("invalid row must not produce a lead")
	}
}

func TestProcessBatchFallsBackToIndexRowNumbers(t *testing.T) {
	processor := NewProcessor(testConfig())

	result := processor.ProcessBatch([]RawRow{
		RowFromMap(map[string]any{"Firmanavn": "Acme AS", "Status": "Ny", "Dato": "2024-01-05"}),
		RowFromMap(map[string]any{"Notat": "ingen firma"}),
	})

	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Row 3: ") {
		t.Fatalf("expected error for row 3, got %v", result.Errors)
	}
}

func TestProcessBatchCountsAlwaysAddUp(t *testing.T) {
	processor := NewProcessor(testConfig())

	var rows []RawRow
	for i := 0; i < 40; i++ {
		switch i % 4 {
		case 0:
			rows = append(rows, RowFromMap(map[string]any{"Org.nr": fmt.Sprintf("%d", 900+i), "Status": "Ny", "Dato": "2024-02-01"}))
		case 1:
			rows = append(rows, RowFromMap(map[string]any{"Org.nr": "", "Status": "undefined"}))
		case 2:
			rows = append(rows, RowFromMap(map[string]any{"Firmanavn": "Uten status"}))
		default:
			rows = append(rows, RowFromMap(map[string]any{"Firmanavn": "Tall AS", "Status": "Ny", "Dato": "2024-02-01", "kWp": "abc"}))
		}
	}

	result := processor.ProcessBatch(rows)
	if got := len(result.ValidLeads) + len(result.Errors) + result.SkippedRows; got != result.TotalRows {
		t.Fatalf("counts do not add up: %d valid + %d errors + %d skipped != %d", len(result.ValidLeads), len(result.Errors), result.SkippedRows, result.TotalRows)
	}
	if len(result.ValidLeads) != 10 || len(result.Errors) != 20 || result.SkippedRows != 10 {
		t.Fatalf("unexpected distribution: %+v", result)
	}
}

func TestProcessBatchEmptyInput(t *testing.T) {
	result := NewProcessor(testConfig()).ProcessBatch(nil)
	if result.TotalRows != 0 || result.ValidLeads == nil || result.Errors == nil {
		t.Fatalf("expected an empty, non-nil result, got %+v", result)
	}
}

func TestFailedBatch(t *testing.T) {
	result := FailedBatch(errors.New("zip: not a valid zip file"))

	if result.TotalRows != 0 || result.SkippedRows != 0 || len(result.ValidLeads) != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Failed to process file: zip: not a valid zip file" {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}
