package ingestion

import (
	"github.com/rpattn/leadflow/internal/domain"
)

// BatchResult aggregates one pass over the rows of a file.
// len(ValidLeads)+len(Errors)+SkippedRows always equals TotalRows.
type BatchResult struct {
	ValidLeads  []domain.Lead `json:"validLeads"`
	Errors      []string      `json:"errors"`
	TotalRows   int           `json:"totalRows"`
	SkippedRows int           `json:"skippedRows"`
}

// FailedBatch is the result reported when the file could not be decoded at all.
func FailedBatch(err error) BatchResult {
	return BatchResult{
		ValidLeads: []domain.Lead{},
		Errors:     []string{"Failed to process file: " + err.Error()},
	}
}

// Processor drives resolution, classification and normalization over a batch.
type Processor struct {
	resolver   *Resolver
	classifier *Classifier
	normalizer *Normalizer
}

// NewProcessor wires the row pipeline for cfg.
func NewProcessor(cfg Config) *Processor {
	resolver := NewResolver(cfg)
	return &Processor{
		resolver:   resolver,
		classifier: NewClassifier(cfg, resolver),
		normalizer: NewNormalizer(cfg, resolver),
	}
}

// Classify exposes the row classifier.
func (p *Processor) Classify(row RawRow) Classification {
	return p.classifier.Classify(row)
}

// Normalize exposes the row normalizer.
func (p *Processor) Normalize(row RawRow) domain.Lead {
	return p.normalizer.Normalize(row)
}

// ProcessBatch classifies every row in order. A bad row never stops the batch.
func (p *Processor) ProcessBatch(rows []RawRow) BatchResult {
	result := BatchResult{
		ValidLeads: []domain.Lead{},
		Errors:     []string{},
		TotalRows:  len(rows),
	}

	for idx, row := range rows {
		classification := p.classifier.Classify(row)
		switch classification.Kind {
		case RowEmpty:
			result.SkippedRows++
		case RowInvalid:
			result.Errors = append(result.Errors, classification.Message(rowNumber(row, idx)))
		default:
			result.ValidLeads = append(result.ValidLeads, p.normalizer.Normalize(row))
		}
	}

	return result
}

// ValidRows is the number of rows that produced a lead.
func (r BatchResult) ValidRows() int {
	return len(r.ValidLeads)
}

// ErrorRows is the number of rows rejected by classification.
func (r BatchResult) ErrorRows() int {
	return len(r.Errors)
}

func rowNumber(row RawRow, idx int) int {
	if row.Line > 0 {
		return row.Line
	}
	// data rows start below a single header row
	return idx + 2
}
