package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportStatus is the terminal state of an ingestion run.
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// ImportAuditRecord summarises one ingestion run for the import history.
type ImportAuditRecord struct {
	ID           uuid.UUID    `json:"id"`
	FileName     string       `json:"fileName"`
	TotalRows    int          `json:"totalRows"`
	ValidRows    int          `json:"validRows"`
	ErrorRows    int          `json:"errorRows"`
	SkippedRows  int          `json:"skippedRows"`
	Status       ImportStatus `json:"status"`
	ErrorMessage *string      `json:"errorMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// NewImportAuditRecord creates a record with a fresh id and creation time.
func NewImportAuditRecord(fileName string, status ImportStatus) ImportAuditRecord {
	return ImportAuditRecord{
		ID:        uuid.New(),
		FileName:  fileName,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

// WithError returns a failed copy of the record carrying message.
func (r ImportAuditRecord) WithError(message string) ImportAuditRecord {
	out := r
	out.Status = ImportStatusFailed
	out.ErrorMessage = &message
	return out
}
