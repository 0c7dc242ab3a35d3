package repository

import (
	"context"
	"errors"

	"github.com/rpattn/leadflow/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lookup matches no stored lead.
	ErrNotFound = errors.New("lead not found")
	// ErrDuplicateOrgNumber is returned when a write would violate org_number uniqueness.
	ErrDuplicateOrgNumber = errors.New("org_number already exists")
)

// LeadRepository defines the interface for lead persistence
type LeadRepository interface {
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Lead, error)
	GetByOrgNumber(ctx context.Context, orgNumber string) (domain.Lead, error)
	List(ctx context.Context, limit int, offset int) ([]domain.Lead, int, error)
	Update(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImportAuditRepository stores one summary per ingestion run.
type ImportAuditRepository interface {
	Record(ctx context.Context, record domain.ImportAuditRecord) (domain.ImportAuditRecord, error)
	List(ctx context.Context, limit int, offset int) ([]domain.ImportAuditRecord, error)
}
