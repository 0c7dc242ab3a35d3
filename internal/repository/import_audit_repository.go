package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/leadflow/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type importAuditRepository struct {
	pool *pgxpool.Pool
}

// NewImportAuditRepository wires a repository backed by pgxpool.
func NewImportAuditRepository(pool *pgxpool.Pool) ImportAuditRepository {
	return &importAuditRepository{pool: pool}
}

func (r *importAuditRepository) Record(ctx context.Context, record domain.ImportAuditRecord) (domain.ImportAuditRecord, error) {
	if r.pool == nil {
		return domain.ImportAuditRecord{}, fmt.Errorf("import audit repository not initialized")
	}

	var errorMessage pgtype.Text
	if record.ErrorMessage != nil {
		errorMessage = pgtype.Text{String: *record.ErrorMessage, Valid: true}
	}

	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO import_history (id, file_name, total_rows, valid_rows, error_rows, skipped_rows, status, error_message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		record.ID,
		record.FileName,
		record.TotalRows,
		record.ValidRows,
		record.ErrorRows,
		record.SkippedRows,
		string(record.Status),
		errorMessage,
		record.CreatedAt,
	).Scan(&record.CreatedAt)
	if err != nil {
		return domain.ImportAuditRecord{}, fmt.Errorf("failed to record import history: %w", err)
	}

	return record, nil
}

func (r *importAuditRepository) List(ctx context.Context, limit int, offset int) ([]domain.ImportAuditRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("import audit repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, file_name, total_rows, valid_rows, error_rows, skipped_rows, status, error_message, created_at
		 FROM import_history
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import history: %w", err)
	}
	defer rows.Close()

	records := []domain.ImportAuditRecord{}
	for rows.Next() {
		var (
			record       domain.ImportAuditRecord
			status       string
			errorMessage pgtype.Text
			createdAt    pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&record.ID,
			&record.FileName,
			&record.TotalRows,
			&record.ValidRows,
			&record.ErrorRows,
			&record.SkippedRows,
			&status,
			&errorMessage,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan import history: %w", scanErr)
		}

		record.Status = domain.ImportStatus(status)
		if errorMessage.Valid {
			message := errorMessage.String
			record.ErrorMessage = &message
		}
		if createdAt.Valid {
			record.CreatedAt = createdAt.Time
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate import history: %w", rowsErr)
	}

	return records, nil
}
