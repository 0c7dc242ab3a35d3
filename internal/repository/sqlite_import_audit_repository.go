package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpattn/leadflow/internal/domain"

	"github.com/google/uuid"
)

type sqliteImportAuditRepository struct {
	db *sql.DB
}

// NewSQLiteImportAuditRepository stores import history in the embedded database.
func NewSQLiteImportAuditRepository(db *sql.DB) ImportAuditRepository {
	return &sqliteImportAuditRepository{db: db}
}

func (r *sqliteImportAuditRepository) Record(ctx context.Context, record domain.ImportAuditRecord) (domain.ImportAuditRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	var errorMessage sql.NullString
	if record.ErrorMessage != nil {
		errorMessage = sql.NullString{String: *record.ErrorMessage, Valid: true}
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO import_history (id, file_name, total_rows, valid_rows, error_rows, skipped_rows, status, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID.String(),
		record.FileName,
		record.TotalRows,
		record.ValidRows,
		record.ErrorRows,
		record.SkippedRows,
		string(record.Status),
		errorMessage,
		formatTimestamp(record.CreatedAt),
	)
	if err != nil {
		return domain.ImportAuditRecord{}, fmt.Errorf("failed to record import history: %w", err)
	}
	return record, nil
}

func (r *sqliteImportAuditRepository) List(ctx context.Context, limit int, offset int) ([]domain.ImportAuditRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, file_name, total_rows, valid_rows, error_rows, skipped_rows, status, error_message, created_at
		 FROM import_history
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []domain.ImportAuditRecord{}
	for rows.Next() {
		var (
			record       domain.ImportAuditRecord
			id           string
			status       string
			errorMessage sql.NullString
			createdAt    string
		)
		if err := rows.Scan(
			&id,
			&record.FileName,
			&record.TotalRows,
			&record.ValidRows,
			&record.ErrorRows,
			&record.SkippedRows,
			&status,
			&errorMessage,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import history: %w", err)
		}
		if record.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid import history id %q: %w", id, err)
		}
		record.Status = domain.ImportStatus(status)
		if errorMessage.Valid {
			message := errorMessage.String
			record.ErrorMessage = &message
		}
		record.CreatedAt = parseTimestamp(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import history: %w", err)
	}
	return records, nil
}
