package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpattn/leadflow/internal/domain"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timestampLayout keeps a fixed width so text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteLeadColumns = `id, date, company, org_number, status, source, seller, contact,
	is_existing_customer, kwp, ppa_price, created_at, updated_at`

// sqliteLeadRepository implements LeadRepository on an embedded SQLite database.
type sqliteLeadRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteLeadRepository wraps an opened SQLite handle; see db.OpenSQLite for the schema.
func NewSQLiteLeadRepository(db *sql.DB) LeadRepository {
	return &sqliteLeadRepository{db: db, now: time.Now}
}

func (r *sqliteLeadRepository) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	now := r.now().UTC()
	lead.ID = uuid.New()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO leads (`+sqliteLeadColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID.String(),
		lead.Date,
		lead.Company,
		lead.OrgNumber,
		lead.Status,
		lead.Source,
		lead.Seller,
		nullString(lead.Contact),
		lead.IsExistingCustomer,
		nullFloat(lead.Kwp),
		nullFloat(lead.PpaPrice),
		formatTimestamp(lead.CreatedAt),
		formatTimestamp(lead.UpdatedAt),
	)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to create lead: %w", translateSQLiteError(err))
	}
	return lead, nil
}

func (r *sqliteLeadRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteLeadColumns+` FROM leads WHERE id = ?`, id.String())
	lead, err := scanSQLiteLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to get lead: %w", translateSQLiteError(err))
	}
	return lead, nil
}

func (r *sqliteLeadRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Lead, error) {
	if len(ids) == 0 {
		return []domain.Lead{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id.String()
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+sqliteLeadColumns+` FROM leads WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get leads by IDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectSQLiteLeads(rows)
}

func (r *sqliteLeadRepository) GetByOrgNumber(ctx context.Context, orgNumber string) (domain.Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteLeadColumns+` FROM leads WHERE org_number = ?`, orgNumber)
	lead, err := scanSQLiteLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to get lead by org number: %w", translateSQLiteError(err))
	}
	return lead, nil
}

func (r *sqliteLeadRepository) List(ctx context.Context, limit int, offset int) ([]domain.Lead, int, error) {
	if limit <= 0 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM leads`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+sqliteLeadColumns+` FROM leads ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	leads, err := collectSQLiteLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *sqliteLeadRepository) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	lead.UpdatedAt = r.now().UTC()

	result, err := r.db.ExecContext(
		ctx,
		`UPDATE leads
		 SET date = ?, company = ?, org_number = ?, status = ?, source = ?, seller = ?,
		     contact = ?, is_existing_customer = ?, kwp = ?, ppa_price = ?, updated_at = ?
		 WHERE id = ?`,
		lead.Date,
		lead.Company,
		lead.OrgNumber,
		lead.Status,
		lead.Source,
		lead.Seller,
		nullString(lead.Contact),
		lead.IsExistingCustomer,
		nullFloat(lead.Kwp),
		nullFloat(lead.PpaPrice),
		formatTimestamp(lead.UpdatedAt),
		lead.ID.String(),
	)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to update lead: %w", translateSQLiteError(err))
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.Lead{}, fmt.Errorf("failed to update lead: %w", ErrNotFound)
	}

	return r.GetByID(ctx, lead.ID)
}

func (r *sqliteLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("failed to delete lead: %w", ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLead(row rowScanner) (domain.Lead, error) {
	var (
		lead      domain.Lead
		id        string
		contact   sql.NullString
		kwp       sql.NullFloat64
		ppaPrice  sql.NullFloat64
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&id,
		&lead.Date,
		&lead.Company,
		&lead.OrgNumber,
		&lead.Status,
		&lead.Source,
		&lead.Seller,
		&contact,
		&lead.IsExistingCustomer,
		&kwp,
		&ppaPrice,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Lead{}, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("invalid lead id %q: %w", id, err)
	}
	lead.ID = parsedID
	if contact.Valid {
		value := contact.String
		lead.Contact = &value
	}
	if kwp.Valid {
		lead.Kwp = domain.FloatPtr(kwp.Float64)
	}
	if ppaPrice.Valid {
		lead.PpaPrice = domain.FloatPtr(ppaPrice.Float64)
	}
	lead.CreatedAt = parseTimestamp(createdAt)
	lead.UpdatedAt = parseTimestamp(updatedAt)
	return lead, nil
}

func collectSQLiteLeads(rows *sql.Rows) ([]domain.Lead, error) {
	leads := []domain.Lead{}
	for rows.Next() {
		lead, err := scanSQLiteLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func translateSQLiteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%w: %s", ErrDuplicateOrgNumber, sqliteErr.Error())
	}
	return err
}
