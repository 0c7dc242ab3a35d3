package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rpattn/leadflow/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const leadColumns = `id, date::text, company, org_number, status, source, seller, contact,
	is_existing_customer, kwp, ppa_price, created_at, updated_at`

// leadRepository implements LeadRepository on Postgres
type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository wires a repository backed by pgxpool.
func NewLeadRepository(pool *pgxpool.Pool) LeadRepository {
	return &leadRepository{pool: pool}
}

// Create inserts a lead; the database assigns id and timestamps.
func (r *leadRepository) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO leads (date, company, org_number, status, source, seller, contact, is_existing_customer, kwp, ppa_price)
		 VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+leadColumns,
		lead.Date,
		lead.Company,
		lead.OrgNumber,
		lead.Status,
		lead.Source,
		lead.Seller,
		textParam(lead.Contact),
		lead.IsExistingCustomer,
		floatParam(lead.Kwp),
		floatParam(lead.PpaPrice),
	)

	created, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to create lead: %w", translateError(err))
	}
	return created, nil
}

// GetByID retrieves a lead by ID
func (r *leadRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to get lead: %w", translateError(err))
	}
	return lead, nil
}

// GetByIDs retrieves multiple leads; missing ids are simply absent from the result.
func (r *leadRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Lead, error) {
	if len(ids) == 0 {
		return []domain.Lead{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get leads by IDs: %w", err)
	}
	defer rows.Close()

	leads := []domain.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
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

// GetByOrgNumber retrieves the lead holding the business key.
func (r *leadRepository) GetByOrgNumber(ctx context.Context, orgNumber string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE org_number = $1`, orgNumber)
	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to get lead by org number: %w", translateError(err))
	}
	return lead, nil
}

// List returns leads newest first together with the total count.
func (r *leadRepository) List(ctx context.Context, limit int, offset int) ([]domain.Lead, int, error) {
	if limit <= 0 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+leadColumns+`, count(*) OVER() AS total_count
		 FROM leads
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := []domain.Lead{}
	total := 0
	for rows.Next() {
		var (
			rec        leadRecord
			totalCount int64
		)
		if err := rows.Scan(append(rec.dest(), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, rec.toDomain())
		total = int(totalCount)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leads: %w", err)
	}

	return leads, total, nil
}

// Update overwrites every editable column of the lead identified by lead.ID.
func (r *leadRepository) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	row := r.pool.QueryRow(
		ctx,
		`UPDATE leads
		 SET date = $2::date, company = $3, org_number = $4, status = $5, source = $6, seller = $7,
		     contact = $8, is_existing_customer = $9, kwp = $10, ppa_price = $11, updated_at = now()
		 WHERE id = $1
		 RETURNING `+leadColumns,
		lead.ID,
		lead.Date,
		lead.Company,
		lead.OrgNumber,
		lead.Status,
		lead.Source,
		lead.Seller,
		textParam(lead.Contact),
		lead.IsExistingCustomer,
		floatParam(lead.Kwp),
		floatParam(lead.PpaPrice),
	)

	updated, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to update lead: %w", translateError(err))
	}
	return updated, nil
}

// Delete deletes a lead
func (r *leadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete lead: %w", ErrNotFound)
	}
	return nil
}

type leadRecord struct {
	id                 uuid.UUID
	date               string
	company            string
	orgNumber          string
	status             string
	source             string
	seller             string
	contact            pgtype.Text
	isExistingCustomer bool
	kwp                pgtype.Float8
	ppaPrice           pgtype.Float8
	createdAt          time.Time
	updatedAt          time.Time
}

func (rec *leadRecord) dest() []any {
	return []any{
		&rec.id, &rec.date, &rec.company, &rec.orgNumber, &rec.status, &rec.source, &rec.seller,
		&rec.contact, &rec.isExistingCustomer, &rec.kwp, &rec.ppaPrice, &rec.createdAt, &rec.updatedAt,
	}
}

func (rec leadRecord) toDomain() domain.Lead {
	lead := domain.Lead{
		ID:                 rec.id,
		Date:               rec.date,
		Company:            rec.company,
		OrgNumber:          rec.orgNumber,
		Status:             rec.status,
		Source:             rec.source,
		Seller:             rec.seller,
		IsExistingCustomer: rec.isExistingCustomer,
		CreatedAt:          rec.createdAt,
		UpdatedAt:          rec.updatedAt,
	}
	if rec.contact.Valid {
		contact := rec.contact.String
		lead.Contact = &contact
	}
	if rec.kwp.Valid {
		lead.Kwp = domain.FloatPtr(rec.kwp.Float64)
	}
	if rec.ppaPrice.Valid {
		lead.PpaPrice = domain.FloatPtr(rec.ppaPrice.Float64)
	}
	return lead
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var rec leadRecord
	if err := row.Scan(rec.dest()...); err != nil {
		return domain.Lead{}, err
	}
	return rec.toDomain(), nil
}

func textParam(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func floatParam(f *float64) pgtype.Float8 {
	if f == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

func translateError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateOrgNumber, pgErr.Detail)
	}
	return err
}
