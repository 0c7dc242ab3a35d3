package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rpattn/leadflow/internal/domain"
	"github.com/rpattn/leadflow/internal/repository"

	"github.com/google/uuid"
)

var (
	_ repository.LeadRepository        = (*stubLeadRepo)(nil)
	_ repository.ImportAuditRepository = (*stubAuditRepo)(nil)
)

func fixedClock() time.Time {
	return time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)
}

func testConfig() Config {
	return DefaultConfig().WithClock(fixedClock)
}

type stubLeadRepo struct {
	byOrg     map[string]domain.Lead
	lookupErr map[string]error
	writeErr  map[string]error
	calls     []string
}

func newStubLeadRepo() *stubLeadRepo {
	return &stubLeadRepo{
		byOrg:     map[string]domain.Lead{},
		lookupErr: map[string]error{},
		writeErr:  map[string]error{},
	}
}

func (s *stubLeadRepo) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	s.calls = append(s.calls, "create:"+lead.OrgNumber)
	if err := s.writeErr[lead.OrgNumber]; err != nil {
		return domain.Lead{}, err
	}
	if _, exists := s.byOrg[lead.OrgNumber]; exists {
		return domain.Lead{}, fmt.Errorf("failed to create lead: %w", repository.ErrDuplicateOrgNumber)
	}
	lead.ID = uuid.New()
	lead.CreatedAt = fixedClock()
	lead.UpdatedAt = lead.CreatedAt
	s.byOrg[lead.OrgNumber] = lead
	return lead, nil
}

func (s *stubLeadRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	for _, lead := range s.byOrg {
		if lead.ID == id {
			return lead, nil
		}
	}
	return domain.Lead{}, repository.ErrNotFound
}

func (s *stubLeadRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Lead, error) {
	var leads []domain.Lead
	for _, id := range ids {
		if lead, err := s.GetByID(ctx, id); err == nil {
			leads = append(leads, lead)
		}
	}
	return leads, nil
}

func (s *stubLeadRepo) GetByOrgNumber(ctx context.Context, orgNumber string) (domain.Lead, error) {
	s.calls = append(s.calls, "get:"+orgNumber)
	if err := ctx.Err(); err != nil {
		return domain.Lead{}, err
	}
	if err := s.lookupErr[orgNumber]; err != nil {
		return domain.Lead{}, err
	}
	lead, ok := s.byOrg[orgNumber]
	if !ok {
		return domain.Lead{}, fmt.Errorf("failed to get lead by org number: %w", repository.ErrNotFound)
	}
	return lead, nil
}

func (s *stubLeadRepo) List(ctx context.Context, limit int, offset int) ([]domain.Lead, int, error) {
	leads := make([]domain.Lead, 0, len(s.byOrg))
	for _, lead := range s.byOrg {
		leads = append(leads, lead)
	}
	return leads, len(leads), nil
}

func (s *stubLeadRepo) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	s.calls = append(s.calls, "update:"+lead.OrgNumber)
	if err := s.writeErr[lead.OrgNumber]; err != nil {
		return domain.Lead{}, err
	}
	if _, ok := s.byOrg[lead.OrgNumber]; !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.UpdatedAt = fixedClock().Add(time.Hour)
	s.byOrg[lead.OrgNumber] = lead
	return lead, nil
}

func (s *stubLeadRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.New("delete is not used by ingestion")
}

type stubAuditRepo struct {
	records []domain.ImportAuditRecord
	err     error
}

func (s *stubAuditRepo) Record(ctx context.Context, record domain.ImportAuditRecord) (domain.ImportAuditRecord, error) {
	if s.err != nil {
		return domain.ImportAuditRecord{}, s.err
	}
	s.records = append(s.records, record)
	return record, nil
}

func (s *stubAuditRepo) List(ctx context.Context, limit int, offset int) ([]domain.ImportAuditRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.ImportAuditRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}
