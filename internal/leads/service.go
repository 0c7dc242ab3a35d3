package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpattn/leadflow/internal/domain"
	"github.com/rpattn/leadflow/internal/middleware"
	"github.com/rpattn/leadflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements manual lead management and the dashboard aggregates.
type Service struct {
	repo   repository.LeadRepository
	logger *zap.Logger

	pageSize      int
	defaultSource string
	defaultSeller string
	now           func() time.Time
}

type Option func(*Service)

func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithDefaults sets the source and seller given to leads created without them.
func WithDefaults(source, seller string) Option {
	return func(s *Service) {
		if strings.TrimSpace(source) != "" {
			s.defaultSource = source
		}
		if strings.TrimSpace(seller) != "" {
			s.defaultSeller = seller
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo repository.LeadRepository, opts ...Option) *Service {
	service := &Service{
		repo:          repo,
		logger:        zap.NewNop(),
		pageSize:      500,
		defaultSource: "Nettside",
		defaultSeller: "Unknown",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Page is one slice of the lead list.
type Page struct {
	Leads []domain.Lead `json:"leads"`
	Total int           `json:"total"`
}

func (s *Service) List(ctx context.Context, limit, offset int) (Page, error) {
	leads, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return Page{}, err
	}
	return Page{Leads: leads, Total: total}, nil
}

// Get returns one lead, batching through the request's lead loader when present.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	if loader := middleware.LeadLoaderFromContext(ctx); loader != nil {
		return loader.Load(ctx, id)
	}
	return s.repo.GetByID(ctx, id)
}

// Create stores a manually entered lead. org_number must not exist yet.
func (s *Service) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	lead = s.prepare(lead)
	if err := lead.Validate(); err != nil {
		return domain.Lead{}, err
	}

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return domain.Lead{}, err
	}
	s.logger.Info("lead created", zap.String("lead_id", created.ID.String()), zap.String("org_number", created.OrgNumber))
	return created, nil
}

// Update replaces the editable fields of the lead with id.
func (s *Service) Update(ctx context.Context, id uuid.UUID, lead domain.Lead) (domain.Lead, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	lead = s.prepare(lead)
	lead.ID = existing.ID
	lead.CreatedAt = existing.CreatedAt
	if err := lead.Validate(); err != nil {
		return domain.Lead{}, err
	}

	updated, err := s.repo.Update(ctx, lead)
	if err != nil {
		return domain.Lead{}, err
	}
	s.logger.Info("lead updated",
		zap.String("lead_id", updated.ID.String()),
		zap.Strings("changed", domain.ChangedFields(existing, updated)),
	)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("lead deleted", zap.String("lead_id", id.String()))
	return nil
}

func (s *Service) Metrics(ctx context.Context) (domain.LeadMetrics, error) {
	leads, err := s.all(ctx)
	if err != nil {
		return domain.LeadMetrics{}, err
	}
	return domain.ComputeLeadMetrics(leads), nil
}

func (s *Service) Charts(ctx context.Context) (domain.LeadCharts, error) {
	leads, err := s.all(ctx)
	if err != nil {
		return domain.LeadCharts{}, err
	}
	return domain.ComputeLeadCharts(leads), nil
}

// all pages through the whole store.
func (s *Service) all(ctx context.Context) ([]domain.Lead, error) {
	var leads []domain.Lead
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, total, err := s.repo.List(ctx, s.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list leads: %w", err)
		}
		leads = append(leads, page...)
		if len(page) < s.pageSize || len(leads) >= total {
			break
		}
		offset += s.pageSize
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	return leads, nil
}

func (s *Service) prepare(lead domain.Lead) domain.Lead {
	lead.Date = strings.TrimSpace(lead.Date)
	lead.Company = strings.TrimSpace(lead.Company)
	lead.OrgNumber = strings.TrimSpace(lead.OrgNumber)
	lead.Status = strings.TrimSpace(lead.Status)
	lead.Source = strings.TrimSpace(lead.Source)
	lead.Seller = strings.TrimSpace(lead.Seller)
	if lead.Contact != nil {
		lead.Contact = domain.StringPtr(*lead.Contact)
	}
	if lead.Date == "" {
		lead.Date = s.now().Format(domain.DateLayout)
	}
	if lead.Source == "" {
		lead.Source = s.defaultSource
	}
	if lead.Seller == "" {
		lead.Seller = s.defaultSeller
	}
	return lead
}
