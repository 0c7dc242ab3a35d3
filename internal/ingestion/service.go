package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rpattn/leadflow/internal/domain"
	"github.com/rpattn/leadflow/internal/repository"

	"go.uber.org/zap"
)

// Service ingests lead spreadsheets into the lead store.
type Service struct {
	processor  *Processor
	reconciler *Reconciler
	auditRepo  repository.ImportAuditRepository
	logger     *zap.Logger
}

// NewService creates a new ingestion service.
func NewService(
	cfg Config,
	leadRepo repository.LeadRepository,
	auditRepo repository.ImportAuditRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		processor:  NewProcessor(cfg),
		reconciler: NewReconciler(leadRepo, logger),
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// Request describes the ingestion input.
type Request struct {
	FileName string
	Data     io.Reader
}

// Report is everything an import run produced.
type Report struct {
	Batch   BatchResult              `json:"batch"`
	Results []ReconcileResult        `json:"results"`
	Summary ReconcileSummary         `json:"summary"`
	Notices []Notice                 `json:"notices"`
	Audit   domain.ImportAuditRecord `json:"audit"`
}

// Preview decodes and classifies the file without touching the store.
func (s *Service) Preview(ctx context.Context, req Request) (BatchResult, error) {
	if err := req.validate(); err != nil {
		return BatchResult{}, err
	}

	batch, _ := s.process(req)
	return batch, nil
}

// Import decodes the file, reconciles its valid leads and records the run in the import history.
func (s *Service) Import(ctx context.Context, req Request) (Report, error) {
	if err := req.validate(); err != nil {
		return Report{}, err
	}

	batch, decodeErr := s.process(req)

	results := []ReconcileResult{}
	if len(batch.ValidLeads) > 0 {
		results = s.reconciler.Reconcile(ctx, batch.ValidLeads)
	}

	report := Report{
		Batch:   batch,
		Results: results,
		Summary: Tally(results),
		Notices: BuildNotices(batch, results),
	}

	audit := domain.NewImportAuditRecord(req.FileName, domain.ImportStatusCompleted)
	audit.TotalRows = batch.TotalRows
	audit.ValidRows = batch.ValidRows()
	audit.ErrorRows = batch.ErrorRows()
	audit.SkippedRows = batch.SkippedRows
	if decodeErr != nil {
		audit = audit.WithError(batch.Errors[0])
	}
	report.Audit = s.recordAudit(ctx, audit)

	return report, nil
}

// History lists past import runs, newest first.
func (s *Service) History(ctx context.Context, limit, offset int) ([]domain.ImportAuditRecord, error) {
	if s.auditRepo == nil {
		return []domain.ImportAuditRecord{}, nil
	}
	records, err := s.auditRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list import history: %w", err)
	}
	return records, nil
}

// process reads and decodes the upload; a decode failure yields FailedBatch and the cause.
func (s *Service) process(req Request) (BatchResult, error) {
	logger := s.logger.With(zap.String("file_name", req.FileName))

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		err = fmt.Errorf("failed to read upload: %w", err)
		logger.Warn("upload could not be read", zap.Error(err))
		return FailedBatch(err), err
	}

	rows, err := Decode(req.FileName, payload)
	if err != nil {
		logger.Warn("file could not be decoded", zap.Error(err))
		return FailedBatch(err), err
	}

	batch := s.processor.ProcessBatch(rows)
	logger.Info("processed lead file",
		zap.Int("total_rows", batch.TotalRows),
		zap.Int("valid_rows", batch.ValidRows()),
		zap.Int("error_rows", batch.ErrorRows()),
		zap.Int("skipped_rows", batch.SkippedRows),
	)
	return batch, nil
}

// recordAudit stores the run summary. History is best effort and never fails the import.
func (s *Service) recordAudit(ctx context.Context, record domain.ImportAuditRecord) domain.ImportAuditRecord {
	if s.auditRepo == nil {
		return record
	}
	stored, err := s.auditRepo.Record(context.WithoutCancel(ctx), record)
	if err != nil {
		s.logger.Error("failed to record import history",
			zap.String("file_name", record.FileName),
			zap.Error(err),
		)
		return record
	}
	return stored
}

func (r Request) validate() error {
	if strings.TrimSpace(r.FileName) == "" {
		return errors.New("file name is required")
	}
	if r.Data == nil {
		return errors.New("data reader is required")
	}
	return nil
}
