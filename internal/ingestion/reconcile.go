package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpattn/leadflow/internal/domain"
	"github.com/rpattn/leadflow/internal/repository"

	"go.uber.org/zap"
)

// Outcome tags what reconciliation did with one incoming lead.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
	OutcomeError    Outcome = "error"
)

// ReconcileResult is the per-lead outcome. Lead holds the stored record for
// inserts and updates; Original is always the incoming lead.
type ReconcileResult struct {
	Outcome       Outcome     `json:"outcome"`
	Lead          domain.Lead `json:"lead"`
	Original      domain.Lead `json:"original"`
	ChangedFields []string    `json:"changedFields,omitempty"`
	Err           error       `json:"-"`
	Cause         string      `json:"cause,omitempty"`
}

// ReconcileSummary tallies the outcomes of a reconciliation run.
type ReconcileSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Errors   int `json:"errors"`
}

// Message renders the summary shown to users after an import.
func (s ReconcileSummary) Message() string {
	message := fmt.Sprintf("%d new leads, %d updated leads", s.Inserted, s.Updated)
	if s.Errors > 0 {
		message += fmt.Sprintf(", %d errors", s.Errors)
	}
	return message
}

// Tally counts results by outcome.
func Tally(results []ReconcileResult) ReconcileSummary {
	var summary ReconcileSummary
	for _, result := range results {
		switch result.Outcome {
		case OutcomeInserted:
			summary.Inserted++
		case OutcomeUpdated:
			summary.Updated++
		default:
			summary.Errors++
		}
	}
	return summary
}

// Reconciler merges incoming leads into the store keyed by org number.
type Reconciler struct {
	repo   repository.LeadRepository
	logger *zap.Logger
}

// NewReconciler creates a reconciler; a nil logger disables logging.
func NewReconciler(repo repository.LeadRepository, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{repo: repo, logger: logger}
}

// Reconcile processes leads one at a time and returns one result per lead, in
// input order. Cancelling ctx does not stop a running batch.
func (r *Reconciler) Reconcile(ctx context.Context, leads []domain.Lead) []ReconcileResult {
	ctx = context.WithoutCancel(ctx)

	results := make([]ReconcileResult, 0, len(leads))
	for _, lead := range leads {
		result := r.reconcileOne(ctx, lead)
		if result.Outcome == OutcomeError {
			r.logger.Warn("lead reconciliation failed",
				zap.String("org_number", lead.OrgNumber),
				zap.Error(result.Err),
			)
		}
		results = append(results, result)
	}

	summary := Tally(results)
	r.logger.Info("reconciled leads",
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", summary.Errors),
	)
	return results
}

func (r *Reconciler) reconcileOne(ctx context.Context, incoming domain.Lead) ReconcileResult {
	existing, err := r.repo.GetByOrgNumber(ctx, incoming.OrgNumber)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		created, err := r.repo.Create(ctx, incoming)
		if err != nil {
			return failed(incoming, fmt.Errorf("insert lead %s: %w", incoming.OrgNumber, err))
		}
		return ReconcileResult{Outcome: OutcomeInserted, Lead: created, Original: incoming}
	case err != nil:
		return failed(incoming, fmt.Errorf("look up lead %s: %w", incoming.OrgNumber, err))
	}

	merged := existing.MergeFrom(incoming)
	changed := domain.ChangedFields(existing, merged)

	updated, err := r.repo.Update(ctx, merged)
	if err != nil {
		return failed(incoming, fmt.Errorf("update lead %s: %w", incoming.OrgNumber, err))
	}
	return ReconcileResult{
		Outcome:       OutcomeUpdated,
		Lead:          updated,
		Original:      incoming,
		ChangedFields: changed,
	}
}

func failed(incoming domain.Lead, err error) ReconcileResult {
	return ReconcileResult{
		Outcome:  OutcomeError,
		Original: incoming,
		Err:      err,
		Cause:    err.Error(),
	}
}
