package leadloader

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/leadflow/internal/domain"
	"github.com/rpattn/leadflow/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

// LeadLoader batches lead lookups by id made while serving one request.
type LeadLoader struct {
	Loader *dataloader.Loader
}

func NewLeadLoader(repo repository.LeadRepository) *LeadLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		ids := make([]uuid.UUID, 0, len(keys))
		positions := make(map[uuid.UUID][]int, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				results[i] = &dataloader.Result{Error: fmt.Errorf("invalid UUID: %w", err)}
				continue
			}
			if _, seen := positions[id]; !seen {
				ids = append(ids, id)
			}
			positions[id] = append(positions[id], i)
		}

		leads, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			for _, idxs := range positions {
				for _, i := range idxs {
					results[i] = &dataloader.Result{Error: err}
				}
			}
			return results
		}

		found := make(map[uuid.UUID]domain.Lead, len(leads))
		for _, lead := range leads {
			found[lead.ID] = lead
		}

		// Results must line up with keys.
		for id, idxs := range positions {
			for _, i := range idxs {
				if lead, ok := found[id]; ok {
					results[i] = &dataloader.Result{Data: lead}
				} else {
					results[i] = &dataloader.Result{Error: fmt.Errorf("lead %s: %w", id, repository.ErrNotFound)}
				}
			}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &LeadLoader{Loader: loader}
}

// Load waits for the batch holding id and returns its lead.
func (l *LeadLoader) Load(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	data, err := l.Loader.Load(ctx, dataloader.StringKey(id.String()))()
	if err != nil {
		return domain.Lead{}, err
	}
	lead, ok := data.(domain.Lead)
	if !ok {
		return domain.Lead{}, fmt.Errorf("unexpected loader value %T", data)
	}
	return lead, nil
}
