package matching

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CorpusStore is the persistence surface the reevaluator needs. The file
// store implements it; tests substitute an in-memory one.
type CorpusStore interface {
	Companies() ([]Company, error)
	Bids() ([]Bid, error)
	ClearMatches() error
	SaveMatches(matches []Match) error
}

// Reevaluator re-runs the full pipeline over the persisted corpus, for
// example after a company profile changed or thresholds were tuned.
type Reevaluator struct {
	pipeline *Pipeline
	store    CorpusStore
	logger   *zap.Logger
}

func NewReevaluator(pipeline *Pipeline, store CorpusStore, log *zap.Logger) *Reevaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reevaluator{pipeline: pipeline, store: store, logger: log}
}

// Reevaluate loads every stored bid and company, evaluates them afresh and
// persists the resulting matches. With clearExisting set, previous matches
// are wiped first; the wipe and the re-run are not atomic, so a failure
// after clearing leaves the store empty rather than stale.
func (r *Reevaluator) Reevaluate(ctx context.Context, clearExisting bool) (*RunResult, error) {
	companies, err := r.store.Companies()
	if err != nil {
		return nil, fmt.Errorf("loading companies: %w", err)
	}
	bids, err := r.store.Bids()
	if err != nil {
		return nil, fmt.Errorf("loading bids: %w", err)
	}

	r.logger.Info("reevaluating stored corpus",
		zap.Int("bids", len(bids)),
		zap.Int("companies", len(companies)),
		zap.Bool("clear_existing", clearExisting),
	)

	if clearExisting {
		if err := r.store.ClearMatches(); err != nil {
			return nil, fmt.Errorf("clearing previous matches: %w", err)
		}
	}

	result, err := r.pipeline.Run(ctx, bids, companies)
	if err != nil {
		return nil, err
	}

	if len(result.Matches) > 0 {
		if err := r.store.SaveMatches(result.Matches); err != nil {
			return nil, fmt.Errorf("saving matches: %w", err)
		}
	}

	return result, nil
}
