package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Pedro004-dot/alicit/internal/logger"
	"github.com/Pedro004-dot/alicit/internal/similarity"
	"github.com/Pedro004-dot/alicit/internal/utils"
	"github.com/Pedro004-dot/alicit/internal/vectorizer"
)

// ErrNotVectorized marks a bid whose object text produced no usable
// embedding. The bid is excluded from scoring for the run and counted in
// stats; it never aborts the run.
var ErrNotVectorized = errors.New("bid object could not be vectorized")

const defaultBidDelay = 200 * time.Millisecond

// Pipeline evaluates bids against company profiles in two phases: an
// object-level filter and, when the bid has line items, an item-level
// refinement. Evaluation is a sequential per-bid, per-company loop with no
// shared mutable state; companies are scored once, in load order, so
// justifications are reproducible across runs given identical inputs.
type Pipeline struct {
	vec        vectorizer.Vectorizer
	thresholds Thresholds
	logger     *zap.Logger

	// bidDelay throttles bid-to-bid processing to avoid overwhelming
	// rate-limited embedding APIs.
	bidDelay time.Duration
}

// NewPipeline builds a pipeline. Zero thresholds fall back to the defaults
// (0.65 phase 1, 0.70 phase 2).
func NewPipeline(vec vectorizer.Vectorizer, thresholds Thresholds, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		vec:        vec,
		thresholds: thresholds.withDefaults(),
		logger:     log,
		bidDelay:   defaultBidDelay,
	}
}

// Thresholds reports the effective cutoffs.
func (p *Pipeline) Thresholds() Thresholds {
	return p.thresholds
}

// EmbedCompanies vectorizes all company descriptions in a single batch at
// the start of a run. The result preserves company order; companies whose
// slot came back empty carry a nil embedding and are skipped when scoring.
// A failed batch degrades to all-nil slots; only context cancellation is
// returned as an error.
func (p *Pipeline) EmbedCompanies(ctx context.Context, companies []Company) ([]CompanyEmbedding, error) {
	texts := make([]string, len(companies))
	for i, company := range companies {
		texts[i] = company.Description
	}

	vectors, err := p.vec.BatchVectorize(ctx, texts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.logger.Warn("company profile vectorization failed, all companies skipped this run",
			zap.Int("companies", len(companies)),
			zap.Error(err),
		)
		vectors = make([][]float32, len(companies))
	}

	embedded := make([]CompanyEmbedding, len(companies))
	for i, company := range companies {
		embedded[i] = CompanyEmbedding{Company: company, Embedding: vectors[i]}
		if len(vectors[i]) == 0 {
			p.logger.Warn("company profile could not be vectorized, it will be skipped this run",
				zap.String("company_id", company.ID),
				zap.String("company", company.Name),
			)
		}
	}

	return embedded, nil
}

// EvaluateBid runs the full two-phase evaluation of one bid against the
// prepared companies and returns the emitted matches. It returns
// ErrNotVectorized when the bid object yields no embedding; any other
// error is a context cancellation. An empty match list is a valid terminal
// outcome, not a failure.
func (p *Pipeline) EvaluateBid(ctx context.Context, bid Bid, companies []CompanyEmbedding) ([]Match, error) {
	bidEmbedding, err := p.vec.Vectorize(ctx, bid.Description)
	if err != nil && !errors.Is(err, vectorizer.ErrEmptyInput) && !errors.Is(err, vectorizer.ErrVectorization) {
		return nil, err
	}
	if len(bidEmbedding) == 0 {
		p.logger.Warn("bid object could not be vectorized",
			zap.String("bid_id", bid.ID),
			zap.String("object", logger.TruncateForLog(bid.Description, 100)),
		)
		return nil, ErrNotVectorized
	}

	candidates, err := p.phase1(ctx, bid, bidEmbedding, companies)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("phase 1 evaluated",
		zap.String("bid_id", bid.ID),
		zap.Int("candidates", len(candidates)),
		zap.Float64("threshold", p.thresholds.Phase1),
	)

	if len(candidates) == 0 {
		return nil, nil
	}

	if len(bid.Items) == 0 {
		matches := make([]Match, 0, len(candidates))
		for _, c := range candidates {
			matches = append(matches, Match{
				BidID:         bid.ID,
				CompanyID:     c.company.ID,
				Score:         c.score,
				Type:          MatchObjectOnly,
				Justification: c.justification,
			})
		}
		return matches, nil
	}

	return p.phase2(ctx, bid, candidates)
}

// candidate is a company that survived the phase-1 filter, carrying its
// phase-1 score and justification into phase 2.
type candidate struct {
	company       Company
	embedding     []float32
	score         float64
	justification string
}

func (p *Pipeline) phase1(ctx context.Context, bid Bid, bidEmbedding []float32, companies []CompanyEmbedding) ([]candidate, error) {
	var candidates []candidate

	for _, ce := range companies {
		// Abortable between companies without corrupting other bids.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(ce.Embedding) == 0 {
			continue
		}

		score, justification := similarity.Score(bidEmbedding, ce.Embedding, bid.Description, ce.Company.Description)

		p.logger.Debug("phase 1 score",
			zap.String("bid_id", bid.ID),
			zap.String("company_id", ce.Company.ID),
			zap.Float64("score", score),
			zap.String("justification", justification),
		)

		if score >= p.thresholds.Phase1 {
			candidates = append(candidates, candidate{
				company:       ce.Company,
				embedding:     ce.Embedding,
				score:         score,
				justification: justification,
			})
		}
	}

	return candidates, nil
}

func (p *Pipeline) phase2(ctx context.Context, bid Bid, candidates []candidate) ([]Match, error) {
	descriptions := make([]string, len(bid.Items))
	for i, item := range bid.Items {
		descriptions[i] = item.Description
	}

	// Items are vectorized once per bid and reused for every candidate.
	itemEmbeddings, err := p.vec.BatchVectorize(ctx, descriptions)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.logger.Warn("item vectorization failed, no phase 2 matches possible",
			zap.String("bid_id", bid.ID),
			zap.Error(err),
		)
		return nil, nil
	}

	var matches []Match
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		qualifying := 0
		var total float64

		for idx, itemEmbedding := range itemEmbeddings {
			if len(itemEmbedding) == 0 {
				continue
			}

			score, _ := similarity.Score(itemEmbedding, c.embedding, descriptions[idx], c.company.Description)

			p.logger.Debug("phase 2 item score",
				zap.String("bid_id", bid.ID),
				zap.String("company_id", c.company.ID),
				zap.Int("item", idx+1),
				zap.Float64("score", score),
				zap.Float64("threshold", p.thresholds.Phase2),
			)

			if score >= p.thresholds.Phase2 {
				qualifying++
				total += score
			}
		}

		// Phase-1 candidacy alone is insufficient once items exist.
		if qualifying == 0 {
			p.logger.Debug("no qualifying items, candidate dropped",
				zap.String("bid_id", bid.ID),
				zap.String("company_id", c.company.ID),
			)
			continue
		}

		mean := total / float64(qualifying)
		final := (c.score + mean) / 2

		matches = append(matches, Match{
			BidID:     bid.ID,
			CompanyID: c.company.ID,
			Score:     final,
			Type:      MatchObjectAndItems,
			Justification: fmt.Sprintf("%s | phase 2: %d qualifying items (mean score: %.3f)",
				c.justification, qualifying, mean),
		})
	}

	return matches, nil
}

// Run evaluates every bid against every company and aggregates results and
// statistics. Single-bid failures are isolated: only context cancellation
// aborts the loop.
func (p *Pipeline) Run(ctx context.Context, bids []Bid, companies []Company) (*RunResult, error) {
	embedded, err := p.EmbedCompanies(ctx, companies)
	if err != nil {
		return nil, err
	}

	result := &RunResult{}

	for i, bid := range bids {
		if i > 0 {
			if err := utils.WaitFor(ctx, p.bidDelay); err != nil {
				return nil, err
			}
		}

		if bid.Description == "" {
			p.logger.Warn("bid object is empty, skipping", zap.String("bid_id", bid.ID))
			result.Stats.Skipped++
			continue
		}

		matches, err := p.EvaluateBid(ctx, bid, embedded)
		if errors.Is(err, ErrNotVectorized) {
			result.Stats.VectorizationFailed++
			continue
		}
		if err != nil {
			return nil, err
		}

		result.Stats.Processed++
		if len(matches) == 0 {
			result.Stats.WithoutMatches++
			continue
		}

		result.Stats.WithMatches++
		result.Stats.Matches += len(matches)
		for _, m := range matches {
			if m.Type == MatchObjectOnly {
				result.Stats.Phase1Only++
			} else {
				result.Stats.Phase2Refined++
			}
		}
		result.Matches = append(result.Matches, matches...)
	}

	p.logReport(result.Stats)
	return result, nil
}

func (p *Pipeline) logReport(stats Stats) {
	p.logger.Info("matching run finished",
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("vectorization_failed", stats.VectorizationFailed),
		zap.Int("with_matches", stats.WithMatches),
		zap.Int("without_matches", stats.WithoutMatches),
		zap.Int("phase1_only", stats.Phase1Only),
		zap.Int("phase2_refined", stats.Phase2Refined),
		zap.Int("matches", stats.Matches),
	)
}
