// Package matching implements the two-phase evaluation of procurement bids
// against registered company capability profiles.
package matching

// Bid is a procurement notice. It is immutable once fetched; only its
// run-scoped status advances.
type Bid struct {
	// ID is the stable external control number of the notice.
	ID string `json:"id" mapstructure:"id"`
	// Description is the full object-description text.
	Description string `json:"description" mapstructure:"description"`
	// Items is the ordered list of line items. Items are never shared
	// across bids.
	Items []Item `json:"items,omitempty" mapstructure:"items"`
}

// Item is a single line item of a bid.
type Item struct {
	Description string  `json:"description" mapstructure:"description"`
	Quantity    float64 `json:"quantity" mapstructure:"quantity"`
	Unit        string  `json:"unit" mapstructure:"unit"`
	UnitValue   float64 `json:"unit_value" mapstructure:"unit_value"`
}

// Company is a registered vendor profile used as the matching target.
// Embeddings are computed fresh at the start of each run, never persisted
// with the profile.
type Company struct {
	ID          string   `json:"id" mapstructure:"id"`
	Name        string   `json:"name" mapstructure:"name"`
	Description string   `json:"description" mapstructure:"description"`
	Keywords    []string `json:"keywords,omitempty" mapstructure:"keywords"`
}

// CompanyEmbedding pairs a company with its run-scoped embedding. An empty
// embedding means vectorization failed for this run; the company is skipped
// during scoring.
type CompanyEmbedding struct {
	Company   Company
	Embedding []float32
}

// MatchType discriminates how a match was decided.
type MatchType string

const (
	// MatchObjectOnly marks matches decided from the object text alone
	// (the bid had no line items).
	MatchObjectOnly MatchType = "object_only"
	// MatchObjectAndItems marks matches refined with item-level scores.
	MatchObjectAndItems MatchType = "object_and_items"
)

// Match is an emitted record. Matches are created only when the score
// crosses the applicable threshold and are never mutated afterwards.
type Match struct {
	BidID         string    `json:"bid_id"`
	CompanyID     string    `json:"company_id"`
	Score         float64   `json:"score"`
	Type          MatchType `json:"match_type"`
	Justification string    `json:"justification"`
}

// Thresholds carries the two phase cutoffs. A score equal to the cutoff
// passes. A cutoff of zero or below means unset and is replaced by the
// default at construction; to accept every score, configure a small
// positive cutoff instead (scores are clamped to [0, 1]).
type Thresholds struct {
	Phase1 float64 `mapstructure:"phase1"`
	Phase2 float64 `mapstructure:"phase2"`
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Phase1: 0.65, Phase2: 0.70}
}

func (t Thresholds) withDefaults() Thresholds {
	defaults := DefaultThresholds()
	if t.Phase1 <= 0 {
		t.Phase1 = defaults.Phase1
	}
	if t.Phase2 <= 0 {
		t.Phase2 = defaults.Phase2
	}
	return t
}

// Stats aggregates run outcomes. No single bid or company failure is fatal
// to a run; failures are isolated and counted here.
type Stats struct {
	Processed           int `json:"processed"`
	Skipped             int `json:"skipped"`
	VectorizationFailed int `json:"vectorization_failed"`
	WithMatches         int `json:"with_matches"`
	WithoutMatches      int `json:"without_matches"`
	Phase1Only          int `json:"phase1_only"`
	Phase2Refined       int `json:"phase2_refined"`
	Matches             int `json:"matches"`
}

// RunResult is the outcome of evaluating a corpus of bids.
type RunResult struct {
	Matches []Match
	Stats   Stats
}
