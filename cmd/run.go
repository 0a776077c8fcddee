package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Pedro004-dot/alicit/internal/checklist"
	"github.com/Pedro004-dot/alicit/internal/logger"
	"github.com/Pedro004-dot/alicit/internal/matching"
	"github.com/Pedro004-dot/alicit/internal/pncp"
	"github.com/Pedro004-dot/alicit/internal/secrets"
	"github.com/Pedro004-dot/alicit/internal/store"
	"github.com/Pedro004-dot/alicit/internal/utils"
	"github.com/Pedro004-dot/alicit/internal/vectorizer"
)

const (
	runDateLayout = "2006-01-02"

	// bidDelay throttles item fetches and evaluations between bids.
	bidDelay = 200 * time.Millisecond
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect the day's bids and match them against registered companies",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("date", "", "publication date to collect (YYYY-MM-DD, default today)")
	runCmd.Flags().StringSlice("states", nil, "restrict the sweep to these states (default all)")
}

// run is the daily collection and matching command.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting alicit", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	day, err := runDate(cmd)
	if err != nil {
		logger.Fatal("parsing run date", zap.Error(err))
	}

	states := config.States
	if flagStates, _ := cmd.Flags().GetStringSlice("states"); len(flagStates) > 0 {
		states = flagStates
	}

	corpus, err := store.New(config.DataDir, logger)
	if err != nil {
		logger.Fatal("opening the corpus store", zap.Error(err))
	}

	companies, err := corpus.Companies()
	if err != nil {
		logger.Fatal("loading companies", zap.Error(err))
	}
	if len(companies) == 0 {
		logger.Fatal("no companies registered",
			zap.String("hint", fmt.Sprintf("add company profiles to %s/companies.json", config.DataDir)),
		)
	}

	vec, err := newVectorizer(ctx, config.Vectorizer, logger)
	if err != nil {
		logger.Fatal("building the embedding backend", zap.Error(err))
	}

	pipeline := matching.NewPipeline(vec, config.Thresholds, logger)

	logger.Info("embedding company profiles", zap.Int("companies", len(companies)))
	embedded, err := pipeline.EmbedCompanies(ctx, companies)
	if err != nil {
		logger.Fatal("embedding companies", zap.Error(err))
	}

	client := pncp.New(logger)

	logger.Info("collecting published bids",
		zap.String("date", day.Format(runDateLayout)),
		zap.Int("states", len(statesOrAll(states))),
	)
	notices, err := client.FetchPublished(ctx, day, day, states)
	if err != nil {
		logger.Fatal("collecting bids", zap.Error(err))
	}

	processed, err := corpus.ProcessedIDs()
	if err != nil {
		logger.Fatal("loading processed bid ids", zap.Error(err))
	}

	fresh := make([]pncp.Notice, 0, len(notices))
	for _, notice := range notices {
		if _, done := processed[notice.ControlNumber]; done {
			continue
		}
		fresh = append(fresh, notice)
	}

	logger.Info("bids collected",
		zap.Int("found", len(notices)),
		zap.Int("new", len(fresh)),
	)

	checklists := newChecklistBuilder(ctx, config, logger)

	var stats matching.Stats
	for i, notice := range fresh {
		if i > 0 {
			if err := utils.WaitFor(ctx, bidDelay); err != nil {
				logger.Fatal("run canceled", zap.Error(err))
			}
		}

		items, err := client.FetchItems(ctx, notice)
		if err != nil {
			logger.Warn("fetching bid items failed, evaluating object only",
				zap.String("bid_id", notice.ControlNumber),
				zap.Error(err),
			)
		}
		bid := notice.Bid(items)

		if err := corpus.AppendBids([]matching.Bid{bid}); err != nil {
			logger.Fatal("saving bid", zap.Error(err))
		}

		evaluateBid(ctx, pipeline, corpus, checklists, bid, embedded, &stats, logger)

		if err := corpus.MarkProcessed([]string{bid.ID}); err != nil {
			logger.Fatal("marking bid as processed", zap.Error(err))
		}
	}

	logger.Info("run finished",
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("vectorization_failed", stats.VectorizationFailed),
		zap.Int("with_matches", stats.WithMatches),
		zap.Int("without_matches", stats.WithoutMatches),
		zap.Int("matches", stats.Matches),
	)
}

func evaluateBid(
	ctx context.Context,
	pipeline *matching.Pipeline,
	corpus *store.FileStore,
	checklists *checklist.Builder,
	bid matching.Bid,
	embedded []matching.CompanyEmbedding,
	stats *matching.Stats,
	logger *zap.Logger,
) {
	if bid.Description == "" {
		logger.Warn("bid object is empty, skipping", zap.String("bid_id", bid.ID))
		stats.Skipped++
		return
	}

	matches, err := pipeline.EvaluateBid(ctx, bid, embedded)
	switch {
	case errors.Is(err, matching.ErrNotVectorized):
		stats.VectorizationFailed++
		setStatus(corpus, bid.ID, store.StatusFailed, logger)
		return
	case err != nil:
		logger.Fatal("run canceled", zap.Error(err))
	}

	stats.Processed++
	if len(matches) == 0 {
		stats.WithoutMatches++
		setStatus(corpus, bid.ID, store.StatusNoMatch, logger)
		return
	}

	stats.WithMatches++
	stats.Matches += len(matches)
	for _, m := range matches {
		if m.Type == matching.MatchObjectOnly {
			stats.Phase1Only++
		} else {
			stats.Phase2Refined++
		}
		logger.Info("match found",
			zap.String("bid_id", m.BidID),
			zap.String("company_id", m.CompanyID),
			zap.Float64("score", m.Score),
			zap.String("match_type", string(m.Type)),
			zap.String("justification", m.Justification),
		)
	}

	if err := corpus.SaveMatches(matches); err != nil {
		logger.Fatal("saving matches", zap.Error(err))
	}
	setStatus(corpus, bid.ID, store.StatusMatched, logger)

	if checklists != nil {
		c, err := checklists.Build(ctx, bid, "")
		if err != nil {
			logger.Fatal("run canceled", zap.Error(err))
		}
		if err := corpus.SaveChecklist(bid.ID, c); err != nil {
			logger.Warn("saving checklist failed", zap.String("bid_id", bid.ID), zap.Error(err))
		}
	}
}

func setStatus(corpus *store.FileStore, bidID, status string, logger *zap.Logger) {
	if err := corpus.SetBidStatus(bidID, status); err != nil {
		logger.Warn("updating bid status failed",
			zap.String("bid_id", bidID),
			zap.String("status", status),
			zap.Error(err),
		)
	}
}

func runDate(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(runDateLayout, raw)
}

func statesOrAll(states []string) []string {
	if len(states) == 0 {
		return pncp.States
	}
	return states
}

// newVectorizer resolves credentials and builds the configured embedding
// backend. A missing Gemini key is tolerated for the hybrid kind, which
// degrades to its secondary backend.
func newVectorizer(ctx context.Context, cfg *VectorizerConfig, logger *zap.Logger) (vectorizer.Vectorizer, error) {
	if cfg == nil {
		cfg = &VectorizerConfig{}
	}

	var apiKey, model string
	if cfg.Gemini != nil {
		model = cfg.Gemini.Model
		if cfg.Gemini.APIKeyFile != "" {
			key, err := secrets.Load(secrets.Source{
				Name: "gemini api key",
				File: cfg.Gemini.APIKeyFile,
			})
			if err != nil {
				logger.Warn("gemini api key unavailable",
					zap.Error(err),
					zap.String("hint", "set vectorizer.gemini.api-key-file or GEMINI_API_KEY_FILE"),
				)
			} else {
				apiKey = key
			}
		}
	}

	return vectorizer.New(ctx, vectorizer.Config{
		Kind:          vectorizer.Kind(cfg.Kind),
		GeminiAPIKey:  apiKey,
		GeminiModel:   model,
		LocalModel:    cfg.LocalModel,
		LocalCacheDir: cfg.LocalCacheDir,
		Logger:        logger,
	})
}

// newChecklistBuilder returns nil when checklist generation is disabled or
// credentials are missing; matching proceeds without it.
func newChecklistBuilder(ctx context.Context, config *Config, logger *zap.Logger) *checklist.Builder {
	if config.Checklist == nil || !config.Checklist.Enabled {
		return nil
	}
	if config.Vectorizer == nil || config.Vectorizer.Gemini == nil || config.Vectorizer.Gemini.APIKeyFile == "" {
		logger.Warn("checklist generation enabled but no gemini api key file is configured")
		return nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Vectorizer.Gemini.APIKeyFile,
	})
	if err != nil {
		logger.Warn("checklist generation disabled", zap.Error(err))
		return nil
	}

	generator, err := checklist.NewGenerator(ctx, apiKey, config.Checklist.Model)
	if err != nil {
		logger.Warn("checklist generation disabled", zap.Error(err))
		return nil
	}

	return checklist.NewBuilder(generator, logger)
}
