package cmd

import (
	"context"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Pedro004-dot/alicit/internal/logger"
	"github.com/Pedro004-dot/alicit/internal/matching"
	"github.com/Pedro004-dot/alicit/internal/store"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var reevaluateCmd = &cobra.Command{
	Use:   "reevaluate",
	Short: "Re-run matching over all stored bids and companies",
	Long: "Re-run the full two-phase matching over the persisted corpus, " +
		"for example after company profiles changed or thresholds were tuned. " +
		"By default all existing matches are erased first.",
	Run: func(cmd *cobra.Command, _ []string) {
		reevaluate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reevaluateCmd)

	reevaluateCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before erasing matches")
	reevaluateCmd.Flags().Bool("keep-matches", false, "keep existing matches and only append new ones")
}

func reevaluate(cmd *cobra.Command) {
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

	keepMatches, _ := cmd.Flags().GetBool("keep-matches")
	autoApprove, _ := cmd.Flags().GetBool("yes")

	if !keepMatches && !autoApprove {
		prompt := promptui.Select{
			Label: "This erases all existing matches before reevaluating. Proceed?",
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	corpus, err := store.New(config.DataDir, logger)
	if err != nil {
		logger.Fatal("opening the corpus store", zap.Error(err))
	}

	vec, err := newVectorizer(ctx, config.Vectorizer, logger)
	if err != nil {
		logger.Fatal("building the embedding backend", zap.Error(err))
	}

	pipeline := matching.NewPipeline(vec, config.Thresholds, logger)
	runner := matching.NewReevaluator(pipeline, corpus, logger)

	result, err := runner.Reevaluate(ctx, !keepMatches)
	if err != nil {
		logger.Fatal("reevaluation failed", zap.Error(err))
	}

	logger.Info("reevaluation finished",
		zap.Int("processed", result.Stats.Processed),
		zap.Int("with_matches", result.Stats.WithMatches),
		zap.Int("matches", result.Stats.Matches),
	)
}
