// Package vectorizer turns normalized procurement text into fixed-length
// embedding vectors. Backends are interchangeable behind the Vectorizer
// interface; the fallback wrapper composes two of them into one
// fault-tolerant backend.
package vectorizer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Vectorizer is the embedding capability consumed by the matching pipeline.
//
// Vectorize returns ErrEmptyInput when the normalized text is empty.
// BatchVectorize always returns exactly one slot per input text; blank or
// unvectorizable entries yield a nil vector in their slot, never a shorter
// list.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) ([]float32, error)
	BatchVectorize(ctx context.Context, texts []string) ([][]float32, error)
}

// Kind selects an embedding backend.
type Kind string

const (
	KindRemote  Kind = "remote"
	KindLocal   Kind = "local"
	KindKeyword Kind = "keyword"
	KindHybrid  Kind = "hybrid"
)

// Config is the construction surface for the backend factory.
type Config struct {
	Kind Kind

	// Gemini settings, used by the remote and hybrid kinds.
	GeminiAPIKey string
	GeminiModel  string

	// Local model settings, used by the local and hybrid kinds.
	LocalModel    string
	LocalCacheDir string

	Logger *zap.Logger
}

// New builds the vectorizer selected by cfg.Kind. Selection is pure: every
// construction failure is returned to the caller, which decides fallback
// policy. The hybrid kind wires the remote backend as primary and the local
// model as secondary; when the local model cannot load, the keyword backend
// takes its place so the pipeline never has zero embedding capability.
func New(ctx context.Context, cfg Config) (Vectorizer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Kind {
	case KindRemote:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	case KindLocal:
		return NewLocal(cfg.LocalModel, cfg.LocalCacheDir)
	case KindKeyword:
		return NewKeyword(), nil
	case KindHybrid, "":
		return newHybrid(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported vectorizer kind: %q", cfg.Kind)
	}
}

func newHybrid(ctx context.Context, cfg Config, logger *zap.Logger) (Vectorizer, error) {
	var secondary Vectorizer

	secondary, err := NewLocal(cfg.LocalModel, cfg.LocalCacheDir)
	if err != nil {
		logger.Warn("local embedding model unavailable, keyword backend takes its place",
			zap.Error(err),
		)
		secondary = NewKeyword()
	}

	primary, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		// Missing credentials are probed eagerly: the fallback starts
		// with the primary skipped instead of failing per call.
		logger.Warn("remote embedding backend unavailable, starting with primary skipped",
			zap.Error(err),
		)
		return NewFallback(nil, secondary, logger), nil
	}

	return NewFallback(primary, secondary, logger), nil
}

// truncate caps normalized text at max runes. Backends truncate rather than
// error out solely due to length.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
