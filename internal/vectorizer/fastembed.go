package vectorizer

import (
	"context"
	"fmt"
	"path/filepath"

	fastembed "github.com/anush008/fastembed-go"

	"github.com/Pedro004-dot/alicit/internal/textnorm"
)

const (
	defaultLocalModel = "BAAI/bge-small-en-v1.5"

	// BERT-family models cap the usable sequence length; longer text is
	// truncated before encoding.
	localMaxInputRunes = 5000

	localEmbedBatchSize = 256
)

// localModelMapping maps friendly model names to fastembed constants.
var localModelMapping = map[string]fastembed.EmbeddingModel{
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
	"fast-bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"fast-bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"fast-all-MiniLM-L6-v2":                  fastembed.AllMiniLML6V2,
}

// Local embeds text with a sentence-embedding ONNX model loaded once at
// construction. Vectorization is pure local computation, deterministic for
// a given model version, with no network dependency. The loaded model is
// read-only after construction and safe for concurrent reads.
type Local struct {
	model     *fastembed.FlagEmbedding
	modelName string
}

// NewLocal loads the configured model. It fails with ErrUnavailable when
// the model cannot be initialized.
func NewLocal(modelName, cacheDir string) (*Local, error) {
	if modelName == "" {
		modelName = defaultLocalModel
	}

	model, ok := localModelMapping[modelName]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported local model %q", ErrUnavailable, modelName)
	}

	if cacheDir == "" {
		cacheDir = filepath.Join(".", "model_cache")
	}

	showProgress := false
	flagEmbed, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            512,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %v", ErrUnavailable, modelName, err)
	}

	return &Local{model: flagEmbed, modelName: modelName}, nil
}

func (l *Local) Vectorize(ctx context.Context, text string) ([]float32, error) {
	clean := textnorm.Normalize(text)
	if clean == "" {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors, err := l.model.PassageEmbed([]string{truncate(clean, localMaxInputRunes)}, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVectorization, err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: model returned no embedding", ErrVectorization)
	}
	return vectors[0], nil
}

// BatchVectorize encodes all non-blank texts in one pass and keeps the
// output aligned one-to-one with the input.
func (l *Local) BatchVectorize(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slots := make([]int, 0, len(texts))
	batch := make([]string, 0, len(texts))
	for i, text := range texts {
		clean := textnorm.Normalize(text)
		if clean == "" {
			continue
		}
		slots = append(slots, i)
		batch = append(batch, truncate(clean, localMaxInputRunes))
	}

	if len(batch) == 0 {
		return out, nil
	}

	vectors, err := l.model.PassageEmbed(batch, localEmbedBatchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVectorization, err)
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrVectorization, len(batch), len(vectors))
	}

	for pos, slot := range slots {
		out[slot] = vectors[pos]
	}
	return out, nil
}

// ModelName reports the loaded model identifier.
func (l *Local) ModelName() string {
	return l.modelName
}

// Close releases the ONNX session.
func (l *Local) Close() error {
	if l.model != nil {
		return l.model.Destroy()
	}
	return nil
}
