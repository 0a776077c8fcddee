package vectorizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Pedro004-dot/alicit/internal/textnorm"
)

const (
	defaultEmbeddingModel = "gemini-embedding-001"

	// Remote submissions are capped well below the model token limit so a
	// long bid object never fails solely due to length.
	geminiMaxInputRunes = 8000

	geminiRequestTimeout = 30 * time.Second
)

// embeddingDimension is requested explicitly so vectors stay comparable
// across model revisions.
const embeddingDimension int32 = 768

// Gemini delegates vectorization to the Gemini embedding API. A call is
// fully successful or fully failed: transport errors and bad responses
// surface as ErrVectorization, never as partial results.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGemini creates the remote embedding backend. It fails with
// ErrUnavailable when the API key is missing or the client cannot be built.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", ErrUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %v", ErrUnavailable, err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}

	return &Gemini{client: client, model: model, logger: logger}, nil
}

func (g *Gemini) Vectorize(ctx context.Context, text string) ([]float32, error) {
	clean := textnorm.Normalize(text)
	if clean == "" {
		return nil, ErrEmptyInput
	}
	clean = truncate(clean, geminiMaxInputRunes)

	vectors, err := g.embed(ctx, []string{clean})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// BatchVectorize submits all non-blank texts in a single request and
// scatters the returned embeddings back to their original slots, so the
// output always lines up one-to-one with the input.
func (g *Gemini) BatchVectorize(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	slots := make([]int, 0, len(texts))
	batch := make([]string, 0, len(texts))
	for i, text := range texts {
		clean := textnorm.Normalize(text)
		if clean == "" {
			continue
		}
		slots = append(slots, i)
		batch = append(batch, truncate(clean, geminiMaxInputRunes))
	}

	if len(batch) == 0 {
		return out, nil
	}

	vectors, err := g.embed(ctx, batch)
	if err != nil {
		return nil, err
	}

	for pos, slot := range slots {
		out[slot] = vectors[pos]
	}
	return out, nil
}

func (g *Gemini) embed(ctx context.Context, texts []string) ([][]float32, error) {
	reqCtx, cancel := context.WithTimeout(ctx, geminiRequestTimeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	resp, err := g.client.Models.EmbedContent(reqCtx, g.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(embeddingDimension),
	})
	if err != nil {
		// Caller cancellation must propagate as such; only the per-request
		// timeout counts as a vectorization failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		g.logger.Warn("gemini embedding request failed",
			zap.Int("texts", len(texts)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrVectorization, err)
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrVectorization, len(texts), respLen(resp))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", ErrVectorization, i)
		}
		vectors[i] = emb.Values
	}

	g.logger.Debug("gemini embeddings generated",
		zap.Int("texts", len(texts)),
		zap.Int("dimensions", len(vectors[0])),
	)

	return vectors, nil
}

func respLen(resp *genai.EmbedContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Embeddings)
}
