package vectorizer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "  ", "", zap.NewNop())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGeminiVectorizeCanceled(t *testing.T) {
	g, err := NewGemini(context.Background(), "test-key", "", zap.NewNop())
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Caller cancellation must surface as such, not as a vectorization
	// failure a pipeline would count and move past.
	_, err = g.Vectorize(ctx, "fornecimento de equipamentos")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
