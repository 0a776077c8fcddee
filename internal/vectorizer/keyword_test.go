package vectorizer

import (
	"context"
	"errors"
	"testing"
)

func TestKeywordVectorizeDimension(t *testing.T) {
	k := NewKeyword()

	vec, err := k.Vectorize(context.Background(), "aquisição de computadores e notebooks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != k.Dimension() {
		t.Fatalf("expected %d dimensions, got %d", k.Dimension(), len(vec))
	}
	for i, v := range vec {
		if v < 0 || v > 1 {
			t.Fatalf("dimension %d out of [0,1]: %f", i, v)
		}
	}
}

func TestKeywordVectorizeEmptyInput(t *testing.T) {
	k := NewKeyword()

	if _, err := k.Vectorize(context.Background(), "   "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	// Stopword-only input normalizes to nothing as well.
	if _, err := k.Vectorize(context.Background(), "de para com"); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput for stopword-only input, got %v", err)
	}
}

func TestKeywordInformaticsSignal(t *testing.T) {
	k := NewKeyword()

	bid, err := k.Vectorize(context.Background(), "aquisição de computadores e notebooks para escritório")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	company, err := k.Vectorize(context.Background(), "venda de equipamentos de informática e hardware")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both texts should light up the informatics dimension (index 0) and
	// nothing in construction (index 4).
	if bid[0] == 0 {
		t.Fatalf("expected informatics signal for bid text, got %v", bid)
	}
	if company[0] == 0 {
		t.Fatalf("expected informatics signal for company text, got %v", company)
	}
	if bid[4] != 0 || company[4] != 0 {
		t.Fatalf("unexpected construction signal: bid=%v company=%v", bid, company)
	}
}

func TestKeywordBatchPreservesSlots(t *testing.T) {
	k := NewKeyword()

	texts := []string{"computadores e servidores", "", "   ", "reforma e pintura de obra"}
	vectors, err := k.BatchVectorize(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("expected %d slots, got %d", len(texts), len(vectors))
	}
	if len(vectors[0]) == 0 {
		t.Fatalf("expected embedding in slot 0")
	}
	if vectors[1] != nil || vectors[2] != nil {
		t.Fatalf("expected nil vectors for blank slots, got %v and %v", vectors[1], vectors[2])
	}
	if len(vectors[3]) == 0 {
		t.Fatalf("expected embedding in slot 3")
	}
}

func TestKeywordCanceledContext(t *testing.T) {
	k := NewKeyword()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := k.BatchVectorize(ctx, []string{"computador"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
