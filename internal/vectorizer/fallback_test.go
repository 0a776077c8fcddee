package vectorizer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type stubBackend struct {
	vec        []float32
	err        error
	calls      int
	batchCalls int
}

func (s *stubBackend) Vectorize(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	return s.vec, s.err
}

func (s *stubBackend) BatchVectorize(_ context.Context, texts []string) ([][]float32, error) {
	s.batchCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = s.vec
	}
	return out, nil
}

func TestFallbackPrimarySucceeds(t *testing.T) {
	primary := &stubBackend{vec: []float32{1, 0}}
	secondary := &stubBackend{vec: []float32{0, 1}}
	f := NewFallback(primary, secondary, zap.NewNop())

	vec, err := f.Vectorize(context.Background(), "computadores")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec[0] != 1 {
		t.Fatalf("expected primary result, got %v", vec)
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary should not run when primary succeeds")
	}
}

func TestFallbackRetriesOnSecondary(t *testing.T) {
	cases := []struct {
		name    string
		primary *stubBackend
	}{
		{"primary errors", &stubBackend{err: ErrVectorization}},
		{"primary returns empty", &stubBackend{vec: nil}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			secondary := &stubBackend{vec: []float32{0, 1}}
			f := NewFallback(tc.primary, secondary, zap.NewNop())

			vec, err := f.Vectorize(context.Background(), "computadores")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(vec) == 0 || vec[1] != 1 {
				t.Fatalf("expected secondary result, got %v", vec)
			}
		})
	}
}

func TestFallbackBothFailYieldsEmptyWithoutError(t *testing.T) {
	primary := &stubBackend{err: ErrVectorization}
	secondary := &stubBackend{err: errors.New("model crashed")}
	f := NewFallback(primary, secondary, zap.NewNop())

	vec, err := f.Vectorize(context.Background(), "computadores")
	if err != nil {
		t.Fatalf("double failure must not raise, got %v", err)
	}
	if len(vec) != 0 {
		t.Fatalf("expected empty result, got %v", vec)
	}
}

func TestFallbackPropagatesCancellation(t *testing.T) {
	primary := &stubBackend{err: ErrVectorization}
	secondary := &stubBackend{err: errors.New("model crashed")}
	f := NewFallback(primary, secondary, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Vectorize(ctx, "computadores"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := f.BatchVectorize(ctx, []string{"a", "b"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFallbackSkipsNilPrimary(t *testing.T) {
	secondary := &stubBackend{vec: []float32{0, 1}}
	f := NewFallback(nil, secondary, zap.NewNop())

	vec, err := f.Vectorize(context.Background(), "computadores")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) == 0 {
		t.Fatalf("expected secondary result, got %v", vec)
	}
	if secondary.calls != 1 {
		t.Fatalf("expected exactly one secondary call, got %d", secondary.calls)
	}
}

func TestFallbackBatchKeepsSlotCountOnTotalFailure(t *testing.T) {
	primary := &stubBackend{err: ErrVectorization}
	secondary := &stubBackend{err: ErrVectorization}
	f := NewFallback(primary, secondary, zap.NewNop())

	texts := []string{"a", "b", "c"}
	vectors, err := f.BatchVectorize(context.Background(), texts)
	if err != nil {
		t.Fatalf("double failure must not raise, got %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d slots, got %d", len(texts), len(vectors))
	}
	for i, vec := range vectors {
		if vec != nil {
			t.Fatalf("expected nil vector in slot %d, got %v", i, vec)
		}
	}
}

func TestFallbackBatchUsesSecondaryOnMisalignedPrimary(t *testing.T) {
	// A primary that drops slots is treated as fully failed for the call.
	primary := &misalignedBackend{}
	secondary := &stubBackend{vec: []float32{0, 1}}
	f := NewFallback(primary, secondary, zap.NewNop())

	texts := []string{"a", "b"}
	vectors, err := f.BatchVectorize(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 || secondary.batchCalls != 1 {
		t.Fatalf("expected secondary batch to serve the call, got %v (secondary calls: %d)", vectors, secondary.batchCalls)
	}
}

type misalignedBackend struct{}

func (m *misalignedBackend) Vectorize(context.Context, string) ([]float32, error) {
	return []float32{1}, nil
}

func (m *misalignedBackend) BatchVectorize(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)-1), nil
}
