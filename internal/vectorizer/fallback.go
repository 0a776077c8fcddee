package vectorizer

import (
	"context"

	"go.uber.org/zap"
)

// Fallback composes a primary and a secondary backend behind the same
// Vectorizer contract. Calls go to the primary first; when the primary
// errors or returns nothing usable, the identical call is retried on the
// secondary. When both fail, the result is empty rather than an error;
// only context cancellation escapes this layer.
type Fallback struct {
	primary   Vectorizer
	secondary Vectorizer
	logger    *zap.Logger
}

// NewFallback wires primary and secondary together. A nil primary starts
// the wrapper with the primary permanently skipped, which the factory uses
// when the primary was probed as unavailable at construction. The skip is
// an optimization only: the secondary always runs whenever the primary
// produced no usable output.
func NewFallback(primary, secondary Vectorizer, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) Vectorize(ctx context.Context, text string) ([]float32, error) {
	if f.primary != nil {
		vec, err := f.primary.Vectorize(ctx, text)
		if err == nil && len(vec) > 0 {
			return vec, nil
		}
		f.logFallthrough("vectorize", err)
	}

	vec, err := f.secondary.Vectorize(ctx, text)
	if err != nil || len(vec) == 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		f.logExhausted("vectorize", err)
		return nil, nil
	}
	return vec, nil
}

func (f *Fallback) BatchVectorize(ctx context.Context, texts []string) ([][]float32, error) {
	if f.primary != nil {
		vectors, err := f.primary.BatchVectorize(ctx, texts)
		if err == nil && usableBatch(vectors, len(texts)) {
			return vectors, nil
		}
		f.logFallthrough("batch_vectorize", err)
	}

	vectors, err := f.secondary.BatchVectorize(ctx, texts)
	if err != nil || !usableBatch(vectors, len(texts)) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		f.logExhausted("batch_vectorize", err)
		// Index-preserving even in total failure: one nil slot per input.
		return make([][]float32, len(texts)), nil
	}
	return vectors, nil
}

// usableBatch reports whether a batch result lines up with the input and
// carries at least one non-empty vector. A batch is atomic per call, so a
// misaligned result counts as a full failure.
func usableBatch(vectors [][]float32, want int) bool {
	if len(vectors) != want {
		return false
	}
	if want == 0 {
		return true
	}
	for _, vec := range vectors {
		if len(vec) > 0 {
			return true
		}
	}
	return false
}

func (f *Fallback) logFallthrough(op string, err error) {
	f.logger.Debug("primary backend produced no usable output, retrying on secondary",
		zap.String("operation", op),
		zap.Error(err),
	)
}

func (f *Fallback) logExhausted(op string, err error) {
	f.logger.Warn("both embedding backends failed",
		zap.String("operation", op),
		zap.Error(err),
	)
}
