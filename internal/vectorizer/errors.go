package vectorizer

import "errors"

var (
	// ErrEmptyInput signals that the text is empty after normalization.
	// Callers skip that unit of work instead of aborting the run.
	ErrEmptyInput = errors.New("normalized text is empty")

	// ErrUnavailable signals that a backend cannot initialize, for
	// example missing credentials or a model that fails to load.
	ErrUnavailable = errors.New("embedding backend unavailable")

	// ErrVectorization signals that a backend call produced no usable
	// vector. Recovered via the fallback wrapper; units for which both
	// backends fail are excluded from scoring and counted in run stats.
	ErrVectorization = errors.New("vectorization failed")
)
