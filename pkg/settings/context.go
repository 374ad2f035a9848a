package settings

import (
	"context"
)

type contextKey string

const runContextKey contextKey = "run"

// IntoContext returns a context carrying the run settings.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, runContextKey, s)
}

// FromContext returns the run settings stored by IntoContext.
func FromContext(ctx context.Context) (*Run, bool) {
	s, ok := ctx.Value(runContextKey).(*Run)
	return s, ok && s != nil
}
