package gridloader

import (
	"context"
	"time"
)

type contextKey string

const (
	runStartedKey contextKey = "runStarted"
)

func withRunStarted(ctx context.Context) context.Context {
	return context.WithValue(ctx, runStartedKey, time.Now())
}

func runStartedFrom(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(runStartedKey).(time.Time)
	return t, ok
}
