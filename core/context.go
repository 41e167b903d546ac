package core

import (
	"context"

	"github.com/huangsam/foilact/internal/contract"
)

// Context keys for run options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	runIDKey          contextKey = "runID"
	storeManagerKey   contextKey = "storeManager"
)

// WithSuppressHeader marks the context so that runs skip their start-up log line.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether the run header should be suppressed
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show header
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withRunID stores the result-store run ID in the context
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the result-store run ID, if one was recorded
func getRunID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(runIDKey).(int64)
	return id, ok
}

// contextWithStoreManager makes the store manager available to worker goroutines
func contextWithStoreManager(ctx context.Context, mgr contract.StoreManager) context.Context {
	return context.WithValue(ctx, storeManagerKey, mgr)
}

// storeManagerFromContext returns the store manager, or nil
func storeManagerFromContext(ctx context.Context) contract.StoreManager {
	mgr, _ := ctx.Value(storeManagerKey).(contract.StoreManager)
	return mgr
}
