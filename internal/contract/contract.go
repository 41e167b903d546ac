// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/foilact/schema"
)

// StoreManager defines the interface for managing the persistence stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetReportCache() CacheStore
	GetResultStore() ResultStore
}

// CacheStore defines the interface for the parsed-report cache.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ResultStore defines the interface for tracking pipeline runs and their activities.
type ResultStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(runUUID string, startTime time.Time, configParams map[string]any) (int64, error)

	// RecordTarget stores the per-nuclide results of one target
	RecordTarget(runID int64, result schema.TargetResult) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalTargets int) error

	// GetStatus returns status information about the store
	GetStatus() (schema.StoreStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllActivities returns every recorded activity row
	GetAllActivities() ([]schema.ActivityRecord, error)

	// Close closes the underlying connection
	Close() error
}
