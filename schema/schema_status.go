package schema

import "time"

// CacheStatus represents the status of the report cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// StoreStatus represents the status of the result store.
type StoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalTargets  int              `json:"total_targets"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the foilact_runs table.
type RunRecord struct {
	RunID        int64
	RunUUID      string
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int64
	TotalTargets *int64
	ConfigParams *string
}

// ActivityRecord represents a row from the foilact_activities table.
type ActivityRecord struct {
	RunID           int64
	TargetID        string
	Nuclide         string
	Material        string
	IrradiationEnd  string
	BeamEnergy      float64
	Predicted       float64
	MeanActEoB      float64
	ErrMeanActEoB   float64
	ThinTargetYield float64
	ErrThinYield    float64
	Measurements    int64
}
