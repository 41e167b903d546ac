// Package parquet exports stored runs and activities to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/foilact/schema"
	"github.com/parquet-go/parquet-go"
)

// Run is one pipeline run. It maps to the foilact_runs table.
type Run struct {
	RunID        int64      `parquet:"run_id,snappy"`
	RunUUID      string     `parquet:"run_uuid,snappy"`
	StartTime    time.Time  `parquet:"start_time,snappy"`
	EndTime      *time.Time `parquet:"end_time,optional,snappy"`
	DurationMs   *int64     `parquet:"duration_ms,optional,snappy"`
	TotalTargets *int64     `parquet:"total_targets,optional,snappy"`

	// ConfigParams is the JSON-encoded configuration of the run
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Activity is the outcome for one nuclide of one target. It maps to the
// foilact_activities table.
type Activity struct {
	RunID           int64   `parquet:"run_id,snappy"`
	TargetID        string  `parquet:"target_id,snappy"`
	Nuclide         string  `parquet:"nuclide,snappy"`
	Material        string  `parquet:"material,snappy"`
	IrradiationEnd  string  `parquet:"irradiation_end,snappy"`
	BeamEnergy      float64 `parquet:"beam_energy,snappy"`
	Predicted       float64 `parquet:"predicted,snappy"`
	MeanActEoB      float64 `parquet:"mean_act_eob,snappy"`
	ErrMeanActEoB   float64 `parquet:"err_mean_act_eob,snappy"`
	ThinTargetYield float64 `parquet:"thin_target_yield,snappy"`
	ErrThinYield    float64 `parquet:"err_thin_target_yield,snappy"`
	Measurements    int64   `parquet:"measurements,snappy"`
}

// WriteRunsParquet writes runs to outputPath.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteActivitiesParquet writes activity rows to outputPath.
func WriteActivitiesParquet(data []Activity, outputPath string) error {
	return writeRows(data, outputPath)
}

// writeRows infers the schema from the struct tags of T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts stored run rows for export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		result[i] = Run{
			RunID:        r.RunID,
			RunUUID:      r.RunUUID,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			DurationMs:   r.DurationMs,
			TotalTargets: r.TotalTargets,
			ConfigParams: r.ConfigParams,
		}
	}
	return result
}

// ConvertActivityRecords converts stored activity rows for export.
func ConvertActivityRecords(records []schema.ActivityRecord) []Activity {
	result := make([]Activity, len(records))
	for i, r := range records {
		result[i] = Activity(r)
	}
	return result
}

// ActivitiesFromTargets flattens target results into one row per nuclide.
func ActivitiesFromTargets(runID int64, targets []schema.TargetResult) []Activity {
	var rows []Activity
	for _, t := range targets {
		for _, n := range t.Nuclides {
			rows = append(rows, Activity{
				RunID:           runID,
				TargetID:        t.TargetID,
				Nuclide:         n.Nuclide,
				Material:        t.Material,
				IrradiationEnd:  t.IrradiationEnd,
				BeamEnergy:      t.BeamEnergy,
				Predicted:       n.Predicted,
				MeanActEoB:      n.MeanActEoB,
				ErrMeanActEoB:   n.ErrMeanActEoB,
				ThinTargetYield: n.ThinTargetYield,
				ErrThinYield:    n.ErrThinYield,
				Measurements:    int64(n.Measurements),
			})
		}
	}
	return rows
}
