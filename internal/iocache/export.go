package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/internal/parquet"
)

// ExportResults writes every stored run and activity to two Parquet files next to
// outputFile and reports what it wrote to w.
func ExportResults(store contract.ResultStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("result store is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no results found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total activity records: %d\n", status.TableSizes[activitiesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	activities, err := store.GetAllActivities()
	if err != nil {
		return fmt.Errorf("failed to retrieve activities: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	activitiesFile := outputFile + ".activities.parquet"
	if err := parquet.WriteActivitiesParquet(parquet.ConvertActivityRecords(activities), activitiesFile); err != nil {
		return fmt.Errorf("failed to write activities: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d activity records to: %s\n", len(activities), activitiesFile)
	return nil
}
