package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/pipefit/internal/store"
)

// RunsToCSV writes run history, one row per run.
func RunsToCSV(runs []store.Run, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Workout", "Status", "Start", "End", "Work (s)", "Work"}); err != nil {
		return err
	}

	for _, r := range runs {
		endStr := ""
		if r.EndedAt != nil {
			endStr = r.EndedAt.Local().Format(time.RFC3339)
		}
		row := []string{
			fmt.Sprintf("%d", r.ID),
			r.WorkoutName,
			string(r.Status),
			r.StartedAt.Local().Format(time.RFC3339),
			endStr,
			fmt.Sprintf("%d", r.WorkSeconds),
			formatDuration(r.WorkSeconds),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
