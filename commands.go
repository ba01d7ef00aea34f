package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/pipefit/internal/export"
)

var historyCSV string

func init() {
	// list command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved workouts",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	rootCmd.AddCommand(listCmd)

	// export command
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export exercises or workouts to a JSON file",
	}
	exportCmd.AddCommand(&cobra.Command{
		Use:   "exercises FILE",
		Short: "Export the exercise catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportExercises,
	})
	exportCmd.AddCommand(&cobra.Command{
		Use:   "workouts FILE",
		Short: "Export all workouts",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportWorkouts,
	})
	rootCmd.AddCommand(exportCmd)

	// import command
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import exercises or workouts from a JSON file",
		Long: `Import merges a file into the current data. Items whose name already
exists (ignoring case) are skipped and invalid items are ignored.`,
	}
	importCmd.AddCommand(&cobra.Command{
		Use:   "exercises FILE",
		Short: "Import exercises",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportExercises,
	})
	importCmd.AddCommand(&cobra.Command{
		Use:   "workouts FILE",
		Short: "Import workouts",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportWorkouts,
	})
	rootCmd.AddCommand(importCmd)

	// backup / restore
	rootCmd.AddCommand(&cobra.Command{
		Use:   "backup FILE",
		Short: "Write exercises and workouts to one backup file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackup,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "restore FILE",
		Short: "Replace exercises and workouts with a backup",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	})

	// history command
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().StringVar(&historyCSV, "csv", "", "write the full run history to this CSV file")
	rootCmd.AddCommand(historyCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ps, err := e.store.ListPrograms()
	if err != nil {
		return err
	}
	if len(ps) == 0 {
		fmt.Println("No workouts yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tCYCLES\tTOTAL")
	for _, p := range ps {
		cycles := "-"
		if p.IsCyclic {
			cycles = fmt.Sprintf("%d", p.CycleCount)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", p.Name, len(p.Steps), cycles, time.Duration(p.TotalDuration())*time.Second)
	}
	return w.Flush()
}

func runExportExercises(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	exs, err := e.store.ListExercises()
	if err != nil {
		return err
	}
	if err := export.WriteExercises(exs, args[0]); err != nil {
		return err
	}
	e.log.Info("exported exercises", "path", args[0], "count", len(exs))
	fmt.Printf("Exported %d exercises to %s\n", len(exs), args[0])
	return nil
}

func runExportWorkouts(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ps, err := e.store.ListPrograms()
	if err != nil {
		return err
	}
	if err := export.WriteWorkouts(ps, args[0]); err != nil {
		return err
	}
	e.log.Info("exported workouts", "path", args[0], "count", len(ps))
	fmt.Printf("Exported %d workouts to %s\n", len(ps), args[0])
	return nil
}

func runImportExercises(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	incoming, err := export.ReadExercises(args[0])
	if err != nil {
		return err
	}
	existing, err := e.store.ListExercises()
	if err != nil {
		return err
	}
	merged, added := export.MergeExercises(existing, incoming)
	if added > 0 {
		if err := e.store.ReplaceExercises(merged); err != nil {
			return err
		}
	}
	e.log.Info("imported exercises", "path", args[0], "added", added, "skipped", len(incoming)-added)
	fmt.Printf("Imported %d exercises (%d skipped)\n", added, len(incoming)-added)
	return nil
}

func runImportWorkouts(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	incoming, err := export.ReadWorkouts(args[0])
	if err != nil {
		return err
	}
	existing, err := e.store.ListPrograms()
	if err != nil {
		return err
	}
	merged, added := export.MergeWorkouts(existing, incoming, time.Now())
	if added > 0 {
		if err := e.store.SavePrograms(merged); err != nil {
			return err
		}
	}
	e.log.Info("imported workouts", "path", args[0], "added", added, "skipped", len(incoming)-added)
	fmt.Printf("Imported %d workouts (%d skipped)\n", added, len(incoming)-added)
	return nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	exs, err := e.store.ListExercises()
	if err != nil {
		return err
	}
	ps, err := e.store.ListPrograms()
	if err != nil {
		return err
	}
	if err := export.WriteBackup(exs, ps, time.Now(), args[0]); err != nil {
		return err
	}
	e.log.Info("backup written", "path", args[0], "exercises", len(exs), "workouts", len(ps))
	fmt.Printf("Backed up %d exercises and %d workouts to %s\n", len(exs), len(ps), args[0])
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	b, err := export.ReadBackup(args[0])
	if err != nil {
		return err
	}
	if err := e.store.Restore(b.Exercises, b.Workouts, b.HasExercises, b.HasWorkouts); err != nil {
		return err
	}
	e.log.Info("backup restored", "path", args[0], "version", b.Version,
		"exercises", len(b.Exercises), "workouts", len(b.Workouts))
	fmt.Printf("Restored %d exercises and %d workouts\n", len(b.Exercises), len(b.Workouts))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if historyCSV != "" {
		runs, err := e.store.ListRuns(0)
		if err != nil {
			return err
		}
		if err := export.RunsToCSV(runs, historyCSV); err != nil {
			return err
		}
		fmt.Printf("Wrote %d runs to %s\n", len(runs), historyCSV)
		return nil
	}

	runs, err := e.store.ListRuns(20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tWORKOUT\tSTATUS\tWORK")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.WorkoutName, r.Status,
			time.Duration(r.WorkSeconds)*time.Second)
	}
	return w.Flush()
}
