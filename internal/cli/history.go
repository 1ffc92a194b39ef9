package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conveyor-ci/conveyor/internal/db"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the history database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openHistory()
		if err != nil {
			return err
		}
		defer d.Close()

		runs, err := d.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tPIPELINE\tEVENT\tSTATUS\tDURATION\tSTARTED")
		for _, r := range runs {
			event := r.EventKind
			if r.EventRef != "" {
				event = fmt.Sprintf("%s %s", r.EventKind, r.EventRef)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d ms\t%s\n", r.ID, r.Pipeline, event, r.Status, r.DurationMs, r.StartedAt)
		}
		return w.Flush()
	},
}

var historyStepsCmd = &cobra.Command{
	Use:   "steps [run-id]",
	Short: "Show the step results of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openHistory()
		if err != nil {
			return err
		}
		defer d.Close()

		steps, err := d.GetRunSteps(args[0])
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			return fmt.Errorf("no step results for run %s", args[0])
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSTEP\tEXIT\tDURATION\tNOTE")
		for _, s := range steps {
			note := ""
			switch {
			case s.TimedOut:
				note = "timed out"
			case s.SpawnError != "":
				note = s.SpawnError
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%d ms\t%s\n", s.Position, s.Name, s.ExitCode, s.DurationMs, note)
		}
		return w.Flush()
	},
}

func openHistory() (*db.DB, error) {
	path, err := db.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	d, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return d, nil
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max runs to show")
	historyCmd.AddCommand(historyStepsCmd)
}
