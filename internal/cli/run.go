package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conveyor-ci/conveyor/internal/db"
	"github.com/conveyor-ci/conveyor/internal/launcher"
	"github.com/conveyor-ci/conveyor/internal/report"
	"github.com/conveyor-ci/conveyor/internal/runstore"
	"github.com/conveyor-ci/conveyor/internal/trigger"
)

var (
	runEventKind    string
	runEventRef     string
	runKeepWS       bool
	runSkipHistory  bool
	runSkipTriggers bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the pipeline once, right now",
	Long: `Executes the pipeline's declared steps in order. With --event-kind and
--ref the event is first evaluated against the pipeline's trigger rules and
a non-matching event is a no-op. Without them the run is unconditional.

The process exits 0 when every step passed, 1 on failure and 130 when the
run was aborted by SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var ev trigger.Event
		if runEventKind != "" {
			kind, err := trigger.ParseKind(runEventKind)
			if err != nil {
				return err
			}
			ev = trigger.Event{Kind: kind, Ref: runEventRef}
		}

		src, err := openSecrets(cfg)
		if err != nil {
			return err
		}

		store, err := runstore.DefaultStore()
		if err != nil {
			return err
		}

		var history *db.DB
		if !runSkipHistory {
			path, err := db.DefaultDBPath()
			if err != nil {
				return err
			}
			history, err = db.Open(path)
			if err != nil {
				return err
			}
			defer history.Close()
			if err := history.Migrate(); err != nil {
				return fmt.Errorf("migrate history db: %w", err)
			}
		}

		l := launcher.New(cfg, launcher.Options{
			Store:   store,
			History: history,
			Secrets: src,
		})
		l.KeepWorkspace = runKeepWS

		if ev.Kind != "" && !runSkipTriggers {
			if !l.Matches(ev) {
				fmt.Fprintf(cmd.OutOrStdout(), "event (%s %s) matches no trigger rule, nothing to do\n", ev.Kind, ev.Ref)
				return nil
			}
		}

		// SIGINT/SIGTERM abort the run; the in-flight step is killed.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := l.Launch(ctx, ev)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), report.Render(result))
		exitCode = report.ExitCode(result.Status)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runEventKind, "event-kind", "", "evaluate triggers for this event kind (push, pull_request)")
	runCmd.Flags().StringVar(&runEventRef, "ref", "", "git ref of the triggering event")
	runCmd.Flags().BoolVar(&runKeepWS, "keep-workspace", false, "keep the run workspace on disk for debugging")
	runCmd.Flags().BoolVar(&runSkipHistory, "no-history", false, "do not record the run in the history database")
	runCmd.Flags().BoolVar(&runSkipTriggers, "force", false, "run even when the event matches no trigger rule")
}
