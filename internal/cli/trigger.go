package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conveyor-ci/conveyor/internal/trigger"
)

var (
	triggerEventKind string
	triggerEventRef  string
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Evaluate an event against the pipeline's trigger rules",
	Long: `Evaluates a hypothetical event against the trigger rules without
running anything. Exits 0 when the event would start a run, 1 when it
would not.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		kind, err := trigger.ParseKind(triggerEventKind)
		if err != nil {
			return err
		}
		ev := trigger.Event{Kind: kind, Ref: triggerEventRef}

		if trigger.Match(ev, cfg.Pipeline.Rules()) {
			fmt.Fprintf(cmd.OutOrStdout(), "event (%s %s) matches, a run would start\n", ev.Kind, ev.Ref)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "event (%s %s) matches no trigger rule\n", ev.Kind, ev.Ref)
		exitCode = 1
		return nil
	},
}

func init() {
	triggerCmd.Flags().StringVar(&triggerEventKind, "event-kind", "", "event kind (push, pull_request)")
	triggerCmd.Flags().StringVar(&triggerEventRef, "ref", "", "git ref of the event")
	_ = triggerCmd.MarkFlagRequired("event-kind")
}
