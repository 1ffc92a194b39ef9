package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conveyor-ci/conveyor/internal/launcher"
	"github.com/conveyor-ci/conveyor/internal/runstore"
	"github.com/conveyor-ci/conveyor/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for webhook events and run the pipeline on matches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		src, err := openSecrets(cfg)
		if err != nil {
			return err
		}
		store, err := runstore.DefaultStore()
		if err != nil {
			return err
		}
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		l := launcher.New(cfg, launcher.Options{
			Store:   store,
			History: history,
			Secrets: src,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return web.NewServer(l, store, nil, servePort).Start(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8780, "port to listen on")
}
