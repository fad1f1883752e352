package main

import (
	"log"
	"os"

	"github.com/fiapx/video-orchestrator/config"
	"github.com/fiapx/video-orchestrator/internal/app"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Config
	if _, err := os.Stat(".env"); err == nil {
		err = godotenv.Load()
		if err != nil {
			log.Fatalf("config error: %s", err)
		}
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := func(*cobra.Command, []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		// Run
		app.Run(cfg)

		return nil
	}

	root := &cobra.Command{
		Use:          "video-orchestrator",
		Short:        "Tracks video uploads through transcoding and notifies owners",
		SilenceUsage: true,
		RunE:         serve,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and queue consumers",
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.NewDatabase()
				if err != nil {
					return err
				}

				return app.Migrate(cmd.Context(), cfg)
			},
		},
	)

	return root
}
