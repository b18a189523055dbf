package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/aqlanhadi/kwgn-sms/api"
	"github.com/spf13/cobra"
)

var (
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that accepts messages, keeps the store in sync and serves transactions and summaries as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		syncer, closeStore, err := openSyncer(ctx, appConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open store")
		}
		defer closeStore()

		if err := syncer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start sync worker")
		}
		defer syncer.Stop()
		// Catch up on messages stored while the server was down.
		syncer.Trigger()

		cfg := api.DefaultConfig()
		cfg.Port = ":" + coalesce(servePort, appConfig.Server.Port)
		cfg.Window = appConfig.DuplicateWindow
		cfg.Categories = appConfig.Categories

		server := api.New(cfg, syncer, log)
		errs := make(chan error, 1)
		go func() { errs <- server.Start() }()

		select {
		case err := <-errs:
			if err != nil {
				log.Fatal().Err(err).Msg("failed to start server")
			}
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
			}
		}
	},
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to run the API server on (default from config, 8080)")
}
