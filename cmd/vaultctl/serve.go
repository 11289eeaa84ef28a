package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/watchme-vault/internal/app"
	"github.com/dharsanguruparan/watchme-vault/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ingest HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			a, err := app.Build(ctx, cfg)
			if err != nil {
				return fmt.Errorf("init dependencies: %w", err)
			}
			defer a.Close()

			srv := server.New(server.Config{
				Address:      cfg.Address,
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			}, a.Uploads, a.Health)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&address, "addr", "", "Listen address (overrides VAULT_ADDRESS)")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == "memory" || cfg.Database.URL == "" {
				return fmt.Errorf("migrate needs DATABASE_DRIVER postgres or sqlite and DATABASE_URL")
			}
			db, err := app.OpenDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info().Str("driver", cfg.Database.Driver).Msg("migrations applied")
			return nil
		},
	}
}
