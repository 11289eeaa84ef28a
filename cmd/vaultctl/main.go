// Command vaultctl is the operator CLI: it runs the server, applies database
// migrations, previews storage keys and talks to a running instance.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/watchme-vault/internal/config"
	"github.com/dharsanguruparan/watchme-vault/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "vaultctl: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	envFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "vaultctl",
		Short: "WatchMe Vault operator CLI",
		Long: `vaultctl runs the audio ingest server, applies database migrations, previews the
storage key a recording will get, and uploads files to or checks a running instance.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional .env file loaded before the environment")
	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newKeyCmd(),
		newUploadCmd(),
		newHealthCmd(),
	)
	return cmd
}

// loadConfig reads configuration and installs the logger it describes.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if _, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		return nil, err
	}
	return cfg, nil
}
