// Command versesim runs the Adastrea faction and reputation simulation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/adastrea-verse/internal/config"
	"github.com/talgya/adastrea-verse/internal/content"
)

var (
	version    = "0.1.0-dev"
	configPath string
	envFile    string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "versesim",
		Short:         "Faction AI and Verse reputation simulation",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "versesim.yaml", "Config file (optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file (optional)")

	rootCmd.AddCommand(
		newRunCmd(),
		newScoreCmd(),
		newValidateCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the environment file and config, then installs the
// configured logger as the default.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath, true)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))
	return cfg, nil
}

// loadCatalog returns the configured catalog, or the embedded default.
func loadCatalog(path string) (*content.Catalog, error) {
	if path == "" {
		return content.Default()
	}
	return content.Load(path)
}
