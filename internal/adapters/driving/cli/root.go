// Package cli provides the command-line interface for Ubuzima.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ubuzima/internal/logger"
)

var (
	// version is set at build time via SetVersion.
	version = "dev"

	cfgFile  string
	envFile  string
	noConfig bool
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "ubuzima",
	Short: "Ask questions about Rwanda's official NISR data",
	Long: `Ubuzima answers questions about Rwanda using official datasets from the
National Institute of Statistics of Rwanda (NISR): nutrition indicators and
the survey catalogue.

Questions outside that domain are refused. Answers cite the NISR records
they were grounded on.

Get started:
  ubuzima index                 # build the vector index from ./data
  ubuzima ask "What is the stunting rate in Rwanda?"
  ubuzima chat                  # interactive session
  ubuzima serve                 # HTTP API on port 8000`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default ~/.ubuzima/config.toml; .yaml and .yml also accepted)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false,
		"ignore config files; use defaults and environment variables only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setup runs before every command.
func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	return loadEnvFile(envFile)
}

// loadEnvFile loads variables from path without overriding the environment.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	logger.Debug("Loaded environment from %s", path)
	return nil
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases the shared services afterwards.
func Execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}
