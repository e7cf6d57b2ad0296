package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/impactlab/internal/acquire"
	"github.com/wonny/impactlab/internal/external/datalake"
	"github.com/wonny/impactlab/internal/study"
	"github.com/wonny/impactlab/internal/studyconfig"
	"github.com/wonny/impactlab/pkg/config"
	"github.com/wonny/impactlab/pkg/logger"
)

var (
	// Global flags
	studyFile string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "impactlab",
	Short: "Impact scoring for pandemic-era mobility and case data",
	Long: `impactlab measures how strongly a dated event bent the trend of a
daily time series: it fits linear trends to the windows before and
after a pivot date and reports the area between them, normalized by
the baseline.

Data comes from a C3 AI Data Lake style endpoint and is cached as
per-location CSV files, so repeated runs touch no remote endpoint.

Usage:
  go run ./cmd/impactlab [command]

Examples:
  go run ./cmd/impactlab fetch
  go run ./cmd/impactlab score --location Germany --metric Google_GroceryMobility --date 2020-03-22
  go run ./cmd/impactlab analyze study.yaml
  go run ./cmd/impactlab api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&studyFile, "study", "", "study definition file (default is the built-in baseline study)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initRunner loads config and builds the shared study runner.
func initRunner() (*config.Config, *logger.Logger, *study.Runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	provider := datalake.NewClient(cfg.Datalake, log)
	runner := study.NewRunner(cfg, provider, log)

	return cfg, log, runner, nil
}

var _ acquire.Provider = (*datalake.Client)(nil)

// loadStudy resolves the --study flag, falling back to the built-in
// baseline study.
func loadStudy() (*studyconfig.Config, error) {
	if studyFile == "" {
		return studyconfig.Default(), nil
	}
	sc, _, err := studyconfig.Load(studyFile)
	if err != nil {
		return nil, fmt.Errorf("load study %s: %w", studyFile, err)
	}
	return sc, nil
}
