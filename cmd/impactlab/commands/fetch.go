package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and cache all study data",
	Long: `Downloads mobility and case-report data for every location in the
study and caches it as per-location CSV files. Locations already
cached are skipped, so re-running is cheap.

Example:
  go run ./cmd/impactlab fetch
  go run ./cmd/impactlab fetch --study study.yaml`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	_, _, runner, err := initRunner()
	if err != nil {
		return err
	}

	sc, err := loadStudy()
	if err != nil {
		return err
	}

	fmt.Printf("Fetching %d locations (%s to %s)\n", len(sc.Locations), sc.Start, sc.End)

	if err := runner.Prefetch(context.Background(), sc); err != nil {
		return fmt.Errorf("fetch study data: %w", err)
	}

	fmt.Println("All locations cached")
	return nil
}
