package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the local cache status",
	Long: `Shows which locations are cached locally for each dataset and how
many the current study still needs.

Example:
  go run ./cmd/impactlab status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, _, runner, err := initRunner()
	if err != nil {
		return err
	}

	sc, err := loadStudy()
	if err != nil {
		return err
	}

	mobility, err := runner.Mobility().CachedLocations()
	if err != nil {
		return fmt.Errorf("list mobility cache: %w", err)
	}
	cases, err := runner.Cases().CachedLocations()
	if err != nil {
		return fmt.Errorf("list cases cache: %w", err)
	}

	fmt.Printf("Study: %s (%d locations)\n\n", sc.Name, len(sc.Locations))
	printCacheStatus("mobility", mobility, sc.Locations)
	printCacheStatus("cases", cases, sc.Locations)
	return nil
}

func printCacheStatus(name string, cached, wanted []string) {
	have := make(map[string]bool, len(cached))
	for _, id := range cached {
		have[id] = true
	}

	missing := 0
	for _, id := range wanted {
		if !have[id] {
			missing++
		}
	}

	fmt.Printf("%s: %d cached, %d missing\n", name, len(cached), missing)
	if missing > 0 && missing <= 10 {
		for _, id := range wanted {
			if !have[id] {
				fmt.Printf("  missing %s\n", id)
			}
		}
	}
}
