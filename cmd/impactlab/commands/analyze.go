package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/impactlab/internal/study"
	"github.com/wonny/impactlab/internal/studyconfig"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [study.yaml]",
	Short: "Score every pivot of a study",
	Long: `Loads a study definition, scores every pivot in it, prints the
results, and writes a JSON artifact to the results directory.

Example:
  go run ./cmd/impactlab analyze study.yaml
  go run ./cmd/impactlab analyze study.yaml --no-artifact`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeNoArtifact bool

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeNoArtifact, "no-artifact", false, "skip writing the JSON result artifact")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, runner, err := initRunner()
	if err != nil {
		return err
	}

	sc, _, err := studyconfig.Load(args[0])
	if err != nil {
		return fmt.Errorf("load study %s: %w", args[0], err)
	}
	if len(sc.Pivots) == 0 {
		return fmt.Errorf("study %s defines no pivots", sc.Name)
	}

	res, err := runner.Run(context.Background(), sc)
	if err != nil {
		return fmt.Errorf("run study: %w", err)
	}

	printStudyResult(res)

	if !analyzeNoArtifact {
		path, err := study.WriteResult(filepath.Join(cfg.Data.Dir, "results"), res)
		if err != nil {
			return err
		}
		log.WithField("path", path).Info("Result artifact written")
		fmt.Printf("Result written to %s\n", path)
	}

	return nil
}
