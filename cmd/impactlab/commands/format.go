package commands

import (
	"fmt"
	"time"

	"github.com/wonny/impactlab/internal/study"
)

// trendLabels maps trend codes to readable names for CLI output.
var trendLabels = map[string]string{
	"I":  "invalid",
	"P":  "positive",
	"N":  "negative",
	"FP": "flip to positive",
	"FN": "flip to negative",
}

// printPivotResult prints one scored pivot in a fixed-width block.
func printPivotResult(pr study.PivotResult) {
	fmt.Println("───────────────────────────────────────────────────────────")
	if pr.Label != "" {
		fmt.Printf("  %s\n", pr.Label)
	}
	fmt.Printf("  Location  : %s\n", pr.Location)
	fmt.Printf("  Metric    : %s\n", pr.Metric)
	fmt.Printf("  Pivot     : %s\n", pr.Date)

	if !pr.Result.Defined {
		fmt.Printf("  Score     : undefined (pre %d, post %d valid points)\n",
			pr.Result.Pre.Actual, pr.Result.Post.Actual)
		return
	}

	fmt.Printf("  Score     : %.4f (%s)\n", pr.Result.Score, trendLabels[string(pr.Trend)])
	fmt.Printf("  Pre trend : slope %+.4f over %d points (skipped %d days)\n",
		pr.Result.Pre.Slope, pr.Result.Pre.Actual, pr.Result.Pre.SkippedDays)
	fmt.Printf("  Post trend: slope %+.4f over %d points (skipped %d days)\n",
		pr.Result.Post.Slope, pr.Result.Post.Actual, pr.Result.Post.SkippedDays)
	for _, w := range pr.Result.Warnings {
		fmt.Printf("  Warning   : %s\n", w)
	}
}

// printStudyResult prints a study run summary followed by each pivot.
func printStudyResult(res *study.Result) {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Study     : %s\n", res.Name)
	fmt.Printf("  Pivots    : %d\n", len(res.Pivots))
	fmt.Printf("  Duration  : %s\n", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
	for _, pr := range res.Pivots {
		printPivotResult(pr)
	}
	fmt.Println("═══════════════════════════════════════════════════════════")
}
