package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/impactlab/internal/study"
	"github.com/wonny/impactlab/internal/studyconfig"
	"github.com/wonny/impactlab/pkg/logger"
)

// PrefetchJob warms the local dataset caches for a study every morning,
// so interactive scoring never waits on the datalake.
type PrefetchJob struct {
	runner *study.Runner
	study  *studyconfig.Config
	logger *logger.Logger
}

// NewPrefetchJob creates a new prefetch job
func NewPrefetchJob(runner *study.Runner, sc *studyconfig.Config, log *logger.Logger) *PrefetchJob {
	return &PrefetchJob{
		runner: runner,
		study:  sc,
		logger: log,
	}
}

// Name returns the job name
func (j *PrefetchJob) Name() string {
	return "prefetch"
}

// Schedule returns the cron schedule (every day at 5 AM)
func (j *PrefetchJob) Schedule() string {
	return "0 0 5 * * *"
}

// Run executes the prefetch
func (j *PrefetchJob) Run(ctx context.Context) error {
	j.logger.WithField("study", j.study.Name).Info("Starting scheduled prefetch")

	if err := j.runner.Prefetch(ctx, j.study); err != nil {
		return fmt.Errorf("prefetch study %s: %w", j.study.Name, err)
	}

	j.logger.Info("Scheduled prefetch completed successfully")
	return nil
}
