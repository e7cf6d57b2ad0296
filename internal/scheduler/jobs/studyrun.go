package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/impactlab/internal/study"
	"github.com/wonny/impactlab/internal/studyconfig"
	"github.com/wonny/impactlab/pkg/logger"
)

// StudyRunJob scores every pivot of a study nightly and persists the
// result as a JSON artifact.
type StudyRunJob struct {
	runner     *study.Runner
	study      *studyconfig.Config
	resultsDir string
	logger     *logger.Logger
}

// NewStudyRunJob creates a new study run job
func NewStudyRunJob(runner *study.Runner, sc *studyconfig.Config, resultsDir string, log *logger.Logger) *StudyRunJob {
	return &StudyRunJob{
		runner:     runner,
		study:      sc,
		resultsDir: resultsDir,
		logger:     log,
	}
}

// Name returns the job name
func (j *StudyRunJob) Name() string {
	return "study_run"
}

// Schedule returns the cron schedule (every day at 6 AM, after prefetch)
func (j *StudyRunJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run executes the study and writes the artifact
func (j *StudyRunJob) Run(ctx context.Context) error {
	j.logger.WithField("study", j.study.Name).Info("Starting scheduled study run")

	if len(j.study.Pivots) == 0 {
		j.logger.Warn("Study has no pivots, nothing to score")
		return nil
	}

	res, err := j.runner.Run(ctx, j.study)
	if err != nil {
		return fmt.Errorf("run study %s: %w", j.study.Name, err)
	}

	path, err := study.WriteResult(j.resultsDir, res)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"study":  j.study.Name,
		"pivots": len(res.Pivots),
		"path":   path,
	}).Info("Scheduled study run completed successfully")
	return nil
}
