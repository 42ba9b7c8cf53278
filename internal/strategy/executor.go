package strategy

import (
	"context"
	"fmt"

	"trading-journal/internal/model"
)

const (
	JOB_EXIT_CODE_SUCCESS         = 200
	JOB_EXIT_CODE_FAILED          = 500
	JOB_EXIT_CODE_SKIPPED         = 204
	JOB_EXIT_CODE_PARTIAL_SUCCESS = 206
)

type JobResult struct {
	ExitCode int32  `json:"exit_code"`
	Output   string `json:"output"`
}

// JobExecutionStrategy defines the interface for different job execution strategies.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *model.Job) (JobResult, error)
	GetType() model.JobType
}

func failed(format string, err error) (JobResult, error) {
	return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: err.Error()}, fmt.Errorf(format+": %w", err)
}
