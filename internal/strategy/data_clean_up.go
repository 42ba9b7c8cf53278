package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trading-journal/config"
	"trading-journal/internal/model"
	"trading-journal/internal/repository"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/utils"
)

const defaultRetentionDays = 30

type DataCleanUpPayload struct {
	RetentionDays int `json:"retention_days"`
}

type DataCleanUpResult struct {
	Table string `json:"table"`
	Total int64  `json:"total"`
	Error string `json:"error,omitempty"`
}

type DataCleanUpStrategy struct {
	cfg     *config.Config
	log     *logger.Logger
	jobRepo repository.JobRepository
}

func NewDataCleanUpStrategy(cfg *config.Config, log *logger.Logger, jobRepo repository.JobRepository) JobExecutionStrategy {
	return &DataCleanUpStrategy{
		cfg:     cfg,
		log:     log,
		jobRepo: jobRepo,
	}
}

// Execute removes execution history older than the payload's retention window.
func (s *DataCleanUpStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	payload := DataCleanUpPayload{RetentionDays: defaultRetentionDays}
	if err := job.DecodePayload(&payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to decode job payload", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return failed("failed to decode job payload", err)
	}
	if payload.RetentionDays <= 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "retention_days must be positive"}, nil
	}

	cutoff := utils.TimeNowUTC().AddDate(0, 0, -payload.RetentionDays)
	s.log.InfoContext(ctx, "Starting data clean up", logger.StringField("cutoff", cutoff.Format(time.RFC3339)))

	result := DataCleanUpResult{Table: model.TaskExecutionHistory{}.TableName()}
	total, err := s.jobRepo.DeleteTaskHistoryOlderThan(ctx, cutoff)
	result.Total = total
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete task history", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		result.Error = fmt.Sprintf("failed to delete rows older than %s: %v", cutoff.Format(time.RFC3339), err)
	}

	res, marshalErr := json.Marshal([]DataCleanUpResult{result})
	if marshalErr != nil {
		return failed("failed to marshal output", marshalErr)
	}
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: string(res)}, fmt.Errorf("failed to delete task history: %w", err)
	}

	s.log.InfoContext(ctx, "Data clean up completed", logger.Field("deleted", total))
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(res)}, nil
}

func (s *DataCleanUpStrategy) GetType() model.JobType {
	return model.JobTypeDataCleanUp
}
