package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trading-journal/config"
	"trading-journal/internal/model"
	"trading-journal/internal/repository"
	"trading-journal/internal/strategy"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/utils"
)

type TaskExecutor interface {
	Execute(ctx context.Context, taskHistory *model.TaskExecutionHistory) error
}

type taskExecutor struct {
	cfg                *config.Config
	log                *logger.Logger
	jobRepo            repository.JobRepository
	executorStrategies map[model.JobType]strategy.JobExecutionStrategy
}

func NewTaskExecutor(cfg *config.Config, log *logger.Logger, jobRepo repository.JobRepository, executorStrategies map[model.JobType]strategy.JobExecutionStrategy) TaskExecutor {
	return &taskExecutor{
		jobRepo:            jobRepo,
		cfg:                cfg,
		log:                log,
		executorStrategies: executorStrategies,
	}
}

func (t *taskExecutor) Execute(ctx context.Context, taskHistory *model.TaskExecutionHistory) error {
	t.log.InfoContext(ctx, "Processing job", logger.IntField("job_id", int(taskHistory.JobID)), logger.IntField("history_id", int(taskHistory.ID)))

	job, err := t.jobRepo.FindByID(ctx, taskHistory.JobID)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to find job", logger.ErrorField(err), logger.IntField("job_id", int(taskHistory.JobID)))
		return fmt.Errorf("failed to find job: %w", err)
	}

	var executor strategy.JobExecutionStrategy
	if job != nil {
		executor = t.executorStrategies[job.Type]
	}

	switch {
	case job == nil:
		t.log.ErrorContext(ctx, "Job not found", logger.IntField("job_id", int(taskHistory.JobID)))
		taskHistory.Status = model.StatusFailed
		taskHistory.ErrorMessage = sql.NullString{String: "job not found", Valid: true}
	case executor == nil:
		t.log.ErrorContext(ctx, "Job type not found", logger.IntField("job_id", int(taskHistory.JobID)), logger.StringField("job_type", string(job.Type)))
		taskHistory.Status = model.StatusFailed
		taskHistory.ErrorMessage = sql.NullString{String: "job type not found", Valid: true}
	default:
		result, err := executor.Execute(ctx, job)
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			t.log.ErrorContext(ctx, "Job timed out", logger.IntField("job_id", int(taskHistory.JobID)))
			taskHistory.Status = model.StatusTimeout
			taskHistory.ErrorMessage = sql.NullString{String: context.DeadlineExceeded.Error(), Valid: true}
		case err != nil:
			t.log.ErrorContext(ctx, "Failed to execute job", logger.ErrorField(err), logger.IntField("job_id", int(taskHistory.JobID)))
			taskHistory.Status = model.StatusFailed
			taskHistory.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		default:
			taskHistory.Status = model.StatusCompleted
		}
		taskHistory.ExitCode = sql.NullInt32{Int32: result.ExitCode, Valid: true}
		taskHistory.Output = sql.NullString{String: result.Output, Valid: true}
	}

	// ctx may already be past its deadline here
	ctx = context.WithoutCancel(ctx)
	taskHistory.CompletedAt = sql.NullTime{Time: utils.TimeNowUTC(), Valid: true}
	if err := t.jobRepo.UpdateTaskExecutionHistory(ctx, taskHistory); err != nil {
		t.log.ErrorContext(ctx, "Failed to update task execution history", logger.ErrorField(err), logger.IntField("job_id", int(taskHistory.JobID)))
		return fmt.Errorf("failed to update task execution history: %w", err)
	}

	return nil
}
