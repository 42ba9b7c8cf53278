package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"trading-journal/internal/model"
	"trading-journal/internal/strategy"
	"trading-journal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitHistory(t *testing.T, repo *fakeJobRepo) model.TaskExecutionHistory {
	t.Helper()
	select {
	case h := <-repo.done:
		return h
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish")
		return model.TaskExecutionHistory{}
	}
}

func TestTaskExecutor_Execute(t *testing.T) {
	tests := []struct {
		name       string
		job        *model.Job
		strategy   *fakeStrategy
		wantStatus model.TaskExecutionStatus
		wantCode   int32
		wantErrMsg string
	}{
		{
			name:       "completed",
			job:        &model.Job{ID: 1, Type: model.JobTypeDataCleanUp},
			strategy:   &fakeStrategy{jobType: model.JobTypeDataCleanUp, result: strategy.JobResult{ExitCode: strategy.JOB_EXIT_CODE_SUCCESS, Output: "[]"}},
			wantStatus: model.StatusCompleted,
			wantCode:   strategy.JOB_EXIT_CODE_SUCCESS,
		},
		{
			name:       "failed",
			job:        &model.Job{ID: 1, Type: model.JobTypeDataCleanUp},
			strategy:   &fakeStrategy{jobType: model.JobTypeDataCleanUp, result: strategy.JobResult{ExitCode: strategy.JOB_EXIT_CODE_FAILED}, err: errors.New("boom")},
			wantStatus: model.StatusFailed,
			wantCode:   strategy.JOB_EXIT_CODE_FAILED,
			wantErrMsg: "boom",
		},
		{
			name:       "unknown type",
			job:        &model.Job{ID: 1, Type: "mystery"},
			strategy:   &fakeStrategy{jobType: model.JobTypeDataCleanUp},
			wantStatus: model.StatusFailed,
			wantErrMsg: "job type not found",
		},
		{
			name:       "missing job",
			strategy:   &fakeStrategy{jobType: model.JobTypeDataCleanUp},
			wantStatus: model.StatusFailed,
			wantErrMsg: "job not found",
		},
		{
			name:       "timeout",
			job:        &model.Job{ID: 1, Type: model.JobTypeDataCleanUp},
			strategy:   &fakeStrategy{jobType: model.JobTypeDataCleanUp, block: true},
			wantStatus: model.StatusTimeout,
			wantCode:   strategy.JOB_EXIT_CODE_FAILED,
			wantErrMsg: context.DeadlineExceeded.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeJobRepo()
			if tt.job != nil {
				repo.jobs[tt.job.ID] = *tt.job
			}
			executor := NewTaskExecutor(testConfig(), logger.NewNop(), repo, map[model.JobType]strategy.JobExecutionStrategy{
				tt.strategy.GetType(): tt.strategy,
			})

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			require.NoError(t, executor.Execute(ctx, &model.TaskExecutionHistory{ID: 9, JobID: 1}))

			history := waitHistory(t, repo)
			assert.Equal(t, tt.wantStatus, history.Status)
			assert.True(t, history.CompletedAt.Valid)
			assert.Equal(t, tt.wantCode, history.ExitCode.Int32)
			assert.Equal(t, tt.wantErrMsg, history.ErrorMessage.String)
		})
	}
}

func TestSchedulerService_Execute(t *testing.T) {
	job := model.Job{ID: 3, Name: "cleanup", Type: model.JobTypeDataCleanUp, Timeout: 5}
	repo := newFakeJobRepo(job)
	repo.due = []model.TaskSchedule{
		{ID: 1, JobID: 3, CronExpression: "0 3 * * *", Job: job},
		{ID: 2, JobID: 3, CronExpression: "not a cron", Job: job},
	}
	executor := NewTaskExecutor(testConfig(), logger.NewNop(), repo, map[model.JobType]strategy.JobExecutionStrategy{
		model.JobTypeDataCleanUp: &fakeStrategy{jobType: model.JobTypeDataCleanUp, result: strategy.JobResult{ExitCode: strategy.JOB_EXIT_CODE_SUCCESS}},
	})
	scheduler := NewSchedulerService(testConfig(), logger.NewNop(), repo, executor)

	require.NoError(t, scheduler.Execute(context.Background()))
	history := waitHistory(t, repo)
	assert.Equal(t, model.StatusCompleted, history.Status)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.histories, 1)
	require.Len(t, repo.updated, 1)
	schedule := repo.updated[0]
	assert.Equal(t, uint(1), schedule.ID)
	require.True(t, schedule.NextExecution.Valid)
	next := schedule.NextExecution.Time
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(schedule.LastExecution.Time))
}

func TestSchedulerService_RunJobTask(t *testing.T) {
	job := model.Job{ID: 4, Type: model.JobTypeWeeklyDigest, Schedules: []model.TaskSchedule{{ID: 8, JobID: 4, CronExpression: "@weekly"}}}
	repo := newFakeJobRepo(job, model.Job{ID: 5, Type: model.JobTypeWeeklyDigest})
	executor := NewTaskExecutor(testConfig(), logger.NewNop(), repo, map[model.JobType]strategy.JobExecutionStrategy{
		model.JobTypeWeeklyDigest: &fakeStrategy{jobType: model.JobTypeWeeklyDigest, result: strategy.JobResult{ExitCode: strategy.JOB_EXIT_CODE_SKIPPED}},
	})
	scheduler := NewSchedulerService(testConfig(), logger.NewNop(), repo, executor)
	ctx := context.Background()

	require.NoError(t, scheduler.RunJobTask(ctx, 4))
	history := waitHistory(t, repo)
	assert.Equal(t, uint(8), history.ScheduleID)
	assert.Equal(t, int32(strategy.JOB_EXIT_CODE_SKIPPED), history.ExitCode.Int32)

	assert.ErrorIs(t, scheduler.RunJobTask(ctx, 5), ErrJobNotFound)
	assert.ErrorIs(t, scheduler.RunJobTask(ctx, 99), ErrJobNotFound)
}
