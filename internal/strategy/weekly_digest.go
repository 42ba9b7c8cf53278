package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"trading-journal/config"
	"trading-journal/internal/analytics"
	"trading-journal/internal/dto"
	"trading-journal/internal/model"
	"trading-journal/internal/repository"
	"trading-journal/pkg/common"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/telegram"
	"trading-journal/pkg/utils"
)

const (
	defaultLookbackDays = 7
	digestConcurrency   = 4
)

type WeeklyDigestPayload struct {
	LookbackDays int `json:"lookback_days"`
}

type WeeklyDigestResult struct {
	UserID string `json:"user_id"`
	Trades int    `json:"trades"`
	Error  string `json:"error,omitempty"`
}

type WeeklyDigestStrategy struct {
	cfg       *config.Config
	log       *logger.Logger
	userRepo  repository.UserRepository
	tradeRepo repository.TradeRepository
	notifier  telegram.Notifier
}

func NewWeeklyDigestStrategy(
	cfg *config.Config,
	log *logger.Logger,
	userRepo repository.UserRepository,
	tradeRepo repository.TradeRepository,
	notifier telegram.Notifier,
) JobExecutionStrategy {
	return &WeeklyDigestStrategy{
		cfg:       cfg,
		log:       log,
		userRepo:  userRepo,
		tradeRepo: tradeRepo,
		notifier:  notifier,
	}
}

// Execute sends every user with a linked chat the summary of their recent trades.
func (s *WeeklyDigestStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	payload := WeeklyDigestPayload{LookbackDays: defaultLookbackDays}
	if err := job.DecodePayload(&payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to decode job payload", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return failed("failed to decode job payload", err)
	}
	if payload.LookbackDays <= 0 {
		payload.LookbackDays = defaultLookbackDays
	}

	users, err := s.userRepo.ListUsersWithTelegram(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list users with telegram", logger.ErrorField(err))
		return failed("failed to list users", err)
	}
	if len(users) == 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "no users with a linked telegram chat"}, nil
	}

	today := utils.StartOfDay(utils.TimeNowUTC())
	filter := dto.TradeFilter{
		StartDate: today.AddDate(0, 0, 1-payload.LookbackDays).Format(common.DateLayout),
		EndDate:   today.Format(common.DateLayout),
	}
	title := fmt.Sprintf("Your last %d days (%s to %s)", payload.LookbackDays, filter.StartDate, filter.EndDate)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		results   []WeeklyDigestResult
		failures  int
		semaphore = make(chan struct{}, digestConcurrency)
	)

	for _, user := range users {
		user := user
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}
		utils.GoSafe(s.log, func() {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			result := WeeklyDigestResult{UserID: user.ID.String()}
			trades, err := s.sendDigest(ctx, user, filter, title)
			result.Trades = trades
			if err != nil {
				s.log.ErrorContext(ctx, "Failed to send weekly digest", logger.ErrorField(err), logger.StringField("user_id", user.ID.String()))
				result.Error = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
			}
			results = append(results, result)
		})
	}
	wg.Wait()

	s.log.InfoContext(ctx, "Weekly digest completed", logger.IntField("users", len(results)), logger.IntField("failures", failures))

	if len(results) == 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "no digest sent"}, nil
	}
	res, err := json.Marshal(results)
	if err != nil {
		return failed("failed to marshal results", err)
	}

	switch {
	case failures == 0:
		return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(res)}, nil
	case failures < len(results):
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: string(res)}, nil
	default:
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: string(res)}, nil
	}
}

func (s *WeeklyDigestStrategy) sendDigest(ctx context.Context, user model.User, filter dto.TradeFilter, title string) (int, error) {
	trades, err := s.tradeRepo.List(ctx, user.ID, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to list trades: %w", err)
	}

	summary := analytics.Compute(trades)
	if err := s.notifier.SendMessage(ctx, *user.TelegramChatID, analytics.FormatSummary(title, summary)); err != nil {
		return summary.TotalTrades, err
	}
	return summary.TotalTrades, nil
}

func (s *WeeklyDigestStrategy) GetType() model.JobType {
	return model.JobTypeWeeklyDigest
}
