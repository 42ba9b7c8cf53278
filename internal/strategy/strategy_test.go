package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"trading-journal/config"
	"trading-journal/internal/dto"
	"trading-journal/internal/model"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeUserRepo struct {
	users []model.User
	err   error
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetUserByTelegramChatID(ctx context.Context, chatID int64, opts ...utils.DBOption) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) ListUsersWithTelegram(ctx context.Context, opts ...utils.DBOption) ([]model.User, error) {
	return f.users, f.err
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	return nil
}

type fakeTradeRepo struct {
	mu      sync.Mutex
	trades  map[uuid.UUID][]model.Trade
	filters []dto.TradeFilter
}

func (f *fakeTradeRepo) List(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter, opts ...utils.DBOption) ([]model.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	return f.trades[userID], nil
}

func (f *fakeTradeRepo) Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Trade, error) {
	return nil, nil
}

func (f *fakeTradeRepo) Create(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeTradeRepo) Update(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeTradeRepo) Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages map[int64]string
	failFor  int64
}

func (f *fakeNotifier) SendMessage(ctx context.Context, chatID int64, message string, opts ...interface{}) error {
	if chatID == f.failFor {
		return errors.New("chat not found")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.messages == nil {
		f.messages = map[int64]string{}
	}
	f.messages[chatID] = message
	return nil
}

type fakeJobRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeJobRepo) FindJobsToSchedule(ctx context.Context, opts ...utils.DBOption) ([]model.TaskSchedule, error) {
	return nil, nil
}

func (f *fakeJobRepo) CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeJobRepo) UpdateTaskSchedule(ctx context.Context, schedule *model.TaskSchedule, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeJobRepo) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Job, error) {
	return nil, nil
}

func (f *fakeJobRepo) UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeJobRepo) Get(ctx context.Context, param *model.GetJobParam, opts ...utils.DBOption) ([]model.Job, error) {
	return nil, nil
}

func (f *fakeJobRepo) DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	f.cutoff = date
	return f.deleted, f.err
}

func chatUser(chatID int64) model.User {
	return model.User{ID: uuid.New(), TelegramChatID: &chatID}
}

func win(r float64) model.Trade {
	return model.Trade{ID: uuid.New(), Result: model.ResultWin, RMultiple: &r, TradeDate: model.NewDate(2024, 3, 1), TradeTime: "10:00"}
}

func TestWeeklyDigest_SendsSummaryPerUser(t *testing.T) {
	alice, bob := chatUser(100), chatUser(200)
	trades := &fakeTradeRepo{trades: map[uuid.UUID][]model.Trade{alice.ID: {win(2), win(1)}}}
	notifier := &fakeNotifier{}
	s := NewWeeklyDigestStrategy(&config.Config{}, logger.NewNop(), &fakeUserRepo{users: []model.User{alice, bob}}, trades, notifier)

	result, err := s.Execute(context.Background(), &model.Job{ID: 1, Payload: datatypes.JSON(`{"lookback_days":14}`)})
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)

	assert.Contains(t, notifier.messages[100], "Trades: 2 | Win rate: 100.0%")
	assert.Contains(t, notifier.messages[100], "Your last 14 days")
	assert.Contains(t, notifier.messages[200], "No closed trades yet.")

	require.Len(t, trades.filters, 2)
	start, err := time.Parse("2006-01-02", trades.filters[0].StartDate)
	require.NoError(t, err)
	end, err := time.Parse("2006-01-02", trades.filters[0].EndDate)
	require.NoError(t, err)
	assert.Equal(t, 13*24*time.Hour, end.Sub(start))

	var output []WeeklyDigestResult
	require.NoError(t, json.Unmarshal([]byte(result.Output), &output))
	assert.Len(t, output, 2)
}

func TestWeeklyDigest_PartialFailure(t *testing.T) {
	users := []model.User{chatUser(1), chatUser(2)}
	s := NewWeeklyDigestStrategy(&config.Config{}, logger.NewNop(), &fakeUserRepo{users: users}, &fakeTradeRepo{}, &fakeNotifier{failFor: 2})

	result, err := s.Execute(context.Background(), &model.Job{})
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_PARTIAL_SUCCESS), result.ExitCode)
	assert.Contains(t, result.Output, "chat not found")
}

func TestWeeklyDigest_NoUsers(t *testing.T) {
	s := NewWeeklyDigestStrategy(&config.Config{}, logger.NewNop(), &fakeUserRepo{}, &fakeTradeRepo{}, &fakeNotifier{})

	result, err := s.Execute(context.Background(), &model.Job{})
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_SKIPPED), result.ExitCode)
	assert.Equal(t, model.JobTypeWeeklyDigest, s.GetType())
}

func TestWeeklyDigest_BadPayload(t *testing.T) {
	s := NewWeeklyDigestStrategy(&config.Config{}, logger.NewNop(), &fakeUserRepo{}, &fakeTradeRepo{}, &fakeNotifier{})

	result, err := s.Execute(context.Background(), &model.Job{Payload: datatypes.JSON(`{"lookback_days":"x"}`)})
	assert.Error(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_FAILED), result.ExitCode)
}

func TestDataCleanUp(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		repo     *fakeJobRepo
		wantCode int32
		wantErr  bool
		wantDays int
	}{
		{name: "default retention", repo: &fakeJobRepo{deleted: 3}, wantCode: JOB_EXIT_CODE_SUCCESS, wantDays: 30},
		{name: "custom retention", payload: `{"retention_days":7}`, repo: &fakeJobRepo{}, wantCode: JOB_EXIT_CODE_SUCCESS, wantDays: 7},
		{name: "non positive retention", payload: `{"retention_days":0}`, repo: &fakeJobRepo{}, wantCode: JOB_EXIT_CODE_SKIPPED},
		{name: "repository error", payload: `{"retention_days":7}`, repo: &fakeJobRepo{err: errors.New("boom")}, wantCode: JOB_EXIT_CODE_FAILED, wantErr: true, wantDays: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDataCleanUpStrategy(&config.Config{}, logger.NewNop(), tt.repo)

			result, err := s.Execute(context.Background(), &model.Job{Payload: datatypes.JSON(tt.payload)})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCode, result.ExitCode)

			if tt.wantDays > 0 {
				age := time.Since(tt.repo.cutoff)
				assert.InDelta(t, float64(tt.wantDays*24), age.Hours(), 0.1)
			}
		})
	}
}
