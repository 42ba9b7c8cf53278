package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"trading-journal/config"
	"trading-journal/internal/dto"
	"trading-journal/internal/model"
	"trading-journal/internal/strategy"
	"trading-journal/pkg/utils"

	"github.com/google/uuid"
)

var errStore = errors.New("store unavailable")

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.Auth{
			JWTSecret: "0123456789abcdef0123456789abcdef",
			TokenTTL:  time.Hour,
			Issuer:    "trading-journal-test",
		},
		Scheduler: config.Scheduler{MaxConcurrency: 2, TimeoutDuration: time.Second},
		Storage:   config.Storage{MaxUploadBytes: 1024},
	}
}

type fakeTradeRepo struct {
	mu       sync.Mutex
	trades   map[uuid.UUID]model.Trade
	setups   *fakeSetupRepo
	sessions *fakeSessionRepo
	err      error
}

func newFakeTradeRepo(setups *fakeSetupRepo, sessions *fakeSessionRepo) *fakeTradeRepo {
	return &fakeTradeRepo{trades: map[uuid.UUID]model.Trade{}, setups: setups, sessions: sessions}
}

func (f *fakeTradeRepo) withJoins(t model.Trade) model.Trade {
	if t.SetupID != nil && f.setups != nil {
		if s, ok := f.setups.items[*t.SetupID]; ok {
			t.Setup = &s
		}
	}
	if t.SessionID != nil && f.sessions != nil {
		if s, ok := f.sessions.items[*t.SessionID]; ok {
			t.Session = &s
		}
	}
	return t
}

func (f *fakeTradeRepo) List(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter, opts ...utils.DBOption) ([]model.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	trades := []model.Trade{}
	for _, t := range f.trades {
		if t.UserID != userID {
			continue
		}
		day := t.TradeDate.String()
		if filter.StartDate != "" && day < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && day > filter.EndDate {
			continue
		}
		if filter.Symbol != "" && !strings.Contains(strings.ToLower(t.Symbol), strings.ToLower(filter.Symbol)) {
			continue
		}
		trades = append(trades, f.withJoins(t))
	}
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].ExecutedAt().After(trades[j].ExecutedAt())
	})
	return trades, nil
}

func (f *fakeTradeRepo) Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.trades[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	t = f.withJoins(t)
	return &t, nil
}

func (f *fakeTradeRepo) Create(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if trade.ID == uuid.Nil {
		trade.ID = uuid.New()
	}
	stored := *trade
	stored.Setup, stored.Session = nil, nil
	f.trades[trade.ID] = stored
	return nil
}

func (f *fakeTradeRepo) Update(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error {
	return f.Create(ctx, trade, opts...)
}

func (f *fakeTradeRepo) Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trades[id]
	if !ok || t.UserID != userID {
		return 0, nil
	}
	delete(f.trades, id)
	return 1, nil
}

type fakeSetupRepo struct {
	items map[uuid.UUID]model.Setup
	err   error
}

func newFakeSetupRepo(setups ...model.Setup) *fakeSetupRepo {
	f := &fakeSetupRepo{items: map[uuid.UUID]model.Setup{}}
	for _, s := range setups {
		f.items[s.ID] = s
	}
	return f
}

func (f *fakeSetupRepo) List(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) ([]model.Setup, error) {
	if f.err != nil {
		return nil, f.err
	}
	setups := []model.Setup{}
	for _, s := range f.items {
		if s.UserID == userID {
			setups = append(setups, s)
		}
	}
	sort.Slice(setups, func(i, j int) bool { return setups[i].Name < setups[j].Name })
	return setups, nil
}

func (f *fakeSetupRepo) Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Setup, error) {
	s, ok := f.items[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSetupRepo) Create(ctx context.Context, setup *model.Setup, opts ...utils.DBOption) error {
	if setup.ID == uuid.Nil {
		setup.ID = uuid.New()
	}
	f.items[setup.ID] = *setup
	return nil
}

func (f *fakeSetupRepo) Update(ctx context.Context, setup *model.Setup, opts ...utils.DBOption) error {
	f.items[setup.ID] = *setup
	return nil
}

func (f *fakeSetupRepo) Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error) {
	s, ok := f.items[id]
	if !ok || s.UserID != userID {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

type fakeSessionRepo struct {
	items map[uuid.UUID]model.Session
}

func newFakeSessionRepo(sessions ...model.Session) *fakeSessionRepo {
	f := &fakeSessionRepo{items: map[uuid.UUID]model.Session{}}
	for _, s := range sessions {
		f.items[s.ID] = s
	}
	return f
}

func (f *fakeSessionRepo) List(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) ([]model.Session, error) {
	sessions := []model.Session{}
	for _, s := range f.items {
		if s.UserID == userID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartTime < sessions[j].StartTime })
	return sessions, nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Session, error) {
	s, ok := f.items[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *model.Session, opts ...utils.DBOption) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	f.items[session.ID] = *session
	return nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, session *model.Session, opts ...utils.DBOption) error {
	f.items[session.ID] = *session
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error) {
	s, ok := f.items[id]
	if !ok || s.UserID != userID {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
	err   error
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uuid.UUID]model.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) find(match func(model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.User, error) {
	return f.find(func(u model.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error) {
	return f.find(func(u model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUserRepo) GetUserByTelegramChatID(ctx context.Context, chatID int64, opts ...utils.DBOption) (*model.User, error) {
	return f.find(func(u model.User) bool { return u.TelegramChatID != nil && *u.TelegramChatID == chatID })
}

func (f *fakeUserRepo) ListUsersWithTelegram(ctx context.Context, opts ...utils.DBOption) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []model.User
	for _, u := range f.users {
		if u.TelegramChatID != nil {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = *user
	return nil
}

// fakeUnitOfWork runs fn without a transaction.
type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Run(ctx context.Context, fn func(opts ...utils.DBOption) error) error {
	return fn()
}

type fakeScreenshots struct {
	paths   []string
	removed []string
	err     error
}

func (f *fakeScreenshots) Upload(ctx context.Context, path string, upload dto.UploadScreenshotRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.paths = append(f.paths, path)
	return "https://cdn.test/" + path + ".png", nil
}

func (f *fakeScreenshots) UploadForUser(ctx context.Context, userID uuid.UUID, upload dto.UploadScreenshotRequest) (string, error) {
	return f.Upload(ctx, userID.String()+"/uploads/x", upload)
}

func (f *fakeScreenshots) CheckOwnership(userID uuid.UUID, field, rawURL string) error {
	return nil
}

func (f *fakeScreenshots) Remove(ctx context.Context, userID uuid.UUID, url string) error {
	f.removed = append(f.removed, url)
	return nil
}

type fakeObjectStore struct {
	path        string
	contentType string
	size        int
	deleted     []string
	err         error
}

func (f *fakeObjectStore) Upload(ctx context.Context, path, contentType string, content []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.path, f.contentType, f.size = path, contentType, len(content)
	return "https://cdn.test/" + path, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeObjectStore) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

type fakeJobRepo struct {
	mu        sync.Mutex
	jobs      map[uint]model.Job
	due       []model.TaskSchedule
	histories []model.TaskExecutionHistory
	updated   []model.TaskSchedule
	done      chan model.TaskExecutionHistory
}

func newFakeJobRepo(jobs ...model.Job) *fakeJobRepo {
	f := &fakeJobRepo{jobs: map[uint]model.Job{}, done: make(chan model.TaskExecutionHistory, 8)}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobRepo) FindJobsToSchedule(ctx context.Context, opts ...utils.DBOption) ([]model.TaskSchedule, error) {
	return f.due, nil
}

func (f *fakeJobRepo) CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	history.ID = uint(len(f.histories) + 1)
	f.histories = append(f.histories, *history)
	return nil
}

func (f *fakeJobRepo) UpdateTaskSchedule(ctx context.Context, schedule *model.TaskSchedule, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, *schedule)
	return nil
}

func (f *fakeJobRepo) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

func (f *fakeJobRepo) UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	f.done <- *history
	return nil
}

func (f *fakeJobRepo) Get(ctx context.Context, param *model.GetJobParam, opts ...utils.DBOption) ([]model.Job, error) {
	var jobs []model.Job
	for _, id := range param.IDs {
		if j, ok := f.jobs[id]; ok {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

func (f *fakeJobRepo) DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	return 0, nil
}

type fakeStrategy struct {
	jobType model.JobType
	result  strategy.JobResult
	err     error
	block   bool
}

func (f *fakeStrategy) Execute(ctx context.Context, job *model.Job) (strategy.JobResult, error) {
	if f.block {
		<-ctx.Done()
		return strategy.JobResult{ExitCode: strategy.JOB_EXIT_CODE_FAILED}, ctx.Err()
	}
	return f.result, f.err
}

func (f *fakeStrategy) GetType() model.JobType {
	return f.jobType
}
