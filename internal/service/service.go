package service

import (
	"trading-journal/config"
	"trading-journal/internal/model"
	"trading-journal/internal/repository"
	"trading-journal/internal/strategy"
	"trading-journal/pkg/cache"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/storage"
	"trading-journal/pkg/telegram"
)

type Service struct {
	AuthService        AuthService
	TradeService       TradeService
	AnalyticsService   AnalyticsService
	SetupService       SetupService
	SessionService     SessionService
	ProfileService     ProfileService
	SettingsService    SettingsService
	ScreenshotService  ScreenshotService
	SchedulerService   SchedulerService
	TaskExecutor       TaskExecutor
	TelegramBotService TelegramBotService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	store storage.ObjectStore,
	notifier telegram.Notifier,
) *Service {
	screenshotService := NewScreenshotService(cfg, log, store)
	analyticsService := NewAnalyticsService(cfg, log, repo.TradeRepo)
	setupService := NewSetupService(cfg, log, repo.SetupRepo, repo.UnitOfWork)
	sessionService := NewSessionService(cfg, log, repo.SessionRepo, repo.UnitOfWork)
	profileService := NewProfileService(cfg, log, repo.UserRepo, repo.UnitOfWork)

	executorStrategies := make(map[model.JobType]strategy.JobExecutionStrategy)
	for _, s := range []strategy.JobExecutionStrategy{
		strategy.NewWeeklyDigestStrategy(cfg, log, repo.UserRepo, repo.TradeRepo, notifier),
		strategy.NewDataCleanUpStrategy(cfg, log, repo.JobRepo),
	} {
		executorStrategies[s.GetType()] = s
	}
	taskExecutor := NewTaskExecutor(cfg, log, repo.JobRepo, executorStrategies)

	return &Service{
		AuthService:        NewAuthService(cfg, log, repo.UserRepo, inmemoryCache),
		TradeService:       NewTradeService(cfg, log, repo.TradeRepo, repo.SetupRepo, repo.SessionRepo, repo.UnitOfWork, screenshotService),
		AnalyticsService:   analyticsService,
		SetupService:       setupService,
		SessionService:     sessionService,
		ProfileService:     profileService,
		SettingsService:    NewSettingsService(cfg, log, setupService, sessionService, profileService),
		ScreenshotService:  screenshotService,
		SchedulerService:   NewSchedulerService(cfg, log, repo.JobRepo, taskExecutor),
		TaskExecutor:       taskExecutor,
		TelegramBotService: NewTelegramBotService(cfg, log, repo.UserRepo, analyticsService),
	}
}
