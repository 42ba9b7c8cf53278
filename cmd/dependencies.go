package cmd

import (
	"context"
	"fmt"

	"trading-journal/config"
	"trading-journal/internal/dto"
	"trading-journal/pkg/cache"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/postgres"
	"trading-journal/pkg/storage"
	"trading-journal/pkg/telegram"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

type AppDependency struct {
	db        *postgres.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	store     storage.ObjectStore
	notifier  telegram.Notifier

	// nil when no bot token is configured
	telegram    *telegram.TelegramRateLimiter
	telegramBot *telebot.Bot
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.ErrorField(err))
		return nil, err
	}

	dep := &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: dto.NewValidator(),
		db:        db,
		echo:      echo.New(),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		store:     storage.New(cfg.Storage),
		notifier:  telegram.NewNopNotifier(log),
	}

	if cfg.Telegram.BotToken == "" {
		log.Info("Telegram bot token is empty, bot and digests are disabled")
		return dep, nil
	}

	pref := telebot.Settings{
		Token: cfg.Telegram.BotToken,
		OnError: func(err error, c telebot.Context) {
			log.Error("Telegram bot error", logger.ErrorField(err))
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Error("Failed to create telegram bot", logger.ErrorField(err))
		_ = db.Close()
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	dep.telegramBot = bot
	dep.telegram = telegram.NewTelegramRateLimiter(&cfg.Telegram, log, bot)
	dep.notifier = dep.telegram
	return dep, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	defer d.log.Sync()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
