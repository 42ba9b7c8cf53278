package telegram

import (
	"context"

	"trading-journal/config"
	"trading-journal/internal/service"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/telegram"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

// HeaderSecretToken is sent by telegram on every webhook call when the
// webhook was registered with a secret.
const HeaderSecretToken = "X-Telegram-Bot-Api-Secret-Token"

type TelegramBotHandler struct {
	ctx      context.Context
	cfg      *config.Config
	bot      *telebot.Bot
	log      *logger.Logger
	telegram *telegram.TelegramRateLimiter
	echo     *echo.Echo
	service  *service.Service
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	telegram *telegram.TelegramRateLimiter,
	echo *echo.Echo,
	service *service.Service) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:      ctx,
		cfg:      cfg,
		log:      log,
		bot:      bot,
		telegram: telegram,
		echo:     echo,
		service:  service,
	}
}

// Start registers the webhook with telegram and mounts the update route.
func (t *TelegramBotHandler) Start() {
	t.log.Info("Starting Telegram bot...")

	if t.cfg.Telegram.WebhookURL == "" {
		t.log.Info("Telegram webhook is disabled")
		return
	}

	t.log.Info("Setting webhook URL", logger.StringField("webhook_url", t.cfg.Telegram.WebhookURL))
	err := t.bot.SetWebhook(&telebot.Webhook{
		SecretToken: t.cfg.Telegram.WebhookSecret,
		Endpoint: &telebot.WebhookEndpoint{
			PublicURL: t.cfg.Telegram.WebhookURL,
		},
	})
	if err != nil {
		t.log.Error("Failed to set telegram webhook", logger.ErrorField(err))
	}

	t.RegisterHandlers()
}

// Stop waits for in flight replies. Updates arrive through the echo route, so
// there is no poller to stop.
func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")
	t.telegram.StopCleanupExpired()
	t.log.Info("Telegram bot shutdown completed")
}
