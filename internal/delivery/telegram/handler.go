package telegram

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"trading-journal/internal/dto"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

const helpMessage = `📓 *Trading Journal bot*

/start - show your chat id or the linked account
/stats - all time summary of your closed trades
/help - show this message

A weekly digest of your last 7 days is sent to linked chats.`

func (t *TelegramBotHandler) RegisterHandlers() {
	t.echo.POST("/api/v1/telegram/webhook", t.handleWebhook)

	timeout := t.cfg.Telegram.TimeoutDuration
	t.bot.Handle("/start", middleware.WithContext(t.ctx, timeout, t.handleStart))
	t.bot.Handle("/stats", middleware.WithContext(t.ctx, timeout, t.handleStats))
	t.bot.Handle("/help", middleware.WithContext(t.ctx, timeout, t.handleHelp))
	t.bot.Handle(telebot.OnText, middleware.WithContext(t.ctx, timeout, t.handleText))
}

func (t *TelegramBotHandler) handleWebhook(c echo.Context) error {
	if secret := t.cfg.Telegram.WebhookSecret; secret != "" {
		got := c.Request().Header.Get(HeaderSecretToken)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
	}

	var update telebot.Update
	if err := c.Bind(&update); err != nil {
		t.log.ErrorContext(c.Request().Context(), "Cannot bind JSON", logger.ErrorField(err))
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid update"))
	}
	t.bot.ProcessUpdate(update)
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "ok", nil))
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	message, err := t.service.TelegramBotService.Start(ctx, dto.ToRequestUserTelegram(c))
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to handle /start", logger.ErrorField(err))
		return t.telegram.Reply(ctx, c, "Something went wrong, please try again later.")
	}
	return t.telegram.Reply(ctx, c, message)
}

func (t *TelegramBotHandler) handleStats(ctx context.Context, c telebot.Context) error {
	message, err := t.service.TelegramBotService.Stats(ctx, dto.ToRequestUserTelegram(c))
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to handle /stats", logger.ErrorField(err))
		return t.telegram.Reply(ctx, c, "Could not load your stats, please try again later.")
	}
	return t.telegram.Reply(ctx, c, message)
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	return t.telegram.Reply(ctx, c, helpMessage, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
}

func (t *TelegramBotHandler) handleText(ctx context.Context, c telebot.Context) error {
	if strings.HasPrefix(c.Text(), "/") {
		return t.telegram.Reply(ctx, c, "Unknown command. Send /help to see what I can do.")
	}
	return nil
}
