package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"trading-journal/config"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/ratelimit"
	"trading-journal/pkg/utils"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Notifier delivers plain messages to a telegram chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, message string, opts ...interface{}) error
}

// Sender is the part of *telebot.Bot used for delivery.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

type TelegramRateLimiter struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	globalLimiter *rate.Limiter
	chatLimiters  *ratelimit.LimiterStore
	sender        Sender
	wg            sync.WaitGroup
}

func NewTelegramRateLimiter(cfg *config.TelegramConfig, log *logger.Logger, sender Sender) *TelegramRateLimiter {
	return &TelegramRateLimiter{
		cfg:           cfg,
		log:           log,
		sender:        sender,
		globalLimiter: rate.NewLimiter(rate.Limit(cfg.MaxGlobalRequestPerSecond), cfg.MaxGlobalRequestPerSecond),
		chatLimiters:  ratelimit.NewLimiterStore(rate.Limit(cfg.MaxUserRequestPerSecond), cfg.MaxUserRequestPerSecond),
	}
}

// SendMessage waits for both the chat and the global budget, then sends.
func (t *TelegramRateLimiter) SendMessage(ctx context.Context, chatID int64, message string, opts ...interface{}) error {
	if err := t.checkRateLimit(ctx, chatID); err != nil {
		return err
	}
	if _, err := t.sender.Send(&telebot.Chat{ID: chatID}, message, opts...); err != nil {
		t.log.ErrorContext(ctx, "Failed to send message", logger.ErrorField(err), logger.Field("chat_id", chatID))
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Reply answers the chat of an incoming update.
func (t *TelegramRateLimiter) Reply(ctx context.Context, c telebot.Context, message string, opts ...interface{}) error {
	chat := c.Chat()
	if chat == nil {
		return fmt.Errorf("update has no chat")
	}
	return t.SendMessage(ctx, chat.ID, message, opts...)
}

func (t *TelegramRateLimiter) checkRateLimit(ctx context.Context, chatID int64) error {
	chatLimiter := t.chatLimiters.GetLimiter(strconv.FormatInt(chatID, 10))

	if err := chatLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for chat rate limit", logger.ErrorField(err))
		return err
	}
	if err := t.globalLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for global rate limit", logger.ErrorField(err))
		return err
	}
	return nil
}

func (t *TelegramRateLimiter) StartCleanupExpired(ctx context.Context) {
	t.wg.Add(1)
	utils.GoSafe(t.log, func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.cfg.RateLimitCleanupDuration)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.log.Info("Received signal to stop Telegram rate limiter cleanup expired")
				return
			case <-ticker.C:
				if removed := t.chatLimiters.Cleanup(t.cfg.RatelimitExpireDuration); removed > 0 {
					t.log.Debug("Expired chat limiters removed", logger.IntField("removed", removed))
				}
			}
		}
	})
}

func (t *TelegramRateLimiter) StopCleanupExpired() {
	t.wg.Wait()
	t.log.Info("Telegram rate limiter stopped")
}

type nopNotifier struct {
	log *logger.Logger
}

// NewNopNotifier is used when no bot token is configured.
func NewNopNotifier(log *logger.Logger) Notifier {
	return &nopNotifier{log: log}
}

func (n *nopNotifier) SendMessage(ctx context.Context, chatID int64, message string, opts ...interface{}) error {
	n.log.DebugContext(ctx, "Telegram disabled, message dropped", logger.Field("chat_id", chatID))
	return nil
}
