package service

import (
	"context"
	"fmt"

	"trading-journal/config"
	"trading-journal/internal/analytics"
	"trading-journal/internal/dto"
	"trading-journal/internal/repository"
	"trading-journal/pkg/logger"
)

// TelegramBotService builds the replies of the chat bot commands.
type TelegramBotService interface {
	Start(ctx context.Context, req *dto.RequestUserTelegram) (string, error)
	Stats(ctx context.Context, req *dto.RequestUserTelegram) (string, error)
}

type telegramBotService struct {
	cfg              *config.Config
	log              *logger.Logger
	userRepo         repository.UserRepository
	analyticsService AnalyticsService
}

func NewTelegramBotService(
	cfg *config.Config,
	log *logger.Logger,
	userRepo repository.UserRepository,
	analyticsService AnalyticsService,
) TelegramBotService {
	return &telegramBotService{
		cfg:              cfg,
		log:              log,
		userRepo:         userRepo,
		analyticsService: analyticsService,
	}
}

// Start greets the chat and tells an unlinked user how to link it.
func (s *telegramBotService) Start(ctx context.Context, req *dto.RequestUserTelegram) (string, error) {
	user, err := s.userRepo.GetUserByTelegramChatID(ctx, req.ChatID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get user by chat id", logger.ErrorField(err), logger.Field("chat_id", req.ChatID))
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return fmt.Sprintf("Hi %s, this chat is linked to %s.\nSend /stats for your all time summary.", req.DisplayName(), user.Email), nil
	}
	return fmt.Sprintf("Hi %s!\nYour chat id is %d.\nPaste it into the Telegram field of your profile to receive summaries here.", req.DisplayName(), req.ChatID), nil
}

// Stats replies with the all time summary of the linked user.
func (s *telegramBotService) Stats(ctx context.Context, req *dto.RequestUserTelegram) (string, error) {
	user, err := s.userRepo.GetUserByTelegramChatID(ctx, req.ChatID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get user by chat id", logger.ErrorField(err), logger.Field("chat_id", req.ChatID))
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "This chat is not linked yet. Send /start to get your chat id.", nil
	}

	summary, err := s.analyticsService.GetAnalytics(ctx, user.ID, dto.AnalyticsFilter{})
	if err != nil {
		return "", err
	}
	return analytics.FormatSummary("All time", summary), nil
}
