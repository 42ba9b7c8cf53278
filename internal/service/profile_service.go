package service

import (
	"context"
	"fmt"
	"strings"

	"trading-journal/config"
	"trading-journal/internal/dto"
	"trading-journal/internal/model"
	"trading-journal/internal/repository"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/utils"

	"github.com/google/uuid"
)

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.User, error)
	Update(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*model.User, error)
}

type profileService struct {
	cfg      *config.Config
	log      *logger.Logger
	userRepo repository.UserRepository
	uow      repository.UnitOfWork
}

func NewProfileService(cfg *config.Config, log *logger.Logger, userRepo repository.UserRepository, uow repository.UnitOfWork) ProfileService {
	return &profileService{cfg: cfg, log: log, userRepo: userRepo, uow: uow}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get profile", logger.ErrorField(err), logger.StringField("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update applies a partial profile update. A chat id of 0 unlinks telegram.
func (s *profileService) Update(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*model.User, error) {
	var user *model.User
	err := s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		var err error
		user, err = s.userRepo.GetUserByID(ctx, userID, opts...)
		if err != nil {
			return fmt.Errorf("failed to get profile: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}

		if req.FullName != nil {
			user.FullName = normalizeName(req.FullName)
		}
		if req.AvatarURL != nil {
			user.AvatarURL = nonEmpty(req.AvatarURL)
		}
		if req.DefaultRiskPerTrade != nil {
			if !req.DefaultRiskPerTrade.IsPositive() {
				return newValidationError("default_risk_per_trade", "must be positive")
			}
			user.DefaultRiskPerTrade = *req.DefaultRiskPerTrade
		}
		if req.DefaultRiskReward != nil {
			if !req.DefaultRiskReward.IsPositive() {
				return newValidationError("default_risk_reward", "must be positive")
			}
			user.DefaultRiskReward = *req.DefaultRiskReward
		}
		if req.TelegramChatID != nil {
			if err := s.linkTelegram(ctx, user, *req.TelegramChatID, opts...); err != nil {
				return err
			}
		}

		if err := s.userRepo.UpdateUser(ctx, user, opts...); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.log.ErrorContext(ctx, "Failed to update profile", logger.ErrorField(err), logger.StringField("user_id", userID.String()))
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "Profile updated", logger.StringField("user_id", userID.String()))
	return user, nil
}

func (s *profileService) linkTelegram(ctx context.Context, user *model.User, chatID int64, opts ...utils.DBOption) error {
	if chatID == 0 {
		user.TelegramChatID = nil
		return nil
	}
	owner, err := s.userRepo.GetUserByTelegramChatID(ctx, chatID, opts...)
	if err != nil {
		return fmt.Errorf("failed to check telegram chat: %w", err)
	}
	if owner != nil && owner.ID != user.ID {
		return newValidationError("telegram_chat_id", "is linked to another account")
	}
	user.TelegramChatID = &chatID
	return nil
}

// normalizeName trims a display name; blank names become nil.
func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	return nonEmpty(&trimmed)
}
