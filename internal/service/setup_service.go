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

const defaultColor = "#0ea5e9"

type SetupService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Setup, error)
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateSetupRequest) (*model.Setup, error)
	Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateSetupRequest) (*model.Setup, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type setupService struct {
	cfg       *config.Config
	log       *logger.Logger
	setupRepo repository.SetupRepository
	uow       repository.UnitOfWork
}

func NewSetupService(cfg *config.Config, log *logger.Logger, setupRepo repository.SetupRepository, uow repository.UnitOfWork) SetupService {
	return &setupService{cfg: cfg, log: log, setupRepo: setupRepo, uow: uow}
}

func (s *setupService) List(ctx context.Context, userID uuid.UUID) ([]model.Setup, error) {
	setups, err := s.setupRepo.List(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list setups", logger.ErrorField(err), logger.StringField("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list setups: %w", err)
	}
	return setups, nil
}

func (s *setupService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateSetupRequest) (*model.Setup, error) {
	setup := &model.Setup{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: nonEmpty(req.Description),
		Color:       req.Color,
	}
	if setup.Name == "" {
		return nil, newValidationError("name", "is required")
	}
	if setup.Color == "" {
		setup.Color = defaultColor
	}

	if err := s.setupRepo.Create(ctx, setup); err != nil {
		s.log.ErrorContext(ctx, "Failed to create setup", logger.ErrorField(err), logger.StringField("user_id", userID.String()))
		return nil, fmt.Errorf("failed to create setup: %w", err)
	}
	s.log.InfoContext(ctx, "Setup created", logger.StringField("setup_id", setup.ID.String()))
	return setup, nil
}

func (s *setupService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateSetupRequest) (*model.Setup, error) {
	var setup *model.Setup
	err := s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		var err error
		setup, err = s.setupRepo.Get(ctx, userID, id, opts...)
		if err != nil {
			return fmt.Errorf("failed to get setup: %w", err)
		}
		if setup == nil {
			return ErrSetupNotFound
		}

		if req.Name != nil {
			setup.Name = strings.TrimSpace(*req.Name)
			if setup.Name == "" {
				return newValidationError("name", "must not be empty")
			}
		}
		if req.Description != nil {
			setup.Description = nonEmpty(req.Description)
		}
		if req.Color != nil && *req.Color != "" {
			setup.Color = *req.Color
		}

		if err := s.setupRepo.Update(ctx, setup, opts...); err != nil {
			return fmt.Errorf("failed to update setup: %w", err)
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.log.ErrorContext(ctx, "Failed to update setup", logger.ErrorField(err), logger.StringField("setup_id", id.String()))
		}
		return nil, err
	}
	return setup, nil
}

// Delete removes the setup; trades keep existing with the reference cleared.
func (s *setupService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	affected, err := s.setupRepo.Delete(ctx, userID, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete setup", logger.ErrorField(err), logger.StringField("setup_id", id.String()))
		return fmt.Errorf("failed to delete setup: %w", err)
	}
	if affected == 0 {
		return ErrSetupNotFound
	}
	s.log.InfoContext(ctx, "Setup deleted", logger.StringField("setup_id", id.String()))
	return nil
}
