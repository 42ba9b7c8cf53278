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

type SessionService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Session, error)
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateSessionRequest) (*model.Session, error)
	Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateSessionRequest) (*model.Session, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type sessionService struct {
	cfg         *config.Config
	log         *logger.Logger
	sessionRepo repository.SessionRepository
	uow         repository.UnitOfWork
}

func NewSessionService(cfg *config.Config, log *logger.Logger, sessionRepo repository.SessionRepository, uow repository.UnitOfWork) SessionService {
	return &sessionService{cfg: cfg, log: log, sessionRepo: sessionRepo, uow: uow}
}

func (s *sessionService) List(ctx context.Context, userID uuid.UUID) ([]model.Session, error) {
	sessions, err := s.sessionRepo.List(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list sessions", logger.ErrorField(err), logger.StringField("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateSessionRequest) (*model.Session, error) {
	startTime, err := normalizeClock("start_time", req.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := normalizeClock("end_time", req.EndTime)
	if err != nil {
		return nil, err
	}
	session := &model.Session{
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		StartTime: startTime,
		EndTime:   endTime,
		Color:     req.Color,
	}
	if session.Name == "" {
		return nil, newValidationError("name", "is required")
	}
	if session.Color == "" {
		session.Color = defaultColor
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.log.ErrorContext(ctx, "Failed to create session", logger.ErrorField(err), logger.StringField("user_id", userID.String()))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.log.InfoContext(ctx, "Session created", logger.StringField("session_id", session.ID.String()))
	return session, nil
}

// Update applies a partial update. Sessions may wrap midnight, so end before start is allowed.
func (s *sessionService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateSessionRequest) (*model.Session, error) {
	var session *model.Session
	err := s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		var err error
		session, err = s.sessionRepo.Get(ctx, userID, id, opts...)
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		if session == nil {
			return ErrSessionNotFound
		}

		if req.Name != nil {
			session.Name = strings.TrimSpace(*req.Name)
			if session.Name == "" {
				return newValidationError("name", "must not be empty")
			}
		}
		if req.StartTime != nil {
			if session.StartTime, err = normalizeClock("start_time", *req.StartTime); err != nil {
				return err
			}
		}
		if req.EndTime != nil {
			if session.EndTime, err = normalizeClock("end_time", *req.EndTime); err != nil {
				return err
			}
		}
		if req.Color != nil && *req.Color != "" {
			session.Color = *req.Color
		}

		if err := s.sessionRepo.Update(ctx, session, opts...); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.log.ErrorContext(ctx, "Failed to update session", logger.ErrorField(err), logger.StringField("session_id", id.String()))
		}
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	affected, err := s.sessionRepo.Delete(ctx, userID, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete session", logger.ErrorField(err), logger.StringField("session_id", id.String()))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	s.log.InfoContext(ctx, "Session deleted", logger.StringField("session_id", id.String()))
	return nil
}
