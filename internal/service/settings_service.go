package service

import (
	"context"

	"trading-journal/config"
	"trading-journal/internal/dto"
	"trading-journal/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type SettingsService interface {
	Get(ctx context.Context, userID uuid.UUID) (*dto.Settings, error)
}

type settingsService struct {
	cfg            *config.Config
	log            *logger.Logger
	setupService   SetupService
	sessionService SessionService
	profileService ProfileService
}

func NewSettingsService(
	cfg *config.Config,
	log *logger.Logger,
	setupService SetupService,
	sessionService SessionService,
	profileService ProfileService,
) SettingsService {
	return &settingsService{
		cfg:            cfg,
		log:            log,
		setupService:   setupService,
		sessionService: sessionService,
		profileService: profileService,
	}
}

// Get loads setups, sessions and profile concurrently; the first error cancels the rest.
func (s *settingsService) Get(ctx context.Context, userID uuid.UUID) (*dto.Settings, error) {
	var settings dto.Settings
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		setups, err := s.setupService.List(gctx, userID)
		settings.Setups = setups
		return err
	})
	g.Go(func() error {
		sessions, err := s.sessionService.List(gctx, userID)
		settings.Sessions = sessions
		return err
	})
	g.Go(func() error {
		profile, err := s.profileService.Get(gctx, userID)
		settings.Profile = profile
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &settings, nil
}
