package repository

import (
	"fmt"

	"trading-journal/config"
	"trading-journal/pkg/cache"
	"trading-journal/pkg/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	JobRepo     JobRepository
	TradeRepo   TradeRepository
	SetupRepo   SetupRepository
	SessionRepo SessionRepository
	UserRepo    UserRepository
	UnitOfWork  UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, inmemoryCache cache.Cache) *Repository {
	return &Repository{
		JobRepo:     NewJobRepository(db),
		TradeRepo:   NewTradeRepository(db),
		SetupRepo:   NewSetupRepository(cfg, inmemoryCache, db),
		SessionRepo: NewSessionRepository(cfg, inmemoryCache, db),
		UserRepo:    NewUserRepository(db),
		UnitOfWork:  NewUnitOfWork(db),
	}
}

// invalidateSettings drops every cached settings list of the user. Setups and
// sessions are served together, so a write to either refreshes both.
func invalidateSettings(c cache.Cache, userID uuid.UUID) {
	c.DeletePrefix(fmt.Sprintf(common.KEY_SETTINGS, userID))
}
