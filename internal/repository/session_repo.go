package repository

import (
	"context"
	"errors"
	"fmt"

	"trading-journal/config"
	"trading-journal/internal/model"
	"trading-journal/pkg/cache"
	"trading-journal/pkg/common"
	"trading-journal/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	List(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) ([]model.Session, error)
	Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Session, error)
	Create(ctx context.Context, session *model.Session, opts ...utils.DBOption) error
	Update(ctx context.Context, session *model.Session, opts ...utils.DBOption) error
	Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error)
}

type sessionRepository struct {
	cfg           *config.Config
	inmemoryCache cache.Cache
	db            *gorm.DB
}

func NewSessionRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB) SessionRepository {
	return &sessionRepository{cfg: cfg, inmemoryCache: inmemoryCache, db: db}
}

func (r *sessionRepository) List(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) ([]model.Session, error) {
	key := fmt.Sprintf(common.KEY_SESSIONS, userID)
	if val, found := cache.GetFromCache[[]model.Session](r.inmemoryCache, key); found {
		return val, nil
	}

	sessions := []model.Session{}
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Where("user_id = ?", userID).Order("start_time ASC").Order("name ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	r.inmemoryCache.Set(key, sessions, r.cfg.Cache.SettingsTTL)
	return sessions, nil
}

func (r *sessionRepository) Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Session, error) {
	var session model.Session
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Create(session).Error; err != nil {
		return err
	}
	r.invalidate(session.UserID)
	return nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.Session, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	err := tx.Model(session).
		Select("name", "start_time", "end_time", "color").
		Where("user_id = ?", session.UserID).
		Updates(session).Error
	if err != nil {
		return err
	}
	r.invalidate(session.UserID)
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Session{})
	if result.Error != nil {
		return 0, result.Error
	}
	r.invalidate(userID)
	return result.RowsAffected, nil
}

func (r *sessionRepository) invalidate(userID uuid.UUID) {
	invalidateSettings(r.inmemoryCache, userID)
}
