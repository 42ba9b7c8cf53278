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

type SetupRepository interface {
	List(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) ([]model.Setup, error)
	Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Setup, error)
	Create(ctx context.Context, setup *model.Setup, opts ...utils.DBOption) error
	Update(ctx context.Context, setup *model.Setup, opts ...utils.DBOption) error
	Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error)
}

type setupRepository struct {
	cfg           *config.Config
	inmemoryCache cache.Cache
	db            *gorm.DB
}

func NewSetupRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB) SetupRepository {
	return &setupRepository{cfg: cfg, inmemoryCache: inmemoryCache, db: db}
}

func (r *setupRepository) List(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) ([]model.Setup, error) {
	key := fmt.Sprintf(common.KEY_SETUPS, userID)
	if val, found := cache.GetFromCache[[]model.Setup](r.inmemoryCache, key); found {
		return val, nil
	}

	setups := []model.Setup{}
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Where("user_id = ?", userID).Order("created_at ASC").Find(&setups).Error; err != nil {
		return nil, err
	}
	r.inmemoryCache.Set(key, setups, r.cfg.Cache.SettingsTTL)
	return setups, nil
}

func (r *setupRepository) Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Setup, error) {
	var setup model.Setup
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&setup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setup, nil
}

func (r *setupRepository) Create(ctx context.Context, setup *model.Setup, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Create(setup).Error; err != nil {
		return err
	}
	r.invalidate(setup.UserID)
	return nil
}

func (r *setupRepository) Update(ctx context.Context, setup *model.Setup, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	err := tx.Model(setup).
		Select("name", "description", "color").
		Where("user_id = ?", setup.UserID).
		Updates(setup).Error
	if err != nil {
		return err
	}
	r.invalidate(setup.UserID)
	return nil
}

func (r *setupRepository) Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Setup{})
	if result.Error != nil {
		return 0, result.Error
	}
	r.invalidate(userID)
	return result.RowsAffected, nil
}

func (r *setupRepository) invalidate(userID uuid.UUID) {
	invalidateSettings(r.inmemoryCache, userID)
}
