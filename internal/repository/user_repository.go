package repository

import (
	"context"
	"errors"

	"trading-journal/internal/model"
	"trading-journal/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error)
	GetUserByTelegramChatID(ctx context.Context, chatID int64, opts ...utils.DBOption) (*model.User, error)
	ListUsersWithTelegram(ctx context.Context, opts ...utils.DBOption) ([]model.User, error)
	CreateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error
	UpdateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.User, error) {
	return r.first(ctx, "id = ?", id, opts...)
}

// GetUserByEmail matches case-insensitively; emails are stored lower case.
func (r *userRepository) GetUserByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email, opts...)
}

func (r *userRepository) GetUserByTelegramChatID(ctx context.Context, chatID int64, opts ...utils.DBOption) (*model.User, error) {
	return r.first(ctx, "telegram_chat_id = ?", chatID, opts...)
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}, opts ...utils.DBOption) (*model.User, error) {
	var user model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where(query, arg).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, result.Error
	}

	return &user, nil
}

func (r *userRepository) ListUsersWithTelegram(ctx context.Context, opts ...utils.DBOption) ([]model.User, error) {
	var users []model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Where("telegram_chat_id IS NOT NULL").Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(user).Error
}

func (r *userRepository) UpdateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(user).
		Select("full_name", "avatar_url", "default_risk_per_trade", "default_risk_reward", "telegram_chat_id").
		Updates(user).Error
}
