package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Email               string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string          `gorm:"type:varchar(255);not null" json:"-"`
	FullName            *string         `gorm:"type:varchar(255)" json:"full_name"`
	AvatarURL           *string         `gorm:"type:text" json:"avatar_url"`
	DefaultRiskPerTrade decimal.Decimal `gorm:"type:numeric(10,4);not null;default:1" json:"default_risk_per_trade"`
	DefaultRiskReward   decimal.Decimal `gorm:"type:numeric(10,4);not null;default:2" json:"default_risk_reward"`
	TelegramChatID      *int64          `json:"telegram_chat_id"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
