package dto

import (
	"trading-journal/internal/model"

	"github.com/shopspring/decimal"
)

type CreateSetupRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateSetupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

type CreateSessionRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateSessionRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	StartTime *string `json:"start_time" validate:"omitempty,clock"`
	EndTime   *string `json:"end_time" validate:"omitempty,clock"`
	Color     *string `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateProfileRequest struct {
	FullName            *string          `json:"full_name" validate:"omitempty,max=255"`
	AvatarURL           *string          `json:"avatar_url" validate:"omitempty,url"`
	DefaultRiskPerTrade *decimal.Decimal `json:"default_risk_per_trade"`
	DefaultRiskReward   *decimal.Decimal `json:"default_risk_reward"`
	TelegramChatID      *int64           `json:"telegram_chat_id"`
}

// Settings is everything the settings page needs in one payload.
type Settings struct {
	Setups   []model.Setup   `json:"setups"`
	Sessions []model.Session `json:"sessions"`
	Profile  *model.User     `json:"profile"`
}
