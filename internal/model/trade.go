package model

import (
	"time"

	"trading-journal/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Trade struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Symbol    string    `gorm:"type:varchar(32);not null" json:"symbol"`
	AssetType AssetType `gorm:"type:varchar(16);not null" json:"asset_type"`

	TradeDate Date       `gorm:"type:date;not null" json:"trade_date"`
	TradeTime string     `gorm:"type:varchar(8);not null" json:"trade_time"`
	SessionID *uuid.UUID `gorm:"type:uuid" json:"session_id"`

	HTFTimeframe string `gorm:"column:htf_timeframe;type:varchar(16);not null" json:"htf_timeframe"`
	LTFTimeframe string `gorm:"column:ltf_timeframe;type:varchar(16);not null" json:"ltf_timeframe"`

	SetupID *uuid.UUID `gorm:"type:uuid" json:"setup_id"`

	EntryPrice   decimal.Decimal  `gorm:"type:numeric(24,8);not null" json:"entry_price"`
	StopLoss     decimal.Decimal  `gorm:"type:numeric(24,8);not null" json:"stop_loss"`
	TakeProfit   decimal.Decimal  `gorm:"type:numeric(24,8);not null" json:"take_profit"`
	PositionSize decimal.Decimal  `gorm:"type:numeric(24,8);not null" json:"position_size"`
	RiskReward   decimal.Decimal  `gorm:"type:numeric(10,4);not null" json:"risk_reward"`
	RiskAmount   *decimal.Decimal `gorm:"type:numeric(24,8)" json:"risk_amount"`

	Result    TradeResult      `gorm:"type:varchar(16);not null" json:"result"`
	ExitPrice *decimal.Decimal `gorm:"type:numeric(24,8)" json:"exit_price"`
	RMultiple *float64         `gorm:"column:r_multiple;type:numeric(12,4)" json:"r_multiple"`
	PnL       *decimal.Decimal `gorm:"column:pnl;type:numeric(24,8)" json:"pnl"`

	Emotion          *Emotion `gorm:"type:varchar(16)" json:"emotion"`
	Notes            *string  `gorm:"type:text" json:"notes"`
	ScreenshotBefore *string  `gorm:"type:text" json:"screenshot_before"`
	ScreenshotAfter  *string  `gorm:"type:text" json:"screenshot_after"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Setup   *Setup   `gorm:"foreignKey:SetupID;references:ID" json:"setup,omitempty"`
	Session *Session `gorm:"foreignKey:SessionID;references:ID" json:"session,omitempty"`
}

func (Trade) TableName() string {
	return "trades"
}

func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsClosed reports whether the trade takes part in performance statistics.
func (t *Trade) IsClosed() bool {
	return t.Result != ResultOpen && t.RMultiple != nil
}

// R returns the realized R-multiple, zero when unknown.
func (t *Trade) R() float64 {
	if t.RMultiple == nil {
		return 0
	}
	return *t.RMultiple
}

// ExecutedAt combines trade date and time of day into one instant.
func (t *Trade) ExecutedAt() time.Time {
	return utils.CombineDateClock(t.TradeDate.Time, t.TradeTime)
}

// ComputeRMultiple derives the realized move divided by |entry - stop|. A stop
// above the entry marks a short, so the move is measured downwards. It
// reports false when the trade is open, has no exit, or carries no risk.
func ComputeRMultiple(result TradeResult, entry, stop decimal.Decimal, exit *decimal.Decimal) (float64, bool) {
	if result == ResultOpen || exit == nil {
		return 0, false
	}
	risk := entry.Sub(stop).Abs()
	if !risk.IsPositive() {
		return 0, false
	}
	move := exit.Sub(entry)
	if stop.GreaterThan(entry) {
		move = move.Neg()
	}
	r, _ := move.DivRound(risk, 4).Float64()
	return r, true
}
