package dto

import (
	"trading-journal/internal/model"

	"github.com/shopspring/decimal"
)

type CreateTradeRequest struct {
	Symbol       string            `json:"symbol" validate:"required,max=32"`
	AssetType    model.AssetType   `json:"asset_type" validate:"required,oneof=crypto stock forex futures"`
	TradeDate    string            `json:"trade_date" validate:"required,datetime=2006-01-02"`
	TradeTime    string            `json:"trade_time" validate:"required,clock"`
	SessionID    *string           `json:"session_id" validate:"omitempty,uuid"`
	HTFTimeframe string            `json:"htf_timeframe" validate:"required,max=16"`
	LTFTimeframe string            `json:"ltf_timeframe" validate:"required,max=16"`
	SetupID      *string           `json:"setup_id" validate:"omitempty,uuid"`
	EntryPrice   *decimal.Decimal  `json:"entry_price" validate:"required"`
	StopLoss     *decimal.Decimal  `json:"stop_loss" validate:"required"`
	TakeProfit   *decimal.Decimal  `json:"take_profit" validate:"required"`
	PositionSize *decimal.Decimal  `json:"position_size" validate:"required"`
	RiskReward   *decimal.Decimal  `json:"risk_reward" validate:"required"`
	RiskAmount   *decimal.Decimal  `json:"risk_amount"`
	Result       model.TradeResult `json:"result" validate:"required,oneof=win loss breakeven open"`
	ExitPrice    *decimal.Decimal  `json:"exit_price"`
	RMultiple    *float64          `json:"r_multiple"`
	PnL          *decimal.Decimal  `json:"pnl"`
	Emotion      *model.Emotion    `json:"emotion" validate:"omitempty,oneof=calm confident fearful greedy fomo revenge uncertain disciplined"`
	Notes        *string           `json:"notes"`

	ScreenshotBefore *string `json:"screenshot_before" validate:"omitempty,url"`
	ScreenshotAfter  *string `json:"screenshot_after" validate:"omitempty,url"`
}

// UpdateTradeRequest carries a partial update. Nil fields are left untouched;
// an empty setup_id, session_id or emotion clears the reference.
type UpdateTradeRequest struct {
	Symbol       *string            `json:"symbol" validate:"omitempty,min=1,max=32"`
	AssetType    *model.AssetType   `json:"asset_type" validate:"omitempty,oneof=crypto stock forex futures"`
	TradeDate    *string            `json:"trade_date" validate:"omitempty,datetime=2006-01-02"`
	TradeTime    *string            `json:"trade_time" validate:"omitempty,clock"`
	SessionID    *string            `json:"session_id" validate:"omitempty,uuid"`
	HTFTimeframe *string            `json:"htf_timeframe" validate:"omitempty,min=1,max=16"`
	LTFTimeframe *string            `json:"ltf_timeframe" validate:"omitempty,min=1,max=16"`
	SetupID      *string            `json:"setup_id" validate:"omitempty,uuid"`
	EntryPrice   *decimal.Decimal   `json:"entry_price"`
	StopLoss     *decimal.Decimal   `json:"stop_loss"`
	TakeProfit   *decimal.Decimal   `json:"take_profit"`
	PositionSize *decimal.Decimal   `json:"position_size"`
	RiskReward   *decimal.Decimal   `json:"risk_reward"`
	RiskAmount   *decimal.Decimal   `json:"risk_amount"`
	Result       *model.TradeResult `json:"result" validate:"omitempty,oneof=win loss breakeven open"`
	ExitPrice    *decimal.Decimal   `json:"exit_price"`
	RMultiple    *float64           `json:"r_multiple"`
	PnL          *decimal.Decimal   `json:"pnl"`
	Emotion      *model.Emotion     `json:"emotion" validate:"omitempty,oneof=calm confident fearful greedy fomo revenge uncertain disciplined"`
	Notes        *string            `json:"notes"`

	ScreenshotBefore *string `json:"screenshot_before" validate:"omitempty,url"`
	ScreenshotAfter  *string `json:"screenshot_after" validate:"omitempty,url"`
}

// TradeFilter holds the optional list filters. Dates are inclusive.
type TradeFilter struct {
	StartDate string `query:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Symbol    string `query:"symbol" validate:"omitempty,max=32"`
	SetupID   string `query:"setupId" validate:"omitempty,uuid"`
	SessionID string `query:"sessionId" validate:"omitempty,uuid"`
	Result    string `query:"result" validate:"omitempty,oneof=win loss breakeven open"`
}

type AnalyticsFilter struct {
	StartDate string `query:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// ToTradeFilter narrows the trade list to the analytics date range.
func (f AnalyticsFilter) ToTradeFilter() TradeFilter {
	return TradeFilter{StartDate: f.StartDate, EndDate: f.EndDate}
}

type ScreenshotKind string

const (
	ScreenshotBefore ScreenshotKind = "before"
	ScreenshotAfter  ScreenshotKind = "after"
)

func (k ScreenshotKind) Valid() bool {
	return k == ScreenshotBefore || k == ScreenshotAfter
}

// UploadScreenshotRequest is the decoded multipart upload.
type UploadScreenshotRequest struct {
	Kind        ScreenshotKind
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}
