package service

import (
	"context"
	"fmt"

	"trading-journal/config"
	"trading-journal/internal/analytics"
	"trading-journal/internal/dto"
	"trading-journal/internal/repository"
	"trading-journal/pkg/logger"

	"github.com/google/uuid"
)

type AnalyticsService interface {
	GetAnalytics(ctx context.Context, userID uuid.UUID, filter dto.AnalyticsFilter) (analytics.Summary, error)
}

type analyticsService struct {
	cfg       *config.Config
	log       *logger.Logger
	tradeRepo repository.TradeRepository
}

func NewAnalyticsService(cfg *config.Config, log *logger.Logger, tradeRepo repository.TradeRepository) AnalyticsService {
	return &analyticsService{cfg: cfg, log: log, tradeRepo: tradeRepo}
}

// GetAnalytics summarizes the user's trades within the inclusive date range.
func (s *analyticsService) GetAnalytics(ctx context.Context, userID uuid.UUID, filter dto.AnalyticsFilter) (analytics.Summary, error) {
	if filter.StartDate != "" && filter.EndDate != "" && filter.StartDate > filter.EndDate {
		return analytics.Summary{}, newValidationError("startDate", "must not be after endDate")
	}

	trades, err := s.tradeRepo.List(ctx, userID, filter.ToTradeFilter())
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load trades for analytics", logger.ErrorField(err), logger.StringField("user_id", userID.String()))
		return analytics.Summary{}, fmt.Errorf("failed to load trades: %w", err)
	}

	summary := analytics.Compute(trades)
	s.log.DebugContext(ctx, "Analytics computed",
		logger.IntField("trades", len(trades)),
		logger.IntField("closed", summary.TotalTrades),
	)
	return summary, nil
}
