package repository

import (
	"context"
	"errors"
	"strings"

	"trading-journal/internal/dto"
	"trading-journal/internal/model"
	"trading-journal/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TradeRepository interface {
	List(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter, opts ...utils.DBOption) ([]model.Trade, error)
	Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Trade, error)
	Create(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error
	Update(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error
	Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error)
}

type tradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

// List returns the user's trades, newest first, with setup and session loaded.
func (r *tradeRepository) List(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter, opts ...utils.DBOption) ([]model.Trade, error) {
	trades := []model.Trade{}
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	qFilter := []string{"user_id = ?"}
	qFilterParam := []interface{}{userID}

	if filter.StartDate != "" {
		qFilter = append(qFilter, "trade_date >= ?")
		qFilterParam = append(qFilterParam, filter.StartDate)
	}
	if filter.EndDate != "" {
		qFilter = append(qFilter, "trade_date <= ?")
		qFilterParam = append(qFilterParam, filter.EndDate)
	}
	if filter.Symbol != "" {
		qFilter = append(qFilter, "symbol ILIKE ?")
		qFilterParam = append(qFilterParam, "%"+utils.EscapeLike(filter.Symbol)+"%")
	}
	if filter.SetupID != "" {
		qFilter = append(qFilter, "setup_id = ?")
		qFilterParam = append(qFilterParam, filter.SetupID)
	}
	if filter.SessionID != "" {
		qFilter = append(qFilter, "session_id = ?")
		qFilterParam = append(qFilterParam, filter.SessionID)
	}
	if filter.Result != "" {
		qFilter = append(qFilter, "result = ?")
		qFilterParam = append(qFilterParam, filter.Result)
	}

	err := tx.Preload("Setup").
		Preload("Session").
		Where(strings.Join(qFilter, " AND "), qFilterParam...).
		Order("trade_date DESC").
		Order("trade_time DESC").
		Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// Get returns nil when the trade does not exist or belongs to someone else.
func (r *tradeRepository) Get(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (*model.Trade, error) {
	var trade model.Trade
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	err := tx.Preload("Setup").
		Preload("Session").
		Where("id = ? AND user_id = ?", id, userID).
		First(&trade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trade, nil
}

func (r *tradeRepository) Create(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Omit(clause.Associations).Create(trade).Error
}

// Update writes every column, so cleared optional fields become NULL.
func (r *tradeRepository) Update(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(trade).
		Select("*").
		Omit(clause.Associations, "id", "user_id", "created_at").
		Where("user_id = ?", trade.UserID).
		Updates(trade).Error
}

func (r *tradeRepository) Delete(ctx context.Context, userID, id uuid.UUID, opts ...utils.DBOption) (int64, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Trade{})
	return result.RowsAffected, result.Error
}
