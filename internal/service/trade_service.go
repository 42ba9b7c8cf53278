package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"trading-journal/config"
	"trading-journal/internal/dto"
	"trading-journal/internal/model"
	"trading-journal/internal/repository"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TradeService interface {
	List(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter) ([]model.Trade, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Trade, error)
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateTradeRequest) (*model.Trade, error)
	Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateTradeRequest) (*model.Trade, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	AttachScreenshot(ctx context.Context, userID, id uuid.UUID, upload dto.UploadScreenshotRequest) (*model.Trade, error)
	ExportCSV(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter, w io.Writer) error
}

type tradeService struct {
	cfg         *config.Config
	log         *logger.Logger
	tradeRepo   repository.TradeRepository
	setupRepo   repository.SetupRepository
	sessionRepo repository.SessionRepository
	uow         repository.UnitOfWork
	screenshots ScreenshotService
}

func NewTradeService(
	cfg *config.Config,
	log *logger.Logger,
	tradeRepo repository.TradeRepository,
	setupRepo repository.SetupRepository,
	sessionRepo repository.SessionRepository,
	uow repository.UnitOfWork,
	screenshots ScreenshotService,
) TradeService {
	return &tradeService{
		cfg:         cfg,
		log:         log,
		tradeRepo:   tradeRepo,
		setupRepo:   setupRepo,
		sessionRepo: sessionRepo,
		uow:         uow,
		screenshots: screenshots,
	}
}

func (s *tradeService) List(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter) ([]model.Trade, error) {
	trades, err := s.tradeRepo.List(ctx, userID, filter)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list trades", logger.ErrorField(err), logger.StringField("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

func (s *tradeService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Trade, error) {
	trade, err := s.tradeRepo.Get(ctx, userID, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get trade", logger.ErrorField(err), logger.StringField("trade_id", id.String()))
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	if trade == nil {
		return nil, ErrTradeNotFound
	}
	return trade, nil
}

func (s *tradeService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateTradeRequest) (*model.Trade, error) {
	tradeDate, err := model.ParseDate(req.TradeDate)
	if err != nil {
		return nil, newValidationError("trade_date", "%v", err)
	}
	tradeTime, err := normalizeClock("trade_time", req.TradeTime)
	if err != nil {
		return nil, err
	}

	trade := &model.Trade{
		UserID:           userID,
		Symbol:           strings.TrimSpace(req.Symbol),
		AssetType:        req.AssetType,
		TradeDate:        tradeDate,
		TradeTime:        tradeTime,
		HTFTimeframe:     req.HTFTimeframe,
		LTFTimeframe:     req.LTFTimeframe,
		EntryPrice:       *req.EntryPrice,
		StopLoss:         *req.StopLoss,
		TakeProfit:       *req.TakeProfit,
		PositionSize:     *req.PositionSize,
		RiskReward:       *req.RiskReward,
		RiskAmount:       req.RiskAmount,
		Result:           req.Result,
		ExitPrice:        req.ExitPrice,
		PnL:              req.PnL,
		Emotion:          nonEmptyEmotion(req.Emotion),
		Notes:            nonEmpty(req.Notes),
		ScreenshotBefore: nonEmpty(req.ScreenshotBefore),
		ScreenshotAfter:  nonEmpty(req.ScreenshotAfter),
	}

	if err := s.checkScreenshots(userID, trade); err != nil {
		return nil, err
	}
	if trade.SetupID, err = s.ownedSetup(ctx, userID, req.SetupID); err != nil {
		return nil, err
	}
	if trade.SessionID, err = s.ownedSession(ctx, userID, req.SessionID); err != nil {
		return nil, err
	}
	trade.RMultiple = resolveRMultiple(trade, req.RMultiple, nil)

	if err := s.tradeRepo.Create(ctx, trade); err != nil {
		s.log.ErrorContext(ctx, "Failed to create trade", logger.ErrorField(err), logger.StringField("user_id", userID.String()))
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	s.log.InfoContext(ctx, "Trade created",
		logger.StringField("trade_id", trade.ID.String()),
		logger.StringField("symbol", trade.Symbol),
		logger.StringField("result", string(trade.Result)),
	)
	return s.Get(ctx, userID, trade.ID)
}

func (s *tradeService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateTradeRequest) (*model.Trade, error) {
	err := s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		trade, err := s.tradeRepo.Get(ctx, userID, id, opts...)
		if err != nil {
			return fmt.Errorf("failed to get trade: %w", err)
		}
		if trade == nil {
			return ErrTradeNotFound
		}

		previousR := trade.RMultiple
		if err := s.applyUpdate(ctx, userID, trade, req); err != nil {
			return err
		}
		switch {
		case trade.Result == model.ResultOpen:
			trade.RMultiple = nil
		case req.RMultiple != nil:
			trade.RMultiple = req.RMultiple
		case outcomeChanged(req):
			trade.RMultiple = resolveRMultiple(trade, nil, previousR)
		}

		if err := s.tradeRepo.Update(ctx, trade, opts...); err != nil {
			return fmt.Errorf("failed to update trade: %w", err)
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.log.ErrorContext(ctx, "Failed to update trade", logger.ErrorField(err), logger.StringField("trade_id", id.String()))
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "Trade updated", logger.StringField("trade_id", id.String()))
	return s.Get(ctx, userID, id)
}

func (s *tradeService) applyUpdate(ctx context.Context, userID uuid.UUID, trade *model.Trade, req dto.UpdateTradeRequest) error {
	if req.Symbol != nil {
		trade.Symbol = strings.TrimSpace(*req.Symbol)
	}
	if req.AssetType != nil {
		trade.AssetType = *req.AssetType
	}
	if req.TradeDate != nil {
		date, err := model.ParseDate(*req.TradeDate)
		if err != nil {
			return newValidationError("trade_date", "%v", err)
		}
		trade.TradeDate = date
	}
	if req.TradeTime != nil {
		clock, err := normalizeClock("trade_time", *req.TradeTime)
		if err != nil {
			return err
		}
		trade.TradeTime = clock
	}
	if req.HTFTimeframe != nil {
		trade.HTFTimeframe = *req.HTFTimeframe
	}
	if req.LTFTimeframe != nil {
		trade.LTFTimeframe = *req.LTFTimeframe
	}
	if req.SetupID != nil {
		setupID, err := s.ownedSetup(ctx, userID, req.SetupID)
		if err != nil {
			return err
		}
		trade.SetupID = setupID
		trade.Setup = nil
	}
	if req.SessionID != nil {
		sessionID, err := s.ownedSession(ctx, userID, req.SessionID)
		if err != nil {
			return err
		}
		trade.SessionID = sessionID
		trade.Session = nil
	}

	setDecimal(&trade.EntryPrice, req.EntryPrice)
	setDecimal(&trade.StopLoss, req.StopLoss)
	setDecimal(&trade.TakeProfit, req.TakeProfit)
	setDecimal(&trade.PositionSize, req.PositionSize)
	setDecimal(&trade.RiskReward, req.RiskReward)
	if req.RiskAmount != nil {
		trade.RiskAmount = req.RiskAmount
	}
	if req.Result != nil {
		trade.Result = *req.Result
	}
	if req.ExitPrice != nil {
		trade.ExitPrice = req.ExitPrice
	}
	if req.PnL != nil {
		trade.PnL = req.PnL
	}
	if req.Emotion != nil {
		trade.Emotion = nonEmptyEmotion(req.Emotion)
	}
	if req.Notes != nil {
		trade.Notes = nonEmpty(req.Notes)
	}
	if req.ScreenshotBefore != nil {
		trade.ScreenshotBefore = nonEmpty(req.ScreenshotBefore)
	}
	if req.ScreenshotAfter != nil {
		trade.ScreenshotAfter = nonEmpty(req.ScreenshotAfter)
	}
	return s.checkScreenshots(userID, trade)
}

// checkScreenshots refuses screenshot URLs that point into another user's folder.
func (s *tradeService) checkScreenshots(userID uuid.UUID, trade *model.Trade) error {
	if trade.ScreenshotBefore != nil {
		if err := s.screenshots.CheckOwnership(userID, "screenshot_before", *trade.ScreenshotBefore); err != nil {
			return err
		}
	}
	if trade.ScreenshotAfter != nil {
		if err := s.screenshots.CheckOwnership(userID, "screenshot_after", *trade.ScreenshotAfter); err != nil {
			return err
		}
	}
	return nil
}

func (s *tradeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	trade, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	affected, err := s.tradeRepo.Delete(ctx, userID, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete trade", logger.ErrorField(err), logger.StringField("trade_id", id.String()))
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if affected == 0 {
		return ErrTradeNotFound
	}
	s.log.InfoContext(ctx, "Trade deleted", logger.StringField("trade_id", id.String()))

	for _, url := range []*string{trade.ScreenshotBefore, trade.ScreenshotAfter} {
		if url == nil {
			continue
		}
		if err := s.screenshots.Remove(ctx, userID, *url); err != nil {
			s.log.WarnContext(ctx, "Failed to remove screenshot", logger.ErrorField(err), logger.StringField("trade_id", id.String()))
		}
	}
	return nil
}

// AttachScreenshot uploads the image and stores its URL on the trade.
func (s *tradeService) AttachScreenshot(ctx context.Context, userID, id uuid.UUID, upload dto.UploadScreenshotRequest) (*model.Trade, error) {
	if !upload.Kind.Valid() {
		return nil, newValidationError("kind", "must be before or after")
	}
	trade, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/%s/%s", userID, id, upload.Kind)
	url, err := s.screenshots.Upload(ctx, path, upload)
	if err != nil {
		return nil, err
	}

	req := dto.UpdateTradeRequest{}
	previous := trade.ScreenshotAfter
	if upload.Kind == dto.ScreenshotBefore {
		req.ScreenshotBefore = &url
		previous = trade.ScreenshotBefore
	} else {
		req.ScreenshotAfter = &url
	}

	updated, err := s.Update(ctx, userID, trade.ID, req)
	if err != nil {
		return nil, err
	}
	if previous != nil && *previous != url {
		if err := s.screenshots.Remove(ctx, userID, *previous); err != nil {
			s.log.WarnContext(ctx, "Failed to remove replaced screenshot", logger.ErrorField(err), logger.StringField("trade_id", id.String()))
		}
	}
	return updated, nil
}

var csvHeader = []string{
	"id", "trade_date", "trade_time", "symbol", "asset_type", "setup", "session",
	"htf_timeframe", "ltf_timeframe", "entry_price", "stop_loss", "take_profit",
	"position_size", "risk_reward", "risk_amount", "result", "exit_price",
	"r_multiple", "pnl", "emotion", "notes",
}

// ExportCSV writes the filtered trades, newest first, as CSV.
func (s *tradeService) ExportCSV(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter, w io.Writer) error {
	trades, err := s.List(ctx, userID, filter)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range trades {
		if err := writer.Write(tradeRecord(&trades[i])); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func tradeRecord(t *model.Trade) []string {
	var setup, session, emotion, rMultiple string
	if t.Setup != nil {
		setup = t.Setup.Name
	}
	if t.Session != nil {
		session = t.Session.Name
	}
	if t.Emotion != nil {
		emotion = string(*t.Emotion)
	}
	if t.RMultiple != nil {
		rMultiple = strconv.FormatFloat(*t.RMultiple, 'f', -1, 64)
	}
	return []string{
		t.ID.String(),
		t.TradeDate.String(),
		t.TradeTime,
		t.Symbol,
		string(t.AssetType),
		setup,
		session,
		t.HTFTimeframe,
		t.LTFTimeframe,
		t.EntryPrice.String(),
		t.StopLoss.String(),
		t.TakeProfit.String(),
		t.PositionSize.String(),
		t.RiskReward.String(),
		decimalString(t.RiskAmount),
		string(t.Result),
		decimalString(t.ExitPrice),
		rMultiple,
		decimalString(t.PnL),
		emotion,
		stringValue(t.Notes),
	}
}

// ownedSetup resolves an optional setup reference. An empty id clears it.
func (s *tradeService) ownedSetup(ctx context.Context, userID uuid.UUID, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, newValidationError("setup_id", "must be a valid uuid")
	}
	setup, err := s.setupRepo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get setup: %w", err)
	}
	if setup == nil {
		return nil, newValidationError("setup_id", "setup not found")
	}
	return &id, nil
}

func (s *tradeService) ownedSession(ctx context.Context, userID uuid.UUID, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, newValidationError("session_id", "must be a valid uuid")
	}
	session, err := s.sessionRepo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, newValidationError("session_id", "session not found")
	}
	return &id, nil
}

// resolveRMultiple picks the R-multiple for a trade: computed from prices when
// possible, else the explicit value, else the fallback. Open trades have none.
func resolveRMultiple(t *model.Trade, explicit *float64, fallback *float64) *float64 {
	if t.Result == model.ResultOpen {
		return nil
	}
	if r, ok := model.ComputeRMultiple(t.Result, t.EntryPrice, t.StopLoss, t.ExitPrice); ok {
		return utils.ToPointer(r)
	}
	if explicit != nil {
		return explicit
	}
	return fallback
}

// outcomeChanged reports whether a patch touches a field the R-multiple is derived from.
func outcomeChanged(req dto.UpdateTradeRequest) bool {
	return req.Result != nil || req.ExitPrice != nil || req.EntryPrice != nil || req.StopLoss != nil
}

func normalizeClock(field, value string) (string, error) {
	clock, err := utils.NormalizeClock(value)
	if err != nil {
		return "", newValidationError(field, "must be HH:MM or HH:MM:SS")
	}
	return clock, nil
}

func setDecimal(dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		*dst = *src
	}
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func nonEmptyEmotion(e *model.Emotion) *model.Emotion {
	if e == nil || *e == "" {
		return nil
	}
	return e
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
