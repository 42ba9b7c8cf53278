package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trading-journal/config"
	"trading-journal/internal/analytics"
	"trading-journal/internal/dto"
	"trading-journal/internal/model"
	"trading-journal/internal/service"
	"trading-journal/pkg/common"
	"trading-journal/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "token-ok"

var testUserID = uuid.MustParse("7d4c2f0e-1b4a-4a4e-9c55-0e6f1d2a3b4c")

type fakeAuth struct {
	service.AuthService
	signUpErr error
	loginErr  error
	loggedOut []string
}

func (f *fakeAuth) VerifyToken(ctx context.Context, token string) (uuid.UUID, error) {
	if token != testToken {
		return uuid.Nil, service.ErrInvalidToken
	}
	return testUserID, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, req dto.SignUpRequest) (*model.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &model.User{ID: testUserID, Email: req.Email}, nil
}

func (f *fakeAuth) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.TokenResponse{AccessToken: testToken, TokenType: "Bearer", ExpiresIn: 3600}, nil
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

type fakeTrades struct {
	service.TradeService
	trades   map[uuid.UUID]*model.Trade
	filters  []dto.TradeFilter
	created  []dto.CreateTradeRequest
	uploads  []dto.UploadScreenshotRequest
	listErr  error
	exported string
}

func (f *fakeTrades) List(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter) ([]model.Trade, error) {
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Trade{}
	for _, t := range f.trades {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTrades) Get(ctx context.Context, userID, id uuid.UUID) (*model.Trade, error) {
	t, ok := f.trades[id]
	if !ok || t.UserID != userID {
		return nil, service.ErrTradeNotFound
	}
	return t, nil
}

func (f *fakeTrades) Create(ctx context.Context, userID uuid.UUID, req dto.CreateTradeRequest) (*model.Trade, error) {
	f.created = append(f.created, req)
	return &model.Trade{ID: uuid.New(), UserID: userID, Symbol: req.Symbol, Result: req.Result}, nil
}

func (f *fakeTrades) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(f.trades, id)
	return nil
}

func (f *fakeTrades) AttachScreenshot(ctx context.Context, userID, id uuid.UUID, upload dto.UploadScreenshotRequest) (*model.Trade, error) {
	t, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !upload.Kind.Valid() {
		return nil, &service.ValidationError{Field: "kind", Message: "must be before or after"}
	}
	f.uploads = append(f.uploads, upload)
	url := "https://cdn.test/" + string(upload.Kind)
	t.ScreenshotBefore = &url
	return t, nil
}

func (f *fakeTrades) ExportCSV(ctx context.Context, userID uuid.UUID, filter dto.TradeFilter, w io.Writer) error {
	if f.listErr != nil {
		return f.listErr
	}
	_, err := io.WriteString(w, f.exported)
	return err
}

type fakeScheduler struct {
	service.SchedulerService
	executed int
	ran      []uint
}

func (f *fakeScheduler) Execute(ctx context.Context) error {
	f.executed++
	return nil
}

func (f *fakeScheduler) RunJobTask(ctx context.Context, jobID uint) error {
	if jobID == 404 {
		return service.ErrJobNotFound
	}
	f.ran = append(f.ran, jobID)
	return nil
}

type fakeAnalytics struct {
	service.AnalyticsService
	filters []dto.AnalyticsFilter
	err     error
}

func (f *fakeAnalytics) GetAnalytics(ctx context.Context, userID uuid.UUID, filter dto.AnalyticsFilter) (analytics.Summary, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return analytics.Summary{}, f.err
	}
	summary := analytics.Empty()
	summary.TotalTrades = 4
	summary.WinRate = 50
	summary.TotalR = 1.5
	return summary, nil
}

type fakeHealth struct{ err error }

func (f fakeHealth) PingContext(ctx context.Context) error { return f.err }

type testServer struct {
	e         *echo.Echo
	auth      *fakeAuth
	trades    *fakeTrades
	scheduler *fakeScheduler
	analytics *fakeAnalytics
}

func newTestServer(t *testing.T, health HealthChecker) *testServer {
	t.Helper()
	cfg := &config.Config{API: config.API{AdminKey: "admin-secret"}}
	ts := &testServer{
		e:         echo.New(),
		auth:      &fakeAuth{},
		trades:    &fakeTrades{trades: map[uuid.UUID]*model.Trade{}},
		scheduler: &fakeScheduler{},
		analytics: &fakeAnalytics{},
	}
	svc := &service.Service{
		AuthService:      ts.auth,
		TradeService:     ts.trades,
		SchedulerService: ts.scheduler,
		AnalyticsService: ts.analytics,
	}
	if health == nil {
		health = fakeHealth{}
	}
	NewHttpAPIHandler(cfg, logger.NewNop(), ts.e, dto.NewValidator(), svc, health).SetupRoutes()
	return ts
}

func (ts *testServer) do(method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func authed() map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + testToken}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, path := range []string{"/api/trades", "/api/analytics", "/api/setups", "/api/sessions", "/api/profile", "/api/settings"} {
		t.Run(path, func(t *testing.T) {
			rec := ts.do(http.MethodGet, path, nil, map[string]string{echo.HeaderAuthorization: "Bearer wrong"})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestAuthRoutes(t *testing.T) {
	t.Run("signup", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"email":"a@b.co","password":"secret123"}`), nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"user"`)
	})

	t.Run("signup email taken", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.auth.signUpErr = service.ErrEmailTaken
		rec := ts.do(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"email":"a@b.co","password":"secret123"}`), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"Email already registered"}`, rec.Body.String())
	})

	t.Run("signup short password", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"email":"a@b.co","password":"short"}`), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"password: failed on the \"min\" rule"}`, rec.Body.String())
	})

	t.Run("login throttled", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.auth.loginErr = service.ErrTooManyAttempts
		rec := ts.do(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`), nil)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("login", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var token dto.TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
		assert.Equal(t, testToken, token.AccessToken)
	})

	t.Run("logout", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodPost, "/api/auth/logout", nil, authed())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{testToken}, ts.auth.loggedOut)

		rec = ts.do(http.MethodPost, "/api/auth/logout", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCreateTrade(t *testing.T) {
	valid := `{
		"symbol": "BTCUSDT", "asset_type": "crypto",
		"trade_date": "2024-03-01", "trade_time": "09:30",
		"htf_timeframe": "4h", "ltf_timeframe": "15m",
		"entry_price": 100, "stop_loss": 95, "take_profit": "110",
		"position_size": 1, "risk_reward": 2, "result": "open"
	}`

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "valid", body: valid, wantStatus: http.StatusCreated},
		{name: "malformed json", body: `{"symbol":`, wantStatus: http.StatusBadRequest, wantError: "Invalid request body"},
		{name: "missing symbol", body: strings.Replace(valid, `"symbol": "BTCUSDT",`, "", 1), wantStatus: http.StatusBadRequest, wantError: "Missing required field: symbol"},
		{name: "bad clock", body: strings.Replace(valid, `"09:30"`, `"25:00"`, 1), wantStatus: http.StatusBadRequest, wantError: `trade_time: failed on the "clock" rule`},
		{name: "bad result", body: strings.Replace(valid, `"open"`, `"maybe"`, 1), wantStatus: http.StatusBadRequest, wantError: `result: failed on the "oneof" rule`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			rec := ts.do(http.MethodPost, "/api/trades", strings.NewReader(tt.body), authed())
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				var body dto.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body.Error)
				assert.Empty(t, ts.trades.created)
				return
			}
			require.Len(t, ts.trades.created, 1)
			assert.Equal(t, "110", ts.trades.created[0].TakeProfit.String())
			assert.Contains(t, rec.Body.String(), `"trade"`)
		})
	}
}

func TestListTradesBindsFilter(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(http.MethodGet, "/api/trades?startDate=2024-01-01&endDate=2024-01-31&result=win&symbol=ETH", nil, authed())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"trades":[]}`, rec.Body.String())
	require.Len(t, ts.trades.filters, 1)
	assert.Equal(t, dto.TradeFilter{StartDate: "2024-01-01", EndDate: "2024-01-31", Result: "win", Symbol: "ETH"}, ts.trades.filters[0])

	rec = ts.do(http.MethodGet, "/api/trades?startDate=yesterday", nil, authed())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ts.trades.listErr = errors.New("connection reset")
	rec = ts.do(http.MethodGet, "/api/trades", nil, authed())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch trades"}`, rec.Body.String())
}

func TestTradeByID(t *testing.T) {
	ts := newTestServer(t, nil)
	mine := &model.Trade{ID: uuid.New(), UserID: testUserID, Symbol: "EURUSD"}
	foreign := &model.Trade{ID: uuid.New(), UserID: uuid.New(), Symbol: "GBPUSD"}
	ts.trades.trades[mine.ID] = mine
	ts.trades.trades[foreign.ID] = foreign

	rec := ts.do(http.MethodGet, "/api/trades/"+mine.ID.String(), nil, authed())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "EURUSD")

	rec = ts.do(http.MethodGet, "/api/trades/"+foreign.ID.String(), nil, authed())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Trade not found"}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/trades/not-a-uuid", nil, authed())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/trades/"+mine.ID.String(), nil, authed())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Trade deleted successfully"}`, rec.Body.String())

	rec = ts.do(http.MethodDelete, "/api/trades/"+mine.ID.String(), nil, authed())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportTrades(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.trades.exported = "id,symbol\n1,BTCUSDT\n"

	rec := ts.do(http.MethodGet, "/api/trades/export", nil, authed())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment; filename=\"trades-")
	assert.Equal(t, ts.trades.exported, rec.Body.String())

	ts.trades.listErr = errors.New("boom")
	rec = ts.do(http.MethodGet, "/api/trades/export", nil, authed())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to export trades"}`, rec.Body.String())
}

func multipartBody(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadTradeScreenshot(t *testing.T) {
	ts := newTestServer(t, nil)
	trade := &model.Trade{ID: uuid.New(), UserID: testUserID}
	ts.trades.trades[trade.ID] = trade
	png := []byte("\x89PNG\r\n\x1a\n0000")

	send := func(path, field string) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, field, "chart.png", png)
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set(echo.HeaderContentType, contentType)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+testToken)
		rec := httptest.NewRecorder()
		ts.e.ServeHTTP(rec, req)
		return rec
	}

	rec := send("/api/trades/"+trade.ID.String()+"/screenshots?kind=before", "file")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ts.trades.uploads, 1)
	assert.Equal(t, dto.ScreenshotBefore, ts.trades.uploads[0].Kind)
	assert.Equal(t, "chart.png", ts.trades.uploads[0].Filename)
	assert.Equal(t, png, ts.trades.uploads[0].Content)
	assert.Equal(t, int64(len(png)), ts.trades.uploads[0].Size)

	rec = send("/api/trades/"+trade.ID.String()+"/screenshots?kind=during", "file")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send("/api/trades/"+trade.ID.String()+"/screenshots?kind=after", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"file: is required"}`, rec.Body.String())
}

func TestGetAnalytics(t *testing.T) {
	t.Run("summary envelope", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodGet, "/api/analytics?startDate=2024-01-01&endDate=2024-03-31", nil, authed())
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, ts.analytics.filters, 1)
		assert.Equal(t, dto.AnalyticsFilter{StartDate: "2024-01-01", EndDate: "2024-03-31"}, ts.analytics.filters[0])

		var body struct {
			Analytics map[string]json.RawMessage `json:"analytics"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.JSONEq(t, `4`, string(body.Analytics["totalTrades"]))
		assert.JSONEq(t, `50`, string(body.Analytics["winRate"]))
		assert.JSONEq(t, `1.5`, string(body.Analytics["totalR"]))
		for _, key := range []string{"bySetup", "bySession", "byEmotion", "equityCurve"} {
			assert.JSONEq(t, `[]`, string(body.Analytics[key]), key)
		}
	})

	t.Run("no range", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodGet, "/api/analytics", nil, authed())
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []dto.AnalyticsFilter{{}}, ts.analytics.filters)
	})

	t.Run("malformed date", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodGet, "/api/analytics?startDate=03/01/2024", nil, authed())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"startDate: failed on the \"datetime\" rule"}`, rec.Body.String())
		assert.Empty(t, ts.analytics.filters)
	})

	t.Run("service failure", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.analytics.err = errors.New("connection reset")
		rec := ts.do(http.MethodGet, "/api/analytics", nil, authed())
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch analytics"}`, rec.Body.String())
	})
}

func TestRunJobs(t *testing.T) {
	admin := map[string]string{common.HeaderAdminKey: "admin-secret"}

	t.Run("wrong key", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodPost, "/api/v1/jobs/run", nil, map[string]string{common.HeaderAdminKey: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, ts.scheduler.executed)
	})

	t.Run("due jobs", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodPost, "/api/v1/jobs/run", nil, admin)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, ts.scheduler.executed)
	})

	t.Run("selected jobs", func(t *testing.T) {
		ts := newTestServer(t, nil)
		rec := ts.do(http.MethodPost, "/api/v1/jobs/run", strings.NewReader(`{"job_ids":[1,404,2]}`), admin)
		assert.Equal(t, http.StatusMultiStatus, rec.Code)
		assert.Equal(t, []uint{1, 2}, ts.scheduler.ran)
		assert.Zero(t, ts.scheduler.executed)

		var resp dto.BaseResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "1 of 3 jobs failed to start", resp.Message)
	})
}

func TestHealthz(t *testing.T) {
	rec := newTestServer(t, fakeHealth{}).do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = newTestServer(t, fakeHealth{err: errors.New("dial tcp: refused")}).do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
