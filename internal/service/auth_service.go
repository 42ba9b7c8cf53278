package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trading-journal/config"
	"trading-journal/internal/dto"
	"trading-journal/internal/model"
	"trading-journal/internal/repository"
	"trading-journal/pkg/cache"
	"trading-journal/pkg/common"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/ratelimit"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

type AuthService interface {
	SignUp(ctx context.Context, req dto.SignUpRequest) (*model.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, token string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) (uuid.UUID, error)
}

// Claims is the payload of an access token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type authService struct {
	cfg           *config.Config
	log           *logger.Logger
	userRepo      repository.UserRepository
	inmemoryCache cache.Cache
	loginLimiter  *ratelimit.LimiterStore
	now           func() time.Time
}

func NewAuthService(cfg *config.Config, log *logger.Logger, userRepo repository.UserRepository, inmemoryCache cache.Cache) AuthService {
	return &authService{
		cfg:           cfg,
		log:           log,
		userRepo:      userRepo,
		inmemoryCache: inmemoryCache,
		// five attempts, then one more every minute
		loginLimiter: ratelimit.NewLimiterStore(rate.Every(time.Minute), 5),
		now:          time.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, req dto.SignUpRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to look up user", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:               email,
		PasswordHash:        string(hash),
		FullName:            normalizeName(req.FullName),
		DefaultRiskPerTrade: decimal.NewFromInt(1),
		DefaultRiskReward:   decimal.NewFromInt(2),
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		s.log.ErrorContext(ctx, "Failed to create user", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.InfoContext(ctx, "User signed up", logger.StringField("user_id", user.ID.String()))
	return user, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if !s.loginLimiter.Allow(email) {
		s.log.WarnContext(ctx, "Login throttled", logger.StringField("email", email))
		return nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to look up user", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.loginLimiter.Forget(email)
	return s.issueToken(user.ID)
}

// Refresh trades a still valid token for a new one and revokes the old one.
func (s *authService) Refresh(ctx context.Context, token string) (*dto.TokenResponse, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	resp, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.revoke(claims)
	return resp, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	s.revoke(claims)
	s.log.InfoContext(ctx, "User logged out", logger.StringField("user_id", claims.UserID))
	return nil
}

func (s *authService) VerifyToken(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.parse(token)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Auth.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Auth.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if _, revoked := s.inmemoryCache.Get(fmt.Sprintf(common.KEY_REVOKED_TOKEN, claims.ID)); revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) issueToken(userID uuid.UUID) (*dto.TokenResponse, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    s.cfg.Auth.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Auth.TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.Auth.TokenTTL.Seconds()),
	}, nil
}

func (s *authService) revoke(claims *Claims) {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}
	s.inmemoryCache.Set(fmt.Sprintf(common.KEY_REVOKED_TOKEN, claims.ID), true, ttl)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
