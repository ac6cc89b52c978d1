package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/api/middleware"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	repository "github.com/Rwadhwa18/grocery-bazaar-hub/internal/repositories"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type SessionService interface {
	CreateSession(ctx context.Context, req *models.CreateSessionRequest, clientKey string) (*models.SessionResponse, error)
}

type sessionService struct {
	limiter repository.RateLimitRepository
	jwtKey  []byte
	expiry  time.Duration
	now     func() time.Time
}

func NewSessionService(limiter repository.RateLimitRepository, jwtKey []byte, expiry time.Duration) SessionService {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	return &sessionService{limiter: limiter, jwtKey: jwtKey, expiry: expiry, now: time.Now}
}

// CreateSession issues a guest token. The session id it carries keys the
// shopper's cart and orders.
func (s *sessionService) CreateSession(ctx context.Context, req *models.CreateSessionRequest, clientKey string) (*models.SessionResponse, error) {
	logger := middleware.LoggerFromContext(ctx)

	limitCtx, cancel := utils.WithStoreTimeout(ctx)
	defer cancel()

	allowed, _, retryAfter, err := s.limiter.CheckSessionRateLimit(limitCtx, clientKey)
	if err != nil {
		return nil, errors.InternalError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return nil, errors.TooManyRequestsError(fmt.Sprintf("Too many session requests. Please try again in %d seconds.", retryAfter))
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}

	now := s.now()
	claims := &models.Claims{
		SessionID: uuid.NewString(),
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtKey)
	if err != nil {
		return nil, errors.InternalError("Failed to generate session token").WithError(err)
	}

	logger.Info("Session created", slog.String("sessionId", claims.SessionID), slog.String("role", string(role)))

	return &models.SessionResponse{
		SessionID: claims.SessionID,
		Role:      role,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
