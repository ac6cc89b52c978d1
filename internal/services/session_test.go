package service_test

import (
	"errors"
	"testing"
	"time"

	appErrors "github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	service "github.com/Rwadhwa18/grocery-bazaar-hub/internal/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sessionKey = []byte("test-secret-key-123456789012345")

func TestCreateSession(t *testing.T) {
	t.Run("Success - defaults to customer", func(t *testing.T) {
		limiter := new(mockRateLimiter)
		limiter.On("CheckSessionRateLimit", mock.Anything, "10.0.0.1").Return(true, 4, 0, nil).Once()
		svc := service.NewSessionService(limiter, sessionKey, time.Hour)

		resp, err := svc.CreateSession(t.Context(), &models.CreateSessionRequest{}, "10.0.0.1")

		require.NoError(t, err)
		assert.NotEmpty(t, resp.SessionID)
		assert.Equal(t, models.RoleCustomer, resp.Role)
		assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

		claims := &models.Claims{}
		token, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (any, error) { return sessionKey, nil })
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, resp.SessionID, claims.SessionID)
		assert.Equal(t, models.RoleCustomer, claims.Role)
		limiter.AssertExpectations(t)
	})

	t.Run("Success - merchant", func(t *testing.T) {
		limiter := new(mockRateLimiter)
		limiter.On("CheckSessionRateLimit", mock.Anything, "10.0.0.2").Return(true, 4, 0, nil).Once()
		svc := service.NewSessionService(limiter, sessionKey, 0)

		resp, err := svc.CreateSession(t.Context(), &models.CreateSessionRequest{Role: models.RoleMerchant}, "10.0.0.2")

		require.NoError(t, err)
		assert.Equal(t, models.RoleMerchant, resp.Role)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), resp.ExpiresAt, 5*time.Second)
	})

	t.Run("Fail - rate limited", func(t *testing.T) {
		limiter := new(mockRateLimiter)
		limiter.On("CheckSessionRateLimit", mock.Anything, "10.0.0.3").Return(false, 0, 12, nil).Once()
		svc := service.NewSessionService(limiter, sessionKey, time.Hour)

		resp, err := svc.CreateSession(t.Context(), &models.CreateSessionRequest{}, "10.0.0.3")

		assert.Nil(t, resp)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeTooManyRequests))
		assert.Contains(t, err.Error(), "12 seconds")
	})

	t.Run("Fail - limiter error", func(t *testing.T) {
		limiter := new(mockRateLimiter)
		redisErr := errors.New("redis down")
		limiter.On("CheckSessionRateLimit", mock.Anything, "10.0.0.4").Return(false, 0, 0, redisErr).Once()
		svc := service.NewSessionService(limiter, sessionKey, time.Hour)

		_, err := svc.CreateSession(t.Context(), &models.CreateSessionRequest{}, "10.0.0.4")

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInternal))
		assert.ErrorIs(t, err, redisErr)
	})
}
