package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const SessionContextKey = contextKey("session")

type AuthMiddleware struct {
	jwtKey []byte
}

func NewAuthMiddleware(jwtKey []byte) *AuthMiddleware {
	return &AuthMiddleware{jwtKey: jwtKey}
}

// Authenticate accepts a guest session token and puts its claims on the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		// "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, errors.UnauthorizedError("Invalid authorization format"))
			return
		}

		claims := &models.Claims{}

		token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				logger.Error("Unexpected signing method used in JWT", slog.Any("alg", t.Header["alg"]))
				return nil, errors.BadRequestError("unexpected signing method")
			}
			return m.jwtKey, nil
		})
		if err != nil {
			logger.Warn("JWT parsing failed", slog.String("error", err.Error()))
			response.Error(w, errors.UnauthorizedError("Invalid or expired token"))
			return
		}

		if !token.Valid || claims.SessionID == "" {
			logger.Warn("Invalid token")
			response.Error(w, errors.UnauthorizedError("Invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, claims)

		sessionLogger := logger.With(slog.String("sessionId", claims.SessionID), slog.String("role", string(claims.Role)))
		ctx = WithLogger(ctx, sessionLogger)

		sessionLogger.Debug("Session authenticated")

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireRole must wrap a handler that already passed Authenticate.
func (m *AuthMiddleware) RequireRole(role models.UserRole, next http.Handler) http.HandlerFunc {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || claims.Role != role {
			LoggerFromContext(r.Context()).Warn("Role check failed", slog.String("required", string(role)))
			response.Error(w, errors.ForbiddenError("This action requires the "+string(role)+" role"))
			return
		}

		next.ServeHTTP(w, r)
	}))
}

func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(SessionContextKey).(*models.Claims)
	return claims, ok && claims != nil
}
