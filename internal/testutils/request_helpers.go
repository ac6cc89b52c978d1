package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/api/middleware"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
)

// CreateTestRequestWithSession builds a request as Authenticate would leave it.
func CreateTestRequestWithSession(method, target string, body io.Reader, sessionID string, role models.UserRole, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	claims := &models.Claims{SessionID: sessionID, Role: role}

	ctx := context.WithValue(req.Context(), middleware.SessionContextKey, claims)
	ctx = middleware.WithLogger(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return req.WithContext(ctx)
}

func CreateTestRequestWithoutSession(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	ctx := middleware.WithLogger(req.Context(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	return req.WithContext(ctx)
}
