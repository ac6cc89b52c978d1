package handlers

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/api/middleware"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	service "github.com/Rwadhwa18/grocery-bazaar-hub/internal/services"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type SessionHandler struct {
	sessionService service.SessionService
	validator      *validator.Validate
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, validator: validator.New()}
}

// CreateSession godoc
//
//	@Summary		Start a guest session
//	@Description	Issues a signed session token. The session keys the shopper's cart and orders.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			session	body		models.CreateSessionRequest	true	"Requested role (customer or merchant)"
//	@Success		201		{object}	models.SessionResponse		"Session created"
//	@Failure		400		{object}	response.ErrorResponse		"Invalid input"
//	@Failure		429		{object}	response.ErrorResponse		"Too many session requests"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Router			/sessions [post]
func (h *SessionHandler) CreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateSessionRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid session request")
			return
		}

		session, err := h.sessionService.CreateSession(r.Context(), &req, clientKey(r))
		if err != nil {
			logger.Warn("Failed to create session", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, session)
	}
}

// clientKey is the caller's address without the port.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
