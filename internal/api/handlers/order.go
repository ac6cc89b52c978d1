package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/api/middleware"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	service "github.com/Rwadhwa18/grocery-bazaar-hub/internal/services"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

// CreateOrder godoc
//
//	@Summary		Check out the cart
//	@Description	Places an order from the session's cart. Stock is reserved for every line and the cart is emptied on success.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		models.CreateOrderRequest	true	"Shipping address, payment method and optional coupon"
//	@Success		201		{object}	models.Order				"Placed order"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error, invalid coupon, empty cart or insufficient stock"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		var req models.CreateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create order input")
			return
		}

		order, err := h.orderService.PlaceOrder(r.Context(), claims.SessionID, &req)
		if err != nil {
			logger.Warn("Failed to create order", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, order)
	}
}

// GetOrder godoc
//
//	@Summary		Get an order by ID
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string					true	"Order ID"
//	@Success		200	{object}	models.Order			"Order"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Security		BearerAuth
//	@Router			/orders/{id} [get]
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		id := r.PathValue("id")

		order, err := h.orderService.GetOrder(r.Context(), claims.SessionID, id)
		if err != nil {
			logger.Warn("Failed to get order", slog.String("orderId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// ListOrders godoc
//
//	@Summary		List the session's orders
//	@Description	Newest first, optionally filtered by status.
//	@Tags			Orders
//	@Produce		json
//	@Param			status	query		string						false	"all, pending, processing, shipped, delivered or cancelled"
//	@Param			page	query		int							false	"Page number (default: 1)"				minimum(1)
//	@Param			size	query		int							false	"Items per page (default: 10, max: 10)"	minimum(1)	maximum(10)
//	@Success		200		{object}	models.OrderHistoryResponse	"Orders"
//	@Failure		400		{object}	response.ErrorResponse		"Invalid status filter"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Security		BearerAuth
//	@Router			/orders [get]
func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		page, size := utils.Pagination(r)
		status := utils.Sanitize(r.URL.Query().Get("status"))

		history, err := h.orderService.ListOrders(r.Context(), claims.SessionID, status, page, size)
		if err != nil {
			logger.Warn("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, history)
	}
}

// GetTracking godoc
//
//	@Summary		Track an order
//	@Description	Status, progress percentage, timeline (newest first) and courier position while shipped.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string					true	"Order ID"
//	@Success		200	{object}	models.TrackingView		"Tracking view"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Security		BearerAuth
//	@Router			/orders/{id}/tracking [get]
func (h *OrderHandler) GetTracking() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		id := r.PathValue("id")

		view, err := h.orderService.GetTracking(r.Context(), claims.SessionID, id)
		if err != nil {
			logger.Warn("Failed to get tracking", slog.String("orderId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, view)
	}
}

// CancelOrder godoc
//
//	@Summary	Cancel an order
//	@Tags		Orders
//	@Produce	json
//	@Param		id	path		string					true	"Order ID"
//	@Success	200	{object}	models.Order			"Cancelled order"
//	@Failure	401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure	404	{object}	response.ErrorResponse	"Order not found"
//	@Failure	409	{object}	response.ErrorResponse	"Order is already delivered or cancelled"
//	@Security	BearerAuth
//	@Router		/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		id := r.PathValue("id")

		order, err := h.orderService.CancelOrder(r.Context(), claims.SessionID, id)
		if err != nil {
			logger.Warn("Failed to cancel order", slog.String("orderId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// UpdateOrderStatus godoc
//
//	@Summary		Move an order forward
//	@Description	Manual transition to processing or shipped. Shipping starts the courier simulation. Requires the merchant role.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Order ID"
//	@Param			status	body		models.UpdateOrderStatusRequest	true	"Target status"
//	@Success		200		{object}	models.Order					"Updated order"
//	@Failure		400		{object}	response.ErrorResponse			"Invalid input"
//	@Failure		403		{object}	response.ErrorResponse			"Merchant role required"
//	@Failure		404		{object}	response.ErrorResponse			"Order not found"
//	@Failure		409		{object}	response.ErrorResponse			"Transition not allowed"
//	@Security		BearerAuth
//	@Router			/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id := r.PathValue("id")
		logger = logger.With(slog.String("orderId", id))

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid order status input")
			return
		}

		order, err := h.orderService.UpdateStatus(r.Context(), id, &req)
		if err != nil {
			logger.Warn("Failed to update order status", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}
