package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/api/middleware"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	service "github.com/Rwadhwa18/grocery-bazaar-hub/internal/services"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

// sessionClaims writes a 401 and returns false when the request carries no session.
func sessionClaims(w http.ResponseWriter, r *http.Request) (*models.Claims, *slog.Logger, bool) {
	logger := middleware.LoggerFromContext(r.Context())

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		logger.Warn("Request without session")
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, logger, false
	}

	return claims, logger, true
}

// GetCart godoc
//
//	@Summary		Get the session's cart
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.CartView			"Cart lines, total and item count"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Security		BearerAuth
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.SessionID)
		if err != nil {
			logger.Error("Failed to get cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// AddItem godoc
//
//	@Summary		Add an item to the cart
//	@Description	Adds quantity units of a product, or of one of its variants. A line with the same product and variant grows.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"Product, optional variant and quantity"
//	@Success		200		{object}	models.CartView			"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse	"Invalid input"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse	"Product or variant not found"
//	@Failure		409		{object}	response.ErrorResponse	"Variant is out of stock"
//	@Security		BearerAuth
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add to cart input")
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), claims.SessionID, &req)
		if err != nil {
			logger.Warn("Failed to add item to cart", slog.String("productId", req.ProductID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.String("productId", req.ProductID), slog.Int("quantity", req.Quantity))
		response.Success(w, http.StatusOK, cart)
	}
}

// UpdateItem godoc
//
//	@Summary		Set a cart line's quantity
//	@Description	A quantity of zero removes the line. A quantity above the variant's stock is clamped and reported as a LIMITED_STOCK notice.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.UpdateQuantityRequest	true	"Line key and new quantity"
//	@Success		200		{object}	models.CartView					"Updated cart, with notices when clamped"
//	@Failure		400		{object}	response.ErrorResponse			"Invalid input"
//	@Failure		401		{object}	response.ErrorResponse			"Authentication required"
//	@Security		BearerAuth
//	@Router			/cart/items [put]
func (h *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid cart update input")
			return
		}

		cart, err := h.cartService.UpdateItem(r.Context(), claims.SessionID, &req)
		if err != nil && !errors.HasCode(err, errors.ErrCodeLimitedStock) {
			logger.Error("Failed to update cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if err != nil {
			logger.Info("Cart quantity clamped to stock", slog.String("productId", req.ProductID))
		}

		response.SuccessWithNotices(w, http.StatusOK, cart, err)
	}
}

// RemoveItem godoc
//
//	@Summary	Remove a cart line
//	@Tags		Cart
//	@Accept		json
//	@Produce	json
//	@Param		item	body		models.RemoveItemRequest	true	"Line key"
//	@Success	200		{object}	models.CartView				"Updated cart"
//	@Failure	400		{object}	response.ErrorResponse		"Invalid input"
//	@Failure	401		{object}	response.ErrorResponse		"Authentication required"
//	@Security	BearerAuth
//	@Router		/cart/items [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		var req models.RemoveItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid cart removal input")
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), claims.SessionID, &req)
		if err != nil {
			logger.Error("Failed to remove cart item", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// ClearCart godoc
//
//	@Summary	Empty the cart
//	@Tags		Cart
//	@Produce	json
//	@Success	200	{object}	models.CartView			"Empty cart"
//	@Failure	401	{object}	response.ErrorResponse	"Authentication required"
//	@Security	BearerAuth
//	@Router		/cart [delete]
func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.ClearCart(r.Context(), claims.SessionID)
		if err != nil {
			logger.Error("Failed to clear cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Cart cleared")
		response.Success(w, http.StatusOK, cart)
	}
}
