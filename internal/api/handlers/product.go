package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/api/middleware"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	repository "github.com/Rwadhwa18/grocery-bazaar-hub/internal/repositories"
	service "github.com/Rwadhwa18/grocery-bazaar-hub/internal/services"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validator: validator.New()}
}

// GetProduct godoc
//
//	@Summary		Get a product by ID
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		string					true	"Product ID"
//	@Success		200	{object}	models.Product			"Product with its variants"
//	@Failure		404	{object}	response.ErrorResponse	"Product not found"
//	@Router			/products/{id} [get]
func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id := r.PathValue("id")

		product, err := h.productService.GetProductByID(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to get product", slog.String("productId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

// ListProducts godoc
//
//	@Summary		List products
//	@Description	Lists the catalog, optionally filtered by category (name or slug) and a name or brand query.
//	@Tags			Products
//	@Produce		json
//	@Param			category	query		string												false	"Category name or slug"
//	@Param			q			query		string												false	"Search in name and brand"
//	@Param			page		query		int													false	"Page number (default: 1)"			minimum(1)
//	@Param			size		query		int													false	"Items per page (default: 10, max: 10)"	minimum(1)	maximum(10)
//	@Success		200			{object}	models.PaginatedResponse{Data=[]models.Product}	"Products"
//	@Failure		500			{object}	response.ErrorResponse								"Internal server error"
//	@Router			/products [get]
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, size := utils.Pagination(r)
		filter := repository.ProductFilter{
			Category: utils.Sanitize(r.URL.Query().Get("category")),
			Query:    utils.Sanitize(r.URL.Query().Get("q")),
		}

		products, total, err := h.productService.ListProducts(r.Context(), filter, page, size)
		if err != nil {
			logger.Error("Failed to list products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     products,
			Total:    total,
			Page:     page,
			PageSize: size,
		})
	}
}

// ListCategories godoc
//
//	@Summary	List categories
//	@Tags		Products
//	@Produce	json
//	@Success	200	{array}		models.Category			"Categories"
//	@Failure	500	{object}	response.ErrorResponse	"Internal server error"
//	@Router		/categories [get]
func (h *ProductHandler) ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		categories, err := h.productService.ListCategories(r.Context())
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list categories", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, categories)
	}
}

// CreateProduct godoc
//
//	@Summary		Add a product
//	@Description	Lists a new product for the calling merchant. A product sent without variants gets one default variant.
//	@Tags			Inventory
//	@Accept			json
//	@Produce		json
//	@Param			product	body		models.CreateProductRequest	true	"Product details"
//	@Success		201		{object}	models.Product				"Created product"
//	@Failure		400		{object}	response.ErrorResponse		"Invalid input or unknown category"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse		"Merchant role required"
//	@Security		BearerAuth
//	@Router			/products [post]
func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid product input")
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), claims.SessionID, &req)
		if err != nil {
			logger.Warn("Failed to create product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product created", slog.String("productId", product.ID), slog.Int("variants", len(product.Variants)))
		response.Success(w, http.StatusCreated, product)
	}
}

// UpdateProduct godoc
//
//	@Summary		Update a product
//	@Description	Changes the fields present in the body. Variants and stock are managed separately.
//	@Tags			Inventory
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Product ID"
//	@Param			product	body		models.UpdateProductRequest	true	"Fields to change"
//	@Success		200		{object}	models.Product				"Updated product"
//	@Failure		400		{object}	response.ErrorResponse		"Invalid input or unknown category"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse		"Merchant role required"
//	@Failure		404		{object}	response.ErrorResponse		"Product not found"
//	@Security		BearerAuth
//	@Router			/products/{id} [put]
func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id := r.PathValue("id")
		logger = logger.With(slog.String("productId", id))

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid product update input")
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			logger.Warn("Failed to update product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product updated")
		response.Success(w, http.StatusOK, product)
	}
}

// UpdateStock godoc
//
//	@Summary		Set a variant's stock
//	@Description	Replaces the stock level of one variant. Requires the merchant role.
//	@Tags			Inventory
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string						true	"Product ID"
//	@Param			variantId	path		string						true	"Variant ID"
//	@Param			stock		body		models.UpdateStockRequest	true	"New stock level"
//	@Success		200			{object}	models.Product				"Updated product"
//	@Failure		400			{object}	response.ErrorResponse		"Invalid input"
//	@Failure		401			{object}	response.ErrorResponse		"Authentication required"
//	@Failure		403			{object}	response.ErrorResponse		"Merchant role required"
//	@Failure		404			{object}	response.ErrorResponse		"Product or variant not found"
//	@Security		BearerAuth
//	@Router			/products/{id}/variants/{variantId}/stock [patch]
func (h *ProductHandler) UpdateStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		productID := r.PathValue("id")
		variantID := r.PathValue("variantId")
		logger = logger.With(slog.String("productId", productID), slog.String("variantId", variantID))

		var req models.UpdateStockRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid stock update input")
			return
		}

		product, err := h.productService.UpdateStock(r.Context(), productID, variantID, *req.Stock)
		if err != nil {
			logger.Warn("Failed to update stock", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Stock updated", slog.Int("stock", *req.Stock))
		response.Success(w, http.StatusOK, product)
	}
}

// InventorySummary godoc
//
//	@Summary	Inventory summary
//	@Tags		Inventory
//	@Produce	json
//	@Success	200	{object}	models.InventorySummary	"Counts of products, variants and low stock"
//	@Failure	401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure	403	{object}	response.ErrorResponse	"Merchant role required"
//	@Security	BearerAuth
//	@Router		/inventory/summary [get]
func (h *ProductHandler) InventorySummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		summary, err := h.productService.InventorySummary(r.Context())
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to compute inventory summary", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, summary)
	}
}
