package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	repository "github.com/Rwadhwa18/grocery-bazaar-hub/internal/repositories"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils"
	"github.com/google/uuid"
)

type ProductService interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter, page, size int) ([]models.Product, int, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, merchantID string, req *models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error)
	UpdateStock(ctx context.Context, productID, variantID string, stock int) (*models.Product, error)
	InventorySummary(ctx context.Context) (*models.InventorySummary, error)
}

type productService struct {
	repo              repository.ProductRepository
	lowStockThreshold int
}

func NewProductService(repo repository.ProductRepository, lowStockThreshold int) ProductService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}

	return &productService{repo: repo, lowStockThreshold: lowStockThreshold}
}

func (s *productService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter repository.ProductFilter, page, size int) ([]models.Product, int, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 10 {
		size = 10
	}

	products, total, err := s.repo.ListProducts(ctx, filter, page, size)
	if err != nil {
		return nil, 0, errors.InternalError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func (s *productService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, errors.InternalError("Failed to fetch categories").WithError(err)
	}

	return categories, nil
}

func (s *productService) CreateProduct(ctx context.Context, merchantID string, req *models.CreateProductRequest) (*models.Product, error) {
	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:            uuid.NewString(),
		Name:          utils.Sanitize(req.Name),
		Description:   utils.Sanitize(req.Description),
		Brand:         utils.Sanitize(req.Brand),
		Category:      category,
		ImageURL:      req.ImageURL,
		Unit:          utils.Sanitize(req.Unit),
		Quantity:      req.Quantity,
		MerchantID:    merchantID,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
	}
	product.DiscountPercentage = models.DiscountPercent(product.Price, product.OriginalPrice)

	seen := make(map[string]bool, len(req.Variants))
	for i, v := range req.Variants {
		id := utils.Sanitize(v.ID)
		if id == "" {
			id = fmt.Sprintf("%s-%d", product.ID, i+1)
		}
		if seen[id] {
			return nil, errors.ValidationError(fmt.Sprintf("Duplicate variant id %q", id))
		}
		seen[id] = true

		product.Variants = append(product.Variants, models.Variant{
			ID:          id,
			Barcode:     utils.Sanitize(v.Barcode),
			WeightValue: v.WeightValue,
			WeightUnit:  utils.Sanitize(v.WeightUnit),
			Price:       v.Price,
			MRP:         v.MRP,
			Stock:       v.Stock,
		})
	}

	created := models.EnsureVariants(*product)

	if err := s.repo.CreateProduct(ctx, &created); err != nil {
		return nil, errors.InternalError("Failed to create product").WithError(err)
	}

	return &created, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	var category string
	if req.Category != nil {
		resolved, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		category = resolved
	}

	product, err := s.repo.UpdateProduct(ctx, id, func(p *models.Product) error {
		if req.Name != nil {
			p.Name = utils.Sanitize(*req.Name)
		}
		if req.Description != nil {
			p.Description = utils.Sanitize(*req.Description)
		}
		if req.Brand != nil {
			p.Brand = utils.Sanitize(*req.Brand)
		}
		if category != "" {
			p.Category = category
		}
		if req.ImageURL != nil {
			p.ImageURL = *req.ImageURL
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.OriginalPrice != nil {
			p.OriginalPrice = *req.OriginalPrice
		}
		p.DiscountPercentage = models.DiscountPercent(p.Price, p.OriginalPrice)

		return nil
	})
	if err != nil {
		if stdErrors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}
		return nil, errors.InternalError("Failed to update product").WithError(err)
	}

	return product, nil
}

// resolveCategory maps a category name or slug to the catalog's name for it.
func (s *productService) resolveCategory(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(utils.Sanitize(name))

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return "", errors.InternalError("Failed to fetch categories").WithError(err)
	}

	for _, c := range categories {
		if strings.EqualFold(c.Name, name) || strings.EqualFold(c.ID, name) {
			return c.Name, nil
		}
	}

	return "", errors.ValidationError(fmt.Sprintf("Unknown category %q", name))
}

func (s *productService) UpdateStock(ctx context.Context, productID, variantID string, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, errors.ValidationError("Stock must not be negative")
	}

	product, err := s.repo.UpdateVariantStock(ctx, productID, variantID, stock)
	if err != nil {
		if stdErrors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}
		if stdErrors.Is(err, repository.ErrVariantNotFound) {
			return nil, errors.NotFoundError("Variant not found").WithError(err)
		}
		return nil, errors.InternalError("Failed to update stock").WithError(err)
	}

	return product, nil
}

func (s *productService) InventorySummary(ctx context.Context) (*models.InventorySummary, error) {
	summary, err := s.repo.InventorySummary(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, errors.InternalError("Failed to compute inventory summary").WithError(err)
	}

	return summary, nil
}
