package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductExists     = errors.New("product already exists")
)

//go:embed seed/catalog.yaml
var defaultSeed []byte

type CatalogSeed struct {
	Categories []models.Category `yaml:"categories"`
	Products   []models.Product  `yaml:"products"`
}

// LoadCatalogSeed reads the catalog from path, or from the built-in seed when
// path is empty. Legacy products come back with a default variant.
func LoadCatalogSeed(path string) (*CatalogSeed, error) {
	data := defaultSeed

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog seed %s: %w", path, err)
		}
		data = raw
	}

	return ParseCatalogSeed(data)
}

func ParseCatalogSeed(data []byte) (*CatalogSeed, error) {
	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog seed: %w", err)
	}

	for i, p := range seed.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog seed product %d has no id", i)
		}
		seed.Products[i] = models.EnsureVariants(p)
	}

	return &seed, nil
}

type ProductFilter struct {
	Category string
	Query    string
}

// StockRequest asks for Quantity units of one variant.
type StockRequest struct {
	ProductID string
	VariantID string
	Quantity  int
}

type ProductRepository interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter, page, size int) ([]models.Product, int, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id string, apply func(*models.Product) error) (*models.Product, error)
	UpdateVariantStock(ctx context.Context, productID, variantID string, stock int) (*models.Product, error)
	ReserveStock(ctx context.Context, requests []StockRequest) error
	ReleaseStock(ctx context.Context, requests []StockRequest) error
	InventorySummary(ctx context.Context, lowStockBelow int) (*models.InventorySummary, error)
}

type productRepository struct {
	mu         sync.RWMutex
	products   []models.Product
	index      map[string]int
	categories []models.Category
}

func NewProductRepo(seed *CatalogSeed) ProductRepository {
	r := &productRepository{
		index:      make(map[string]int, len(seed.Products)),
		categories: slices.Clone(seed.Categories),
	}

	for _, p := range seed.Products {
		r.index[p.ID] = len(r.products)
		r.products = append(r.products, cloneProduct(p))
	}

	return r
}

func (r *productRepository) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}

	p := cloneProduct(r.products[i])

	return &p, nil
}

func (r *productRepository) ListProducts(_ context.Context, filter ProductFilter, page, size int) ([]models.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))

	var matched []models.Product
	for _, p := range r.products {
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) && !strings.EqualFold(categorySlug(p.Category), filter.Category) {
			continue
		}

		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) && !strings.Contains(strings.ToLower(p.Brand), query) {
			continue
		}

		matched = append(matched, cloneProduct(p))
	}

	total := len(matched)

	offset := (page - 1) * size
	if offset >= total {
		return []models.Product{}, total, nil
	}

	end := min(offset+size, total)

	return matched[offset:end], total, nil
}

func (r *productRepository) ListCategories(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.categories), nil
}

// CreateProduct appends product to the catalog. A product without variants gets
// its default variant.
func (r *productRepository) CreateProduct(_ context.Context, product *models.Product) error {
	if product.ID == "" {
		return errors.New("product id must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[product.ID]; ok {
		return fmt.Errorf("%w: %s", ErrProductExists, product.ID)
	}

	r.index[product.ID] = len(r.products)
	r.products = append(r.products, cloneProduct(models.EnsureVariants(*product)))

	return nil
}

// UpdateProduct runs apply on a copy of the product under the write lock and
// stores the result only when apply succeeds. Id and variants are kept.
func (r *productRepository) UpdateProduct(_ context.Context, id string, apply func(*models.Product) error) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}

	updated := cloneProduct(r.products[i])
	if err := apply(&updated); err != nil {
		return nil, err
	}

	updated.ID = id
	updated.Variants = r.products[i].Variants
	r.products[i] = updated

	p := cloneProduct(updated)

	return &p, nil
}

func (r *productRepository) UpdateVariantStock(_ context.Context, productID, variantID string, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %d", stock)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	variant, err := r.variantLocked(productID, variantID)
	if err != nil {
		return nil, err
	}

	variant.Stock = stock

	p := cloneProduct(r.products[r.index[productID]])

	return &p, nil
}

// ReserveStock decrements every request or none of them.
func (r *productRepository) ReserveStock(_ context.Context, requests []StockRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	needed := make(map[*models.Variant]int, len(requests))

	for _, req := range requests {
		variant, err := r.variantLocked(req.ProductID, req.VariantID)
		if err != nil {
			return err
		}

		needed[variant] += req.Quantity
		if needed[variant] > variant.Stock {
			return fmt.Errorf("%w: product %s variant %s has %d, requested %d",
				ErrInsufficientStock, req.ProductID, variant.ID, variant.Stock, needed[variant])
		}
	}

	for variant, qty := range needed {
		variant.Stock -= qty
	}

	return nil
}

// ReleaseStock returns reserved units. Every request is resolved before any
// stock changes.
func (r *productRepository) ReleaseStock(_ context.Context, requests []StockRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	returned := make(map[*models.Variant]int, len(requests))

	for _, req := range requests {
		variant, err := r.variantLocked(req.ProductID, req.VariantID)
		if err != nil {
			return err
		}

		returned[variant] += req.Quantity
	}

	for variant, qty := range returned {
		variant.Stock += qty
	}

	return nil
}

func (r *productRepository) InventorySummary(_ context.Context, lowStockBelow int) (*models.InventorySummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := &models.InventorySummary{Products: len(r.products), LowStockBelow: lowStockBelow}

	for _, p := range r.products {
		for _, v := range p.Variants {
			summary.Variants++
			if v.Stock < lowStockBelow {
				summary.LowStock++
			}
			if v.Stock == 0 {
				summary.OutOfStock++
			}
		}
	}

	return summary, nil
}

// variantLocked resolves a variant; an empty variantID picks the first one.
func (r *productRepository) variantLocked(productID, variantID string) (*models.Variant, error) {
	i, ok := r.index[productID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	p := &r.products[i]

	if variantID == "" {
		if len(p.Variants) == 0 {
			return nil, fmt.Errorf("%w: product %s has no variants", ErrVariantNotFound, productID)
		}
		return &p.Variants[0], nil
	}

	v := p.FindVariant(variantID)
	if v == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrVariantNotFound, productID, variantID)
	}

	return v, nil
}

func cloneProduct(p models.Product) models.Product {
	p.Variants = slices.Clone(p.Variants)
	p.Images = slices.Clone(p.Images)

	return p
}

func categorySlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, "&", "")
	slug = strings.Join(strings.Fields(slug), "-")

	return slug
}
