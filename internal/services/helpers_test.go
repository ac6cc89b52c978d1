package service_test

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/cache"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/config"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	repository "github.com/Rwadhwa18/grocery-bazaar-hub/internal/repositories"
	service "github.com/Rwadhwa18/grocery-bazaar-hub/internal/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
categories:
  - {id: grocery, name: Grocery}
products:
  - id: "1"
    name: Ashirvaad Aata
    category: Grocery
    price: 240
    variants:
      - {id: v1, weightValue: 5, weightUnit: kg, price: 240, mrp: 260, stock: 4}
      - {id: v2, weightValue: 10, weightUnit: kg, price: 450, mrp: 480, stock: 0}
  - id: "2"
    name: Tata Salt
    category: Grocery
    price: 20
`

type fixture struct {
	cache    cache.Cache
	products repository.ProductRepository
	orders   repository.OrderRepository
	carts    *service.CartManager
	svc      service.OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	return newFixtureWithOrders(t, repository.NewOrderRepo())
}

func newFixtureWithOrders(t *testing.T, orders repository.OrderRepository) *fixture {
	t.Helper()

	seed, err := repository.ParseCatalogSeed([]byte(catalogYAML))
	require.NoError(t, err)

	f := &fixture{
		cache:    cache.NewMemoryCache(0),
		products: repository.NewProductRepo(seed),
		orders:   orders,
	}
	f.carts = service.NewCartService(f.cache, f.products)
	f.svc = service.NewOrderService(f.orders, f.products, f.carts, config.TrackingConfig{
		CourierInterval: 5 * time.Millisecond,
		DeliveryDelay:   80 * time.Millisecond,
	})
	t.Cleanup(f.svc.Shutdown)

	return f
}

func (f *fixture) add(t *testing.T, sessionID, productID, variantID string, qty int) *models.CartView {
	t.Helper()

	view, err := f.carts.AddItem(t.Context(), sessionID, &models.AddItemRequest{ProductID: productID, VariantID: variantID, Quantity: qty})
	require.NoError(t, err)

	return view
}

func checkoutRequest(coupon string) *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		ShippingAddress: models.Address{Address: "12 MG Road", City: "Mumbai", State: "MH", ZipCode: "400001"},
		PaymentMethod:   "upi",
		CouponCode:      coupon,
	}
}

// failingOrderRepo rejects every new order.
type failingOrderRepo struct {
	repository.OrderRepository
}

func (failingOrderRepo) CreateOrder(context.Context, *models.Order, []models.TrackingEvent) error {
	return stdErrors.New("order store unavailable")
}

// collidingOrderRepo reports an existing id for the first collisions inserts.
type collidingOrderRepo struct {
	repository.OrderRepository
	collisions int
	attempts   []string
}

func (r *collidingOrderRepo) CreateOrder(ctx context.Context, order *models.Order, events []models.TrackingEvent) error {
	r.attempts = append(r.attempts, order.ID)
	if len(r.attempts) <= r.collisions {
		return fmt.Errorf("%w: %s", repository.ErrOrderExists, order.ID)
	}

	return r.OrderRepository.CreateOrder(ctx, order, events)
}

type mockRateLimiter struct {
	mock.Mock
}

func (m *mockRateLimiter) CheckSessionRateLimit(ctx context.Context, clientKey string) (bool, int, int, error) {
	args := m.Called(ctx, clientKey)
	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*models.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) ListProducts(ctx context.Context, filter repository.ProductFilter, page, size int) ([]models.Product, int, error) {
	args := m.Called(ctx, filter, page, size)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Int(1), args.Error(2)
}

func (m *mockProductRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *mockProductRepo) UpdateVariantStock(ctx context.Context, productID, variantID string, stock int) (*models.Product, error) {
	args := m.Called(ctx, productID, variantID, stock)
	if p, ok := args.Get(0).(*models.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) ReserveStock(ctx context.Context, requests []repository.StockRequest) error {
	return m.Called(ctx, requests).Error(0)
}

func (m *mockProductRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) UpdateProduct(ctx context.Context, id string, apply func(*models.Product) error) (*models.Product, error) {
	args := m.Called(ctx, id, apply)
	if p, ok := args.Get(0).(*models.Product); ok {
		if err := apply(p); err != nil {
			return nil, err
		}
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) ReleaseStock(ctx context.Context, requests []repository.StockRequest) error {
	return m.Called(ctx, requests).Error(0)
}

func (m *mockProductRepo) InventorySummary(ctx context.Context, lowStockBelow int) (*models.InventorySummary, error) {
	args := m.Called(ctx, lowStockBelow)
	if s, ok := args.Get(0).(*models.InventorySummary); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
