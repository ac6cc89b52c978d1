package handlers_test

import (
	"context"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	repository "github.com/Rwadhwa18/grocery-bazaar-hub/internal/repositories"
	"github.com/stretchr/testify/mock"
)

type mockSessionService struct {
	mock.Mock
}

func (m *mockSessionService) CreateSession(ctx context.Context, req *models.CreateSessionRequest, clientKey string) (*models.SessionResponse, error) {
	args := m.Called(ctx, req, clientKey)
	if s, ok := args.Get(0).(*models.SessionResponse); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*models.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) ListProducts(ctx context.Context, filter repository.ProductFilter, page, size int) ([]models.Product, int, error) {
	args := m.Called(ctx, filter, page, size)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Int(1), args.Error(2)
}

func (m *mockProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *mockProductService) UpdateStock(ctx context.Context, productID, variantID string, stock int) (*models.Product, error) {
	args := m.Called(ctx, productID, variantID, stock)
	if p, ok := args.Get(0).(*models.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) CreateProduct(ctx context.Context, merchantID string, req *models.CreateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, merchantID, req)
	if p, ok := args.Get(0).(*models.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) UpdateProduct(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, id, req)
	if p, ok := args.Get(0).(*models.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) InventorySummary(ctx context.Context) (*models.InventorySummary, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*models.InventorySummary); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCartService struct {
	mock.Mock
}

func (m *mockCartService) view(args mock.Arguments) (*models.CartView, error) {
	if v, ok := args.Get(0).(*models.CartView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) GetCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	return m.view(m.Called(ctx, sessionID))
}

func (m *mockCartService) AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.CartView, error) {
	return m.view(m.Called(ctx, sessionID, req))
}

func (m *mockCartService) UpdateItem(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.CartView, error) {
	return m.view(m.Called(ctx, sessionID, req))
}

func (m *mockCartService) RemoveItem(ctx context.Context, sessionID string, req *models.RemoveItemRequest) (*models.CartView, error) {
	return m.view(m.Called(ctx, sessionID, req))
}

func (m *mockCartService) ClearCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	return m.view(m.Called(ctx, sessionID))
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) order(args mock.Arguments) (*models.Order, error) {
	if o, ok := args.Get(0).(*models.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, sessionID string, req *models.CreateOrderRequest) (*models.Order, error) {
	return m.order(m.Called(ctx, sessionID, req))
}

func (m *mockOrderService) GetOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	return m.order(m.Called(ctx, sessionID, orderID))
}

func (m *mockOrderService) ListOrders(ctx context.Context, sessionID, status string, page, size int) (*models.OrderHistoryResponse, error) {
	args := m.Called(ctx, sessionID, status, page, size)
	if h, ok := args.Get(0).(*models.OrderHistoryResponse); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) GetTracking(ctx context.Context, sessionID, orderID string) (*models.TrackingView, error) {
	args := m.Called(ctx, sessionID, orderID)
	if v, ok := args.Get(0).(*models.TrackingView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) CancelOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	return m.order(m.Called(ctx, sessionID, orderID))
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID string, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	return m.order(m.Called(ctx, orderID, req))
}

func (m *mockOrderService) Shutdown() {
	m.Called()
}
