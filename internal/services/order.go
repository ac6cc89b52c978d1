package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/api/middleware"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/cart"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/config"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/metrics"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	repository "github.com/Rwadhwa18/grocery-bazaar-hub/internal/repositories"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/telemetry"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/tracking"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	WelcomeCoupon       = "WELCOME10"
	welcomeDiscountRate = 0.10
	deliveryWindow      = 3 * 24 * time.Hour
	PlacedDescription   = "Order placed successfully"
	StatusFilterAll     = "all"
	orderIDAttempts     = 20
)

type OrderService interface {
	PlaceOrder(ctx context.Context, sessionID string, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, sessionID, status string, page, size int) (*models.OrderHistoryResponse, error)
	GetTracking(ctx context.Context, sessionID, orderID string) (*models.TrackingView, error)
	CancelOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, req *models.UpdateOrderStatusRequest) (*models.Order, error)
	Shutdown()
}

// orderEntry is the live state of one order. mu guards machine and sim;
// simulator callbacks take it too.
type orderEntry struct {
	mu      sync.Mutex
	machine *tracking.Machine
	sim     *tracking.Simulator
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	carts    *CartManager
	cfg      config.TrackingConfig
	simCfg   tracking.SimulatorConfig
	now      func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	entries map[string]*orderEntry
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, carts *CartManager, cfg config.TrackingConfig) OrderService {
	simCfg := tracking.DefaultSimulatorConfig()
	if cfg.CourierInterval > 0 {
		simCfg.CourierInterval = cfg.CourierInterval
	}
	if cfg.DeliveryDelay > 0 {
		simCfg.DeliveryDelay = cfg.DeliveryDelay
	}
	if cfg.InitialEstimateMin <= 0 {
		cfg.InitialEstimateMin = tracking.DefaultInitialEstimate
	}
	if cfg.MinimumEstimateMin <= 0 {
		cfg.MinimumEstimateMin = tracking.DefaultMinimumEstimate
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &orderService{
		orders:   orders,
		products: products,
		carts:    carts,
		cfg:      cfg,
		simCfg:   simCfg,
		now:      time.Now,
		baseCtx:  ctx,
		cancel:   cancel,
		entries:  make(map[string]*orderEntry),
	}
}

// PlaceOrder turns the session's cart into a pending order. Stock for every
// line is reserved atomically; on any failure the cart is left untouched.
func (s *orderService) PlaceOrder(ctx context.Context, sessionID string, req *models.CreateOrderRequest) (*models.Order, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	logger := middleware.LoggerFromContext(ctx)

	var order *models.Order

	err := s.carts.withCart(ctx, sessionID, func(store *cart.Store) error {
		if store.IsEmpty() {
			return errors.BadRequestError("Cart is empty")
		}

		coupon := strings.ToUpper(utils.Sanitize(req.CouponCode))
		if coupon != "" && coupon != WelcomeCoupon {
			return errors.ValidationError("Invalid coupon")
		}

		lines := store.Lines()
		requests := make([]repository.StockRequest, 0, len(lines))
		items := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			item := models.OrderItem{
				ProductID:   line.Product.ID,
				ProductName: line.Product.Name,
				Quantity:    line.Quantity,
				Price:       line.UnitPrice(),
			}
			if line.Variant != nil {
				item.VariantID = line.Variant.ID
			}

			items = append(items, item)
			requests = append(requests, repository.StockRequest{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
			})
		}

		if err := s.products.ReserveStock(ctx, requests); err != nil {
			switch {
			case stdErrors.Is(err, repository.ErrInsufficientStock):
				return errors.BadRequestError("Insufficient stock for one or more items").WithDetail(err.Error()).WithError(err)
			case stdErrors.Is(err, repository.ErrProductNotFound), stdErrors.Is(err, repository.ErrVariantNotFound):
				return errors.NotFoundError("Product no longer available").WithDetail(err.Error()).WithError(err)
			default:
				return errors.InternalError("Failed to reserve stock").WithError(err)
			}
		}

		now := s.now()
		eta := now.Add(deliveryWindow)
		subtotal := store.Total()

		var discount float64
		if coupon == WelcomeCoupon {
			discount = roundCents(subtotal * welcomeDiscountRate)
		}

		order = &models.Order{
			CustomerID:        sessionID,
			Items:             items,
			Subtotal:          subtotal,
			Discount:          discount,
			Total:             roundCents(subtotal - discount),
			CouponCode:        coupon,
			Status:            models.OrderStatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
			EstimatedDelivery: &eta,
			TrackingNumber:    fmt.Sprintf("TRK%08d", rand.IntN(100_000_000)),
			PaymentMethod:     utils.Sanitize(req.PaymentMethod),
			ShippingAddress: models.Address{
				Address: utils.Sanitize(req.ShippingAddress.Address),
				City:    utils.Sanitize(req.ShippingAddress.City),
				State:   utils.Sanitize(req.ShippingAddress.State),
				ZipCode: utils.Sanitize(req.ShippingAddress.ZipCode),
			},
		}

		events, err := s.createOrder(ctx, order, now)
		if err != nil {
			if releaseErr := s.products.ReleaseStock(ctx, requests); releaseErr != nil {
				logger.Error("Failed to release reserved stock", slog.Any("error", releaseErr))
			}
			return errors.InternalError("Failed to create order").WithError(err)
		}

		s.register(order.ID, s.newMachine(*order, events))

		store.ClearCart(ctx)

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("Checkout failed", slog.String("sessionId", sessionID), slog.Any("error", err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("order.items", len(order.Items)),
		attribute.Float64("order.total", order.Total),
	)
	metrics.RecordOrderTransition(string(models.OrderStatusPending))
	logger.Info("Order placed", slog.String("orderId", order.ID), slog.Float64("total", order.Total))

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	entry, err := s.ownedEntry(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	order := entry.machine.Order()

	return &order, nil
}

// ListOrders returns the session's orders, newest first. status is a status
// name or "all".
func (s *orderService) ListOrders(ctx context.Context, sessionID, status string, page, size int) (*models.OrderHistoryResponse, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 10 {
		size = 10
	}

	var filter models.OrderStatus
	if status != "" && status != StatusFilterAll {
		filter = models.OrderStatus(status)
		if !filter.IsValid() {
			return nil, errors.ValidationError("Invalid status filter: " + status)
		}
	}

	orders, total, err := s.orders.ListOrdersByCustomer(ctx, sessionID, filter, page, size)
	if err != nil {
		return nil, errors.InternalError("Failed to fetch orders").WithError(err)
	}

	return &models.OrderHistoryResponse{Orders: orders, Total: total, Page: page, Size: size}, nil
}

func (s *orderService) GetTracking(ctx context.Context, sessionID, orderID string) (*models.TrackingView, error) {
	entry, err := s.ownedEntry(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	m := entry.machine
	view := &models.TrackingView{
		OrderID:  orderID,
		Status:   m.Status(),
		Progress: m.Progress(),
		Timeline: m.Timeline(),
	}

	if courier := m.Courier(); courier != nil {
		view.Courier = &models.CourierView{Position: courier.Position, EstimatedMinutes: courier.EstimatedMinutes}
	}

	return view, nil
}

// CancelOrder cancels a non-terminal order and stops its delivery simulation.
func (s *orderService) CancelOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	entry, err := s.ownedEntry(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()

	if err := entry.machine.Cancel(); err != nil {
		entry.mu.Unlock()
		return nil, err
	}

	sim := s.detachSimulator(entry)
	order, err := s.persist(ctx, entry.machine)
	entry.mu.Unlock()

	// Stop waits for the simulator goroutine, whose callbacks take entry.mu
	if sim != nil {
		sim.Stop()
	}

	if err != nil {
		return nil, err
	}

	metrics.RecordOrderTransition(string(models.OrderStatusCancelled))
	middleware.LoggerFromContext(ctx).Info("Order cancelled", slog.String("orderId", orderID))

	return order, nil
}

// UpdateStatus applies a manual transition. Moving to shipped starts the
// delivery simulation.
func (s *orderService) UpdateStatus(ctx context.Context, orderID string, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	entry, err := s.entry(ctx, orderID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.machine.SetStatus(req.Status, utils.Sanitize(req.Location), utils.Sanitize(req.Description)); err != nil {
		return nil, err
	}

	order, err := s.persist(ctx, entry.machine)
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderTransition(string(req.Status))

	if req.Status == models.OrderStatusShipped && entry.sim == nil {
		s.startSimulator(orderID, entry)
	}

	middleware.LoggerFromContext(ctx).Info("Order status updated", slog.String("orderId", orderID), slog.String("status", string(req.Status)))

	return order, nil
}

// Shutdown stops every running delivery simulation.
func (s *orderService) Shutdown() {
	s.cancel()

	s.mu.Lock()
	entries := make([]*orderEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		sim := s.detachSimulator(e)
		e.mu.Unlock()

		if sim != nil {
			sim.Stop()
		}
	}
}

// startSimulator must be called with entry.mu held.
func (s *orderService) startSimulator(orderID string, entry *orderEntry) {
	logger := slog.Default().With(slog.String("orderId", orderID))

	var sim *tracking.Simulator
	sim = tracking.NewSimulator(s.simCfg,
		func(lat, lng float64, elapsedMinutes int) {
			entry.mu.Lock()
			defer entry.mu.Unlock()

			entry.machine.RecordCourierPosition(lat, lng, elapsedMinutes)
		},
		func() {
			entry.mu.Lock()
			defer entry.mu.Unlock()

			// a stale simulator may fire after a cancel detached it
			if entry.sim != sim {
				return
			}

			entry.sim = nil
			metrics.SimulationStopped()

			if !entry.machine.Advance() {
				return
			}

			if _, err := s.persist(context.Background(), entry.machine); err != nil {
				logger.Error("Failed to persist delivered order", slog.Any("error", err))
				return
			}

			metrics.RecordOrderTransition(string(models.OrderStatusDelivered))
			logger.Info("Order delivered")
		},
	)

	entry.sim = sim
	metrics.SimulationStarted()
	sim.Start(s.baseCtx)
}

// detachSimulator must be called with entry.mu held. The caller stops the
// returned simulator after releasing the lock.
func (s *orderService) detachSimulator(entry *orderEntry) *tracking.Simulator {
	sim := entry.sim
	if sim != nil {
		entry.sim = nil
		metrics.SimulationStopped()
	}

	return sim
}

func (s *orderService) persist(ctx context.Context, m *tracking.Machine) (*models.Order, error) {
	order := m.Order()

	if err := s.orders.SaveOrder(ctx, &order, m.Events()); err != nil {
		return nil, errors.InternalError("Failed to save order").WithError(err)
	}

	return &order, nil
}

func (s *orderService) ownedEntry(ctx context.Context, sessionID, orderID string) (*orderEntry, error) {
	entry, err := s.entry(ctx, orderID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	owner := entry.machine.Order().CustomerID
	entry.mu.Unlock()

	if owner != sessionID {
		return nil, errors.NotFoundError("Order not found")
	}

	return entry, nil
}

// entry returns the live state for orderID, rebuilding it from the repository
// when it is not loaded.
func (s *orderService) entry(ctx context.Context, orderID string) (*orderEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[orderID]; ok {
		return e, nil
	}

	order, events, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	e := &orderEntry{machine: s.newMachine(*order, events)}
	s.entries[orderID] = e

	return e, nil
}

func (s *orderService) register(orderID string, m *tracking.Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[orderID] = &orderEntry{machine: m}
}

func (s *orderService) newMachine(order models.Order, events []models.TrackingEvent) *tracking.Machine {
	return tracking.NewMachine(order, events,
		tracking.WithClock(s.now),
		tracking.WithEstimates(s.cfg.InitialEstimateMin, s.cfg.MinimumEstimateMin),
	)
}

// createOrder stores order under a fresh ORD id, drawing a new id whenever the
// repository reports a collision. It returns the initial timeline.
func (s *orderService) createOrder(ctx context.Context, order *models.Order, now time.Time) ([]models.TrackingEvent, error) {
	var err error

	for range orderIDAttempts {
		order.ID = fmt.Sprintf("ORD%06d", rand.IntN(1_000_000))

		events := []models.TrackingEvent{{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			Status:      models.OrderStatusPending,
			Location:    tracking.OnlineLocation,
			Timestamp:   now,
			Description: PlacedDescription,
		}}

		err = s.orders.CreateOrder(ctx, order, events)
		if err == nil {
			return events, nil
		}

		if !stdErrors.Is(err, repository.ErrOrderExists) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("no free order id after %d attempts: %w", orderIDAttempts, err)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
