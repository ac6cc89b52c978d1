package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderExists   = errors.New("order already exists")
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order, events []models.TrackingEvent) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, []models.TrackingEvent, error)
	SaveOrder(ctx context.Context, order *models.Order, events []models.TrackingEvent) error
	ListOrdersByCustomer(ctx context.Context, customerID string, status models.OrderStatus, page, size int) ([]models.Order, int, error)
}

type orderRecord struct {
	order  models.Order
	events []models.TrackingEvent
}

type orderRepository struct {
	mu         sync.RWMutex
	orders     map[string]*orderRecord
	byCustomer map[string][]string
}

func NewOrderRepo() OrderRepository {
	return &orderRepository{
		orders:     make(map[string]*orderRecord),
		byCustomer: make(map[string][]string),
	}
}

func (r *orderRepository) CreateOrder(_ context.Context, order *models.Order, events []models.TrackingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return fmt.Errorf("%w: %s", ErrOrderExists, order.ID)
	}

	r.orders[order.ID] = &orderRecord{order: cloneOrder(*order), events: slices.Clone(events)}
	r.byCustomer[order.CustomerID] = append(r.byCustomer[order.CustomerID], order.ID)

	return nil
}

func (r *orderRepository) GetOrderByID(_ context.Context, id string) (*models.Order, []models.TrackingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.orders[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	order := cloneOrder(rec.order)

	return &order, slices.Clone(rec.events), nil
}

// SaveOrder replaces the stored order and its full event list.
func (r *orderRepository) SaveOrder(_ context.Context, order *models.Order, events []models.TrackingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, order.ID)
	}

	rec.order = cloneOrder(*order)
	rec.events = slices.Clone(events)

	return nil
}

// ListOrdersByCustomer returns newest orders first. An empty status matches all.
func (r *orderRepository) ListOrdersByCustomer(_ context.Context, customerID string, status models.OrderStatus, page, size int) ([]models.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Order
	for _, id := range r.byCustomer[customerID] {
		rec := r.orders[id]
		if status != "" && rec.order.Status != status {
			continue
		}
		matched = append(matched, cloneOrder(rec.order))
	}

	slices.SortStableFunc(matched, func(a, b models.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(matched)

	offset := (page - 1) * size
	if offset >= total {
		return []models.Order{}, total, nil
	}

	return matched[offset:min(offset+size, total)], total, nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	if o.EstimatedDelivery != nil {
		eta := *o.EstimatedDelivery
		o.EstimatedDelivery = &eta
	}

	return o
}
