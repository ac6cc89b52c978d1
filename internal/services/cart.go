package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/cache"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/cart"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/metrics"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	repository "github.com/Rwadhwa18/grocery-bazaar-hub/internal/repositories"
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*models.CartView, error)
	AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.CartView, error)
	UpdateItem(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.CartView, error)
	RemoveItem(ctx context.Context, sessionID string, req *models.RemoveItemRequest) (*models.CartView, error)
	ClearCart(ctx context.Context, sessionID string) (*models.CartView, error)
}

// cartSession serializes every access to one shopper's Store.
type cartSession struct {
	mu    sync.Mutex
	store *cart.Store
}

// CartManager owns one cart Store per session.
type CartManager struct {
	cache    cache.Cache
	products repository.ProductRepository

	mu       sync.Mutex
	sessions map[string]*cartSession
}

func NewCartService(c cache.Cache, products repository.ProductRepository) *CartManager {
	return &CartManager{
		cache:    c,
		products: products,
		sessions: make(map[string]*cartSession),
	}
}

func (s *CartManager) GetCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	var view models.CartView

	s.withCart(ctx, sessionID, func(store *cart.Store) error {
		view = store.View()
		return nil
	})

	return &view, nil
}

func (s *CartManager) AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.CartView, error) {
	product, err := s.products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		metrics.RecordCartOperation("add", metrics.OutcomeError)
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	var variant *models.Variant
	if req.VariantID != "" {
		if variant = product.FindVariant(req.VariantID); variant == nil {
			metrics.RecordCartOperation("add", metrics.OutcomeError)
			return nil, errors.NotFoundError("Variant not found")
		}
	}

	var view models.CartView

	err = s.withCart(ctx, sessionID, func(store *cart.Store) error {
		if err := store.AddToCart(ctx, *product, req.Quantity, variant); err != nil {
			return err
		}
		view = store.View()
		return nil
	})
	if err != nil {
		metrics.RecordCartOperation("add", metrics.OutcomeOutOfStock)
		return nil, err
	}

	metrics.RecordCartOperation("add", metrics.OutcomeOK)

	return &view, nil
}

// UpdateItem returns the cart together with a LIMITED_STOCK error when the
// quantity was clamped. The clamp has already been applied in that case.
func (s *CartManager) UpdateItem(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.CartView, error) {
	var view models.CartView

	notice := s.withCart(ctx, sessionID, func(store *cart.Store) error {
		err := store.UpdateQuantity(ctx, req.ProductID, req.Quantity, req.VariantID)
		view = store.View()
		return err
	})

	if notice != nil {
		metrics.RecordCartOperation("update", metrics.OutcomeLimitedStock)
	} else {
		metrics.RecordCartOperation("update", metrics.OutcomeOK)
	}

	return &view, notice
}

func (s *CartManager) RemoveItem(ctx context.Context, sessionID string, req *models.RemoveItemRequest) (*models.CartView, error) {
	var view models.CartView

	s.withCart(ctx, sessionID, func(store *cart.Store) error {
		store.RemoveFromCart(ctx, req.ProductID, req.VariantID)
		view = store.View()
		return nil
	})

	metrics.RecordCartOperation("remove", metrics.OutcomeOK)

	return &view, nil
}

func (s *CartManager) ClearCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	var view models.CartView

	s.withCart(ctx, sessionID, func(store *cart.Store) error {
		store.ClearCart(ctx)
		view = store.View()
		return nil
	})

	metrics.RecordCartOperation("clear", metrics.OutcomeOK)

	return &view, nil
}

// withCart runs fn while holding the session's lock.
func (s *CartManager) withCart(ctx context.Context, sessionID string, fn func(*cart.Store) error) error {
	session := s.session(ctx, sessionID)

	session.mu.Lock()
	defer session.mu.Unlock()

	return fn(session.store)
}

func (s *CartManager) session(ctx context.Context, sessionID string) *cartSession {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		session = &cartSession{}
		s.sessions[sessionID] = session
	}
	s.mu.Unlock()

	// the snapshot is restored under the session lock only
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.store == nil {
		logger := slog.Default().With(slog.String("sessionId", sessionID))
		snapshots := cart.NewCacheSnapshot(s.cache, cache.Key(cache.CartKeyPrefix, sessionID))
		session.store = cart.NewStore(ctx, snapshots, logger)
	}

	return session
}
