// Package cart holds the in-session shopping cart: the ordered set of lines keyed
// by product and optional variant, its derived totals, and the stock rules applied
// when lines are added or resized.
//
// A Store is not safe for concurrent use. Callers that share one across goroutines
// must serialize access themselves.
package cart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
)

// Snapshotter is the persistence slot for the serialized line sequence.
// Load returns (nil, nil) when nothing has been saved yet.
type Snapshotter interface {
	Load(ctx context.Context) ([]models.CartLine, error)
	Save(ctx context.Context, lines []models.CartLine) error
}

type Store struct {
	lines     []models.CartLine
	snapshots Snapshotter
	logger    *slog.Logger
}

// NewStore restores the cart from snapshots. A snapshot that cannot be read
// leaves the cart empty; the failure is logged and never returned.
func NewStore(ctx context.Context, snapshots Snapshotter, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{snapshots: snapshots, logger: logger}

	lines, err := snapshots.Load(ctx)
	if err != nil {
		logger.Warn("Failed to restore cart snapshot, starting empty", slog.Any("error", err))
		return s
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		s.lines = append(s.lines, line)
	}

	return s
}

// AddToCart adds quantity units of product (and variant, when non-nil). A line
// with the same key grows; otherwise a new line is appended. Non-positive
// quantities are ignored. A variant without stock yields an OUT_OF_STOCK error and
// leaves the cart unchanged. The stock is not checked against the merged quantity.
func (s *Store) AddToCart(ctx context.Context, product models.Product, quantity int, variant *models.Variant) error {
	if quantity <= 0 {
		return nil
	}

	if variant != nil && variant.Stock <= 0 {
		return errors.OutOfStockError(fmt.Sprintf("%s (%g%s) is currently out of stock",
			product.Name, variant.WeightValue, variant.WeightUnit))
	}

	key := models.LineKey{ProductID: product.ID}
	if variant != nil {
		key.VariantID = variant.ID
	}

	if i := s.indexOf(key); i >= 0 {
		s.lines[i].Quantity += quantity
	} else {
		line := models.CartLine{Product: product, Quantity: quantity}
		if variant != nil {
			v := *variant
			line.Variant = &v
		}
		s.lines = append(s.lines, line)
	}

	s.persist(ctx)

	return nil
}

// RemoveFromCart drops the line with the exact (productID, variantID) key. An
// empty variantID addresses the line without a variant.
func (s *Store) RemoveFromCart(ctx context.Context, productID, variantID string) {
	key := models.LineKey{ProductID: productID, VariantID: variantID}

	if i := s.indexOf(key); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}

	s.persist(ctx)
}

// UpdateQuantity sets the quantity of an existing line. Non-positive quantities
// remove the line. When the line's variant has less stock than requested, the
// quantity is clamped to the stock and a LIMITED_STOCK error reports the clamp;
// a clamp to zero removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int, variantID string) error {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID, variantID)
		return nil
	}

	i := s.indexOf(models.LineKey{ProductID: productID, VariantID: variantID})
	if i < 0 {
		s.persist(ctx)
		return nil
	}

	line := &s.lines[i]

	var notice error
	if line.Variant != nil && quantity > line.Variant.Stock {
		quantity = line.Variant.Stock
		notice = errors.LimitedStockError(fmt.Sprintf("Only %d items available", line.Variant.Stock))
	}

	if quantity <= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	} else {
		line.Quantity = quantity
	}

	s.persist(ctx)

	return notice
}

func (s *Store) ClearCart(ctx context.Context) {
	s.lines = nil
	s.persist(ctx)
}

// GetCartItemQuantity returns 0 when no line has the key.
func (s *Store) GetCartItemQuantity(productID, variantID string) int {
	if i := s.indexOf(models.LineKey{ProductID: productID, VariantID: variantID}); i >= 0 {
		return s.lines[i].Quantity
	}

	return 0
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)

	return out
}

func (s *Store) Total() float64 {
	var total float64
	for _, line := range s.lines {
		total += line.LineTotal()
	}

	return total
}

func (s *Store) ItemCount() int {
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}

	return count
}

func (s *Store) IsEmpty() bool {
	return len(s.lines) == 0
}

func (s *Store) View() models.CartView {
	return models.CartView{
		Items:     s.Lines(),
		Total:     s.Total(),
		ItemCount: s.ItemCount(),
	}
}

// indexOf applies the matching rule: same product, and either both lines lack a
// variant or both carry the same variant id.
func (s *Store) indexOf(key models.LineKey) int {
	for i, line := range s.lines {
		if line.Key() == key {
			return i
		}
	}

	return -1
}

func (s *Store) persist(ctx context.Context) {
	if err := s.snapshots.Save(ctx, s.Lines()); err != nil {
		s.logger.Warn("Failed to persist cart snapshot", slog.Any("error", err), slog.Int("lines", len(s.lines)))
	}
}
