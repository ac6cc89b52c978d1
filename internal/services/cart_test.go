package service_test

import (
	"sync"
	"testing"

	appErrors "github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	service "github.com/Rwadhwa18/grocery-bazaar-hub/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService(t *testing.T) {
	t.Run("AddItem merges by product and variant", func(t *testing.T) {
		f := newFixture(t)

		f.add(t, "s1", "1", "v1", 1)
		f.add(t, "s1", "2", "", 2)
		view := f.add(t, "s1", "1", "v1", 2)

		require.Len(t, view.Items, 2)
		assert.Equal(t, 3, view.Items[0].Quantity)
		assert.Equal(t, 5, view.ItemCount)
		assert.InDelta(t, 3*240+2*20, view.Total, 1e-9)
	})

	t.Run("AddItem rejects an out of stock variant", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.carts.AddItem(t.Context(), "s1", &models.AddItemRequest{ProductID: "1", VariantID: "v2", Quantity: 1})

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeOutOfStock))
		assert.Equal(t, "Ashirvaad Aata (10kg) is currently out of stock", err.Error())

		view, err := f.carts.GetCart(t.Context(), "s1")
		require.NoError(t, err)
		assert.Empty(t, view.Items)
	})

	t.Run("AddItem unknown product or variant", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.carts.AddItem(t.Context(), "s1", &models.AddItemRequest{ProductID: "9", Quantity: 1})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))

		_, err = f.carts.AddItem(t.Context(), "s1", &models.AddItemRequest{ProductID: "1", VariantID: "nope", Quantity: 1})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})

	t.Run("UpdateItem clamps to stock with a notice", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "s1", "1", "v1", 1)

		view, err := f.carts.UpdateItem(t.Context(), "s1", &models.UpdateQuantityRequest{ProductID: "1", VariantID: "v1", Quantity: 10})

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeLimitedStock))
		assert.Equal(t, "Only 4 items available", err.Error())
		require.Len(t, view.Items, 1)
		assert.Equal(t, 4, view.Items[0].Quantity)
	})

	t.Run("UpdateItem to zero removes the line", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "s1", "1", "v1", 1)

		view, err := f.carts.UpdateItem(t.Context(), "s1", &models.UpdateQuantityRequest{ProductID: "1", VariantID: "v1", Quantity: 0})

		require.NoError(t, err)
		assert.Empty(t, view.Items)
	})

	t.Run("RemoveItem matches the exact key", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "s1", "1", "v1", 1)
		f.add(t, "s1", "2", "", 1)

		view, err := f.carts.RemoveItem(t.Context(), "s1", &models.RemoveItemRequest{ProductID: "1"})
		require.NoError(t, err)
		assert.Len(t, view.Items, 2)

		view, err = f.carts.RemoveItem(t.Context(), "s1", &models.RemoveItemRequest{ProductID: "1", VariantID: "v1"})
		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		assert.Equal(t, "2", view.Items[0].Product.ID)
	})

	t.Run("ClearCart", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "s1", "1", "v1", 1)

		view, err := f.carts.ClearCart(t.Context(), "s1")

		require.NoError(t, err)
		assert.Empty(t, view.Items)
		assert.Zero(t, view.Total)
	})

	t.Run("Sessions are isolated", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "s1", "1", "v1", 1)

		view, err := f.carts.GetCart(t.Context(), "s2")

		require.NoError(t, err)
		assert.Empty(t, view.Items)
	})

	t.Run("Cart survives a restart through the cache", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "s1", "1", "v1", 2)
		f.add(t, "s1", "2", "", 1)

		restarted := service.NewCartService(f.cache, f.products)
		view, err := restarted.GetCart(t.Context(), "s1")

		require.NoError(t, err)
		require.Len(t, view.Items, 2)
		assert.Equal(t, 2, view.Items[0].Quantity)
		require.NotNil(t, view.Items[0].Variant)
		assert.Equal(t, "v1", view.Items[0].Variant.ID)
		assert.Nil(t, view.Items[1].Variant)
	})

	t.Run("Concurrent adds to one session are serialized", func(t *testing.T) {
		f := newFixture(t)

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.carts.AddItem(t.Context(), "s1", &models.AddItemRequest{ProductID: "2", Quantity: 1})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		view, err := f.carts.GetCart(t.Context(), "s1")
		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		assert.Equal(t, 50, view.ItemCount)
	})
}
