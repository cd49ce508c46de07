// internal/domain/cart/entity_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productdom "storefront/internal/domain/product"
)

func prod(id string, price float64) productdom.Product {
	return productdom.Product{ID: id, Title: "p-" + id, Price: price}
}

func TestItemsAddMergesSameID(t *testing.T) {
	var items Items

	items = items.Add(prod("a", 10))
	items = items.Add(prod("a", 10))
	items = items.Add(prod("a", 10))

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestItemsAddAppendsNewID(t *testing.T) {
	var items Items

	items = items.Add(prod("a", 10))
	items = items.Add(prod("b", 5))

	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestItemsSetQuantityClampsToOne(t *testing.T) {
	tests := []struct {
		name string
		qty  int
		want int
	}{
		{"positive", 5, 5},
		{"one", 1, 1},
		{"zero clamps", 0, 1},
		{"negative clamps", -3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Items{}.Add(prod("a", 10))
			items = items.SetQuantity("a", tt.qty)
			assert.Equal(t, tt.want, items[0].Quantity)
		})
	}
}

func TestItemsSetQuantityMissingIDIsNoop(t *testing.T) {
	items := Items{}.Add(prod("a", 10))
	out := items.SetQuantity("zzz", 7)

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Quantity)
}

func TestItemsRemove(t *testing.T) {
	items := Items{}.Add(prod("a", 10)).Add(prod("b", 5))

	out := items.Remove("a")
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)

	// missing id is a no-op, not an error
	out = out.Remove("a")
	assert.Len(t, out, 1)
}

func TestItemsTotals(t *testing.T) {
	items := Items{
		{Product: prod("a", 10), Quantity: 2},
		{Product: prod("b", 5), Quantity: 1},
	}

	assert.InDelta(t, 25.0, items.TotalPrice(), 1e-9)
	assert.Equal(t, 3, items.TotalCount())
}

func TestItemsCloneIsFrozen(t *testing.T) {
	items := Items{}.Add(prod("a", 10))
	snap := items.Clone()

	items = items.SetQuantity("a", 9)

	assert.Equal(t, 1, snap[0].Quantity)
	assert.Equal(t, 9, items[0].Quantity)
}

func TestDecodeItemsCoercion(t *testing.T) {
	raw := []byte(`[
		{"id": 42, "title": "numeric id", "price": 3.5, "quantity": 2.0},
		{"id": "b", "title": "no qty", "price": 1},
		{"id": "c", "title": "bad qty", "price": 1, "quantity": -4},
		{"title": "no id at all", "price": 9, "quantity": 1}
	]`)

	items, err := DecodeItems(raw)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "42", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 1, items[2].Quantity)

	// rating defaults to {0,0}, never negative or missing
	assert.Equal(t, 0.0, items[0].Rating.Rate)
	assert.Equal(t, 0, items[0].Rating.Count)
}

func TestDecodeItemsMalformed(t *testing.T) {
	_, err := DecodeItems([]byte(`{"not": "an array"}`))
	assert.Error(t, err)

	_, err = DecodeItems([]byte(`garbage`))
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	items := Items{}.Add(prod("a", 10)).Add(prod("b", 5)).SetQuantity("b", 4)

	raw, err := items.Encode()
	require.NoError(t, err)

	back, err := DecodeItems(raw)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, 4, back[1].Quantity)
}
