// internal/application/usecase/cart_usecase_test.go
package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapters/out/localslot"
	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
)

func tee(id, title string, price float64) productdom.Product {
	return productdom.Product{ID: id, Title: title, Price: price, Category: "apparel"}
}

func TestCartUsecase_AddPersistsToSlot(t *testing.T) {
	slot := localslot.NewMemorySlot()
	uc := NewCartUsecase(slot)

	uc.Add(tee("p1", "Tee", 10.0))
	uc.Add(tee("p1", "Tee", 10.0))

	raw, ok, err := slot.Get(cartdom.SlotKey)
	require.NoError(t, err)
	require.True(t, ok)

	items, err := cartdom.DecodeItems(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCartUsecase_ClearDeletesSlot(t *testing.T) {
	slot := localslot.NewMemorySlot()
	uc := NewCartUsecase(slot)

	uc.Add(tee("p1", "Tee", 10.0))
	require.True(t, slot.Has(cartdom.SlotKey))

	uc.Clear()
	// 空カートは「空配列」ではなく slot ごと消す
	assert.False(t, slot.Has(cartdom.SlotKey))
	assert.Empty(t, uc.Items())
}

func TestCartUsecase_RemoveLastLineDeletesSlot(t *testing.T) {
	slot := localslot.NewMemorySlot()
	uc := NewCartUsecase(slot)

	uc.Add(tee("p1", "Tee", 10.0))
	uc.Remove("p1")

	assert.False(t, slot.Has(cartdom.SlotKey))
}

func TestCartUsecase_RestoresFromSlot(t *testing.T) {
	slot := localslot.NewMemorySlot()
	seed := NewCartUsecase(slot)
	seed.Add(tee("p1", "Tee", 10.0))
	seed.Add(tee("p2", "Mug", 5.0))

	uc := NewCartUsecase(slot)
	items := uc.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, "p2", items[1].ID)
}

func TestCartUsecase_MalformedSnapshotFailsOpen(t *testing.T) {
	slot := localslot.NewMemorySlot()
	require.NoError(t, slot.Set(cartdom.SlotKey, []byte("{not json")))

	uc := NewCartUsecase(slot)
	assert.Empty(t, uc.Items())
}

func TestCartUsecase_NilSlotStillWorks(t *testing.T) {
	uc := NewCartUsecase(nil)
	items := uc.Add(tee("p1", "Tee", 10.0))
	require.Len(t, items, 1)
}

func TestCartUsecase_ItemsReturnsFrozenCopy(t *testing.T) {
	uc := NewCartUsecase(localslot.NewMemorySlot())
	uc.Add(tee("p1", "Tee", 10.0))

	got := uc.Items()
	got[0].Quantity = 99

	assert.Equal(t, 1, uc.Items()[0].Quantity)
}

func TestCartUsecase_OnChangeNotifiesAndDetaches(t *testing.T) {
	uc := NewCartUsecase(localslot.NewMemorySlot())

	var calls int
	detach := uc.OnChange(func(items cartdom.Items) { calls++ })

	uc.Add(tee("p1", "Tee", 10.0))
	require.Equal(t, 1, calls)

	detach()
	detach() // idempotent
	uc.Add(tee("p2", "Mug", 5.0))
	assert.Equal(t, 1, calls)
}
