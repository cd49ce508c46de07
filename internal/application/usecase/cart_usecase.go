// internal/application/usecase/cart_usecase.go
package usecase

import (
	"log"
	"sync"

	cartdom "storefront/internal/domain/cart"
	common "storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

// CartUsecase is the Local Cart Store: client-local state, mutated only
// by the four cart operations, mirrored to the session persistence slot
// after every mutation.
//
// Contract:
// - Add never fails; Remove/SetQuantity are no-ops for a missing id.
// - The slot is deleted (not set to "[]") when the cart empties.
// - A malformed persisted snapshot fails OPEN to an empty cart.
type CartUsecase struct {
	mu        sync.Mutex
	items     cartdom.Items
	slot      cartdom.Slot
	listeners map[int]func(cartdom.Items)
	nextID    int
}

// NewCartUsecase restores the cart from the slot. Parse failures never
// propagate to the caller; they are logged and the cart starts empty.
func NewCartUsecase(slot cartdom.Slot) *CartUsecase {
	uc := &CartUsecase{
		items:     cartdom.Items{},
		slot:      slot,
		listeners: map[int]func(cartdom.Items){},
	}

	if slot == nil {
		return uc
	}

	raw, ok, err := slot.Get(cartdom.SlotKey)
	if err != nil || !ok {
		if err != nil {
			log.Printf("[cart_uc] WARN: slot read failed, starting empty: %v", err)
		}
		return uc
	}

	items, err := cartdom.DecodeItems(raw)
	if err != nil {
		// fail open: 壊れたスナップショットで session を止めない
		log.Printf("[cart_uc] WARN: discarding malformed cart snapshot: %v", err)
		return uc
	}
	uc.items = items
	return uc
}

// Add appends, or merges quantity +1 for an existing product id.
func (uc *CartUsecase) Add(p productdom.Product) cartdom.Items {
	uc.mu.Lock()
	uc.items = uc.items.Add(p)
	out := uc.persistLocked()
	uc.mu.Unlock()

	uc.notify(out)
	return out
}

// Remove drops the line; missing id is a no-op, not an error.
func (uc *CartUsecase) Remove(id string) cartdom.Items {
	uc.mu.Lock()
	uc.items = uc.items.Remove(id)
	out := uc.persistLocked()
	uc.mu.Unlock()

	uc.notify(out)
	return out
}

// SetQuantity sets the line quantity to max(1, qty); no-op if absent.
func (uc *CartUsecase) SetQuantity(id string, qty int) cartdom.Items {
	uc.mu.Lock()
	uc.items = uc.items.SetQuantity(id, qty)
	out := uc.persistLocked()
	uc.mu.Unlock()

	uc.notify(out)
	return out
}

// Clear empties the sequence (and therefore deletes the slot).
func (uc *CartUsecase) Clear() cartdom.Items {
	uc.mu.Lock()
	uc.items = cartdom.Items{}
	out := uc.persistLocked()
	uc.mu.Unlock()

	uc.notify(out)
	return out
}

// Items returns a frozen copy of the current sequence.
func (uc *CartUsecase) Items() cartdom.Items {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.items.Clone()
}

// OnChange registers a dependent; the detach handle is idempotent.
func (uc *CartUsecase) OnChange(fn func(cartdom.Items)) common.Detach {
	if fn == nil {
		return common.NopDetach()
	}

	uc.mu.Lock()
	id := uc.nextID
	uc.nextID++
	uc.listeners[id] = fn
	uc.mu.Unlock()

	return func() {
		uc.mu.Lock()
		delete(uc.listeners, id)
		uc.mu.Unlock()
	}
}

// persistLocked mirrors the current sequence into the slot.
// 永続化失敗で cart 操作は失敗させない（ログのみ）。
func (uc *CartUsecase) persistLocked() cartdom.Items {
	out := uc.items.Clone()

	if uc.slot == nil {
		return out
	}

	if len(uc.items) == 0 {
		// absent, not an empty-array marker
		if err := uc.slot.Delete(cartdom.SlotKey); err != nil {
			log.Printf("[cart_uc] WARN: slot delete failed: %v", err)
		}
		return out
	}

	raw, err := uc.items.Encode()
	if err != nil {
		log.Printf("[cart_uc] WARN: cart encode failed: %v", err)
		return out
	}
	if err := uc.slot.Set(cartdom.SlotKey, raw); err != nil {
		log.Printf("[cart_uc] WARN: slot write failed: %v", err)
	}
	return out
}

func (uc *CartUsecase) notify(items cartdom.Items) {
	uc.mu.Lock()
	fns := make([]func(cartdom.Items), 0, len(uc.listeners))
	for _, fn := range uc.listeners {
		fns = append(fns, fn)
	}
	uc.mu.Unlock()

	for _, fn := range fns {
		fn(items.Clone())
	}
}
