// internal/domain/cart/entity.go
package cart

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	productdom "storefront/internal/domain/product"
)

// Item represents "one line item" in the local cart.
// It carries the full product fields plus a quantity (always >= 1).
type Item struct {
	productdom.Product
	Quantity int `json:"quantity"`
}

// Items is the ordered line-item sequence. Uniqueness is defined by
// product id; the same product re-added merges (quantity += 1).
type Items []Item

// Add appends a new line with quantity 1, or increments the existing
// line for the same product id. Never fails.
func (items Items) Add(p productdom.Product) Items {
	for i := range items {
		if items[i].ID == p.ID {
			items[i].Quantity++
			return items
		}
	}
	return append(items, Item{Product: p, Quantity: 1})
}

// Remove drops the line with the given id. Missing id is a no-op.
func (items Items) Remove(id string) Items {
	for i := range items {
		if items[i].ID == id {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

// SetQuantity sets the line quantity to max(1, qty). Missing id is a no-op.
func (items Items) SetQuantity(id string, qty int) Items {
	for i := range items {
		if items[i].ID == id {
			if qty < 1 {
				qty = 1
			}
			items[i].Quantity = qty
			return items
		}
	}
	return items
}

// TotalPrice is Σ item.price × item.quantity over the sequence.
func (items Items) TotalPrice() float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// TotalCount is Σ item.quantity.
func (items Items) TotalCount() int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Clone returns a frozen copy (checkout snapshots depend on this).
func (items Items) Clone() Items {
	if len(items) == 0 {
		return Items{}
	}
	cp := make(Items, len(items))
	copy(cp, items)
	return cp
}

// Encode serializes the sequence for the persistence slot.
func (items Items) Encode() ([]byte, error) {
	return json.Marshal([]Item(items))
}

// DecodeItems parses a persisted snapshot, tolerating the drift an
// untrusted slot can accumulate:
// - id stored as number or string -> coerced to string
// - quantity missing / non-numeric / < 1 -> clamped to 1
// - entries without an id -> dropped
// Callers treat a decode error as "empty cart" (fail open).
func DecodeItems(raw []byte) (Items, error) {
	var persisted []persistedItem
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return nil, fmt.Errorf("cart: malformed snapshot: %w", err)
	}

	out := make(Items, 0, len(persisted))
	for _, p := range persisted {
		id := strings.TrimSpace(p.id())
		if id == "" {
			continue
		}

		qty := int(p.Quantity)
		if qty < 1 {
			qty = 1
		}

		out = append(out, Item{
			Product: productdom.Normalize(productdom.Product{
				ID:          id,
				Title:       p.Title,
				Price:       p.Price,
				Description: p.Description,
				Category:    p.Category,
				Image:       p.Image,
				Rating:      p.rating(),
			}),
			Quantity: qty,
		})
	}
	return out, nil
}

// persistedItem is the tolerant wire shape of a slot entry.
type persistedItem struct {
	ID          json.RawMessage    `json:"id"`
	Title       string             `json:"title"`
	Price       float64            `json:"price"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Image       string             `json:"image"`
	Rating      *productdom.Rating `json:"rating"`
	Quantity    float64            `json:"quantity"`
}

func (p persistedItem) id() string {
	if len(p.ID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.ID, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(p.ID, &n); err == nil {
		// 数値 id は文字列に寄せる（legacy 形式の吸収）
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

func (p persistedItem) rating() productdom.Rating {
	if p.Rating == nil {
		return productdom.Rating{}
	}
	return *p.Rating
}
