// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"
	"time"

	productdom "storefront/internal/domain/product"
)

var (
	ErrInvalidUserID = errors.New("order: invalid userId")
	ErrInvalidItems  = errors.New("order: invalid items")
	ErrInvalidTotal  = errors.New("order: invalid total")
)

// ItemSnapshot is one line of an order, frozen at checkout time.
// It never changes after the order document is created, even if the
// source cart or product is mutated later.
type ItemSnapshot struct {
	ID          string            `json:"id" firestore:"id"`
	Title       string            `json:"title" firestore:"title"`
	Price       float64           `json:"price" firestore:"price"`
	Description string            `json:"description" firestore:"description"`
	Category    string            `json:"category" firestore:"category"`
	Image       string            `json:"image" firestore:"image"`
	Rating      productdom.Rating `json:"rating" firestore:"rating"`
	Quantity    int               `json:"quantity" firestore:"quantity"`
}

// Order represents "one order document".
//   - docId = Order.ID (store-assigned)
//   - UserEmail/UserName/ShippingAddress are optional profile snapshots;
//     empty values are omitted on the write path, never stored as "".
//   - Items and Total are frozen at creation.
type Order struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	UserEmail       string         `json:"userEmail,omitempty"`
	UserName        string         `json:"userName,omitempty"`
	ShippingAddress string         `json:"shippingAddress,omitempty"`
	Items           []ItemSnapshot `json:"items"`
	Total           float64        `json:"total"`
	CreatedAt       *time.Time     `json:"createdAt"`
}

// Draft is the creation payload (no ID / CreatedAt: both store-assigned).
type Draft struct {
	UserID          string
	UserEmail       string
	UserName        string
	ShippingAddress string
	Items           []ItemSnapshot
	Total           float64
}

// Validate enforces the creation invariants. The orchestrator computes
// Total itself, so a mismatch against the items means a caller bug.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.UserID) == "" {
		return ErrInvalidUserID
	}
	if len(d.Items) == 0 {
		return ErrInvalidItems
	}
	for _, it := range d.Items {
		if strings.TrimSpace(it.ID) == "" || it.Quantity < 1 {
			return ErrInvalidItems
		}
	}
	if d.Total < 0 {
		return ErrInvalidTotal
	}
	return nil
}

// NormalizeItem clamps a read-path line to the contract shape
// (id coerced to non-empty string upstream, quantity >= 1, rating defaulted).
func NormalizeItem(it ItemSnapshot) ItemSnapshot {
	it.ID = strings.TrimSpace(it.ID)
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	if it.Rating.Rate < 0 {
		it.Rating.Rate = 0
	}
	if it.Rating.Count < 0 {
		it.Rating.Count = 0
	}
	return it
}
