// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
)

var (
	ErrInvalidTitle    = errors.New("product: invalid title")
	ErrInvalidPrice    = errors.New("product: invalid price")
	ErrInvalidCategory = errors.New("product: invalid category")
)

// Rating is the aggregate review score stored on a product.
// Missing ratings are normalized to {0, 0}, never nil.
type Rating struct {
	Rate  float64 `json:"rate" firestore:"rate"`
	Count int     `json:"count" firestore:"count"`
}

// Product represents "one catalog record".
//   - docId = Product.ID (store-assigned)
//   - price > 0 is enforced on the write path only; the read path
//     coerces whatever is stored (missing price -> 0)
type Product struct {
	ID          string  `json:"id" firestore:"id"`
	Title       string  `json:"title" firestore:"title"`
	Price       float64 `json:"price" firestore:"price"`
	Description string  `json:"description" firestore:"description"`
	Category    string  `json:"category" firestore:"category"`
	Image       string  `json:"image" firestore:"image"`
	Rating      Rating  `json:"rating" firestore:"rating"`
}

// Input is the create/update payload (no ID; rating optional).
type Input struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      *Rating `json:"rating,omitempty"`
}

// Validate enforces the manager-form preconditions:
// title/category required, price must be positive.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrInvalidTitle
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrInvalidCategory
	}
	if in.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// NormalizedRating returns the input rating, or the {0,0} default.
func (in Input) NormalizedRating() Rating {
	if in.Rating == nil {
		return Rating{}
	}
	return *in.Rating
}

// Normalize coerces a read-path product to the contract shape:
// missing strings -> "", missing price -> 0, rating -> {0,0}.
// ID は docId が source of truth なので呼び出し元で必ず埋めること。
func Normalize(p Product) Product {
	p.ID = strings.TrimSpace(p.ID)
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if p.Price < 0 {
		p.Price = 0
	}
	if p.Rating.Count < 0 {
		p.Rating.Count = 0
	}
	if p.Rating.Rate < 0 {
		p.Rating.Rate = 0
	}
	return p
}
