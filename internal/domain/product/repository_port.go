// internal/domain/product/repository_port.go
package product

import (
	"context"

	common "storefront/internal/domain/common"
)

// Repository is a persistence port for the shared product catalog.
//
// Storage recommendation (Firestore):
// - collection: products
// - docId: store-assigned
// - fields: title, price, description, category, image, rating{rate,count},
//   createdAt, updatedAt (server timestamps)
//
// Subscription contract:
// - Subscribe delivers the FULL current snapshot on every collection
//   change (store-default order; callers re-sort as needed).
// - Transport errors go to onError and the feed stays open.
// - The returned Detach is idempotent and stops all further callbacks.
type Repository interface {
	// Subscribe opens a live feed over the whole catalog.
	Subscribe(ctx context.Context, onChange func([]Product), onError func(error)) (common.Detach, error)

	// Create issues one durable write and returns the store-assigned id.
	// Input is normalized (price coerced, rating defaulted) before the write.
	Create(ctx context.Context, in Input) (string, error)

	// Update overwrites the mutable fields of an existing product.
	Update(ctx context.Context, id string, in Input) error

	// Delete removes the product document. Deleting a missing id is not
	// an error (the store treats it as a no-op).
	Delete(ctx context.Context, id string) error
}
