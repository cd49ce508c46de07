// internal/domain/order/repository_port.go
package order

import (
	"context"

	common "storefront/internal/domain/common"
)

// Repository is a persistence port for the shared orders collection.
//
// Storage recommendation (Firestore):
// - collection: orders
// - docId: store-assigned
// - fields: userId, userEmail?, userName?, shippingAddress?, items,
//   total, createdAt (server timestamp)
//
// Ordering contract:
// - SubscribeByUser delivers orders sorted by createdAt DESCENDING.
//   This is done server-side (query orderBy), not a client-side sort.
type Repository interface {
	// Create issues one atomic write and returns the store-assigned id.
	// Either the whole order document exists afterwards or none of it does.
	Create(ctx context.Context, d Draft) (string, error)

	// SubscribeByUser opens a live feed restricted to userId == userID,
	// newest first. Same error/detach semantics as the catalog channel.
	SubscribeByUser(ctx context.Context, userID string, onChange func([]Order), onError func(error)) (common.Detach, error)

	// GetByID is a one-shot fetch. Returns (nil, nil) when the id does
	// not exist. The channel performs no access control; the caller
	// must verify the returned order's UserID.
	GetByID(ctx context.Context, id string) (*Order, error)

	// DeleteByUser removes every order owned by the principal and
	// returns how many documents were deleted. Used only by account
	// deletion; best-effort, no rollback.
	DeleteByUser(ctx context.Context, userID string) (int, error)
}
