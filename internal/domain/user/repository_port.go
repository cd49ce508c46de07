// internal/domain/user/repository_port.go
package user

import (
	"context"

	common "storefront/internal/domain/common"
)

// Repository is a persistence port for users/{uid} profile documents.
//
// Storage recommendation (Firestore):
// - collection: users
// - docId: uid ✅ (one profile per principal; docId is the source of truth)
// - createdAt/updatedAt: server timestamps
type Repository interface {
	// CreateProfile writes the full profile document at registration
	// time with createdAt/updatedAt set to the server write time.
	CreateProfile(ctx context.Context, uid, email, name, address string) error

	// MergeProfile merges name/address into the existing document,
	// preserving the original createdAt and bumping updatedAt.
	MergeProfile(ctx context.Context, uid, email string, upd ProfileUpdate) error

	// DeleteProfile removes the profile document.
	DeleteProfile(ctx context.Context, uid string) error

	// SubscribeByUID opens a live feed on the single profile document.
	// onChange receives nil when the document does not (or no longer)
	// exist. Same error/detach semantics as the collection channels.
	SubscribeByUID(ctx context.Context, uid string, onChange func(*Profile), onError func(error)) (common.Detach, error)
}
