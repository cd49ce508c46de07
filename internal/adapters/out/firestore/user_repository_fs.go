// internal/adapters/out/firestore/user_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	common "storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
)

// UserRepositoryFS implements user.Repository using Firestore.
//
// Collection design:
// - collection: users
// - docId: uid ✅ (one profile per principal)
// - fields: uid, email, name, address, createdAt, updatedAt
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

// CreateProfile writes the full document at registration time.
func (r *UserRepositoryFS) CreateProfile(ctx context.Context, uid, email, name, address string) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}
	id := strings.TrimSpace(uid)
	if id == "" {
		return errors.New("user_repository_fs: uid is empty")
	}

	_, err := r.col().Doc(id).Set(ctx, map[string]any{
		"uid":       id,
		"email":     strings.TrimSpace(email),
		"name":      name,
		"address":   address,
		"createdAt": firestore.ServerTimestamp,
		"updatedAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return common.NewTransportError("users.create", err)
	}
	return nil
}

// MergeProfile merges a profile edit into the existing document.
// createdAt は触らない（保持）。updatedAt だけ書き込み時刻に更新する。
func (r *UserRepositoryFS) MergeProfile(ctx context.Context, uid, email string, upd userdom.ProfileUpdate) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}
	id := strings.TrimSpace(uid)
	if id == "" {
		return errors.New("user_repository_fs: uid is empty")
	}
	if err := upd.Validate(); err != nil {
		return err
	}

	_, err := r.col().Doc(id).Set(ctx, map[string]any{
		"uid":       id,
		"email":     strings.TrimSpace(email),
		"name":      upd.Name,
		"address":   upd.Address,
		"updatedAt": firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return common.NewTransportError("users.merge", err)
	}
	return nil
}

func (r *UserRepositoryFS) DeleteProfile(ctx context.Context, uid string) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}
	id := strings.TrimSpace(uid)
	if id == "" {
		return errors.New("user_repository_fs: uid is empty")
	}

	if _, err := r.col().Doc(id).Delete(ctx); err != nil {
		return common.NewTransportError("users.delete", err)
	}
	return nil
}

// SubscribeByUID watches the single profile document. onChange receives
// nil while the document does not exist (or after it is deleted).
func (r *UserRepositoryFS) SubscribeByUID(
	ctx context.Context,
	uid string,
	onChange func(*userdom.Profile),
	onError func(error),
) (common.Detach, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("user_repository_fs: firestore client is nil")
	}
	id := strings.TrimSpace(uid)
	if id == "" {
		return nil, errors.New("user_repository_fs: uid is empty")
	}
	if onChange == nil {
		return nil, errors.New("user_repository_fs: onChange is nil")
	}

	subCtx, cancel := context.WithCancel(ctx)

	go watchDoc(subCtx, "users.subscribe", r.col().Doc(id),
		func(snap *firestore.DocumentSnapshot) {
			if !snap.Exists() {
				onChange(nil)
				return
			}
			p := profileFromDoc(id, snap.Data())
			onChange(&p)
		},
		onError,
	)

	return detachFor(cancel), nil
}

// -----------------------------------------
// Firestore decode
// -----------------------------------------

func profileFromDoc(docID string, raw map[string]any) userdom.Profile {
	p := userdom.Profile{
		UID:       strings.TrimSpace(asString(raw["uid"])),
		Email:     asString(raw["email"]),
		Name:      asString(raw["name"]),
		Address:   asString(raw["address"]),
		CreatedAt: asTimePtr(raw["createdAt"]),
		UpdatedAt: asTimePtr(raw["updatedAt"]),
	}
	// docId (= uid) が source of truth
	if p.UID == "" {
		p.UID = docID
	}
	return userdom.Normalize(p)
}
