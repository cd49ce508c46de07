// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidUID = errors.New("user: invalid uid")
)

// Policy
var (
	MaxNameLength    = 100
	MaxAddressLength = 300
)

// Profile mirrors the storefront's users/{uid} document.
// UID is immutable once created; timestamps are nullable because a
// freshly written server timestamp may arrive as null on the first
// snapshot delivery.
type Profile struct {
	UID       string     `json:"uid" firestore:"uid"`
	Email     string     `json:"email" firestore:"email"`
	Name      string     `json:"name" firestore:"name"`
	Address   string     `json:"address" firestore:"address"`
	CreatedAt *time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// ProfileUpdate is the profile-edit payload (name/address only;
// uid/email/createdAt are never touched by an edit).
type ProfileUpdate struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (u ProfileUpdate) Validate() error {
	if len([]rune(u.Name)) > MaxNameLength {
		return errors.New("user: name too long")
	}
	if len([]rune(u.Address)) > MaxAddressLength {
		return errors.New("user: address too long")
	}
	return nil
}

// Normalize coerces a read-path profile: strings trimmed, uid filled by
// the caller from the docId when the document omits it.
func Normalize(p Profile) Profile {
	p.UID = strings.TrimSpace(p.UID)
	p.Email = strings.TrimSpace(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	return p
}
