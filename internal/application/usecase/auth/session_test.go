// internal/application/usecase/auth/session_test.go
package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "storefront/internal/adapters/out/identity"
	common "storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	userdom "storefront/internal/domain/user"
)

type fakeIdentity struct {
	signUpErr  error
	signInErr  error
	deleteErr  error
	deletedUID string
	log        *[]string
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (identity.Principal, error) {
	if f.signUpErr != nil {
		return identity.Principal{}, f.signUpErr
	}
	return identity.Principal{UID: "u1", Email: email}, nil
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (identity.Principal, error) {
	if f.signInErr != nil {
		return identity.Principal{}, f.signInErr
	}
	return identity.Principal{UID: "u1", Email: email, IDToken: "tok"}, nil
}

func (f *fakeIdentity) Delete(ctx context.Context, uid string) error {
	if f.log != nil {
		*f.log = append(*f.log, "identity.delete")
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedUID = uid
	return nil
}

type fakeUsers struct {
	createErr  error
	mergeErr   error
	deleteErr  error
	merged     []userdom.ProfileUpdate
	subProfile *userdom.Profile
	log        *[]string
}

func (f *fakeUsers) CreateProfile(ctx context.Context, uid, email, name, address string) error {
	if f.log != nil {
		*f.log = append(*f.log, "users.create")
	}
	return f.createErr
}

func (f *fakeUsers) MergeProfile(ctx context.Context, uid, email string, upd userdom.ProfileUpdate) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.merged = append(f.merged, upd)
	return nil
}

func (f *fakeUsers) DeleteProfile(ctx context.Context, uid string) error {
	if f.log != nil {
		*f.log = append(*f.log, "users.delete")
	}
	return f.deleteErr
}

func (f *fakeUsers) SubscribeByUID(ctx context.Context, uid string, onChange func(*userdom.Profile), onError func(error)) (common.Detach, error) {
	onChange(f.subProfile)
	return common.NopDetach(), nil
}

type fakeOrders struct {
	deleteErr error
	deleted   int
	log       *[]string
}

func (f *fakeOrders) Create(ctx context.Context, d orderdom.Draft) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeOrders) SubscribeByUser(ctx context.Context, userID string, onChange func([]orderdom.Order), onError func(error)) (common.Detach, error) {
	return common.NopDetach(), nil
}

func (f *fakeOrders) GetByID(ctx context.Context, id string) (*orderdom.Order, error) {
	return nil, nil
}

func (f *fakeOrders) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if f.log != nil {
		*f.log = append(*f.log, "orders.delete")
	}
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.deleted = 3
	return 3, nil
}

func newTestSession(id *fakeIdentity, users *fakeUsers, orders *fakeOrders) *Session {
	return NewSession(context.Background(), id, users, orders)
}

func TestSession_LoginTransitionsToAuthenticated(t *testing.T) {
	s := newTestSession(&fakeIdentity{}, &fakeUsers{}, &fakeOrders{})
	require.Equal(t, StateAnonymous, s.State())

	require.NoError(t, s.Login(context.Background(), "u1@example.com", "pw"))
	assert.Equal(t, StateAuthenticated, s.State())

	p, ok := s.CurrentPrincipal()
	require.True(t, ok)
	assert.Equal(t, "u1", p.UID)
}

func TestSession_LoginFailureStaysAnonymous(t *testing.T) {
	id := &fakeIdentity{signInErr: common.NewAuthError("invalid email or password", nil)}
	s := newTestSession(id, &fakeUsers{}, &fakeOrders{})

	err := s.Login(context.Background(), "u1@example.com", "bad")
	assert.True(t, common.IsAuthError(err))
	assert.Equal(t, StateAnonymous, s.State())

	_, ok := s.CurrentPrincipal()
	assert.False(t, ok)
}

func TestSession_RegisterCreatesProfile(t *testing.T) {
	var calls []string
	users := &fakeUsers{log: &calls}
	s := newTestSession(&fakeIdentity{}, users, &fakeOrders{})

	require.NoError(t, s.Register(context.Background(), "u1@example.com", "pw", "Ada", "1 Main St"))
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Contains(t, calls, "users.create")
}

func TestSession_RegisterProfileFailureStaysAuthenticated(t *testing.T) {
	users := &fakeUsers{createErr: errors.New("write denied")}
	s := newTestSession(&fakeIdentity{}, users, &fakeOrders{})

	err := s.Register(context.Background(), "u1@example.com", "pw", "", "")
	require.Error(t, err)
	// principal は作成済みなので signed-in のまま
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestSession_LogoutDropsProfileImmediately(t *testing.T) {
	users := &fakeUsers{subProfile: &userdom.Profile{UID: "u1", Name: "Ada"}}
	s := newTestSession(&fakeIdentity{}, users, &fakeOrders{})

	require.NoError(t, s.Login(context.Background(), "u1@example.com", "pw"))
	require.NotNil(t, s.CurrentProfile())

	s.Logout()
	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.CurrentProfile())
	_, ok := s.CurrentPrincipal()
	assert.False(t, ok)
}

func TestSession_UpdateProfileRequiresAuth(t *testing.T) {
	s := newTestSession(&fakeIdentity{}, &fakeUsers{}, &fakeOrders{})
	err := s.UpdateProfile(context.Background(), userdom.ProfileUpdate{Name: "Ada"})
	assert.True(t, common.IsAuthError(err))
}

func TestSession_UpdateProfileMerges(t *testing.T) {
	users := &fakeUsers{}
	s := newTestSession(&fakeIdentity{}, users, &fakeOrders{})
	require.NoError(t, s.Login(context.Background(), "u1@example.com", "pw"))

	require.NoError(t, s.UpdateProfile(context.Background(), userdom.ProfileUpdate{Name: "Ada", Address: "1 Main St"}))
	require.Len(t, users.merged, 1)
	assert.Equal(t, "Ada", users.merged[0].Name)
}

func TestSession_DeleteAccountOrder(t *testing.T) {
	var calls []string
	id := &fakeIdentity{log: &calls}
	users := &fakeUsers{log: &calls}
	orders := &fakeOrders{log: &calls}
	s := newTestSession(id, users, orders)
	require.NoError(t, s.Login(context.Background(), "u1@example.com", "pw"))

	require.NoError(t, s.DeleteAccount(context.Background()))
	// orders -> profile -> principal の順で、principal が最後
	assert.Equal(t, []string{"orders.delete", "users.delete", "identity.delete"}, calls)
	assert.Equal(t, "u1", id.deletedUID)
	assert.Equal(t, StateAnonymous, s.State())
}

func TestSession_DeleteAccountAbortsOnOrderFailure(t *testing.T) {
	var calls []string
	id := &fakeIdentity{log: &calls}
	users := &fakeUsers{log: &calls}
	orders := &fakeOrders{log: &calls, deleteErr: errors.New("permission denied")}
	s := newTestSession(id, users, orders)
	require.NoError(t, s.Login(context.Background(), "u1@example.com", "pw"))

	err := s.DeleteAccount(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"orders.delete"}, calls)
	// 失敗時は signed-in のまま（retry できる）
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestSession_DeleteAccountAnonymousNoop(t *testing.T) {
	var calls []string
	s := newTestSession(&fakeIdentity{log: &calls}, &fakeUsers{log: &calls}, &fakeOrders{log: &calls})

	require.NoError(t, s.DeleteAccount(context.Background()))
	assert.Empty(t, calls)
}

func TestSession_OnStateChangeNotifies(t *testing.T) {
	s := newTestSession(&fakeIdentity{}, &fakeUsers{}, &fakeOrders{})

	var states []State
	detach := s.OnStateChange(func(st State) { states = append(states, st) })

	require.NoError(t, s.Login(context.Background(), "u1@example.com", "pw"))
	assert.Equal(t, []State{StateAuthenticating, StateAuthenticated}, states)

	detach()
	s.Logout()
	assert.Len(t, states, 2)
}
