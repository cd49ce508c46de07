// internal/application/usecase/checkout_usecase_test.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "storefront/internal/adapters/out/identity"
	"storefront/internal/adapters/out/localslot"
	common "storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	userdom "storefront/internal/domain/user"
)

type fakeOrderRepo struct {
	mu      sync.Mutex
	created []orderdom.Draft
	nextID  string
	fail    error
	entered chan struct{} // non-nil -> closed when Create is reached
	block   chan struct{} // non-nil -> Create waits until closed
}

func (f *fakeOrderRepo) Create(ctx context.Context, d orderdom.Draft) (string, error) {
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.created = append(f.created, d)
	if f.nextID == "" {
		return "order-1", nil
	}
	return f.nextID, nil
}

func (f *fakeOrderRepo) SubscribeByUser(ctx context.Context, userID string, onChange func([]orderdom.Order), onError func(error)) (common.Detach, error) {
	return common.NopDetach(), nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id string) (*orderdom.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

type fakeSession struct {
	principal *identity.Principal
	profile   *userdom.Profile
}

func (f *fakeSession) CurrentPrincipal() (identity.Principal, bool) {
	if f.principal == nil {
		return identity.Principal{}, false
	}
	return *f.principal, true
}

func (f *fakeSession) CurrentProfile() *userdom.Profile { return f.profile }

type fakeMailer struct {
	sent []string
	fail error
}

func (f *fakeMailer) SendConfirmation(ctx context.Context, orderID string, d orderdom.Draft) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, orderID)
	return nil
}

func signedIn() *fakeSession {
	return &fakeSession{principal: &identity.Principal{UID: "u1", Email: "u1@example.com"}}
}

func TestCheckout_EmptyCartIsValidationError(t *testing.T) {
	cart := NewCartUsecase(localslot.NewMemorySlot())
	uc := NewCheckoutUsecase(cart, signedIn(), &fakeOrderRepo{}, nil)

	_, err := uc.Submit(context.Background())
	assert.True(t, common.IsValidationError(err))
}

func TestCheckout_AnonymousIsAuthError(t *testing.T) {
	cart := NewCartUsecase(localslot.NewMemorySlot())
	cart.Add(tee("p1", "Tee", 10.0))

	uc := NewCheckoutUsecase(cart, &fakeSession{}, &fakeOrderRepo{}, nil)

	_, err := uc.Submit(context.Background())
	assert.True(t, common.IsAuthError(err))
	// cart はそのまま
	assert.Len(t, cart.Items(), 1)
}

func TestCheckout_TotalAndSnapshots(t *testing.T) {
	cart := NewCartUsecase(localslot.NewMemorySlot())
	cart.Add(tee("p1", "Tee", 10.0))
	cart.Add(tee("p1", "Tee", 10.0))
	cart.Add(tee("p2", "Mug", 5.0))

	repo := &fakeOrderRepo{}
	sess := signedIn()
	sess.profile = &userdom.Profile{UID: "u1", Name: "Ada", Address: "1 Main St"}

	uc := NewCheckoutUsecase(cart, sess, repo, nil)

	id, err := uc.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "order-1", id)

	require.Len(t, repo.created, 1)
	d := repo.created[0]
	assert.Equal(t, "u1", d.UserID)
	assert.Equal(t, "u1@example.com", d.UserEmail)
	assert.Equal(t, "Ada", d.UserName)
	assert.Equal(t, "1 Main St", d.ShippingAddress)
	assert.InDelta(t, 25.0, d.Total, 1e-9) // 2×10 + 1×5
	require.Len(t, d.Items, 2)
	assert.Equal(t, 2, d.Items[0].Quantity)

	// 成功したら cart は空
	assert.Empty(t, cart.Items())
}

func TestCheckout_NoProfileOmitsOptionalFields(t *testing.T) {
	cart := NewCartUsecase(localslot.NewMemorySlot())
	cart.Add(tee("p1", "Tee", 10.0))

	repo := &fakeOrderRepo{}
	uc := NewCheckoutUsecase(cart, signedIn(), repo, nil)

	_, err := uc.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, repo.created[0].UserName)
	assert.Empty(t, repo.created[0].ShippingAddress)
}

func TestCheckout_CreateFailureLeavesCartUntouched(t *testing.T) {
	cart := NewCartUsecase(localslot.NewMemorySlot())
	cart.Add(tee("p1", "Tee", 10.0))

	repo := &fakeOrderRepo{fail: errors.New("boom")}
	uc := NewCheckoutUsecase(cart, signedIn(), repo, nil)

	_, err := uc.Submit(context.Background())
	require.Error(t, err)
	assert.Len(t, cart.Items(), 1)
}

func TestCheckout_SnapshotFrozenAgainstLaterMutation(t *testing.T) {
	cart := NewCartUsecase(localslot.NewMemorySlot())
	cart.Add(tee("p1", "Tee", 10.0))

	repo := &fakeOrderRepo{}
	uc := NewCheckoutUsecase(cart, signedIn(), repo, nil)

	_, err := uc.Submit(context.Background())
	require.NoError(t, err)

	cart.Add(tee("p9", "Hat", 3.0))
	assert.Len(t, repo.created[0].Items, 1)
}

func TestCheckout_RejectsConcurrentSubmission(t *testing.T) {
	cart := NewCartUsecase(localslot.NewMemorySlot())
	cart.Add(tee("p1", "Tee", 10.0))

	gate := make(chan struct{})
	entered := make(chan struct{})
	repo := &fakeOrderRepo{block: gate, entered: entered}
	uc := NewCheckoutUsecase(cart, signedIn(), repo, nil)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Submit(context.Background())
		done <- err
	}()

	// 1 本目が Create で止まっている間の 2 本目は弾く
	<-entered
	_, second := uc.Submit(context.Background())
	assert.True(t, errors.Is(second, ErrCheckoutInFlight))

	close(gate)
	require.NoError(t, <-done)
}

func TestCheckout_MailFailureDoesNotFailSubmit(t *testing.T) {
	cart := NewCartUsecase(localslot.NewMemorySlot())
	cart.Add(tee("p1", "Tee", 10.0))

	mailer := &fakeMailer{fail: errors.New("smtp down")}
	uc := NewCheckoutUsecase(cart, signedIn(), &fakeOrderRepo{}, mailer)

	id, err := uc.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "order-1", id)
}
