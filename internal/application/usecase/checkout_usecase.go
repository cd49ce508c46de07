// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"sync"

	identity "storefront/internal/adapters/out/identity"
	common "storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	userdom "storefront/internal/domain/user"
)

var (
	ErrCheckoutInFlight = errors.New("checkout: submission already in flight")
)

// CheckoutSession is the slice of the identity session the orchestrator
// reads at submission time. *auth.Session satisfies it.
type CheckoutSession interface {
	CurrentPrincipal() (identity.Principal, bool)
	CurrentProfile() *userdom.Profile
}

// ConfirmationMailer sends the post-checkout confirmation.
type ConfirmationMailer interface {
	SendConfirmation(ctx context.Context, orderID string, d orderdom.Draft) error
}

// CheckoutUsecase turns the current cart into one order document.
//
// Submission sequence:
//  1. reject when a submission is already in flight (no queueing)
//  2. freeze the cart into item snapshots; empty cart -> ValidationError
//  3. anonymous session -> AuthError, cart untouched
//  4. create the order atomically; on failure the cart is untouched
//  5. on success clear the cart, then send the confirmation best-effort
type CheckoutUsecase struct {
	cart    *CartUsecase
	session CheckoutSession
	orders  orderdom.Repository
	mailer  ConfirmationMailer

	mu         sync.Mutex
	submitting bool
}

func NewCheckoutUsecase(cart *CartUsecase, session CheckoutSession, orders orderdom.Repository, mailer ConfirmationMailer) *CheckoutUsecase {
	return &CheckoutUsecase{
		cart:    cart,
		session: session,
		orders:  orders,
		mailer:  mailer,
	}
}

// Submit places the order and returns the store-assigned order id.
func (uc *CheckoutUsecase) Submit(ctx context.Context) (string, error) {
	if uc.cart == nil || uc.session == nil {
		return "", errors.New("checkout: usecase is not fully wired")
	}
	if uc.orders == nil {
		return "", ErrOrderRepoMissing
	}

	uc.mu.Lock()
	if uc.submitting {
		uc.mu.Unlock()
		return "", ErrCheckoutInFlight
	}
	uc.submitting = true
	uc.mu.Unlock()

	defer func() {
		uc.mu.Lock()
		uc.submitting = false
		uc.mu.Unlock()
	}()

	items := uc.cart.Items()
	if len(items) == 0 {
		return "", common.NewValidationError("cart is empty")
	}

	principal, ok := uc.session.CurrentPrincipal()
	if !ok {
		return "", common.NewAuthError("sign in to place an order", nil)
	}

	snapshots := make([]orderdom.ItemSnapshot, 0, len(items))
	total := 0.0
	for _, it := range items {
		snapshots = append(snapshots, orderdom.ItemSnapshot{
			ID:          it.ID,
			Title:       it.Title,
			Price:       it.Price,
			Description: it.Description,
			Category:    it.Category,
			Image:       it.Image,
			Rating:      it.Rating,
			Quantity:    it.Quantity,
		})
		total += it.Price * float64(it.Quantity)
	}

	draft := orderdom.Draft{
		UserID:    principal.UID,
		UserEmail: principal.Email,
		Items:     snapshots,
		Total:     total,
	}
	if profile := uc.session.CurrentProfile(); profile != nil {
		draft.UserName = profile.Name
		draft.ShippingAddress = profile.Address
	}

	id, err := uc.orders.Create(ctx, draft)
	if err != nil {
		// cart はそのまま（再試行できる）
		return "", err
	}

	uc.cart.Clear()
	log.Printf("[checkout_uc] OK: order created id=%s items=%d total=%.2f", id, len(snapshots), total)

	if uc.mailer != nil {
		if err := uc.mailer.SendConfirmation(ctx, id, draft); err != nil {
			log.Printf("[checkout_uc] WARN: confirmation mail failed id=%s: %v", id, err)
		}
	}
	return id, nil
}
