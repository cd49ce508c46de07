// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	common "storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
)

var (
	ErrOrderRepoMissing = errors.New("orders: order repository is not configured")
)

// OrderHistoryUsecase fronts the Remote Order Channel for one principal.
type OrderHistoryUsecase struct {
	repo orderdom.Repository
}

func NewOrderHistoryUsecase(repo orderdom.Repository) *OrderHistoryUsecase {
	return &OrderHistoryUsecase{repo: repo}
}

// Subscribe opens the per-user live feed, newest first (server-side
// ordering contract, see order.Repository).
func (uc *OrderHistoryUsecase) Subscribe(
	ctx context.Context,
	userID string,
	onChange func([]orderdom.Order),
	onError func(error),
) (common.Detach, error) {
	if uc == nil || uc.repo == nil {
		return nil, ErrOrderRepoMissing
	}
	return uc.repo.SubscribeByUser(ctx, userID, onChange, onError)
}

// GetOrderByID is the one-shot fetch backing the order-detail view.
//
// The channel itself performs no access control, so the ownership check
// lives here: an order that exists but belongs to someone else is
// reported as AuthError, while a missing id stays (nil, nil) — callers
// must be able to tell "not found" apart from "transport failed".
func (uc *OrderHistoryUsecase) GetOrderByID(ctx context.Context, id, requestingUID string) (*orderdom.Order, error) {
	if uc == nil || uc.repo == nil {
		return nil, ErrOrderRepoMissing
	}

	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}

	if strings.TrimSpace(requestingUID) == "" || o.UserID != strings.TrimSpace(requestingUID) {
		return nil, common.NewAuthError("order belongs to another user", nil)
	}
	return o, nil
}
