// internal/adapters/in/http/handlers/checkout_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/session"
	usecase "storefront/internal/application/usecase"
)

// CheckoutHandler turns the session cart into one order.
//
//	POST /checkout → {"orderId": "..."}
type CheckoutHandler struct {
	sessions *session.Registry
}

func NewCheckoutHandler(sessions *session.Registry) http.Handler {
	return &CheckoutHandler{sessions: sessions}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}
	if strings.TrimRight(r.URL.Path, "/") != "/checkout" || r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	b := h.sessions.Resolve(w, r)

	id, err := b.Checkout.Submit(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrCheckoutInFlight) {
			writeErr(w, http.StatusConflict, err.Error())
			return
		}
		writeErrFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"orderId": id})
}
