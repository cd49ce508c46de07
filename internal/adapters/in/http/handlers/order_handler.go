// internal/adapters/in/http/handlers/order_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/session"
	usecase "storefront/internal/application/usecase"
	orderdom "storefront/internal/domain/order"
)

// OrderHandler serves the signed-in principal's order history.
//
//	GET /orders/stream   SSE live feed（自分の注文のみ、新しい順）
//	GET /orders/{id}     注文詳細（自分の注文のみ）
type OrderHandler struct {
	sessions *session.Registry
	uc       *usecase.OrderHistoryUsecase
}

func NewOrderHandler(sessions *session.Registry, uc *usecase.OrderHistoryUsecase) http.Handler {
	return &OrderHandler{sessions: sessions, uc: uc}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil || h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "order handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	b := h.sessions.Resolve(w, r)
	principal, ok := b.Auth.CurrentPrincipal()
	if !ok {
		writeErr(w, http.StatusUnauthorized, "sign in to view orders")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	switch {
	case path == "/orders/stream":
		h.handleStream(w, r, principal.UID)
	case strings.HasPrefix(path, "/orders/"):
		h.handleDetail(w, r, strings.TrimPrefix(path, "/orders/"), principal.UID)
	default:
		notFound(w)
	}
}

func (h *OrderHandler) handleStream(w http.ResponseWriter, r *http.Request, uid string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan []byte, 8)
	detach, err := h.uc.Subscribe(r.Context(), uid,
		func(orders []orderdom.Order) {
			raw, err := json.Marshal(orders)
			if err != nil {
				return
			}
			select {
			case events <- raw:
			default:
			}
		},
		func(err error) {
			log.Printf("[order_handler] WARN: stream error uid=%s: %v", uid, err)
		},
	)
	if err != nil {
		writeErrFrom(w, err)
		return
	}
	defer detach()

	for {
		select {
		case <-r.Context().Done():
			return
		case raw := <-events:
			fmt.Fprintf(w, "event: orders\ndata: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

func (h *OrderHandler) handleDetail(w http.ResponseWriter, r *http.Request, id, uid string) {
	o, err := h.uc.GetOrderByID(r.Context(), id, uid)
	if err != nil {
		writeErrFrom(w, err)
		return
	}
	if o == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
