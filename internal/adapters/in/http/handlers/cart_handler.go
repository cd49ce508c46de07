// internal/adapters/in/http/handlers/cart_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/session"
	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
)

// CartHandler serves the session-local cart.
//
//	GET    /cart             現在のカート
//	DELETE /cart             全消し
//	POST   /cart/items       商品を 1 個追加（同じ id はマージ）
//	PUT    /cart/items/{id}  数量変更
//	DELETE /cart/items/{id}  行削除
type CartHandler struct {
	sessions *session.Registry
}

func NewCartHandler(sessions *session.Registry) http.Handler {
	return &CartHandler{sessions: sessions}
}

type cartPayload struct {
	Items      cartdom.Items `json:"items"`
	TotalPrice float64       `json:"totalPrice"`
	TotalCount int           `json:"totalCount"`
}

func cartJSON(items cartdom.Items) cartPayload {
	return cartPayload{
		Items:      items,
		TotalPrice: items.TotalPrice(),
		TotalCount: items.TotalCount(),
	}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	b := h.sessions.Resolve(w, r)
	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case path == "/cart" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, cartJSON(b.Cart.Items()))

	case path == "/cart" && r.Method == http.MethodDelete:
		writeJSON(w, http.StatusOK, cartJSON(b.Cart.Clear()))

	case path == "/cart/items" && r.Method == http.MethodPost:
		var p productdom.Product
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeErr(w, http.StatusBadRequest, "malformed product payload")
			return
		}
		if strings.TrimSpace(p.ID) == "" {
			writeErr(w, http.StatusBadRequest, "product id is required")
			return
		}
		writeJSON(w, http.StatusOK, cartJSON(b.Cart.Add(productdom.Normalize(p))))

	case strings.HasPrefix(path, "/cart/items/") && r.Method == http.MethodPut:
		id := strings.TrimPrefix(path, "/cart/items/")
		var body struct {
			Quantity int `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeErr(w, http.StatusBadRequest, "malformed quantity payload")
			return
		}
		writeJSON(w, http.StatusOK, cartJSON(b.Cart.SetQuantity(id, body.Quantity)))

	case strings.HasPrefix(path, "/cart/items/") && r.Method == http.MethodDelete:
		id := strings.TrimPrefix(path, "/cart/items/")
		writeJSON(w, http.StatusOK, cartJSON(b.Cart.Remove(id)))

	default:
		methodNotAllowed(w)
	}
}
