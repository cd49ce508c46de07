// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"storefront/internal/adapters/in/http/handlers"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/adapters/in/http/session"
	usecase "storefront/internal/application/usecase"
)

// RouterDeps collects everything injected from main.go.
type RouterDeps struct {
	Sessions  *session.Registry
	CatalogUC *usecase.CatalogUsecase
	OrderUC   *usecase.OrderHistoryUsecase

	// Verifier gates the catalog write endpoints (manager form).
	// nil のときは書き込み系も素通し（ローカル開発用）。
	Verifier middleware.TokenVerifier
}

// NewRouter sets up HTTP routing for the storefront endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// 以降、依存が存在するものだけマウントする
	if deps.Sessions != nil {
		mux.Handle("/cart", handlers.NewCartHandler(deps.Sessions))
		mux.Handle("/cart/", handlers.NewCartHandler(deps.Sessions))
		mux.Handle("/auth/", handlers.NewAuthHandler(deps.Sessions))
		mux.Handle("/checkout", handlers.NewCheckoutHandler(deps.Sessions))
	}

	if deps.CatalogUC != nil {
		catalog := handlers.NewCatalogHandler(deps.CatalogUC)
		mux.Handle("/products", guardWrites(catalog, deps.Verifier))
		mux.Handle("/products/", guardWrites(catalog, deps.Verifier))
	}

	if deps.Sessions != nil && deps.OrderUC != nil {
		mux.Handle("/orders/", handlers.NewOrderHandler(deps.Sessions, deps.OrderUC))
	}

	return mux
}

// guardWrites keeps reads public and pushes every mutating method
// through the bearer-token check.
func guardWrites(next http.Handler, verifier middleware.TokenVerifier) http.Handler {
	if verifier == nil {
		return next
	}
	authmw := &middleware.AuthMiddleware{Verifier: verifier}
	protected := authmw.Handler(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			protected.ServeHTTP(w, r)
		}
	})
}
