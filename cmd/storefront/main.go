// cmd/storefront/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	httpin "storefront/internal/adapters/in/http"
	"storefront/internal/adapters/in/http/middleware"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/platform/di"
)

// atomicHandler allows swapping the underlying handler at runtime safely.
type atomicHandler struct {
	v atomic.Value // stores http.Handler
}

func newAtomicHandler(initial http.Handler) *atomicHandler {
	ah := &atomicHandler{}
	if initial == nil {
		initial = http.NotFoundHandler()
	}
	ah.v.Store(initial)
	return ah
}

func (h *atomicHandler) Store(next http.Handler) {
	if next == nil {
		return
	}
	h.v.Store(next)
}

func (h *atomicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cur := h.v.Load()
	if cur == nil {
		http.NotFound(w, r)
		return
	}
	cur.(http.Handler).ServeHTTP(w, r)
}

func main() {
	ctx := context.Background()
	cfg := appcfg.Load()

	// ─────────────────────────────────────────────────────────────
	// Start listening ASAP with lightweight mux (healthz only)
	// ─────────────────────────────────────────────────────────────
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	switcher := newAtomicHandler(middleware.CORS(cfg.AllowedOrigin, healthMux))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: switcher,
		// SSE stream を切らないよう WriteTimeout は設定しない
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	var containerHolder atomic.Value // stores *di.Container (or nil)
	containerHolder.Store((*di.Container)(nil))

	// ─────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Printf("[boot] received signal: %v; shutting down...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[boot] server shutdown error: %v", err)
		}

		if v := containerHolder.Load(); v != nil {
			if container, ok := v.(*di.Container); ok && container != nil {
				log.Printf("[boot] closing container resources...")
				if err := container.Close(); err != nil {
					log.Printf("[boot] container close error: %v", err)
				}
			}
		}

		close(idleConnsClosed)
	}()

	// ─────────────────────────────────────────────────────────────
	// Build container in background, then swap in the real router
	// ─────────────────────────────────────────────────────────────
	go func() {
		container, err := di.Build(ctx, cfg)
		if err != nil {
			log.Printf("[boot] FATAL: container build failed: %v (serving healthz only)", err)
			return
		}
		containerHolder.Store(container)

		router := httpin.NewRouter(container.RouterDeps())
		switcher.Store(middleware.CORS(cfg.AllowedOrigin, middleware.Recover(router)))
		log.Printf("[boot] OK: storefront router mounted")
	}()

	log.Printf("[boot] listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[boot] ListenAndServe: %v", err)
	}

	<-idleConnsClosed
	log.Printf("[boot] bye")
}
