// internal/adapters/in/http/session/registry.go
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	usecase "storefront/internal/application/usecase"
	auth "storefront/internal/application/usecase/auth"
)

const cookieName = "storefront_sid"

// Bundle is the per-browsing-session state: the local cart, the
// identity session and the checkout orchestrator bound to both.
// ブラウジングセッション 1 つにつき 1 束。TTL 切れで束ごと破棄される
// （cart slot も一緒に消える = sessionStorage 相当の寿命）。
type Bundle struct {
	Cart     *usecase.CartUsecase
	Auth     *auth.Session
	Checkout *usecase.CheckoutUsecase

	lastSeen time.Time
}

// Registry hands out session bundles keyed by an opaque cookie id.
type Registry struct {
	factory func() *Bundle
	ttl     time.Duration

	mu      sync.Mutex
	bundles map[string]*Bundle
}

func NewRegistry(factory func() *Bundle, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		factory: factory,
		ttl:     ttl,
		bundles: map[string]*Bundle{},
	}
}

// Resolve returns (or creates) the bundle for the request's session
// cookie, setting the cookie on first contact.
func (reg *Registry) Resolve(w http.ResponseWriter, r *http.Request) *Bundle {
	sid := ""
	if c, err := r.Cookie(cookieName); err == nil {
		sid = c.Value
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.sweepLocked()

	if sid != "" {
		if b, ok := reg.bundles[sid]; ok {
			b.lastSeen = time.Now()
			return b
		}
	}

	sid = uuid.NewString()
	b := reg.factory()
	b.lastSeen = time.Now()
	reg.bundles[sid] = b

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return b
}

// sweepLocked drops bundles idle past the TTL.
func (reg *Registry) sweepLocked() {
	cutoff := time.Now().Add(-reg.ttl)
	for sid, b := range reg.bundles {
		if b.lastSeen.Before(cutoff) {
			if b.Auth != nil {
				b.Auth.Logout()
			}
			delete(reg.bundles, sid)
		}
	}
}

// Len reports the live bundle count (test helper).
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.bundles)
}
