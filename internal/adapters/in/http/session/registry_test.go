// internal/adapters/in/http/session/registry_test.go
package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapters/out/localslot"
	usecase "storefront/internal/application/usecase"
)

func newBundle() *Bundle {
	return &Bundle{Cart: usecase.NewCartUsecase(localslot.NewMemorySlot())}
}

func TestRegistry_ReusesBundleForSameCookie(t *testing.T) {
	reg := NewRegistry(newBundle, time.Hour)

	rec := httptest.NewRecorder()
	r1 := httptest.NewRequest(http.MethodGet, "/cart", nil)
	b1 := reg.Resolve(rec, r1)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	r2 := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r2.AddCookie(cookies[0])
	b2 := reg.Resolve(httptest.NewRecorder(), r2)

	assert.Same(t, b1, b2)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_UnknownCookieGetsFreshBundle(t *testing.T) {
	reg := NewRegistry(newBundle, time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.AddCookie(&http.Cookie{Name: "storefront_sid", Value: "stale"})
	reg.Resolve(httptest.NewRecorder(), r)

	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_SweepsExpiredBundles(t *testing.T) {
	reg := NewRegistry(newBundle, time.Millisecond)

	rec := httptest.NewRecorder()
	reg.Resolve(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, 1, reg.Len())

	time.Sleep(5 * time.Millisecond)

	// 次の contact で TTL 切れが掃除され、新しい束が作られる
	cookies := rec.Result().Cookies()
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.AddCookie(cookies[0])
	reg.Resolve(httptest.NewRecorder(), r)

	assert.Equal(t, 1, reg.Len())
}
