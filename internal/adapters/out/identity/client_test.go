// internal/adapters/out/identity/client_test.go
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "storefront/internal/domain/common"
)

func signInServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "accounts:signInWithPassword")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, true, in["returnSecureToken"])

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestSignInSuccess(t *testing.T) {
	srv := signInServer(t, http.StatusOK, map[string]any{
		"localId": "uid-1",
		"email":   "a@b.c",
		"idToken": "tok",
	})
	defer srv.Close()

	c := &Client{APIKey: "test-key", Endpoint: srv.URL, HTTP: srv.Client()}
	p, err := c.SignIn(context.Background(), "a@b.c", "secret")

	require.NoError(t, err)
	assert.Equal(t, "uid-1", p.UID)
	assert.Equal(t, "a@b.c", p.Email)
	assert.Equal(t, "tok", p.IDToken)
}

func TestSignInBadCredentialsIsGenericAuthError(t *testing.T) {
	for _, code := range []string{"INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS"} {
		t.Run(code, func(t *testing.T) {
			srv := signInServer(t, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"message": code},
			})
			defer srv.Close()

			c := &Client{APIKey: "test-key", Endpoint: srv.URL, HTTP: srv.Client()}
			_, err := c.SignIn(context.Background(), "a@b.c", "nope")

			require.Error(t, err)
			assert.True(t, common.IsAuthError(err))
			// 同じ文言であること（どのフィールドが悪いか明かさない）
			assert.Equal(t, "auth: invalid email or password", err.Error())
		})
	}
}

func TestSignInServerErrorIsTransportError(t *testing.T) {
	srv := signInServer(t, http.StatusInternalServerError, map[string]any{})
	defer srv.Close()

	c := &Client{APIKey: "test-key", Endpoint: srv.URL, HTTP: srv.Client()}
	_, err := c.SignIn(context.Background(), "a@b.c", "secret")

	require.Error(t, err)
	assert.True(t, common.IsTransportError(err))
}

func TestSignInWithoutAPIKey(t *testing.T) {
	c := &Client{}
	_, err := c.SignIn(context.Background(), "a@b.c", "secret")
	assert.Error(t, err)
}
