// internal/adapters/out/identity/client.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	common "storefront/internal/domain/common"
)

// defaultEndpoint is the Identity Toolkit REST base URL.
// Admin SDK はパスワード検証 API を持たないため、sign-in だけは
// accounts:signInWithPassword を直接叩く。
const defaultEndpoint = "https://identitytoolkit.googleapis.com/v1"

// Principal is the signed-in identity as the identity service reports it.
type Principal struct {
	UID     string
	Email   string
	IDToken string
}

// Client wraps Firebase Auth (admin SDK) plus the Identity Toolkit
// password sign-in endpoint.
//
// - SignUp/Delete: admin SDK (firebase.google.com/go/v4/auth)
// - SignIn:        REST (requires the project's web API key)
type Client struct {
	Auth     *fbauth.Client
	APIKey   string
	Endpoint string // override for tests; empty -> defaultEndpoint
	HTTP     *http.Client
}

func NewClient(auth *fbauth.Client, apiKey string) *Client {
	return &Client{
		Auth:   auth,
		APIKey: apiKey,
		HTTP:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SignUp creates a new principal. Email collisions and malformed
// credentials surface as AuthError (password policy is enforced by the
// identity service, not here).
func (c *Client) SignUp(ctx context.Context, email, password string) (Principal, error) {
	if c == nil || c.Auth == nil {
		return Principal{}, errors.New("identity: auth client is nil")
	}

	params := (&fbauth.UserToCreate{}).
		Email(strings.TrimSpace(email)).
		Password(password)

	rec, err := c.Auth.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return Principal{}, common.NewAuthError("email already in use", err)
		}
		return Principal{}, common.NewAuthError("sign-up rejected", err)
	}

	return Principal{UID: rec.UID, Email: rec.Email}, nil
}

// SignIn verifies email/password via Identity Toolkit. A rejection is
// reported as a single generic AuthError — never which field was wrong.
func (c *Client) SignIn(ctx context.Context, email, password string) (Principal, error) {
	if c == nil {
		return Principal{}, errors.New("identity: client is nil")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return Principal{}, errors.New("identity: web API key is empty")
	}

	endpoint := strings.TrimRight(c.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	url := fmt.Sprintf("%s/accounts:signInWithPassword?key=%s", endpoint, c.APIKey)

	body, err := json.Marshal(map[string]any{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return Principal{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Principal{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Principal{}, common.NewTransportError("identity.signIn", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		// INVALID_PASSWORD / EMAIL_NOT_FOUND / INVALID_LOGIN_CREDENTIALS
		// は全部この一言に潰す（どちらが悪いかは明かさない）
		return Principal{}, common.NewAuthError("invalid email or password", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return Principal{}, common.NewTransportError("identity.signIn",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var out struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
		IDToken string `json:"idToken"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Principal{}, common.NewTransportError("identity.signIn", err)
	}
	if strings.TrimSpace(out.LocalID) == "" {
		return Principal{}, common.NewTransportError("identity.signIn",
			errors.New("response has no localId"))
	}

	return Principal{UID: out.LocalID, Email: out.Email, IDToken: out.IDToken}, nil
}

// Delete removes the principal itself. Caller must have cleared the
// principal's permission-gating data (orders, profile) first.
func (c *Client) Delete(ctx context.Context, uid string) error {
	if c == nil || c.Auth == nil {
		return errors.New("identity: auth client is nil")
	}
	id := strings.TrimSpace(uid)
	if id == "" {
		return errors.New("identity: uid is empty")
	}

	if err := c.Auth.DeleteUser(ctx, id); err != nil {
		return common.NewAuthError("delete principal failed", err)
	}
	return nil
}

// VerifyIDToken validates a bearer ID token and returns its uid.
// Used by the HTTP facade's auth middleware.
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if c == nil || c.Auth == nil {
		return "", errors.New("identity: auth client is nil")
	}
	tok := strings.TrimSpace(idToken)
	if tok == "" {
		return "", common.NewAuthError("empty token", nil)
	}

	t, err := c.Auth.VerifyIDToken(ctx, tok)
	if err != nil {
		return "", common.NewAuthError("invalid token", err)
	}
	return t.UID, nil
}
