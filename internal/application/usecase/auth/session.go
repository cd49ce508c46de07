// internal/application/usecase/auth/session.go
package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	identity "storefront/internal/adapters/out/identity"
	common "storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	userdom "storefront/internal/domain/user"
)

// State is the Identity Session lifecycle.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

var (
	ErrIdentityMissing = errors.New("auth: identity client is not configured")
	ErrUsersMissing    = errors.New("auth: user repository is not configured")
	ErrOrdersMissing   = errors.New("auth: order repository is not configured")
)

// IdentityClient is the identity-service port the session depends on.
// *identity.Client satisfies it; tests inject a fake.
type IdentityClient interface {
	SignUp(ctx context.Context, email, password string) (identity.Principal, error)
	SignIn(ctx context.Context, email, password string) (identity.Principal, error)
	Delete(ctx context.Context, uid string) error
}

// Session tracks the signed-in principal and its profile document.
//
// While authenticated it keeps a live subscription on the own
// users/{uid} document, so profile edits made in another session are
// reflected without a manual refresh. State transitions notify
// registered dependents.
type Session struct {
	identity IdentityClient
	users    userdom.Repository
	orders   orderdom.Repository

	// baseCtx bounds the profile subscription lifetime (the session
	// owner's lifetime, not an individual request).
	baseCtx context.Context

	mu            sync.Mutex
	state         State
	principal     *identity.Principal
	profile       *userdom.Profile
	profileDetach common.Detach
	listeners     map[int]func(State)
	nextID        int
}

func NewSession(ctx context.Context, id IdentityClient, users userdom.Repository, orders orderdom.Repository) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Session{
		identity:  id,
		users:     users,
		orders:    orders,
		baseCtx:   ctx,
		state:     StateAnonymous,
		listeners: map[int]func(State){},
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Principal returns the signed-in principal, if any.
func (s *Session) CurrentPrincipal() (identity.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return identity.Principal{}, false
	}
	return *s.principal, true
}

// CurrentProfile returns the latest delivered profile snapshot (may be
// nil right after sign-in until the first subscription tick).
func (s *Session) CurrentProfile() *userdom.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	cp := *s.profile
	return &cp
}

// OnStateChange registers a dependent; detach is idempotent.
func (s *Session) OnStateChange(fn func(State)) common.Detach {
	if fn == nil {
		return common.NopDetach()
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Register creates a new principal, then durably creates the matching
// profile document. The session is signed in once the principal exists;
// a failed profile write is surfaced but does not sign the user out
// (identity service behavior: account creation implies sign-in).
func (s *Session) Register(ctx context.Context, email, password, name, address string) error {
	if s.identity == nil {
		return ErrIdentityMissing
	}
	if s.users == nil {
		return ErrUsersMissing
	}

	s.setState(StateAuthenticating)

	p, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		s.setState(StateAnonymous)
		return err
	}

	s.adopt(p)

	if err := s.users.CreateProfile(ctx, p.UID, p.Email, name, address); err != nil {
		log.Printf("[auth.session] WARN: profile create failed uid=%s: %v", p.UID, err)
		return err
	}
	return nil
}

// Login transitions anonymous -> authenticated. A rejection surfaces as
// AuthError without revealing which field was wrong.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if s.identity == nil {
		return ErrIdentityMissing
	}

	s.setState(StateAuthenticating)

	p, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		s.setState(StateAnonymous)
		return err
	}

	s.adopt(p)
	return nil
}

// Logout drops the in-memory principal and profile immediately — no
// waiting for a subscription tick.
func (s *Session) Logout() {
	s.mu.Lock()
	detach := s.profileDetach
	s.profileDetach = nil
	s.principal = nil
	s.profile = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
	s.setState(StateAnonymous)
}

// UpdateProfile merges name/address into the profile document,
// preserving createdAt and bumping updatedAt (repository contract).
func (s *Session) UpdateProfile(ctx context.Context, upd userdom.ProfileUpdate) error {
	if s.users == nil {
		return ErrUsersMissing
	}

	p, ok := s.CurrentPrincipal()
	if !ok {
		return common.NewAuthError("not signed in", nil)
	}
	return s.users.MergeProfile(ctx, p.UID, p.Email, upd)
}

// DeleteAccount removes, in this exact order:
//
//	(a) every order owned by the principal
//	(b) the profile document
//	(c) the principal itself
//
// (c) must not run before (a)/(b): once the principal is gone the
// session loses permission to delete its own data. The sequence is
// best-effort, NOT a transaction — a failure partway leaves earlier
// deletions in place and surfaces the error without retry.
// Not signed in -> silent no-op.
func (s *Session) DeleteAccount(ctx context.Context) error {
	p, ok := s.CurrentPrincipal()
	if !ok {
		return nil
	}
	if s.orders == nil {
		return ErrOrdersMissing
	}
	if s.users == nil {
		return ErrUsersMissing
	}
	if s.identity == nil {
		return ErrIdentityMissing
	}

	n, err := s.orders.DeleteByUser(ctx, p.UID)
	if err != nil {
		return err
	}
	log.Printf("[auth.session] OK: deleted %d orders uid=%s", n, p.UID)

	if err := s.users.DeleteProfile(ctx, p.UID); err != nil {
		return err
	}

	if err := s.identity.Delete(ctx, p.UID); err != nil {
		return err
	}

	s.Logout()
	return nil
}

// -----------------------------------------
// internals
// -----------------------------------------

// adopt installs a signed-in principal and starts the profile watch.
func (s *Session) adopt(p identity.Principal) {
	s.mu.Lock()
	cp := p
	s.principal = &cp
	s.profile = nil
	old := s.profileDetach
	s.profileDetach = nil
	s.mu.Unlock()

	if old != nil {
		old()
	}

	s.startProfileWatch(p.UID)
	s.setState(StateAuthenticated)
}

func (s *Session) startProfileWatch(uid string) {
	if s.users == nil || strings.TrimSpace(uid) == "" {
		return
	}

	detach, err := s.users.SubscribeByUID(s.baseCtx, uid,
		func(p *userdom.Profile) {
			s.mu.Lock()
			s.profile = p
			s.mu.Unlock()
		},
		func(err error) {
			log.Printf("[auth.session] WARN: profile subscription error uid=%s: %v", uid, err)
		},
	)
	if err != nil {
		log.Printf("[auth.session] WARN: profile subscription failed uid=%s: %v", uid, err)
		return
	}

	s.mu.Lock()
	s.profileDetach = detach
	s.mu.Unlock()
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}
