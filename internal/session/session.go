// Package session owns the current-user value for the whole application
// lifetime and drives login, registration, logout and silent renewal.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"findash/internal/api"
	"findash/internal/core"
	"findash/internal/log"
	"findash/internal/token"
)

// State is the session lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type ProfilePatch struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// tokenResponse covers both the token endpoint and a register endpoint
// that issues tokens directly.
type tokenResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    *core.User `json:"user"`
}

// Manager is the single process-wide session service. It is injected into
// whatever needs it rather than living in a package-level global.
type Manager struct {
	mu     sync.Mutex
	gw     *api.Client
	tokens token.Store
	nav    api.Navigator
	log    *log.Logger
	state  State
	user   *core.User
}

func NewManager(gw *api.Client, tokens token.Store, nav api.Navigator, logger *log.Logger) *Manager {
	if nav == nil {
		nav = api.NopNavigator
	}
	return &Manager{
		gw:     gw,
		tokens: tokens,
		nav:    nav,
		log:    logger.WithComponent("session"),
		state:  StateUninitialized,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Loading() bool {
	return m.State() == StateLoading
}

// User returns the current user, or nil when anonymous.
func (m *Manager) User() *core.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) setState(s State, u *core.User) {
	m.mu.Lock()
	m.state = s
	m.user = u
	m.mu.Unlock()
}

// Init performs the first-mount transition: validate stored credentials,
// fetch the current user, settle as authenticated or anonymous. It is a
// no-op after the first call.
func (m *Manager) Init(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return
	}
	m.state = StateLoading
	m.mu.Unlock()

	if !m.tokens.Valid() {
		m.dropSession()
		return
	}

	user, err := api.Get[core.User](ctx, m.gw, api.EndpointCurrentUser, nil, "failed to load the current user")
	if err != nil {
		m.log.Warn("stored session is no longer valid", "error", err)
		m.dropSession()
		return
	}
	m.setState(StateAuthenticated, &user)
	m.log.Info("session restored", "user", user.Username)
}

// Login exchanges user credentials for tokens, loads the user and
// navigates to the dashboard. Errors propagate to the caller, who must
// report them; the state settles back to anonymous.
func (m *Manager) Login(ctx context.Context, creds Credentials) error {
	m.setState(StateLoading, nil)

	resp, err := api.Post[tokenResponse](ctx, m.gw, api.EndpointToken, creds, "login failed")
	if err != nil {
		m.setState(StateAnonymous, nil)
		return err
	}
	return m.finalize(ctx, resp)
}

// Register creates an account. When the server issues tokens directly the
// session is finalized as a login; otherwise it falls back to calling
// Login with the submitted credentials.
func (m *Manager) Register(ctx context.Context, data Registration) error {
	m.setState(StateLoading, nil)

	resp, err := api.Post[tokenResponse](ctx, m.gw, api.EndpointRegister, data, "registration failed")
	if err != nil {
		m.setState(StateAnonymous, nil)
		return err
	}
	if resp.Access == "" {
		return m.Login(ctx, Credentials{Username: data.Username, Password: data.Password})
	}
	return m.finalize(ctx, resp)
}

func (m *Manager) finalize(ctx context.Context, resp tokenResponse) error {
	if err := m.tokens.Set(token.Pair{Access: resp.Access, Refresh: resp.Refresh}); err != nil {
		m.setState(StateAnonymous, nil)
		return fmt.Errorf("store credentials: %w", err)
	}

	user := resp.User
	if user == nil {
		fetched, err := api.Get[core.User](ctx, m.gw, api.EndpointCurrentUser, nil, "failed to load the current user")
		if err != nil {
			m.setState(StateAnonymous, nil)
			return err
		}
		user = &fetched
	}

	m.setState(StateAuthenticated, user)
	m.log.Info("logged in", "user", user.Username)
	m.nav.NavigateTo(api.PathDashboard)
	return nil
}

// Logout notifies the server on a best-effort basis, then unconditionally
// clears local session state without regard for the network outcome.
func (m *Manager) Logout(ctx context.Context) {
	if _, err := m.gw.Do(ctx, http.MethodPost, api.EndpointLogout, nil, nil, "logout failed"); err != nil {
		m.log.Warn("server logout failed, clearing local session anyway", "error", err)
	}
	m.dropSession()
	m.nav.NavigateTo(api.PathLogin)
}

func (m *Manager) dropSession() {
	if err := m.tokens.Clear(); err != nil {
		m.log.Error("failed to clear credentials", "error", err)
	}
	m.setState(StateAnonymous, nil)
}

// RefreshSession re-fetches the current user to validate and extend the
// session. A failure forces a logout and reports false.
func (m *Manager) RefreshSession(ctx context.Context) bool {
	user, err := api.Get[core.User](ctx, m.gw, api.EndpointCurrentUser, nil, "failed to refresh the session")
	if err != nil {
		m.log.Warn("session refresh failed", "error", err)
		m.Logout(ctx)
		return false
	}
	m.setState(StateAuthenticated, &user)
	return true
}

// UpdateProfile patches the current user's profile and keeps the local
// user in sync with the server's representation.
func (m *Manager) UpdateProfile(ctx context.Context, patch ProfilePatch) (core.User, error) {
	user, err := api.Patch[core.User](ctx, m.gw, api.EndpointProfile, patch, "failed to update the profile")
	if err != nil {
		return core.User{}, err
	}
	m.setState(StateAuthenticated, &user)
	return user, nil
}

// ChangePassword swaps the account password. The session stays valid; the
// server decides whether existing tokens survive.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	_, err := m.gw.Do(ctx, http.MethodPost, api.EndpointPassword, body, nil, "failed to change the password")
	return err
}
