package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/subivo/gatehouse"
	"github.com/subivo/gatehouse/internal/idp"
	"github.com/subivo/gatehouse/internal/profile"
	"github.com/subivo/gatehouse/internal/store"
)

// refreshWindow is how close to expiry the access token may get before
// RefreshIfNeeded renews it; with more validity left than this, no network
// call is made at all.
const refreshWindow = 60 * time.Second

// Auditor records successful identity resolutions. Audit failures are logged
// and never fail the auth flow.
type Auditor interface {
	RecordLogin(ctx context.Context, email string, role gatehouse.Role) error
}

// Manager owns the authentication state for a single session. It coordinates
// the identity provider, profile lookup, and credential persistence, and
// guarantees that every transition lands in a state where LoggedIn is true
// if and only if a user record is present.
//
// Operations that suspend on the network capture the session epoch before
// their first suspension point; a terminal write whose epoch has since been
// bumped (by a logout) is discarded, so a slow in-flight fetch can never
// resurrect a session that was logged out underneath it.
type Manager struct {
	idp     idp.Client
	profile profile.Client
	tokens  store.Store
	audit   Auditor

	mu        sync.Mutex
	epoch     uint64
	user      *gatehouse.User
	isLoading bool

	now func() time.Time
}

func NewManager(idpClient idp.Client, profileClient profile.Client, tokens store.Store, audit Auditor) *Manager {
	return &Manager{
		idp:       idpClient,
		profile:   profileClient,
		tokens:    tokens,
		audit:     audit,
		isLoading: true,
		now:       time.Now,
	}
}

// State returns the current session snapshot.
func (m *Manager) State() gatehouse.AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gatehouse.AuthState{
		LoggedIn:  m.user != nil,
		IsLoading: m.isLoading,
		User:      m.user,
	}
}

// Bootstrap restores the session from a previously persisted credential
// bundle, if one exists and its access token has not expired. Any failure
// along the way collapses to an anonymous session.
func (m *Manager) Bootstrap(ctx context.Context) {
	epoch := m.currentEpoch()

	bundle, err := m.tokens.Get(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("error reading credential bundle: %v", err)
		}
		m.Logout(ctx)
		return
	}
	if bundle.Email == "" || m.now().UnixMilli() >= bundle.ExpiresAt {
		// An expired access token must not be presented to the backend as if
		// it were still valid
		m.Logout(ctx)
		return
	}

	if err := m.fetchAndUpdateUser(ctx, epoch, bundle); err != nil {
		log.Printf("error restoring session for %s: %v", bundle.Email, err)
		m.Logout(ctx)
	}
}

// Login performs a password-grant exchange and, on success, persists the
// resulting bundle and establishes the session. On any failure the session
// ends up anonymous and the returned error indicates whether the credentials
// were rejected (idp.ErrInvalidCredentials) or something else went wrong.
func (m *Manager) Login(ctx context.Context, email string, password string) error {
	epoch := m.currentEpoch()

	bundle, err := m.idp.PasswordLogin(ctx, email, password)
	if err != nil {
		m.Logout(ctx)
		return err
	}
	if err := m.tokens.Put(ctx, bundle); err != nil {
		m.Logout(ctx)
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	if err := m.fetchAndUpdateUser(ctx, epoch, bundle); err != nil {
		m.Logout(ctx)
		return err
	}
	return nil
}

// Logout always succeeds: the credential store is cleared, the state drops
// to anonymous immediately, and any operation still in flight for this
// session is invalidated.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.epoch++
	m.user = nil
	m.isLoading = false
	m.mu.Unlock()

	if err := m.tokens.Clear(ctx); err != nil {
		log.Printf("error clearing credential bundle on logout: %v", err)
	}
}

// RefreshIfNeeded renews the credential bundle through a refresh grant when
// the access token is within refreshWindow of expiring, then re-runs the
// profile fetch. A refresh failure forces a logout rather than leaving a
// session of uncertain validity.
func (m *Manager) RefreshIfNeeded(ctx context.Context) {
	epoch := m.currentEpoch()

	bundle, err := m.tokens.Get(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("error reading credential bundle: %v", err)
		}
		m.Logout(ctx)
		return
	}
	if m.now().UnixMilli() < bundle.ExpiresAt-refreshWindow.Milliseconds() {
		return
	}
	if bundle.RefreshToken == "" {
		m.Logout(ctx)
		return
	}

	refreshed, err := m.idp.Refresh(ctx, bundle.RefreshToken)
	if err != nil {
		m.Logout(ctx)
		return
	}
	refreshed.Email = bundle.Email
	if err := m.tokens.Put(ctx, refreshed); err != nil {
		m.Logout(ctx)
		return
	}

	if err := m.fetchAndUpdateUser(ctx, epoch, refreshed); err != nil {
		log.Printf("error refreshing session for %s: %v", bundle.Email, err)
		m.Logout(ctx)
	}
}

// Register creates a new marketplace account. It is a stateless passthrough
// and never affects session state.
func (m *Manager) Register(ctx context.Context, params profile.RegistrationParams) error {
	return m.profile.Register(ctx, params)
}

func (m *Manager) currentEpoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// fetchAndUpdateUser resolves the session's user record, persists the newly
// minted authorization token alongside the bundle, and applies the result —
// unless the captured epoch has been superseded, in which case the result is
// discarded without error.
func (m *Manager) fetchAndUpdateUser(ctx context.Context, epoch uint64, bundle store.Bundle) error {
	result, err := m.profile.FetchUser(ctx, bundle.Email, bundle.AccessToken)
	if err != nil {
		return err
	}

	if m.currentEpoch() != epoch {
		return nil
	}
	bundle.UserToken = result.UserToken
	if err := m.tokens.Put(ctx, bundle); err != nil {
		return fmt.Errorf("failed to persist authorization token: %w", err)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return nil
	}
	m.user = result.User
	m.isLoading = false
	m.mu.Unlock()

	if m.audit != nil {
		if err := m.audit.RecordLogin(ctx, result.User.Email, result.User.Type); err != nil {
			log.Printf("error recording login for %s: %v", result.User.Email, err)
		}
	}
	return nil
}
