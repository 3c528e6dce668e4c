// Package session tracks who the visitor is. The manager restores the
// persisted session once at startup, verifies it against the backend, and
// keeps the identity current across login, logout and profile updates.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/metrics"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage"
)

// Backend is the slice of the backend client the session depends on.
type Backend interface {
	Me(ctx context.Context) (*backend.UserRecord, error)
	Login(ctx context.Context, creds backend.Credentials) (*backend.UserRecord, error)
	Logout(ctx context.Context) error
	Cookies() []backend.Cookie
	SetCookies(cookies []backend.Cookie)
	ClearCookies()
}

// State is a snapshot of the session. Loading is true until restoration
// finishes and while a login or logout is in flight.
type State struct {
	Identity *Identity `json:"identity"`
	Loading  bool      `json:"loading"`
}

var errClosed = errors.New("session manager closed")

// Manager owns the session state of one visitor.
type Manager struct {
	store   storage.Store
	backend Backend
	logg    *logger.Logger
	metrics *metrics.Storefront

	// opMu serializes restore, login, logout and identity updates.
	opMu sync.Mutex

	mu       sync.RWMutex
	identity *Identity
	restored bool
	inFlight int
	closed   bool

	restoreOnce sync.Once
	ready       chan struct{}
}

// NewManager returns a manager in the loading state. Call Restore once.
func NewManager(store storage.Store, be Backend, logg *logger.Logger, m *metrics.Storefront) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if be == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Manager{
		store:   store,
		backend: be,
		logg:    logg,
		metrics: m,
		ready:   make(chan struct{}),
	}, nil
}

// State returns a copy of the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{
		Identity: m.identity.clone(),
		Loading:  !m.restored || m.inFlight > 0,
	}
}

// Identity returns the current identity, or nil when anonymous.
func (m *Manager) Identity() *Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity.clone()
}

// Ready is closed once restoration has finished.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Close tears the manager down. Results of calls still in flight are
// discarded instead of applied.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.finishRestore()
}

func (m *Manager) finishRestore() {
	m.restoreOnce.Do(func() {
		m.mu.Lock()
		m.restored = true
		m.mu.Unlock()
		close(m.ready)
	})
}

// Restore loads the stored session and verifies it with the backend. It never
// fails: any problem leaves the visitor anonymous. Only the first call does
// any work.
func (m *Manager) Restore(ctx context.Context) State {
	select {
	case <-m.ready:
		return m.State()
	default:
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	// A login or logout that got the lock first supersedes restoration.
	select {
	case <-m.ready:
		return m.State()
	default:
	}

	identity, outcome := m.restore(ctx)
	m.metrics.IncRestore(string(storage.KeySession), outcome)

	m.mu.Lock()
	if !m.closed {
		m.identity = identity
	}
	m.mu.Unlock()
	m.finishRestore()

	if identity != nil && outcome == "restored" {
		m.metrics.IncSessionTransition("restored")
		m.logg.Info(m.logg.WithUserID(ctx, identity.UserID), "session restored")
	}
	return m.State()
}

func (m *Manager) restore(ctx context.Context) (*Identity, string) {
	raw, err := m.store.Read(ctx, storage.KeySession)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "empty"
	}
	if err != nil {
		m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "session record unreadable, continuing anonymous")
		return nil, "error"
	}

	var stored record
	if err := json.Unmarshal(raw, &stored); err != nil || !stored.valid() {
		cause := err
		if cause == nil {
			cause = errors.New("session record has no usable identity")
		}
		corrupt := pkgerrors.Wrap(pkgerrors.CodeCorruptState, cause, "discarding persisted session")
		m.logg.Warn(m.logg.WithFields(ctx, pkgerrors.Dump(corrupt).Fields()), "persisted session is corrupt, continuing anonymous")
		m.removeRecord(ctx)
		return nil, "corrupt"
	}

	m.backend.SetCookies(stored.Cookies)
	user, err := m.backend.Me(ctx)
	if err != nil {
		if m.isClosed() {
			return nil, "closed"
		}
		if pkgerrors.HasCode(err, pkgerrors.CodeTransport) {
			m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "backend unreachable during session restore")
			return nil, "unreachable"
		}
		m.backend.ClearCookies()
		m.removeRecord(ctx)
		return nil, "expired"
	}
	if m.isClosed() {
		return nil, "closed"
	}

	identity := identityFromRecord(*user)
	m.persist(ctx, identity)
	return identity, "restored"
}

// Login authenticates with the backend. On failure the identity is left as
// it was and the error carries AUTHENTICATION_FAILED.
func (m *Manager) Login(ctx context.Context, username, password string) (*Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeAuthenticationFailed, "username and password are required")
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.begin()
	defer m.end()

	user, err := m.backend.Login(ctx, backend.Credentials{Username: username, Password: password})
	if err != nil {
		m.metrics.IncSessionTransition("login_failed")
		m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "login rejected")
		return nil, err
	}
	if user == nil {
		user, err = m.backend.Me(ctx)
		if err != nil {
			m.metrics.IncSessionTransition("login_failed")
			return nil, pkgerrors.Wrap(pkgerrors.CodeAuthenticationFailed, err, "login could not be confirmed")
		}
	}

	identity := identityFromRecord(*user)
	if err := m.commit(ctx, identity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAuthenticationFailed, err, "login could not be completed")
	}
	m.finishRestore()
	m.metrics.IncSessionTransition("login")
	m.logg.Info(m.logg.WithUserID(ctx, identity.UserID), "user logged in")
	return identity.clone(), nil
}

// Logout notifies the backend on a best-effort basis and always ends up
// anonymous.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.begin()
	defer m.end()
	defer m.finishRestore()

	if err := m.backend.Logout(ctx); err != nil {
		m.logg.Debug(m.logg.WithField(ctx, "error", err.Error()), "backend logout failed, clearing local session anyway")
	}
	m.backend.ClearCookies()

	m.mu.Lock()
	m.identity = nil
	m.mu.Unlock()

	m.removeRecord(ctx)
	m.metrics.IncSessionTransition("logout")
}

// UpdateIdentity replaces the identity with the record the backend returned
// after a profile change.
func (m *Manager) UpdateIdentity(ctx context.Context, rec backend.UserRecord) (*Identity, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	current := m.Identity()
	if current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	if rec.UserID <= 0 {
		rec.UserID = current.UserID
	}
	if rec.UserID != current.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "profile belongs to a different user")
	}

	identity := identityFromRecord(rec)
	if err := m.commit(ctx, identity); err != nil {
		return nil, err
	}
	m.metrics.IncSessionTransition("identity_updated")
	return identity.clone(), nil
}

func (m *Manager) commit(ctx context.Context, identity *Identity) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errClosed, "session is no longer active")
	}
	m.identity = identity
	m.mu.Unlock()

	m.persist(ctx, identity)
	return nil
}

// persist writes the session record. The backend remains the source of
// truth, so a failed write only costs restoration after a restart.
func (m *Manager) persist(ctx context.Context, identity *Identity) {
	raw, err := json.Marshal(record{Identity: identity, Cookies: m.backend.Cookies()})
	if err == nil {
		err = m.store.Write(ctx, storage.KeySession, raw)
	}
	if err != nil {
		m.logg.Error(m.logg.WithUserID(ctx, identity.UserID), "failed to persist session", err)
	}
}

func (m *Manager) removeRecord(ctx context.Context) {
	if err := m.store.Remove(ctx, storage.KeySession); err != nil {
		m.logg.Error(ctx, "failed to remove session record", err)
	}
}

func (m *Manager) begin() {
	m.mu.Lock()
	m.inFlight++
	m.mu.Unlock()
}

func (m *Manager) end() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
