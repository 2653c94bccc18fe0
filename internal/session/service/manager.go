// Package service owns the agent's single live session: bounded bootstrap,
// change subscription, login and logout, and observer fan-out.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	identitydomain "internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/identity/provider"
	"internship-portal/backend/internal/identity/store"
	"internship-portal/backend/internal/logger"
	"internship-portal/backend/internal/session/domain"
	"internship-portal/backend/internal/telemetry"
)

// DefaultBootstrapTimeout bounds the initial session retrieval.
const DefaultBootstrapTimeout = 5 * time.Second

// ErrNoBackend is returned (wrapped in a LoginError) when a login needs the
// identity store and none is configured.
var ErrNoBackend = errors.New("identity store is not configured")

const genericLoginMessage = "Login failed, please try again"

// LoginError is a failed login. Message is safe to show the user.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }
func (e *LoginError) Unwrap() error { return e.Err }

// RoleResolver resolves the portal role of an identity. It never fails.
type RoleResolver interface {
	Resolve(ctx context.Context, identity *identitydomain.Identity) identitydomain.Role
}

// Options configures a Manager. Store may be nil for a demo-only agent.
type Options struct {
	Store            store.Store
	Providers        provider.Selector
	Roles            RoleResolver
	Emitter          telemetry.EventEmitter
	Logger           *zap.Logger
	BootstrapTimeout time.Duration
}

// Manager owns the session tuple. The zero value is not usable; call NewManager.
type Manager struct {
	store     store.Store
	providers provider.Selector
	roles     RoleResolver
	emitter   telemetry.EventEmitter
	log       *zap.Logger
	timeout   time.Duration

	mu    sync.Mutex
	state domain.State
	seq   uint64

	notifyMu  sync.Mutex
	obsMu     sync.Mutex
	observers map[int]func(domain.State)
	nextObs   int

	startOnce   sync.Once
	stopOnce    sync.Once
	ready       chan struct{}
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// NewManager returns a Manager in the loading state.
func NewManager(opts Options) *Manager {
	timeout := opts.BootstrapTimeout
	if timeout <= 0 {
		timeout = DefaultBootstrapTimeout
	}
	return &Manager{
		store:     opts.Store,
		providers: opts.Providers,
		roles:     opts.Roles,
		emitter:   opts.Emitter,
		log:       logger.OrGlobal(opts.Logger),
		timeout:   timeout,
		state:     domain.State{Loading: true},
		observers: make(map[int]func(domain.State)),
		ready:     make(chan struct{}),
		ctx:       context.Background(),
	}
}

// Start subscribes to store changes and begins the bootstrap in the background.
// Ready is closed once bootstrap completes. Calling Start more than once has no effect.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.ctx, m.cancel = context.WithCancel(ctx)
		if m.store != nil {
			m.unsubscribe = m.store.OnChange(m.handleChange)
		}
		go m.bootstrap(m.ctx, m.begin())
	})
}

// Stop drops the change subscription and cancels in-flight role resolutions.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		if m.cancel != nil {
			m.cancel()
		}
	})
}

// Ready is closed when the initial bootstrap has completed.
func (m *Manager) Ready() <-chan struct{} { return m.ready }

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() domain.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn for every state change. fn runs on the goroutine that
// made the change and must not block.
func (m *Manager) Subscribe(fn func(domain.State)) (unsubscribe func()) {
	m.obsMu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.obsMu.Lock()
			delete(m.observers, id)
			m.obsMu.Unlock()
		})
	}
}

func (m *Manager) bootstrap(ctx context.Context, seq uint64) {
	var (
		ident *identitydomain.Identity
		role  identitydomain.Role
	)
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("session bootstrap panicked", zap.Any("panic", r))
			ident, role = nil, identitydomain.RoleNone
		}
		m.finishBootstrap(seq, ident, role)
	}()

	ident = m.retrieveSession(ctx)
	if ident != nil {
		role = m.roles.Resolve(ctx, ident)
	}
}

// retrieveSession races GetSession against the bootstrap timer. The first to
// settle wins; a belated store response is dropped.
func (m *Manager) retrieveSession(ctx context.Context) *identitydomain.Identity {
	if m.store == nil {
		return nil
	}
	type result struct {
		ident *identitydomain.Identity
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("get session panicked: %v", r)}
			}
		}()
		ident, err := m.store.GetSession(ctx)
		ch <- result{ident: ident, err: err}
	}()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		if r.err != nil {
			m.log.Warn("session bootstrap: get session failed; continuing signed out", zap.Error(r.err))
			return nil
		}
		return r.ident
	case <-timer.C:
		m.log.Warn("session bootstrap timed out; continuing signed out", zap.Duration("timeout", m.timeout))
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (m *Manager) finishBootstrap(seq uint64, ident *identitydomain.Identity, role identitydomain.Role) {
	m.mu.Lock()
	if seq == m.seq {
		m.state = newState(ident, role)
	}
	m.state.Loading = false
	st := m.state
	m.mu.Unlock()

	close(m.ready)
	m.notify()
	m.emit(telemetry.EventBootstrap, st, "bootstrap")
	m.log.Info("session bootstrap complete",
		zap.Bool("authenticated", st.Authenticated), zap.Stringer("role", st.Role))
}

// handleChange applies a store notification. A sign-out clears the session at
// once; a sign-in resolves the role first.
func (m *Manager) handleChange(ident *identitydomain.Identity) {
	seq := m.begin()
	if ident == nil {
		m.commit(seq, nil, identitydomain.RoleNone)
		m.emit(telemetry.EventChanged, m.Snapshot(), "store")
		return
	}
	go func() {
		role := m.roles.Resolve(m.ctx, ident)
		if m.commit(seq, ident, role) {
			m.emit(telemetry.EventChanged, m.Snapshot(), "store")
		}
	}()
}

// Login signs in with a demo account or, failing that, the identity store.
// A failed login leaves the session unchanged and returns a *LoginError.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	p := m.providers.ForLogin(email, password)
	if p == nil {
		m.emit(telemetry.EventLoginFailed, domain.State{}, "no_backend")
		return &LoginError{Message: ErrNoBackend.Error(), Err: ErrNoBackend}
	}

	ident, err := p.SignIn(ctx, email, password)
	if err != nil {
		m.emit(telemetry.EventLoginFailed, domain.State{}, string(p.Kind()))
		var authErr *store.AuthError
		if errors.As(err, &authErr) {
			return &LoginError{Message: authErr.Message, Err: err}
		}
		m.log.Error("login: sign-in failed", zap.String("provider", string(p.Kind())), zap.Error(err))
		return &LoginError{Message: genericLoginMessage, Err: err}
	}

	role := m.roles.Resolve(ctx, ident)
	m.install(ident, role)
	m.emit(telemetry.EventLogin, newState(ident, role), string(p.Kind()))
	return nil
}

// Logout clears the session. Real identities are signed out of the store first;
// a store failure is logged and the local session is cleared regardless.
func (m *Manager) Logout(ctx context.Context) {
	st := m.Snapshot()
	if st.Identity == nil {
		return
	}
	if p := m.providers.ForIdentity(st.Identity); p != nil {
		if err := p.SignOut(ctx, st.Identity); err != nil {
			m.log.Warn("logout: store sign-out failed", zap.String("user_id", st.Identity.ID), zap.Error(err))
		}
	}
	m.install(nil, identitydomain.RoleNone)
	m.emit(telemetry.EventLogout, st, string(st.Identity.Provider))
}

// begin reserves the sequence number of a state change that is about to start.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

// commit installs the state if no newer change has begun since seq.
func (m *Manager) commit(seq uint64, ident *identitydomain.Identity, role identitydomain.Role) bool {
	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		return false
	}
	loading := m.state.Loading
	m.state = newState(ident, role)
	m.state.Loading = loading
	m.mu.Unlock()
	m.notify()
	return true
}

// install takes a new sequence number and writes the state under one lock, so
// it supersedes every change begun earlier, including a store notification
// for the same sign-in that is still resolving its role.
func (m *Manager) install(ident *identitydomain.Identity, role identitydomain.Role) {
	m.mu.Lock()
	m.seq++
	loading := m.state.Loading
	m.state = newState(ident, role)
	m.state.Loading = loading
	m.mu.Unlock()
	m.notify()
}

// notify delivers the latest state to observers. Deliveries are serialized so
// an observer never sees an older state after a newer one.
func (m *Manager) notify() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	st := m.Snapshot()

	m.obsMu.Lock()
	fns := make([]func(domain.State), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.obsMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (m *Manager) emit(eventType string, st domain.State, source string) {
	ev := &telemetry.Event{Type: eventType, Source: source, At: time.Now().UTC()}
	if st.Identity != nil {
		ev.UserID = st.Identity.ID
		ev.Provider = string(st.Identity.Provider)
		ev.Role = string(st.Role)
	}
	telemetry.EmitAsync(m.emitter, m.ctx, ev)
}

func newState(ident *identitydomain.Identity, role identitydomain.Role) domain.State {
	if ident == nil {
		return domain.State{}
	}
	return domain.State{Identity: ident, Role: role, Authenticated: true}
}
