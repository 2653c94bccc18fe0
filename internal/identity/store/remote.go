package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/security"
	sessiondomain "internship-portal/backend/internal/session/domain"
)

// CredentialRepo is the minimal credential lookup needed by RemoteStore.
type CredentialRepo interface {
	GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error)
}

// SessionRepo is the minimal session repository needed by RemoteStore.
type SessionRepo interface {
	Create(ctx context.Context, r *sessiondomain.Record) error
	Get(ctx context.Context, id string) (*sessiondomain.Record, error)
	Delete(ctx context.Context, id string) error
	Publish(ctx context.Context, e sessiondomain.ChangeEvent) error
	Subscribe(ctx context.Context, fn func(sessiondomain.ChangeEvent)) (func() error, error)
}

// RemoteStore implements Store over Postgres credentials and Redis sessions.
type RemoteStore struct {
	creds    CredentialRepo
	sessions SessionRepo
	tokens   *security.TokenProvider
	hasher   *security.Hasher
	file     TokenFile
	log      *zap.Logger
	now      func() time.Time
	newID    func() string

	mu        sync.Mutex
	current   *sessiondomain.Record
	listeners map[int]func(*domain.Identity)
	nextID    int
}

// NewRemoteStore returns a RemoteStore with the given dependencies. log may be nil.
func NewRemoteStore(creds CredentialRepo, sessions SessionRepo, tokens *security.TokenProvider, hasher *security.Hasher, file TokenFile, log *zap.Logger) *RemoteStore {
	if log == nil {
		log = zap.L()
	}
	return &RemoteStore{
		creds:     creds,
		sessions:  sessions,
		tokens:    tokens,
		hasher:    hasher,
		file:      file,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
		listeners: make(map[int]func(*domain.Identity)),
	}
}

func identityFromRecord(r *sessiondomain.Record) *domain.Identity {
	return &domain.Identity{
		ID:       r.UserID,
		Email:    r.Email,
		Provider: domain.AuthProviderReal,
		RoleHint: r.RoleHint,
	}
}

// GetSession restores the session named by the token file. A token that is
// invalid, expired, or whose record is gone is cleared and reported as no session.
func (s *RemoteStore) GetSession(ctx context.Context) (*domain.Identity, error) {
	token, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	claims, err := s.tokens.ValidateSession(token)
	if err != nil {
		s.discardToken()
		return nil, nil
	}
	rec, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.UserID != claims.Subject || !security.TokenHashEqual(token, rec.TokenHash) {
		s.discardToken()
		return nil, nil
	}
	s.mu.Lock()
	s.current = rec
	s.mu.Unlock()
	return identityFromRecord(rec), nil
}

func (s *RemoteStore) discardToken() {
	if err := s.file.Clear(); err != nil {
		s.log.Warn("identity store: clear stale session token", zap.Error(err))
	}
}

func (s *RemoteStore) SignIn(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, &AuthError{Message: ErrInvalidCredentials}
	}
	cred, err := s.creds.GetCredentialByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if cred == nil || cred.PasswordHash == "" {
		return nil, &AuthError{Message: ErrInvalidCredentials}
	}
	ok, err := s.hasher.Matches(cred.PasswordHash, []byte(password))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &AuthError{Message: ErrInvalidCredentials}
	}

	sessionID := s.newID()
	token, expiresAt, err := s.tokens.IssueSession(sessionID, cred.UserID, cred.Email, cred.MetadataRole)
	if err != nil {
		return nil, err
	}
	rec := &sessiondomain.Record{
		ID:        sessionID,
		UserID:    cred.UserID,
		Email:     cred.Email,
		RoleHint:  cred.MetadataRole,
		TokenHash: security.HashToken(token),
		CreatedAt: s.now(),
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.file.Save(token); err != nil {
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
			s.log.Warn("identity store: remove session after token save failure", zap.String("session_id", sessionID), zap.Error(delErr))
		}
		return nil, err
	}

	s.mu.Lock()
	s.current = rec
	s.mu.Unlock()

	s.publish(ctx, sessiondomain.ChangeEvent{
		Type:      sessiondomain.EventSignedIn,
		SessionID: rec.ID,
		UserID:    rec.UserID,
		Email:     rec.Email,
		RoleHint:  rec.RoleHint,
		At:        rec.CreatedAt,
	})
	return identityFromRecord(rec), nil
}

func (s *RemoteStore) publish(ctx context.Context, e sessiondomain.ChangeEvent) {
	if err := s.sessions.Publish(ctx, e); err != nil {
		s.log.Warn("identity store: publish change event", zap.String("type", string(e.Type)), zap.Error(err))
	}
}

// SignOut deletes the current session record and token. Without a current
// session it is a no-op.
func (s *RemoteStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	rec := s.current
	s.current = nil
	s.mu.Unlock()

	var errs []error
	if err := s.file.Clear(); err != nil {
		errs = append(errs, err)
	}
	if rec == nil {
		return errors.Join(errs...)
	}
	if err := s.sessions.Delete(ctx, rec.ID); err != nil {
		errs = append(errs, err)
	}
	s.publish(ctx, sessiondomain.ChangeEvent{
		Type:      sessiondomain.EventSignedOut,
		SessionID: rec.ID,
		UserID:    rec.UserID,
		At:        s.now(),
	})
	return errors.Join(errs...)
}

func (s *RemoteStore) OnChange(fn func(*domain.Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Run forwards change events for this agent's session to OnChange listeners until ctx ends.
// A sign-out of the current session from anywhere signs this agent out as well.
func (s *RemoteStore) Run(ctx context.Context) error {
	stop, err := s.sessions.Subscribe(ctx, s.handleEvent)
	if err != nil {
		return err
	}
	<-ctx.Done()
	return stop()
}

func (s *RemoteStore) handleEvent(e sessiondomain.ChangeEvent) {
	s.mu.Lock()
	if s.current == nil || s.current.ID != e.SessionID {
		s.mu.Unlock()
		return
	}
	var ident *domain.Identity
	switch e.Type {
	case sessiondomain.EventSignedIn:
		ident = identityFromRecord(s.current)
	case sessiondomain.EventSignedOut:
		s.current = nil
	default:
		s.mu.Unlock()
		return
	}
	fns := make([]func(*domain.Identity), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if ident == nil {
		s.discardToken()
	}
	for _, fn := range fns {
		fn(ident)
	}
}
