package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/security"
	sessiondomain "internship-portal/backend/internal/session/domain"
	sessionrepo "internship-portal/backend/internal/session/repository"
)

type memCredentialRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Credential
	err     error
}

func (r *memCredentialRepo) GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.byEmail[email], nil
}

type fixture struct {
	store    *RemoteStore
	sessions *sessionrepo.RedisRepository
	creds    *memCredentialRepo
	file     FileToken
	mr       *miniredis.Miniredis
	tokens   *security.TokenProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hasher := security.NewHasher(4)
	hash, err := hasher.Hash([]byte("s3cret-pass"))
	require.NoError(t, err)
	creds := &memCredentialRepo{byEmail: map[string]*domain.Credential{
		"jean@example.com": {UserID: "u1", Email: "jean@example.com", PasswordHash: hash, MetadataRole: "etudiant"},
	}}
	tokens, err := security.NewTestTokenProvider(time.Hour)
	require.NoError(t, err)
	sessions := sessionrepo.NewRedisRepository(client, "portal:session:", "portal:auth:events", nil)
	file := FileToken{Path: filepath.Join(t.TempDir(), "session")}

	return &fixture{
		store:    NewRemoteStore(creds, sessions, tokens, hasher, file, nil),
		sessions: sessions,
		creds:    creds,
		file:     file,
		mr:       mr,
		tokens:   tokens,
	}
}

func TestSignIn_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ident, err := f.store.SignIn(ctx, " Jean@Example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "u1", ident.ID)
	assert.Equal(t, domain.AuthProviderReal, ident.Provider)
	assert.Equal(t, "etudiant", ident.RoleHint)

	token, err := f.file.Load()
	require.NoError(t, err)
	require.NotEmpty(t, token)
	claims, err := f.tokens.ValidateSession(token)
	require.NoError(t, err)
	assert.True(t, f.mr.Exists("portal:session:"+claims.SessionID))
}

func TestSignIn_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tc := range []struct{ email, password string }{
		{"jean@example.com", "wrong"},
		{"nobody@example.com", "s3cret-pass"},
		{"", "s3cret-pass"},
		{"jean@example.com", ""},
	} {
		_, err := f.store.SignIn(ctx, tc.email, tc.password)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr, tc.email)
		assert.Equal(t, ErrInvalidCredentials, authErr.Message)
	}
	token, _ := f.file.Load()
	assert.Empty(t, token, "failed sign-in must not persist a token")
}

func TestSignIn_RepositoryFailureIsNotAuthError(t *testing.T) {
	f := newFixture(t)
	f.creds.err = errors.New("connection refused")

	_, err := f.store.SignIn(context.Background(), "jean@example.com", "s3cret-pass")
	require.Error(t, err)
	var authErr *AuthError
	assert.False(t, errors.As(err, &authErr))
}

type unwritableFile struct{ FileToken }

func (unwritableFile) Save(string) error { return errors.New("read-only file system") }

type undeletableSessions struct{ *sessionrepo.RedisRepository }

func (undeletableSessions) Delete(context.Context, string) error { return errors.New("redis: connection reset") }

func TestSignIn_TokenSaveFailureLogsCleanupError(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewRemoteStore(f.creds, undeletableSessions{f.sessions}, f.tokens, security.NewHasher(4), unwritableFile{f.file}, zap.New(core))

	_, err := s.SignIn(context.Background(), "jean@example.com", "s3cret-pass")
	require.EqualError(t, err, "read-only file system")

	entries := logs.FilterMessage("identity store: remove session after token save failure").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "redis: connection reset", entries[0].ContextMap()["error"])
	assert.NotEmpty(t, entries[0].ContextMap()["session_id"])
}

func TestGetSession_RestoresAfterRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.SignIn(ctx, "jean@example.com", "s3cret-pass")
	require.NoError(t, err)

	restarted := NewRemoteStore(f.creds, f.sessions, f.tokens, security.NewHasher(4), f.file, nil)
	ident, err := restarted.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, "u1", ident.ID)
	assert.Equal(t, "jean@example.com", ident.Email)
	assert.Equal(t, "etudiant", ident.RoleHint)
}

func TestGetSession_NoToken(t *testing.T) {
	f := newFixture(t)
	ident, err := f.store.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ident)
}

func TestGetSession_InvalidTokenIsCleared(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.file.Save("not-a-jwt"))

	ident, err := f.store.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ident)
	token, _ := f.file.Load()
	assert.Empty(t, token)
}

func TestGetSession_RevokedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.SignIn(ctx, "jean@example.com", "s3cret-pass")
	require.NoError(t, err)
	f.mr.FlushAll()

	ident, err := f.store.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, ident)
}

func TestGetSession_RedisDown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.SignIn(ctx, "jean@example.com", "s3cret-pass")
	require.NoError(t, err)
	f.mr.Close()

	_, err = f.store.GetSession(ctx)
	assert.Error(t, err)
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.SignIn(ctx, "jean@example.com", "s3cret-pass")
	require.NoError(t, err)
	token, _ := f.file.Load()
	claims, _ := f.tokens.ValidateSession(token)

	require.NoError(t, f.store.SignOut(ctx))
	assert.False(t, f.mr.Exists("portal:session:"+claims.SessionID))
	token, _ = f.file.Load()
	assert.Empty(t, token)

	assert.NoError(t, f.store.SignOut(ctx), "second sign-out is a no-op")
}

func TestRun_RemoteSignOutNotifiesListeners(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.store.SignIn(ctx, "jean@example.com", "s3cret-pass")
	require.NoError(t, err)
	token, _ := f.file.Load()
	claims, _ := f.tokens.ValidateSession(token)

	got := make(chan *domain.Identity, 4)
	unsubscribe := f.store.OnChange(func(i *domain.Identity) { got <- i })
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- f.store.Run(ctx) }()

	// Publish until the subscription is live; events for other sessions are ignored.
	deadline := time.After(3 * time.Second)
	for {
		require.NoError(t, f.sessions.Publish(ctx, sessiondomain.ChangeEvent{Type: sessiondomain.EventSignedOut, SessionID: "someone-else"}))
		require.NoError(t, f.sessions.Publish(ctx, sessiondomain.ChangeEvent{Type: sessiondomain.EventSignedOut, SessionID: claims.SessionID}))
		select {
		case ident := <-got:
			assert.Nil(t, ident)
			cancel()
			assert.NoError(t, <-done)
			token, _ := f.file.Load()
			assert.Empty(t, token)
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("listener not notified")
		}
	}
}

func TestHandleEvent_SignedInEchoCarriesIdentity(t *testing.T) {
	f := newFixture(t)
	ident, err := f.store.SignIn(context.Background(), "jean@example.com", "s3cret-pass")
	require.NoError(t, err)
	token, _ := f.file.Load()
	claims, _ := f.tokens.ValidateSession(token)

	var got []*domain.Identity
	unsubscribe := f.store.OnChange(func(i *domain.Identity) { got = append(got, i) })
	f.store.handleEvent(sessiondomain.ChangeEvent{Type: sessiondomain.EventSignedIn, SessionID: claims.SessionID})
	unsubscribe()
	f.store.handleEvent(sessiondomain.ChangeEvent{Type: sessiondomain.EventSignedIn, SessionID: claims.SessionID})

	require.Len(t, got, 1)
	assert.Equal(t, ident, got[0])
}
