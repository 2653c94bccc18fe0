// Package service assembles and caches the signed-in user's profile.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	identitydomain "internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/logger"
	"internship-portal/backend/internal/profile/domain"
	"internship-portal/backend/internal/profile/repository"
	sessiondomain "internship-portal/backend/internal/session/domain"
	"internship-portal/backend/internal/telemetry"
)

// ErrNoStore is wrapped in an UpdateError when a real profile is updated without a profile store.
var ErrNoStore = errors.New("profile store is not configured")

// UpdateError is a failed profile update. Message is safe to show the user.
type UpdateError struct {
	Message string
	Err     error
}

func (e *UpdateError) Error() string { return e.Message }
func (e *UpdateError) Unwrap() error { return e.Err }

// Options configures a Resolver. Repo may be nil for a demo-only agent.
type Options struct {
	Repo         repository.Repository
	DemoProfiles bool
	Emitter      telemetry.EventEmitter
	Logger       *zap.Logger
}

// Resolver holds at most one loaded profile. Fetches carry a generation number;
// only the most recently started fetch may publish its result.
type Resolver struct {
	repo    repository.Repository
	emitter telemetry.EventEmitter
	log     *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	gen      uint64
	loading  bool
	current  *domain.Profile
	demo     map[string]*domain.Profile
	followed string
}

// NewResolver returns a Resolver with no profile loaded.
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		repo:    opts.Repo,
		emitter: opts.Emitter,
		log:     logger.OrGlobal(opts.Logger),
		now:     time.Now,
		demo:    map[string]*domain.Profile{},
	}
	if opts.DemoProfiles {
		r.demo = domain.DemoProfiles()
	}
	return r
}

// Fetch loads the profile of identity and publishes it unless a newer fetch or
// Clear has started meanwhile. It returns nil when no base record could be read.
func (r *Resolver) Fetch(ctx context.Context, identity *identitydomain.Identity, role identitydomain.Role) *domain.Profile {
	return r.fetch(ctx, r.begin(), identity, role)
}

func (r *Resolver) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.loading = true
	return r.gen
}

func (r *Resolver) fetch(ctx context.Context, gen uint64, identity *identitydomain.Identity, role identitydomain.Role) *domain.Profile {
	if identity == nil {
		r.publish(gen, nil)
		return nil
	}
	if identity.IsDemo() {
		if p := r.demoProfile(identity.Email); p != nil {
			r.publish(gen, p)
			return p.Clone()
		}
	}
	p := r.load(ctx, identity, role)
	r.publish(gen, p)
	return p.Clone()
}

func (r *Resolver) load(ctx context.Context, identity *identitydomain.Identity, role identitydomain.Role) *domain.Profile {
	if r.repo == nil {
		r.log.Warn("profile: no profile store configured", zap.String("user_id", identity.ID))
		return nil
	}
	base, err := r.repo.GetBase(ctx, identity.ID)
	if err != nil {
		r.log.Error("profile: base record fetch failed", zap.String("user_id", identity.ID), zap.Error(err))
		return nil
	}
	if base == nil {
		r.log.Warn("profile: no base record", zap.String("user_id", identity.ID))
		return nil
	}

	var ext domain.Extension
	if role.Valid() {
		ext, err = r.repo.GetExtension(ctx, role, identity.ID)
		if err != nil {
			r.log.Warn("profile: extension fetch failed; using defaults",
				zap.String("user_id", identity.ID), zap.Stringer("role", role), zap.Error(err))
			ext = nil
		}
		if ext == nil {
			ext = domain.EmptyExtension(role)
		}
	}

	email := base.Email
	if email == "" {
		email = identity.Email
	}
	return &domain.Profile{
		ID:        identity.ID,
		Email:     email,
		Name:      domain.DisplayName(base.FirstName, base.LastName),
		FirstName: base.FirstName,
		LastName:  base.LastName,
		Avatar:    domain.Initials(base.FirstName, base.LastName),
		Phone:     base.Phone,
		Address:   base.Address,
		Bio:       base.Bio,
		Role:      role,
		Extension: ext,
		Ratings:   []domain.Rating{},
	}
}

func (r *Resolver) publish(gen uint64, p *domain.Profile) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return false
	}
	r.current = p
	r.loading = false
	return true
}

func (r *Resolver) demoProfile(email string) *domain.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.demo[identitydomain.NormalizeEmail(email)].Clone()
}

// Clear drops the loaded profile and invalidates any fetch in flight.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.current = nil
	r.loading = false
	r.followed = ""
}

// Follow returns a session observer that loads the profile on sign-in and clears
// it on sign-out. The generation is taken before the load goroutine starts, so
// a sign-out delivered right after a sign-in always wins.
func (r *Resolver) Follow(ctx context.Context) func(sessiondomain.State) {
	return func(st sessiondomain.State) {
		if !st.Authenticated || st.Identity == nil {
			r.Clear()
			return
		}
		key := st.Identity.ID + "|" + string(st.Role)
		r.mu.Lock()
		if r.followed == key {
			r.mu.Unlock()
			return
		}
		r.followed = key
		r.gen++
		r.loading = true
		gen := r.gen
		r.mu.Unlock()

		go r.fetch(ctx, gen, st.Identity, st.Role)
	}
}

// Current returns a copy of the loaded profile, or nil.
func (r *Resolver) Current() *domain.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Clone()
}

// Loading reports whether a fetch is in flight.
func (r *Resolver) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Lookup answers from memory only: the demo table first, then the loaded profile.
func (r *Resolver) Lookup(emailOrID string) *domain.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.demo[identitydomain.NormalizeEmail(emailOrID)]; ok {
		return p.Clone()
	}
	for _, p := range r.demo {
		if p.ID == emailOrID {
			return p.Clone()
		}
	}
	if r.current.Matches(emailOrID) {
		return r.current.Clone()
	}
	return nil
}

// Update changes the profile of identityID. Demo profiles are changed in memory
// only and always succeed. Real profiles persist the name and contact fields and
// merge them locally once the store accepts them.
func (r *Resolver) Update(ctx context.Context, identityID string, u domain.Update) error {
	if r.isDemo(identityID) {
		r.updateDemo(identityID, u)
		r.emitUpdate(ctx, identityID, "demo")
		return nil
	}

	if r.repo == nil {
		return &UpdateError{Message: ErrNoStore.Error(), Err: ErrNoStore}
	}
	persist := u.Persistable()
	if persist.Empty() {
		return nil
	}
	if err := r.repo.UpdateBase(ctx, identityID, persist); err != nil {
		r.log.Warn("profile: update failed", zap.String("user_id", identityID), zap.Error(err))
		return &UpdateError{Message: err.Error(), Err: err}
	}
	r.mutateLoaded(identityID, func(p *domain.Profile) bool {
		p.Apply(persist)
		return true
	})
	r.emitUpdate(ctx, identityID, "store")
	return nil
}

// AddRating appends rating to the loaded profile of identityID and recomputes its
// average. It reports false, changing nothing, when no such profile is loaded or
// the score is outside [0, 5].
func (r *Resolver) AddRating(identityID string, rating domain.Rating) bool {
	if !rating.Valid() {
		return false
	}
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	if rating.Date == "" {
		rating.Date = r.now().UTC().Format(time.DateOnly)
	}
	return r.mutateLoaded(identityID, func(p *domain.Profile) bool {
		return p.AddRating(rating)
	})
}

func (r *Resolver) isDemo(identityID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && r.current.ID == identityID && r.current.IsDemo {
		return true
	}
	for _, p := range r.demo {
		if p.ID == identityID {
			return true
		}
	}
	return false
}

// mutateLoaded applies fn copy-on-write to the loaded profile when it belongs to
// identityID. A change to a loaded demo profile is written back to the demo table.
func (r *Resolver) mutateLoaded(identityID string, fn func(*domain.Profile) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.ID != identityID {
		return false
	}
	next := r.current.Clone()
	if !fn(next) {
		return false
	}
	r.current = next
	if next.IsDemo {
		key := identitydomain.NormalizeEmail(next.Email)
		if _, ok := r.demo[key]; ok {
			r.demo[key] = next.Clone()
		}
	}
	return true
}

func (r *Resolver) updateDemo(identityID string, u domain.Update) {
	applied := r.mutateLoaded(identityID, func(p *domain.Profile) bool {
		p.Apply(u)
		return true
	})
	if applied {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, p := range r.demo {
		if p.ID == identityID {
			next := p.Clone()
			next.Apply(u)
			r.demo[email] = next
		}
	}
}

func (r *Resolver) emitUpdate(ctx context.Context, identityID, source string) {
	telemetry.EmitAsync(r.emitter, ctx, &telemetry.Event{
		Type:   telemetry.EventProfile,
		UserID: identityID,
		Source: source,
		At:     r.now().UTC(),
	})
}
