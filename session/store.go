package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	storageKey = "session"

	// restoreTimeout bounds how long Restore may block on storage. A hung
	// backend yields an unauthenticated session instead of a stuck startup.
	restoreTimeout = 3 * time.Second
)

// legacySessionKeys are the four independent keys older installs persisted the
// session under. Cleared on logout so half-sessions can never resurrect.
var legacySessionKeys = []string{"token", "username", "email", "role"}

// ErrIncompleteSession is returned by Login when identity fields are missing.
var ErrIncompleteSession = errors.New("session is missing required fields")

// Store is the single authority for "who is the current user". It persists
// the session, answers the role predicates and supplies the bearer token for
// outgoing requests.
type Store struct {
	mu             sync.RWMutex
	repo           storage.Repo
	current        *Session
	log            zerolog.Logger
	nowTime        func() time.Time
	restoreTimeout time.Duration
}

// Option modifies the Store during construction.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithRestoreTimeout overrides the restore deadline (primarily for testing).
func WithRestoreTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.restoreTimeout = d
	}
}

// New creates a session store backed by the given storage repo.
func New(repo storage.Repo, options ...Option) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[session.New] storage repo is required")
	}

	s := &Store{
		repo:           repo,
		log:            zerolog.Nop(),
		nowTime:        time.Now,
		restoreTimeout: restoreTimeout,
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// Restore reconstructs the session from storage. All-or-nothing: a missing,
// malformed or incomplete record, or a token that is already expired, leaves
// the store unauthenticated. Only a storage failure is reported as an error,
// and even then the store remains usable.
func (s *Store) Restore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.restoreTimeout)
	defer cancel()

	raw, err := s.repo.Get(ctx, storageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		s.log.Warn().Err(err).Msg("session restore skipped, storage unavailable")
		return errors.Wrap(err, "[Store.Restore] repo.Get")
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || !sess.Complete() {
		s.log.Warn().Msg("discarding malformed session record")
		return nil
	}
	if s.tokenExpired(sess.Token) {
		s.log.Info().Str("username", sess.Username).Msg("discarding expired session")
		return nil
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	return nil
}

// Login stores the session in memory and persists it as a single record.
func (s *Store) Login(ctx context.Context, sess Session) error {
	if !sess.Complete() {
		return ErrIncompleteSession
	}

	record, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "[Store.Login] json.Marshal")
	}
	if err := s.repo.Set(ctx, storageKey, string(record)); err != nil {
		return errors.Wrap(err, "[Store.Login] repo.Set")
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	s.log.Info().Str("username", sess.Username).Str("role", string(sess.Role)).Msg("logged in")
	return nil
}

// Logout clears the in-memory session, the session record and any legacy
// per-field keys. Idempotent: safe to call with no active session.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, storageKey); err != nil {
		return errors.Wrap(err, "[Store.Logout] repo.Delete")
	}
	for _, key := range legacySessionKeys {
		if err := s.repo.Delete(ctx, key); err != nil {
			return errors.Wrapf(err, "[Store.Logout] repo.Delete %q", key)
		}
	}

	s.log.Info().Msg("logged out")
	return nil
}

// Invalidate drops the session after the server rejected its token (401).
// Unlike Logout it never propagates storage errors: there is nothing the
// caller could do with one mid-request.
func (s *Store) Invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	if err := s.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed clearing invalidated session from storage")
	}
}

// Current returns a copy of the active session, nil when unauthenticated.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	sess := *s.current
	return &sess
}

// IsAuthenticated reports whether an in-memory session is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.IsAdmin()
}

func (s *Store) IsCustomer() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.IsCustomer()
}

// Token implements api.TokenSource. Empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// tokenExpired screens a restored token's exp claim. The claim is parsed
// unverified: the client holds no signing key, and real validation happens
// server-side on every request anyway. Tokens that are not JWTs, or carry no
// exp claim, pass the screen.
func (s *Store) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.nowTime())
}
