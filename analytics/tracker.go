package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ActivityType identifies a tracked customer activity.
type ActivityType string

const (
	ActivityAddToCart      ActivityType = "ADD_TO_CART"
	ActivityRemoveFromCart ActivityType = "REMOVE_FROM_CART"
	ActivityProductSearch  ActivityType = "PRODUCT_SEARCH"
	ActivityProfileUpdate  ActivityType = "PROFILE_UPDATE"
	ActivityPasswordChange ActivityType = "PASSWORD_CHANGE"
)

const defaultSendTimeout = 5 * time.Second

// Sender is the transport for analytics events. *api.Client implements it.
type Sender interface {
	TrackVisit(ctx context.Context, pageURL, referrer string) error
	TrackActivity(ctx context.Context, activityType, additionalData string) error
}

// TokenSource mirrors api.TokenSource; events are only reported for
// authenticated users.
type TokenSource interface {
	Token() string
}

// Tracker reports customer activity to the analytics endpoints, best-effort.
// Nothing it does can fail its caller: sends happen on their own goroutine
// with a bounded timeout, errors are logged at debug and dropped.
type Tracker struct {
	mu           sync.Mutex
	sender       Sender
	tokens       TokenSource
	sessionID    string
	trackedPages map[string]struct{}
	timeout      time.Duration
	log          zerolog.Logger
}

// Option modifies the Tracker during construction.
type Option func(*Tracker)

// WithLogger sets the tracker's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Tracker) {
		t.log = log
	}
}

// WithSendTimeout bounds each background send.
func WithSendTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		t.timeout = d
	}
}

// New creates a tracker with a fresh session identifier. Page visits are
// de-duplicated per session.
func New(sender Sender, tokens TokenSource, options ...Option) (*Tracker, error) {
	if sender == nil {
		return nil, fmt.Errorf("[analytics.New] sender is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("[analytics.New] token source is required")
	}

	t := &Tracker{
		sender:       sender,
		tokens:       tokens,
		sessionID:    fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		trackedPages: make(map[string]struct{}),
		timeout:      defaultSendTimeout,
		log:          zerolog.Nop(),
	}
	for _, option := range options {
		option(t)
	}
	return t, nil
}

// SessionID returns the tracker's session identifier.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// TrackPageVisit reports a page visit, at most once per page per session.
// Unauthenticated visits are not tracked.
func (t *Tracker) TrackPageVisit(ctx context.Context, pageURL, referrer string) {
	if t.tokens.Token() == "" {
		return
	}

	pageKey := pageURL + "_" + t.sessionID
	t.mu.Lock()
	if _, seen := t.trackedPages[pageKey]; seen {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	if err := t.sender.TrackVisit(ctx, pageURL, referrer); err != nil {
		t.log.Debug().Err(err).Str("page", pageURL).Msg("page visit tracking failed")
		return
	}

	t.mu.Lock()
	t.trackedPages[pageKey] = struct{}{}
	t.mu.Unlock()
}

// TrackActivity reports a customer activity. Unauthenticated activity is not
// tracked; failures are logged and dropped.
func (t *Tracker) TrackActivity(ctx context.Context, activity ActivityType, additionalData string) {
	if t.tokens.Token() == "" {
		return
	}
	if err := t.sender.TrackActivity(ctx, string(activity), additionalData); err != nil {
		t.log.Debug().Err(err).Str("activity", string(activity)).Msg("activity tracking failed")
	}
}

// AddedToCart implements cart.Notifier: fire-and-forget on a background
// goroutine so the cart mutation never waits on the network.
func (t *Tracker) AddedToCart(productID int64, quantity int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.TrackActivity(ctx, ActivityAddToCart, fmt.Sprintf("product_%d_qty_%d", productID, quantity))
	}()
}

// RemovedFromCart implements cart.Notifier.
func (t *Tracker) RemovedFromCart(productID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.TrackActivity(ctx, ActivityRemoveFromCart, fmt.Sprintf("product_%d", productID))
	}()
}

// TrackProductSearch reports a catalog search.
func (t *Tracker) TrackProductSearch(ctx context.Context, searchTerm string) {
	t.TrackActivity(ctx, ActivityProductSearch, searchTerm)
}
