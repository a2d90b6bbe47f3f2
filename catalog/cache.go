package catalog

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-storefront/api/apierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Fetcher retrieves the full product list from the remote service.
type Fetcher interface {
	Products(ctx context.Context) ([]Product, error)
}

// Reconciler is notified after every successful refresh with the set of
// product IDs the fresh catalog contains. The cart registers itself here to
// drop lines whose product has been deleted server-side.
type Reconciler interface {
	Reconcile(ctx context.Context, liveIDs map[int64]struct{}) error
}

// Cache holds the in-memory snapshot of the remote product catalog.
//
// Refresh is fail-closed: a failed fetch empties the cache and records a
// user-facing error message rather than keeping potentially wrong data.
type Cache struct {
	mu          sync.RWMutex
	fetcher     Fetcher
	products    []Product
	fetchErr    string
	reconcilers []Reconciler
	log         zerolog.Logger
}

// Option modifies the Cache during construction.
type Option func(*Cache)

// WithLogger sets the logger used for reconciliation failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Cache) {
		c.log = log
	}
}

// New creates a catalog cache backed by the given fetcher.
func New(fetcher Fetcher, options ...Option) (*Cache, error) {
	if fetcher == nil {
		return nil, errors.New("[catalog.New] fetcher is required")
	}

	c := &Cache{
		fetcher: fetcher,
		log:     zerolog.Nop(),
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// AddReconciler registers a reconciler to be notified after each refresh.
func (c *Cache) AddReconciler(r Reconciler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconcilers = append(c.reconcilers, r)
}

// Refresh fetches the full product list. On success the cache is replaced,
// the stored error cleared and reconcilers notified. On failure the cache is
// emptied and a classified, human-readable message recorded.
func (c *Cache) Refresh(ctx context.Context) error {
	products, err := c.fetcher.Products(ctx)
	if err != nil {
		classified := apierror.Classify(err)
		c.mu.Lock()
		c.products = nil
		c.fetchErr = classified.Message
		c.mu.Unlock()
		return errors.Wrap(err, "[Cache.Refresh] fetcher.Products")
	}

	liveIDs := make(map[int64]struct{}, len(products))
	for _, p := range products {
		liveIDs[p.ID] = struct{}{}
	}

	c.mu.Lock()
	c.products = products
	c.fetchErr = ""
	reconcilers := make([]Reconciler, len(c.reconcilers))
	copy(reconcilers, c.reconcilers)
	c.mu.Unlock()

	// Reconciliation removes stale cart lines; it never adds or heals stock
	// numbers already held on a line.
	for _, r := range reconcilers {
		if err := r.Reconcile(ctx, liveIDs); err != nil {
			c.log.Warn().Err(err).Msg("catalog reconciliation failed")
		}
	}
	return nil
}

// Products returns a copy of the cached product list.
func (c *Cache) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get returns the cached product with the given ID.
func (c *Cache) Get(productID int64) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ID == productID {
			return p, true
		}
	}
	return Product{}, false
}

// Err returns the user-facing message from the last failed refresh, empty
// when the last refresh succeeded.
func (c *Cache) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchErr
}

// UpdateStockQuantity optimistically patches a single product's stock in the
// cache without a refetch, e.g. straight after the user's own purchase.
func (c *Cache) UpdateStockQuantity(productID int64, newQuantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.products {
		if c.products[i].ID == productID {
			c.products[i].StockQuantity = newQuantity
			return
		}
	}
}
