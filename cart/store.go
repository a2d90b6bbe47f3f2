package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const storageKey = "cart"

// Line is one product's quantity entry in the cart. Product fields are
// denormalised snapshots from the moment of the add; StockQuantity in
// particular is advisory and may trail the live catalog.
type Line struct {
	ProductID     int64   `json:"id"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand,omitempty"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	StockQuantity int     `json:"stockQuantity"`
	ImageName     string  `json:"imageName,omitempty"`
}

// Stock is the catalog lookup the store consults when changing quantities.
type Stock interface {
	Get(productID int64) (catalog.Product, bool)
}

// Notifier is the best-effort analytics port. Implementations must not block
// and must swallow their own failures: a lost notification never rolls back
// or delays the cart mutation that triggered it.
type Notifier interface {
	AddedToCart(productID int64, quantity int)
	RemovedFromCart(productID int64)
}

// Store maintains the authoritative local representation of what the user
// intends to buy. Stock checks here are advisory, made against a possibly
// stale catalog snapshot; the server re-checks at order placement. The client
// checks exist to cut failed-checkout round trips, not to guarantee anything.
type Store struct {
	mu       sync.Mutex
	repo     storage.Repo
	stock    Stock
	notifier Notifier
	lines    []Line
	log      zerolog.Logger
}

// Option modifies the Store during construction.
type Option func(*Store)

// WithNotifier registers the analytics notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithLogger sets the store's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// New creates a cart store backed by the given storage repo and catalog.
func New(repo storage.Repo, stock Stock, options ...Option) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[cart.New] storage repo is required")
	}
	if stock == nil {
		return nil, errors.New("[cart.New] stock lookup is required")
	}

	s := &Store{
		repo:  repo,
		stock: stock,
		log:   zerolog.Nop(),
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// Load seeds the cart from storage. A missing or malformed record fails
// closed to an empty cart, never an error.
func (s *Store) Load(ctx context.Context) {
	raw, err := s.repo.Get(ctx, storageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn().Err(err).Msg("cart load skipped, storage unavailable")
		}
		return
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.log.Warn().Msg("discarding malformed cart record")
		return
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
}

// AddToCart adds one unit of the product, or refuses with a reasoned Result.
// A product already in the cart has its quantity incremented rather than
// duplicated; the increment is refused when it would exceed the product's
// known stock.
func (s *Store) AddToCart(ctx context.Context, product catalog.Product) Result {
	if !product.ProductAvailable || product.StockQuantity <= 0 {
		return fail(ReasonOutOfStock, "Product is out of stock")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID != product.ID {
			continue
		}
		newQuantity := s.lines[i].Quantity + 1
		if newQuantity > product.StockQuantity {
			return fail(ReasonInsufficientStock,
				fmt.Sprintf("Only %d items available in stock. You already have %d in cart.",
					product.StockQuantity, s.lines[i].Quantity))
		}
		s.lines[i].Quantity = newQuantity
		s.persistLocked(ctx)
		s.notifyAdded(product.ID, 1)
		return ok(fmt.Sprintf("Added to cart. Total: %d items", newQuantity))
	}

	s.lines = append(s.lines, Line{
		ProductID:     product.ID,
		Name:          product.Name,
		Brand:         product.Brand,
		Price:         product.Price,
		Quantity:      1,
		StockQuantity: product.StockQuantity,
		ImageName:     product.ImageName,
	})
	s.persistLocked(ctx)
	s.notifyAdded(product.ID, 1)
	return ok("Product added to cart")
}

// RemoveFromCart deletes the matching line if present; no-op otherwise.
func (s *Store) RemoveFromCart(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeLocked(ctx, productID) {
		return
	}
	if s.notifier != nil {
		s.notifier.RemovedFromCart(productID)
	}
}

// UpdateQuantity overwrites a line's quantity after checking the live
// catalog. A target of zero or below delegates to removal and succeeds.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, newQuantity int) Result {
	if newQuantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return ok("Item removed from cart")
	}

	product, found := s.stock.Get(productID)
	if !found {
		return fail(ReasonUnknownProduct, "Product not found")
	}
	if newQuantity > product.StockQuantity {
		return fail(ReasonInsufficientStock,
			fmt.Sprintf("Only %d items available in stock", product.StockQuantity))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = newQuantity
			s.persistLocked(ctx)
			break
		}
	}
	return ok(fmt.Sprintf("Quantity updated to %d", newQuantity))
}

// Clear empties the cart, used after a successful checkout.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persistLocked(ctx)
}

// Reconcile drops lines whose product no longer exists upstream. It is
// one-directional: lines are pruned, never added, and stock snapshots on
// surviving lines are left untouched.
func (s *Store) Reconcile(ctx context.Context, liveIDs map[int64]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0]
	dropped := 0
	for _, line := range s.lines {
		if _, live := liveIDs[line.ProductID]; live {
			kept = append(kept, line)
		} else {
			dropped++
		}
	}
	if dropped == 0 {
		return nil
	}

	s.lines = kept
	s.log.Info().Int("dropped", dropped).Msg("pruned cart lines for deleted products")
	s.persistLocked(ctx)
	return nil
}

// Lines returns a copy of the cart contents in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalQuantity returns the summed quantity across all lines.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice returns the summed line price across the cart.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, line := range s.lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

func (s *Store) removeLocked(ctx context.Context, productID int64) bool {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persistLocked(ctx)
			return true
		}
	}
	return false
}

// persistLocked writes the whole cart through to storage before the mutation
// returns. A storage failure is logged but does not undo the in-memory
// mutation; the next successful write repairs the record.
func (s *Store) persistLocked(ctx context.Context) {
	lines := s.lines
	if lines == nil {
		lines = []Line{}
	}
	record, err := json.Marshal(lines)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to serialize cart")
		return
	}
	if err := s.repo.Set(ctx, storageKey, string(record)); err != nil {
		s.log.Error().Err(err).Msg("failed to persist cart")
	}
}

func (s *Store) notifyAdded(productID int64, quantity int) {
	if s.notifier != nil {
		s.notifier.AddedToCart(productID, quantity)
	}
}

var _ catalog.Reconciler = (*Store)(nil)
