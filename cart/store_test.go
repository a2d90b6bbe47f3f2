package cart_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/storage/repofakes"
	"github.com/stretchr/testify/require"
)

// stubStock is a fixed catalog lookup.
type stubStock map[int64]catalog.Product

func (s stubStock) Get(productID int64) (catalog.Product, bool) {
	p, ok := s[productID]
	return p, ok
}

// recordingNotifier captures best-effort analytics notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	added   []int64
	removed []int64
}

func (n *recordingNotifier) AddedToCart(productID int64, quantity int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.added = append(n.added, productID)
}

func (n *recordingNotifier) RemovedFromCart(productID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removed = append(n.removed, productID)
}

type testFixture struct {
	repo     *repofakes.FakeRepo
	stock    stubStock
	notifier *recordingNotifier
	store    *cart.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		repo: repofakes.NewFakeRepo(),
		stock: stubStock{
			1: {ID: 1, Name: "Headphones", Brand: "Auris", Price: 79.99, StockQuantity: 5, ProductAvailable: true},
			2: {ID: 2, Name: "Keyboard", Brand: "Keyd", Price: 129.50, StockQuantity: 3, ProductAvailable: true},
		},
		notifier: &recordingNotifier{},
	}

	store, err := cart.New(f.repo, f.stock, cart.WithNotifier(f.notifier))
	require.NoError(t, err)
	f.store = store
	return f
}

func TestAddToCartOutOfStock(t *testing.T) {
	f := setupTestFixture(t)

	res := f.store.AddToCart(context.Background(), catalog.Product{ID: 9, StockQuantity: 0, ProductAvailable: true})
	require.False(t, res.Success)
	require.Equal(t, cart.ReasonOutOfStock, res.Reason)
	require.Equal(t, "Product is out of stock", res.Message)
	require.Empty(t, f.store.Lines())

	res = f.store.AddToCart(context.Background(), catalog.Product{ID: 9, StockQuantity: 4, ProductAvailable: false})
	require.False(t, res.Success)
	require.Equal(t, cart.ReasonOutOfStock, res.Reason)
	require.Empty(t, f.store.Lines())
}

func TestAddToCartIncrementsUntilStockExhausted(t *testing.T) {
	f := setupTestFixture(t)
	p := f.stock[1] // stock 5

	res := f.store.AddToCart(context.Background(), p)
	require.True(t, res.Success)
	require.Equal(t, "Product added to cart", res.Message)

	for i := 2; i <= 5; i++ {
		res = f.store.AddToCart(context.Background(), p)
		require.True(t, res.Success)
	}
	require.Equal(t, 5, f.store.TotalQuantity())

	res = f.store.AddToCart(context.Background(), p)
	require.False(t, res.Success)
	require.Equal(t, cart.ReasonInsufficientStock, res.Reason)
	require.Equal(t, "Only 5 items available in stock. You already have 5 in cart.", res.Message)
	require.Equal(t, 5, f.store.TotalQuantity())
}

func TestAddToCartKeepsOneLinePerProduct(t *testing.T) {
	f := setupTestFixture(t)

	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[2]).Success)

	lines := f.store.Lines()
	require.Len(t, lines, 2)
	require.Equal(t, int64(1), lines[0].ProductID)
	require.Equal(t, 2, lines[0].Quantity)
	require.Equal(t, int64(2), lines[1].ProductID)
	require.Equal(t, 1, lines[1].Quantity)
}

func TestUpdateQuantityOverStockLeavesCartUnchanged(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[2]).Success)

	res := f.store.UpdateQuantity(context.Background(), 2, 4) // stock is 3
	require.False(t, res.Success)
	require.Equal(t, cart.ReasonInsufficientStock, res.Reason)
	require.Equal(t, "Only 3 items available in stock", res.Message)

	lines := f.store.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 1, lines[0].Quantity)
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)

	res := f.store.UpdateQuantity(context.Background(), 404, 2)
	require.False(t, res.Success)
	require.Equal(t, cart.ReasonUnknownProduct, res.Reason)
	require.Equal(t, "Product not found", res.Message)
}

func TestUpdateQuantityZeroBehavesLikeRemove(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)

	res := f.store.UpdateQuantity(context.Background(), 1, 0)
	require.True(t, res.Success)
	require.Equal(t, "Item removed from cart", res.Message)
	require.Empty(t, f.store.Lines())
}

func TestUpdateQuantityOverwrites(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)

	res := f.store.UpdateQuantity(context.Background(), 1, 4)
	require.True(t, res.Success)
	require.Equal(t, "Quantity updated to 4", res.Message)
	require.Equal(t, 4, f.store.Lines()[0].Quantity)
}

func TestRemoveFromCartIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)

	f.store.RemoveFromCart(context.Background(), 1)
	require.Empty(t, f.store.Lines())

	// Second removal is a no-op, not a failure
	f.store.RemoveFromCart(context.Background(), 1)
	require.Empty(t, f.store.Lines())
}

func TestCartPersistenceRoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[2]).Success)

	// A second store over the same repo sees the persisted lines
	reloaded, err := cart.New(f.repo, f.stock)
	require.NoError(t, err)
	reloaded.Load(context.Background())

	require.Equal(t, f.store.Lines(), reloaded.Lines())
}

func TestLoadMalformedCartFailsClosedToEmpty(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Set(context.Background(), "cart", "{not json"))

	f.store.Load(context.Background())
	require.Empty(t, f.store.Lines())
}

func TestReconcileDropsDeletedProducts(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[2]).Success)

	// Product 2 disappeared upstream
	require.NoError(t, f.store.Reconcile(context.Background(), map[int64]struct{}{1: {}}))

	lines := f.store.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, int64(1), lines[0].ProductID)

	// The prune persists, so a reload agrees
	reloaded, err := cart.New(f.repo, f.stock)
	require.NoError(t, err)
	reloaded.Load(context.Background())
	require.Equal(t, lines, reloaded.Lines())
}

func TestReconcileNeverHealsStockSnapshots(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)
	before := f.store.Lines()[0].StockQuantity

	require.NoError(t, f.store.Reconcile(context.Background(), map[int64]struct{}{1: {}}))
	require.Equal(t, before, f.store.Lines()[0].StockQuantity)
}

func TestClearEmptiesCartAndStorage(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)

	f.store.Clear(context.Background())
	require.Empty(t, f.store.Lines())
	require.Equal(t, "[]", f.repo.Contents()["cart"])
}

func TestAnalyticsNotifiedOnlyOnSuccessfulAdds(t *testing.T) {
	f := setupTestFixture(t)

	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)
	require.False(t, f.store.AddToCart(context.Background(), catalog.Product{ID: 9, ProductAvailable: false}).Success)

	require.Equal(t, []int64{1}, f.notifier.added)
}

func TestTotals(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[1]).Success)
	require.True(t, f.store.AddToCart(context.Background(), f.stock[2]).Success)

	require.Equal(t, 3, f.store.TotalQuantity())
	require.InDelta(t, 79.99*2+129.50, f.store.TotalPrice(), 0.001)
}
