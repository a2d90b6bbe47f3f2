package order_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/api/apierror"
	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/order"
	"github.com/jrsteele09/go-storefront/storage/repofakes"
	"github.com/stretchr/testify/require"
)

// fakePlacer records requests and serves canned responses.
type fakePlacer struct {
	placed   []api.OrderRequest
	placeErr error
	response api.OrderResponse
	orders   []api.OrderResponse
}

func (f *fakePlacer) PlaceOrder(ctx context.Context, req api.OrderRequest) (*api.OrderResponse, error) {
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	f.placed = append(f.placed, req)
	resp := f.response
	return &resp, nil
}

func (f *fakePlacer) Orders(ctx context.Context) ([]api.OrderResponse, error) {
	return f.orders, nil
}

func (f *fakePlacer) TrackOrder(ctx context.Context, orderNumber string) (*api.OrderResponse, error) {
	for i := range f.orders {
		if f.orders[i].OrderNumber == orderNumber {
			return &f.orders[i], nil
		}
	}
	return nil, apierror.FromResponse(404, nil)
}

type stubFetcher []catalog.Product

func (f stubFetcher) Products(ctx context.Context) ([]catalog.Product, error) {
	return f, nil
}

type testFixture struct {
	placer  *fakePlacer
	cart    *cart.Store
	catalog *catalog.Cache
	service *order.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	ctx := context.Background()

	cache, err := catalog.New(stubFetcher{
		{ID: 1, Name: "Headphones", Price: 79.99, StockQuantity: 5, ProductAvailable: true},
		{ID: 2, Name: "Keyboard", Price: 129.50, StockQuantity: 3, ProductAvailable: true},
	})
	require.NoError(t, err)
	require.NoError(t, cache.Refresh(ctx))

	cartStore, err := cart.New(repofakes.NewFakeRepo(), cache)
	require.NoError(t, err)

	placer := &fakePlacer{response: api.OrderResponse{OrderNumber: "ORD-1", Status: "PENDING", TotalAmount: 289.48}}
	service, err := order.New(placer, cartStore, cache)
	require.NoError(t, err)

	return &testFixture{placer: placer, cart: cartStore, catalog: cache, service: service}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Checkout(context.Background(), order.Contact{})
	require.ErrorIs(t, err, order.ErrEmptyCart)
}

func TestCheckoutPlacesOrderClearsCartAndPatchesStock(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	p1, _ := f.catalog.Get(1)
	p2, _ := f.catalog.Get(2)
	require.True(t, f.cart.AddToCart(ctx, p1).Success)
	require.True(t, f.cart.AddToCart(ctx, p1).Success)
	require.True(t, f.cart.AddToCart(ctx, p2).Success)

	resp, err := f.service.Checkout(ctx, order.Contact{ShippingAddress: "1 Main St", PhoneNumber: "555-0100"})
	require.NoError(t, err)
	require.Equal(t, "ORD-1", resp.OrderNumber)

	require.Len(t, f.placer.placed, 1)
	req := f.placer.placed[0]
	require.Equal(t, "1 Main St", req.ShippingAddress)
	require.Equal(t, []api.OrderItem{
		{ProductID: 1, Quantity: 2, UnitPrice: 79.99},
		{ProductID: 2, Quantity: 1, UnitPrice: 129.50},
	}, req.Items)

	require.Empty(t, f.cart.Lines())

	patched1, _ := f.catalog.Get(1)
	require.Equal(t, 3, patched1.StockQuantity)
	patched2, _ := f.catalog.Get(2)
	require.Equal(t, 2, patched2.StockQuantity)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	p1, _ := f.catalog.Get(1)
	require.True(t, f.cart.AddToCart(ctx, p1).Success)

	f.placer.placeErr = apierror.FromResponse(409, []byte(`{"message":"insufficient stock"}`))
	_, err := f.service.Checkout(ctx, order.Contact{})
	require.Error(t, err)

	require.Len(t, f.cart.Lines(), 1)
	unchanged, _ := f.catalog.Get(1)
	require.Equal(t, 5, unchanged.StockQuantity)
}

func TestHistoryAndTrack(t *testing.T) {
	f := setupTestFixture(t)
	f.placer.orders = []api.OrderResponse{
		{OrderNumber: "ORD-1", Status: "DELIVERED"},
		{OrderNumber: "ORD-2", Status: "SHIPPED"},
	}

	history, err := f.service.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)

	tracked, err := f.service.Track(context.Background(), "ORD-2")
	require.NoError(t, err)
	require.Equal(t, "SHIPPED", tracked.Status)

	_, err = f.service.Track(context.Background(), "ORD-404")
	require.Error(t, err)
	require.True(t, apierror.Classify(err).NotFound())
}
