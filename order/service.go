package order

import (
	"context"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrEmptyCart is returned by Checkout when there is nothing to order.
var ErrEmptyCart = errors.New("cart is empty")

// Placer is the slice of the API client the service needs.
type Placer interface {
	PlaceOrder(ctx context.Context, req api.OrderRequest) (*api.OrderResponse, error)
	Orders(ctx context.Context) ([]api.OrderResponse, error)
	TrackOrder(ctx context.Context, orderNumber string) (*api.OrderResponse, error)
}

// Contact carries the shipping details collected at checkout.
type Contact struct {
	ShippingAddress string
	PhoneNumber     string
	Notes           string
}

// Service turns the cart into orders. The server is the authority on stock;
// client-side checks before this point are advisory only.
type Service struct {
	client  Placer
	cart    *cart.Store
	catalog *catalog.Cache
	log     zerolog.Logger
}

// Option modifies the Service during construction.
type Option func(*Service)

// WithLogger sets the service's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// New creates a checkout service.
func New(client Placer, cartStore *cart.Store, catalogCache *catalog.Cache, options ...Option) (*Service, error) {
	if client == nil {
		return nil, errors.New("[order.New] API client is required")
	}
	if cartStore == nil {
		return nil, errors.New("[order.New] cart store is required")
	}
	if catalogCache == nil {
		return nil, errors.New("[order.New] catalog cache is required")
	}

	s := &Service{
		client:  client,
		cart:    cartStore,
		catalog: catalogCache,
		log:     zerolog.Nop(),
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// Checkout places an order for the current cart contents. On success the
// cart is cleared and the cached stock for each purchased product patched
// down, without waiting for a full catalog refresh.
func (s *Service) Checkout(ctx context.Context, contact Contact) (*api.OrderResponse, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	req := api.OrderRequest{
		ShippingAddress: contact.ShippingAddress,
		PhoneNumber:     contact.PhoneNumber,
		Notes:           contact.Notes,
		Items:           make([]api.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		req.Items = append(req.Items, api.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
		})
	}

	resp, err := s.client.PlaceOrder(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Checkout] PlaceOrder")
	}

	s.cart.Clear(ctx)
	for _, line := range lines {
		if p, found := s.catalog.Get(line.ProductID); found {
			remaining := p.StockQuantity - line.Quantity
			if remaining < 0 {
				remaining = 0
			}
			s.catalog.UpdateStockQuantity(line.ProductID, remaining)
		}
	}

	s.log.Info().Str("orderNumber", resp.OrderNumber).Float64("total", resp.TotalAmount).Msg("order placed")
	return resp, nil
}

// History fetches the authenticated user's past orders.
func (s *Service) History(ctx context.Context) ([]api.OrderResponse, error) {
	orders, err := s.client.Orders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.History] Orders")
	}
	return orders, nil
}

// Track looks an order up by its public order number.
func (s *Service) Track(ctx context.Context, orderNumber string) (*api.OrderResponse, error) {
	resp, err := s.client.TrackOrder(ctx, orderNumber)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Track] TrackOrder")
	}
	return resp, nil
}
