package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-storefront/catalog"
)

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the upstream response to a successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// SignupRequest is the account registration body.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OrderItem is one product line in an order request.
type OrderItem struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderRequest is the checkout request body.
type OrderRequest struct {
	ShippingAddress    string      `json:"shippingAddress"`
	PhoneNumber        string      `json:"phoneNumber"`
	Notes              string      `json:"notes,omitempty"`
	Items              []OrderItem `json:"items"`
	GuestCustomerName  string      `json:"guestCustomerName,omitempty"`
	GuestCustomerEmail string      `json:"guestCustomerEmail,omitempty"`
	PaymentID          string      `json:"paymentId,omitempty"`
	PaymentStatus      string      `json:"paymentStatus,omitempty"`
	PaymentMethod      string      `json:"paymentMethod,omitempty"`
}

// OrderItemDetail is one product line in an order response.
type OrderItemDetail struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// OrderResponse describes a placed order.
type OrderResponse struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"orderNumber"`
	TotalAmount     float64           `json:"totalAmount"`
	Status          string            `json:"status"`
	OrderDate       string            `json:"orderDate,omitempty"`
	DeliveryDate    string            `json:"deliveryDate,omitempty"`
	ShippingAddress string            `json:"shippingAddress,omitempty"`
	PhoneNumber     string            `json:"phoneNumber,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Items           []OrderItemDetail `json:"items,omitempty"`
}

// visitPayload / activityPayload match the analytics endpoints' bodies.
type visitPayload struct {
	PageURL  string `json:"pageUrl"`
	Referrer string `json:"referrer"`
}

type activityPayload struct {
	ActivityType   string `json:"activityType"`
	AdditionalData string `json:"additionalData"`
}

// LoginCustomer authenticates against the customer login endpoint.
func (c *Client) LoginCustomer(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	return c.login(ctx, "/auth/customer/login", creds)
}

// LoginAdmin authenticates against the admin login endpoint.
func (c *Client) LoginAdmin(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	return c.login(ctx, "/auth/admin/login", creds)
}

func (c *Client) login(ctx context.Context, path string, creds Credentials) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, path, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignupCustomer registers a new customer account.
func (c *Client) SignupCustomer(ctx context.Context, req SignupRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/customer/signup", req, nil)
}

// Products fetches the full product catalog.
func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, productID int64) (*catalog.Product, error) {
	var out catalog.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/product/%d", productID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchProducts searches the catalog by keyword.
func (c *Client) SearchProducts(ctx context.Context, keyword string) ([]catalog.Product, error) {
	var out []catalog.Product
	path := "/products/search?keyword=" + url.QueryEscape(keyword)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductImage fetches the raw image bytes for a product.
func (c *Client) ProductImage(ctx context.Context, productID int64) ([]byte, error) {
	return c.getRaw(ctx, fmt.Sprintf("/product/%d/image", productID))
}

// PlaceOrder submits an order.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	var out OrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders fetches the authenticated user's order history.
func (c *Client) Orders(ctx context.Context) ([]OrderResponse, error) {
	var out []OrderResponse
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Order fetches a single order by ID.
func (c *Client) Order(ctx context.Context, orderID int64) (*OrderResponse, error) {
	var out OrderResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackOrder looks an order up by its public order number.
func (c *Client) TrackOrder(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	var out OrderResponse
	path := "/orders/track/" + url.PathEscape(orderNumber)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackVisit reports a page visit to the analytics endpoint.
func (c *Client) TrackVisit(ctx context.Context, pageURL, referrer string) error {
	return c.do(ctx, http.MethodPost, "/analytics/track-visit", visitPayload{PageURL: pageURL, Referrer: referrer}, nil)
}

// TrackActivity reports a customer activity to the analytics endpoint.
func (c *Client) TrackActivity(ctx context.Context, activityType, additionalData string) error {
	return c.do(ctx, http.MethodPost, "/analytics/track-activity", activityPayload{ActivityType: activityType, AdditionalData: additionalData}, nil)
}
