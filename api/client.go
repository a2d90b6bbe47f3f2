package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-storefront/api/apierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	apiBasePath    = "/api"
	defaultTimeout = 15 * time.Second
)

// TokenSource supplies the bearer token for outgoing requests. An empty token
// means the request goes out unauthenticated. The session store implements
// this; injecting it here replaces the mutated global default header the
// browser app relied on.
type TokenSource interface {
	Token() string
}

// UnauthorizedHook is invoked once per 401 response, before the error is
// returned to the caller. The application installs a hook that invalidates
// the local session.
type UnauthorizedHook func()

// Client talks to the remote storefront service. All endpoints live under the
// /api base path, carry Content-Type: application/json and, when the token
// source yields one, an Authorization: Bearer header.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedHook
	log            zerolog.Logger
}

// Option modifies the Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenSource sets the source of the bearer token.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithUnauthorizedHook registers the handler for 401 responses.
func WithUnauthorizedHook(hook UnauthorizedHook) Option {
	return func(c *Client) {
		c.onUnauthorized = hook
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the service at baseURL (scheme://host[:port],
// without the /api suffix).
func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        zerolog.Nop(),
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// SetUnauthorizedHook installs the 401 handler after construction. The
// session store and the client reference each other, so one side has to be
// wired late.
func (c *Client) SetUnauthorizedHook(hook UnauthorizedHook) {
	c.onUnauthorized = hook
}

// do issues a JSON request and decodes the response into out (when non-nil).
// Every returned error is an *apierror.Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apierror.Client(errors.Wrap(err, "[Client.do] json.Marshal"))
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiBasePath+path, reqBody)
	if err != nil {
		return apierror.Client(errors.Wrap(err, "[Client.do] http.NewRequestWithContext"))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return apierror.Network(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierror.Client(errors.Wrap(err, "[Client.do] io.ReadAll"))
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("server error response")
		return apierror.FromResponse(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return apierror.Client(errors.Wrap(err, "[Client.do] json.Unmarshal"))
		}
	}
	return nil
}

// get issues a raw GET and returns the response bytes (used for images).
func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiBasePath+path, nil)
	if err != nil {
		return nil, apierror.Client(errors.Wrap(err, "[Client.getRaw] http.NewRequestWithContext"))
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierror.Network(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierror.Client(errors.Wrap(err, "[Client.getRaw] io.ReadAll"))
	}
	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierror.FromResponse(resp.StatusCode, raw)
	}
	return raw, nil
}
