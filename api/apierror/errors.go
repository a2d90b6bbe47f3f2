package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind categorises a failed API call.
type Kind string

const (
	// KindNetwork means no response was received (connectivity failure)
	KindNetwork Kind = "network"
	// KindServer means a non-2xx response, subdivided by Status
	KindServer Kind = "server"
	// KindClient means an unexpected local failure (marshal, decode, ...)
	KindClient Kind = "client"
)

// Error is the classified form of any failure returned by the API client.
// Message is safe to surface directly to the user; Detail carries whatever
// the server included in the response body.
type Error struct {
	Kind    Kind
	Status  int // HTTP status for KindServer, zero otherwise
	Message string
	Detail  string
}

func (e *Error) Error() string {
	return e.Message
}

// Unauthorized reports whether the error is a 401 (session invalid/expired).
func (e *Error) Unauthorized() bool {
	return e.Kind == KindServer && e.Status == http.StatusUnauthorized
}

// NotFound reports whether the error is a 404.
func (e *Error) NotFound() bool {
	return e.Kind == KindServer && e.Status == http.StatusNotFound
}

// serverMessage is the shape the upstream service uses for error bodies.
type serverMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FromResponse builds an Error from a non-2xx response.
func FromResponse(status int, body []byte) *Error {
	var sm serverMessage
	_ = json.Unmarshal(body, &sm)
	detail := sm.Message
	if detail == "" {
		detail = sm.Error
	}

	e := &Error{Kind: KindServer, Status: status, Detail: detail}
	switch status {
	case http.StatusBadRequest:
		e.Message = fmt.Sprintf("Bad Request: %s", orDefault(detail, "Invalid request data"))
	case http.StatusUnauthorized:
		e.Message = "Authentication failed. Please login again."
	case http.StatusForbidden:
		e.Message = "Access denied. You don't have permission for this action."
	case http.StatusNotFound:
		e.Message = fmt.Sprintf("Not Found: %s", orDefault(detail, "The requested resource was not found"))
	case http.StatusConflict:
		e.Message = fmt.Sprintf("Conflict: %s", orDefault(detail, "Resource conflict occurred"))
	case http.StatusUnprocessableEntity:
		e.Message = fmt.Sprintf("Validation Error: %s", orDefault(detail, "Invalid data provided"))
	case http.StatusTooManyRequests:
		e.Message = "Too many requests. Please try again later."
	case http.StatusInternalServerError:
		e.Message = fmt.Sprintf("Server Error: %s", orDefault(detail, "Internal server error occurred"))
	case http.StatusBadGateway:
		e.Message = "Bad Gateway: Server is temporarily unavailable"
	case http.StatusServiceUnavailable:
		e.Message = "Service Unavailable: Server is temporarily down"
	default:
		e.Message = fmt.Sprintf("HTTP %d: %s", status, orDefault(detail, http.StatusText(status)))
	}
	return e
}

// Network wraps a transport failure (no response received).
func Network(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "Network error: Unable to connect to server. Please check your internet connection.",
		Detail:  err.Error(),
	}
}

// Client wraps an unexpected local failure.
func Client(err error) *Error {
	return &Error{
		Kind:    KindClient,
		Message: fmt.Sprintf("Error: %s", err.Error()),
		Detail:  err.Error(),
	}
}

// Classify returns the *Error inside err, or wraps err as a client failure.
func Classify(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Client(err)
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
