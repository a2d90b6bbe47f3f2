package apierror_test

import (
	"testing"

	"github.com/jrsteele09/go-storefront/api/apierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFromResponseMessages(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		message string
	}{
		{400, `{"message":"missing field"}`, "Bad Request: missing field"},
		{400, ``, "Bad Request: Invalid request data"},
		{401, ``, "Authentication failed. Please login again."},
		{403, ``, "Access denied. You don't have permission for this action."},
		{404, ``, "Not Found: The requested resource was not found"},
		{409, `{"error":"duplicate"}`, "Conflict: duplicate"},
		{422, ``, "Validation Error: Invalid data provided"},
		{429, ``, "Too many requests. Please try again later."},
		{500, `{"message":"boom"}`, "Server Error: boom"},
		{502, ``, "Bad Gateway: Server is temporarily unavailable"},
		{503, ``, "Service Unavailable: Server is temporarily down"},
		{418, ``, "HTTP 418: I'm a teapot"},
	}

	for _, tc := range tests {
		e := apierror.FromResponse(tc.status, []byte(tc.body))
		require.Equal(t, apierror.KindServer, e.Kind)
		require.Equal(t, tc.status, e.Status)
		require.Equal(t, tc.message, e.Message)
	}
}

func TestUnauthorizedPredicate(t *testing.T) {
	require.True(t, apierror.FromResponse(401, nil).Unauthorized())
	require.False(t, apierror.FromResponse(403, nil).Unauthorized())
	require.False(t, apierror.Network(errors.New("refused")).Unauthorized())
}

func TestClassify(t *testing.T) {
	network := apierror.Network(errors.New("connection refused"))
	require.Same(t, network, apierror.Classify(network))

	// Wrapped API errors still classify to themselves
	wrapped := errors.Wrap(network, "[Cache.Refresh] fetcher.Products")
	require.Same(t, network, apierror.Classify(wrapped))

	plain := apierror.Classify(errors.New("nil pointer"))
	require.Equal(t, apierror.KindClient, plain.Kind)
	require.Equal(t, "Error: nil pointer", plain.Message)
}
