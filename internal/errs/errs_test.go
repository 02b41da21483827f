package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    *HTTPError
		status int
		code   string
	}{
		{NewBadRequestError("bad", nil), http.StatusBadRequest, "BAD_REQUEST"},
		{NewUnauthorizedError("who"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{NewForbiddenError("no"), http.StatusForbidden, "FORBIDDEN"},
		{NewNotFoundError("gone"), http.StatusNotFound, "NOT_FOUND"},
		{NewConflictError("dup"), http.StatusConflict, "CONFLICT"},
		{NewTooManyRequestsError("slow"), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{NewServiceUnavailableError("down"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, c := range cases {
		require.Equal(t, c.status, c.err.Status)
		require.Equal(t, c.code, c.err.Code)
	}
}

func TestHTTPErrorAs(t *testing.T) {
	notFound := NewNotFoundError("product not found")
	wrapped := fmt.Errorf("handler: %w", notFound)

	require.True(t, errors.Is(wrapped, notFound))
	require.False(t, errors.Is(wrapped, NewNotFoundError("product not found")))

	var httpErr *HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	require.Equal(t, "product not found", httpErr.Error())

	copied := httpErr.WithMessage("order not found")
	require.Equal(t, http.StatusNotFound, copied.Status)
	require.Equal(t, "product not found", httpErr.Message)
}
