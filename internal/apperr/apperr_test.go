package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("BAD_INPUT", "bad"), http.StatusBadRequest},
		{NotFound("NO_ORDER", "missing"), http.StatusNotFound},
		{Conflict("INSUFFICIENT_STOCK", "too few"), http.StatusConflict},
		{Upstream("GATEWAY", "down", errors.New("timeout")), http.StatusBadGateway},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.err.HTTPStatus(), c.err.Code)
	}
}

func TestFrom(t *testing.T) {
	ve := Validation("X", "y")
	assert.Same(t, ve, From(ve))
	assert.Same(t, ve, From(fmt.Errorf("wrapped: %w", ve)))

	plain := From(errors.New("db down"))
	assert.Equal(t, KindInternal, plain.Kind)
	assert.ErrorContains(t, plain, "db down")
}
