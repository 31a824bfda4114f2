package errorbank_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/dinehall/dinehall/pkg/errorbank"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *errorbank.AppError
		status int
		code   codes.Code
	}{
		{errorbank.BadRequest("bad"), http.StatusBadRequest, codes.InvalidArgument},
		{errorbank.NotFound("missing"), http.StatusNotFound, codes.NotFound},
		{errorbank.Conflict("clash"), http.StatusConflict, codes.AlreadyExists},
		{errorbank.Unprocessable("nope"), http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{errorbank.Internal("boom"), http.StatusInternalServerError, codes.Internal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Message())
		assert.Equal(t, tc.code, tc.err.GRPCCode(), tc.err.Message())
	}
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := errorbank.Internal("failed to close session", errorbank.WithCause(cause))

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to close session: connection reset", err.Error())
	assert.Equal(t, "failed to close session", err.Message())
}

func TestWithDetail(t *testing.T) {
	err := errorbank.BadRequest("invalid payload",
		errorbank.WithDetail("field", "quantity"),
		errorbank.WithDetail("min", 1),
	)

	details := err.Details()
	require.Len(t, details, 2)
	assert.Equal(t, "quantity", details["field"])
}

func TestFrom(t *testing.T) {
	appErr := errorbank.Conflict("session already closed")

	assert.Same(t, appErr, errorbank.From(appErr))

	wrapped := fmt.Errorf("close: %w", appErr)
	assert.Same(t, appErr, errorbank.From(wrapped))

	plain := errorbank.From(errors.New("disk full"))
	assert.Equal(t, errorbank.KindInternal, plain.Kind())
	assert.Equal(t, "internal error", plain.Message())

	assert.Nil(t, errorbank.From(nil))
}

func TestIsKind(t *testing.T) {
	err := errorbank.NotFound("product not found")

	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
	assert.False(t, errorbank.IsKind(err, errorbank.KindConflict))
	assert.True(t, errorbank.IsKind(fmt.Errorf("lookup: %w", err), errorbank.KindNotFound))
	assert.False(t, errorbank.IsKind(errors.New("plain"), errorbank.KindInternal))
	assert.False(t, errorbank.IsKind(nil, errorbank.KindInternal))
}
