package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeDependency, cause, "redis unavailable")

	assert.Equal(t, CodeDependency, err.Code())
	assert.ErrorIs(t, err, cause)
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	inner := New(CodeNotFound, "product not found")
	outer := fmt.Errorf("loading cart line: %w", inner)

	found := As(outer)
	require.NotNil(t, found)
	assert.Equal(t, CodeNotFound, found.Code())
}

func TestAsReturnsNilForPlainError(t *testing.T) {
	assert.Nil(t, As(errors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestWithDetailsAttachesPayload(t *testing.T) {
	err := New(CodeValidation, "invalid payload").
		WithDetails(map[string]string{"email": "must be a valid email"})

	require.NotNil(t, err.Details())
	assert.Equal(t, CodeValidation, err.Code())
}

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodePaymentConfig, http.StatusBadGateway},
		{CodePayment, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		assert.Equal(t, tc.status, meta.HTTPStatus, "code %s", tc.code)
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("nonsense"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestChainListsMessagesOutermostFirst(t *testing.T) {
	cause := errors.New("socket closed")
	mid := Wrap(CodeDependency, cause, "gateway call failed")
	outer := fmt.Errorf("dispatching payment: %w", mid)

	chain := Chain(outer)
	require.Len(t, chain, 3)
	assert.Equal(t, "dispatching payment: DEPENDENCY_ERROR: gateway call failed", chain[0])
	assert.Equal(t, "socket closed", chain[2])
}
