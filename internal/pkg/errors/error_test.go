package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	cause := errors.New("OPENAI_MODEL environment variable is not set")

	err := Wrap(cause, ErrConfigInvalid)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.True(t, Is(err, ErrConfigInvalid))
	assert.Equal(t, cause.Error(), GetDetails(err))

	assert.Nil(t, Wrap(nil, ErrConfigInvalid))
}

func TestWrap_KeepsExistingCode(t *testing.T) {
	inner := New(ErrGenerationTimeout, "deadline")
	outer := fmt.Errorf("calling upstream: %w", inner)

	err := Wrap(outer, ErrInternalServer, "more context")
	assert.Equal(t, ErrGenerationTimeout, err.Code)
	assert.Equal(t, "more context", err.Details)
}

func TestExtractCode(t *testing.T) {
	assert.Equal(t, ErrGenerationFailed, ExtractCode(New(ErrGenerationFailed)))
	assert.Equal(t, ErrInternalServer, ExtractCode(errors.New("plain")))
}

func TestGetCode_Unknown(t *testing.T) {
	assert.Equal(t, ErrInternalServer, GetCode(424242).Code)
	assert.Equal(t, http.StatusBadGateway, GetHTTPStatus(ErrGenerationFailed))
	assert.Equal(t, http.StatusGatewayTimeout, GetHTTPStatus(ErrGenerationTimeout))
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "Service is not configured", FormatError(ErrConfigInvalid))
	assert.Equal(t, "Service is not configured: missing token", FormatError(ErrConfigInvalid, "missing token"))
}
