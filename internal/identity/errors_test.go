package identity

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromREST(t *testing.T) {
	err := fromREST(http.StatusBadRequest, "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled")
	assert.Equal(t, CodeTooManyRequests, err.Code)
	assert.Equal(t, "Access to this account has been temporarily disabled", err.Detail)
	assert.Equal(t, MessageTooManyRequests, err.Message())

	unknown := fromREST(http.StatusBadRequest, "SOMETHING_NEW")
	assert.Equal(t, CodeInternal, unknown.Code)
	assert.Equal(t, MessageGeneric, unknown.Message())
}

func TestErrorInfo(t *testing.T) {
	wrapped := fmt.Errorf("sign in: %w", &ProviderError{Code: CodeWrongPassword})
	code, msg := ErrorInfo(wrapped)
	assert.Equal(t, CodeWrongPassword, code)
	assert.Equal(t, "E-post og passord stemmer ikke.", msg)

	code, msg = ErrorInfo(errors.New("boom"))
	assert.Equal(t, CodeInternal, code)
	assert.Equal(t, "Det oppstod en feil med tjenesten.", msg)
}

func TestIsSessionInvalid(t *testing.T) {
	assert.True(t, IsSessionInvalid(&ProviderError{Code: CodeInvalidRefreshToken}))
	assert.True(t, IsSessionInvalid(fmt.Errorf("fetch: %w", ErrNoCurrentUser)))
	assert.False(t, IsSessionInvalid(&ProviderError{Code: CodeNetwork}))
	assert.False(t, IsSessionInvalid(errors.New("timeout")))
}

func TestProviderErrorIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &ProviderError{Code: CodeEmailExists, Detail: "x"})
	assert.ErrorIs(t, err, &ProviderError{Code: CodeEmailExists})
	assert.NotErrorIs(t, err, &ProviderError{Code: CodeWeakPassword})
}
