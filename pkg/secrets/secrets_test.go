package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "webshop/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

func TestSealRoundTrip(t *testing.T) {
	s, err := NewSealer("local-secret")
	require.NoError(t, err)

	sealed, err := s.Seal("refresh-token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "refresh-token")

	again, err := s.Seal("refresh-token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "refresh-token", plain)
}

func TestSealEmpty(t *testing.T) {
	s, err := NewSealer("local-secret")
	require.NoError(t, err)

	sealed, err := s.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	plain, err := s.Open("")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestOpenRejectsForeignOrTamperedValues(t *testing.T) {
	s, err := NewSealer("local-secret")
	require.NoError(t, err)
	other, err := NewSealer("other-secret")
	require.NoError(t, err)

	sealed, err := other.Seal("refresh-token")
	require.NoError(t, err)
	_, err = s.Open(sealed)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.Open("%%%")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.Open("AAAA")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestNewSealerRequiresSecret(t *testing.T) {
	_, err := NewSealer("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
