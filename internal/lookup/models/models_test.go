package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "npi-gateway/pkg/domain-errors"
)

func TestParseNPI(t *testing.T) {
	t.Run("accepts valid identifiers", func(t *testing.T) {
		// Check digits computed per the NPPES enumeration standard.
		for _, raw := range []string{"1234567893", "1111111112"} {
			npi, err := ParseNPI(raw)
			require.NoError(t, err, "NPI %s", raw)
			assert.Equal(t, raw, npi.String())
		}
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		for _, raw := range []string{"", "123", "123456789", "12345678931"} {
			_, err := ParseNPI(raw)
			require.Error(t, err, "input %q", raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("rejects non-digits", func(t *testing.T) {
		for _, raw := range []string{"12345678a3", "123456789x", "abcdefghij", "12345 7893"} {
			_, err := ParseNPI(raw)
			require.Error(t, err, "input %q", raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("rejects bad check digit", func(t *testing.T) {
		_, err := ParseNPI("1234567890")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestNPITruncated(t *testing.T) {
	npi := NPI("1234567893")
	assert.Equal(t, "1234******", npi.Truncated())
}

func TestProviderActive(t *testing.T) {
	assert.True(t, (&Provider{Status: "A"}).Active())
	assert.False(t, (&Provider{Status: "I"}).Active())
	assert.False(t, (&Provider{}).Active())
}
