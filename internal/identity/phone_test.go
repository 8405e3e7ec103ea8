package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "national mobile", raw: "91234567", want: "+4791234567"},
		{name: "spaced national", raw: "912 34 567", want: "+4791234567"},
		{name: "international", raw: "+47 91234567", want: "+4791234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhoneRejectsInvalidNumbers(t *testing.T) {
	for _, raw := range []string{"", "12", "abc", "+47 123"} {
		_, err := NormalizePhone(raw, "")
		require.Error(t, err, raw)

		code, msg := ErrorInfo(err)
		assert.Equal(t, CodeInvalidPhone, code)
		assert.Equal(t, "Telefonnummeret må bestå av 8 siffer", msg)
	}
}
