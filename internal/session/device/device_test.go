package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		assertion func(t *testing.T, info Info)
	}{
		{
			name:      "empty user agent returns unknown device",
			userAgent: "",
			assertion: func(t *testing.T, info Info) {
				assert.Equal(t, "Unknown Device", info.Name)
				assert.Equal(t, "desktop", info.Kind())
			},
		},
		{
			name:      "chrome on desktop",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			assertion: func(t *testing.T, info Info) {
				assert.Contains(t, info.Name, "Chrome")
				assert.Contains(t, info.Name, " on ")
				assert.Equal(t, "120", info.Major)
				assert.False(t, info.Mobile)
			},
		},
		{
			name:      "safari on iphone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			assertion: func(t *testing.T, info Info) {
				assert.Contains(t, info.Name, "iPhone")
				assert.Equal(t, "mobile", info.Kind())
			},
		},
		{
			name:      "firefox on linux",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			assertion: func(t *testing.T, info Info) {
				assert.Contains(t, info.Name, "Firefox")
				assert.Equal(t, "121", info.Major)
			},
		},
		{
			name:      "unknown user agent still formats a name",
			userAgent: "Unknown/1.0",
			assertion: func(t *testing.T, info Info) {
				assert.Contains(t, info.Name, " on ")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Describe(tt.userAgent)
			tt.assertion(t, info)
			assert.Equal(t, info.Name, strings.TrimSpace(info.Name))
		})
	}
}
