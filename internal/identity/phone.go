package identity

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers entered without a country code.
const DefaultRegion = "NO"

// NormalizePhone parses a customer-entered phone number and returns it in
// E.164 form.
func NormalizePhone(raw, region string) (string, error) {
	if region == "" {
		region = DefaultRegion
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ProviderError{Code: CodeInvalidPhone, Detail: "empty phone number"}
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", &ProviderError{Code: CodeInvalidPhone, Detail: err.Error()}
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", &ProviderError{Code: CodeInvalidPhone, Detail: "not a valid number"}
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
