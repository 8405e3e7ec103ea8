package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "webshop/pkg/domain-errors"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"notblank,max=128"`
}

type phoneRequest struct {
	RecaptchaToken string `json:"recaptchaToken,omitempty" validate:"max=4"`
}

type codeRequest struct {
	VerificationCode string `validate:"len=6,numeric"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     any
		message string
	}{
		{"missing email", loginRequest{Password: "x"}, "email is required"},
		{"bad email", loginRequest{Email: "nope", Password: "x"}, "email must be a valid email"},
		{"blank password", loginRequest{Email: "a@b.no", Password: "  "}, "password must not be blank"},
		{"short code", codeRequest{VerificationCode: "123"}, "verification_code must be 6 characters"},
		{"letters in code", codeRequest{VerificationCode: "12345a"}, "verification_code must contain digits only"},
		{"json name wins", phoneRequest{RecaptchaToken: "too-long"}, "recaptchaToken must be at most 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.EqualError(t, err, tt.message)
		})
	}

	assert.NoError(t, Validate(loginRequest{Email: "a@b.no", Password: "secret"}))
}
