package httputil

import (
	"encoding/json"
	"errors"

	dErrors "webshop/pkg/domain-errors"
)

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that support normalization.
type Normalizable interface {
	Normalize()
}

// Sanitizable is implemented by request types that support sanitization.
type Sanitizable interface {
	Sanitize()
}

// PrepareRequest sanitizes, normalizes, and validates a request.
func PrepareRequest(req any) error {
	if s, ok := req.(Sanitizable); ok {
		s.Sanitize()
	}
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeAndPrepare decodes a JSON payload into T and runs PrepareRequest on
// it. An empty payload decodes to the zero value. Failures are domain errors:
// bad_request for malformed JSON, validation_failed (or the code Validate
// chose) for rejected content.
//
// Usage:
//
//	req, err := httputil.DecodeAndPrepare[models.PhoneLoginRequest](msg.Payload)
//	if err != nil {
//	    return err
//	}
func DecodeAndPrepare[T any](payload json.RawMessage) (*T, error) {
	var req T
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
		}
	}
	if err := PrepareRequest(&req); err != nil {
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return &req, nil
}
