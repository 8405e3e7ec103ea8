// Package tracing is a small span abstraction over OpenTelemetry so session
// code can be traced without importing otel everywhere.
//
// Implementations:
//   - NoopTracer: tests
//   - OTelTracer: production, backed by the global tracer provider
package tracing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span and marks it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashIdentifier shortens a user identifier so traces correlate without
// carrying the raw value.
func HashIdentifier(v string) string {
	if v == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(v))
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanFetchCredential  = "session.fetch_credential"
	SpanOpenProfile      = "session.open_profile"
	SpanOpenFareContract = "session.open_fare_contracts"
	SpanRestore          = "session.restore"
)

// Attribute keys.
const (
	AttrUser       = "user.hash"
	AttrAccount    = "account.hash"
	AttrProvider   = "sign_in_provider"
	AttrResult     = "result"
	AttrGeneration = "generation"
)
