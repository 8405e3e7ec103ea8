package tracing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"webshop/internal/platform/tracing"
)

func TestNoopTracerReturnsContextUnchanged(t *testing.T) {
	ctx := context.Background()
	newCtx, span := tracing.NewNoop().Start(ctx, tracing.SpanFetchCredential,
		tracing.String(tracing.AttrUser, "u"),
		tracing.Bool("flag", true),
	)
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracing.Int64(tracing.AttrGeneration, 3))
	span.AddEvent("event")
	span.End(errors.New("boom"))
}

func TestOTelTracerWithInjectedTracer(t *testing.T) {
	tr := tracing.NewOTel(tracing.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))
	_, span := tr.Start(context.Background(), tracing.SpanOpenProfile, tracing.String(tracing.AttrAccount, "a"))
	require.NotNil(t, span)
	span.SetAttributes(tracing.Bool("x", true))
	span.End(nil)
}

func TestHashIdentifier(t *testing.T) {
	assert.Empty(t, tracing.HashIdentifier(""))
	h := tracing.HashIdentifier("account-1")
	assert.Len(t, h, 16)
	assert.Equal(t, h, tracing.HashIdentifier("account-1"))
	assert.NotEqual(t, h, tracing.HashIdentifier("account-2"))
}
