package producer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"webshop/internal/platform/kafka"
)

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(kafka.ProducerConfig{Brokers: " , "}, nil)
	require.Error(t, err)
}

func TestAcks(t *testing.T) {
	assert.Equal(t, kgo.NoAck(), acks("0"))
	assert.Equal(t, kgo.LeaderAck(), acks("1"))
	assert.Equal(t, kgo.AllISRAcks(), acks("all"))
	assert.Equal(t, kgo.AllISRAcks(), acks(""))
}

func TestProduceAfterCloseFails(t *testing.T) {
	// Client creation does not dial, so an unreachable broker is fine here.
	p, err := New(kafka.ProducerConfig{Brokers: "127.0.0.1:1"}, nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	err = p.Produce(context.Background(), &Message{Topic: "t"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, p.Healthy(context.Background()))
}

func TestNoopProducer(t *testing.T) {
	p := NewNoop()
	assert.NoError(t, p.Produce(context.Background(), &Message{}))
	assert.True(t, p.Healthy(context.Background()))
	assert.NoError(t, p.Close())
}
