package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, SplitBrokers(""))
	assert.Empty(t, SplitBrokers(" , "))
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig()
	assert.Equal(t, "all", cfg.Acks)
	assert.Positive(t, cfg.Retries)
	assert.NotEmpty(t, cfg.ClientID)
}
