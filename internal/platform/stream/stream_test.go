package stream

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_PublishCoalesces(t *testing.T) {
	s := New[int](nil)

	require.True(t, s.Publish(1))
	require.True(t, s.Publish(2))
	require.True(t, s.Publish(3))

	ev := <-s.Events()
	assert.Equal(t, 3, ev.Value)
	select {
	case extra := <-s.Events():
		t.Fatalf("unexpected extra event %v", extra)
	default:
	}
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	var stops atomic.Int32
	s := New[string](func() { stops.Add(1) })

	s.Close()
	s.Close()

	assert.Equal(t, int32(1), stops.Load())
	assert.True(t, s.Closed())
	assert.False(t, s.Publish("late"))
	assert.False(t, s.Fail(errors.New("late")))
}

func TestStream_Forward(t *testing.T) {
	t.Run("delivers until an error event", func(t *testing.T) {
		s := New[int](nil)
		got := make(chan Event[int], 4)
		s.Forward(func(ev Event[int]) { got <- ev })

		s.Publish(7)
		first := <-got
		assert.Equal(t, 7, first.Value)

		boom := errors.New("boom")
		s.Fail(boom)
		second := <-got
		assert.ErrorIs(t, second.Err, boom)

		s.Publish(8)
		select {
		case ev := <-got:
			t.Fatalf("delivery after terminal error: %v", ev)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("stops after close", func(t *testing.T) {
		s := New[int](nil)
		got := make(chan Event[int], 4)
		s.Forward(func(ev Event[int]) { got <- ev })

		s.Close()
		s.Publish(1)
		select {
		case ev := <-got:
			t.Fatalf("delivery after close: %v", ev)
		case <-time.After(50 * time.Millisecond):
		}
	})
}
