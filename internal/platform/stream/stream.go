// Package stream models a live subscription as a cancellable sequence of
// full snapshots.
//
// Snapshots replace each other, so a slow consumer only ever sees the most
// recent one: publishing into a full buffer evicts the pending value. An
// error event terminates the stream for the consumer.
package stream

import "sync"

// Event carries either a snapshot or a terminal error.
type Event[T any] struct {
	Value T
	Err   error
}

// Stream is one live subscription handle.
type Stream[T any] struct {
	events chan Event[T]
	done   chan struct{}
	once   sync.Once
	mu     sync.Mutex
	onStop func()
}

// New creates an open stream. onStop runs once, synchronously, on Close;
// producers use it to deregister.
func New[T any](onStop func()) *Stream[T] {
	return &Stream[T]{
		events: make(chan Event[T], 1),
		done:   make(chan struct{}),
		onStop: onStop,
	}
}

// Publish offers a snapshot, replacing any undelivered one. Returns false
// once the stream is closed.
func (s *Stream[T]) Publish(v T) bool {
	return s.offer(Event[T]{Value: v})
}

// Fail delivers a terminal error, replacing any undelivered snapshot.
func (s *Stream[T]) Fail(err error) bool {
	return s.offer(Event[T]{Err: err})
}

func (s *Stream[T]) offer(ev Event[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Closed() {
		return false
	}
	for {
		select {
		case s.events <- ev:
			return true
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

// Events yields published events.
func (s *Stream[T]) Events() <-chan Event[T] { return s.events }

// Done is closed by Close.
func (s *Stream[T]) Done() <-chan struct{} { return s.done }

// Closed reports whether Close has been called.
func (s *Stream[T]) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close cancels the subscription. Synchronous and idempotent.
func (s *Stream[T]) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		close(s.done)
		s.mu.Unlock()
		if s.onStop != nil {
			s.onStop()
		}
	})
}

// Forward consumes the stream on a new goroutine, calling fn for each event
// until the stream is closed or an error event has been handled. Events that
// race with Close are dropped.
func (s *Stream[T]) Forward(fn func(Event[T])) {
	go func() {
		for {
			select {
			case <-s.done:
				return
			case ev := <-s.events:
				if s.Closed() {
					return
				}
				fn(ev)
				if ev.Err != nil {
					return
				}
			}
		}
	}()
}
