package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/internal/platform/kafka/producer"
)

func TestPublisherStampsEvents(t *testing.T) {
	store := NewInMemoryStore()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := NewPublisher(store, WithPublisherClock(func() time.Time { return fixed }))

	require.NoError(t, p.Emit(context.Background(), Event{InstallID: "i-1", Action: string(EventSignedIn)}))

	events, err := store.ListByInstall(context.Background(), "i-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.NotEmpty(t, events[0].ID)
}

func TestAsyncPublisherDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(8))
	for range 3 {
		require.NoError(t, p.Emit(context.Background(), Event{InstallID: "i-1", Action: string(EventSignedOut)}))
	}
	p.Close()

	events, err := store.ListByInstall(context.Background(), "i-1")
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestPublisherRejectsEmitAfterClose(t *testing.T) {
	p := NewPublisher(NewInMemoryStore(), WithAsyncBuffer(1))
	p.Close()
	p.Close()

	err := p.Emit(context.Background(), Event{InstallID: "i-1"})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

type blockingStore struct {
	release chan struct{}
	entered chan struct{}
}

func (s *blockingStore) Append(context.Context, Event) error {
	s.entered <- struct{}{}
	<-s.release
	return nil
}

func TestAsyncPublisherCountsOverflow(t *testing.T) {
	store := &blockingStore{release: make(chan struct{}), entered: make(chan struct{}, 8)}
	p := NewPublisher(store, WithAsyncBuffer(1))

	// The first event occupies the drain goroutine, the second fills the queue.
	require.NoError(t, p.Emit(context.Background(), Event{InstallID: "i-1"}))
	<-store.entered
	require.NoError(t, p.Emit(context.Background(), Event{InstallID: "i-1"}))
	require.NoError(t, p.Emit(context.Background(), Event{InstallID: "i-1"}))
	assert.Equal(t, int64(1), p.Dropped())

	close(store.release)
	p.Close()
}

type recordingProducer struct {
	msgs []*producer.Message
	err  error
}

func (r *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestKafkaStoreKeysByInstall(t *testing.T) {
	prod := &recordingProducer{}
	store := NewKafkaStore(prod, "webshop.session-events")

	require.NoError(t, store.Append(context.Background(), Event{
		ID:        "e-1",
		InstallID: "i-1",
		AccountID: "42",
		Action:    string(EventForcedLogout),
	}))

	require.Len(t, prod.msgs, 1)
	msg := prod.msgs[0]
	assert.Equal(t, "webshop.session-events", msg.Topic)
	assert.Equal(t, []byte("i-1"), msg.Key)
	assert.Equal(t, "forced_logout", msg.Headers["event_type"])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "42", decoded.AccountID)
}

func TestKafkaStorePropagatesProduceError(t *testing.T) {
	store := NewKafkaStore(&recordingProducer{err: errors.New("broker down")}, "t")
	assert.Error(t, store.Append(context.Background(), Event{InstallID: "i"}))
}
