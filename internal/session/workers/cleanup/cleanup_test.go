package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/internal/session/store"
	"webshop/pkg/domain"
)

type failingStore struct{}

func (failingStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, errors.New("backend down")
}

func TestCleanupService_RunOnce(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start

	states := store.NewInMemory(
		store.WithTTL(time.Hour),
		store.WithNow(func() time.Time { return now }),
	)
	require.NoError(t, states.SetLoggedIn(ctx, domain.NewInstallID(), true))
	now = start.Add(90 * time.Minute)
	require.NoError(t, states.SetLoggedIn(ctx, domain.NewInstallID(), true))

	svc, err := New(states, WithCleanupClock(func() time.Time { return now }))
	require.NoError(t, err)

	res, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.DeletedInstallations)
	assert.Equal(t, 1, states.Len())
}

func TestCleanupService_RunOnceError(t *testing.T) {
	svc, err := New(failingStore{})
	require.NoError(t, err)

	_, err = svc.RunOnce(context.Background())
	require.ErrorContains(t, err, "backend down")
}

func TestCleanupService_StartStopsOnCancel(t *testing.T) {
	svc, err := New(store.NewInMemory(), WithCleanupInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Start(ctx), context.DeadlineExceeded)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
