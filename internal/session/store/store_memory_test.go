package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"webshop/pkg/domain"
	"webshop/pkg/secrets"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	sealer, err := secrets.NewSealer("test-secret")
	s.Require().NoError(err)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemory(
		WithTTL(24*time.Hour),
		WithSealer(sealer),
		WithNow(func() time.Time { return s.now }),
	)
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestLoggedInMarker() {
	id := domain.NewInstallID()

	loggedIn, err := s.store.LoggedIn(s.ctx, id)
	s.Require().NoError(err)
	s.False(loggedIn)

	s.Require().NoError(s.store.SetLoggedIn(s.ctx, id, true))
	loggedIn, err = s.store.LoggedIn(s.ctx, id)
	s.Require().NoError(err)
	s.True(loggedIn)

	s.Require().NoError(s.store.SetLoggedIn(s.ctx, id, false))
	loggedIn, err = s.store.LoggedIn(s.ctx, id)
	s.Require().NoError(err)
	s.False(loggedIn)
}

func (s *InMemoryStoreSuite) TestRefreshTokenIsSealed() {
	id := domain.NewInstallID()
	s.Require().NoError(s.store.SaveRefreshToken(s.ctx, id, "refresh-1"))

	s.NotEqual("refresh-1", s.store.states[id].RefreshToken)

	token, err := s.store.RefreshToken(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("refresh-1", token)

	s.Require().NoError(s.store.ClearRefreshToken(s.ctx, id))
	token, err = s.store.RefreshToken(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(token)
}

func (s *InMemoryStoreSuite) TestDeleteExpired() {
	stale, fresh := domain.NewInstallID(), domain.NewInstallID()
	s.Require().NoError(s.store.SetLoggedIn(s.ctx, stale, true))
	s.now = s.now.Add(20 * time.Hour)
	s.Require().NoError(s.store.SetLoggedIn(s.ctx, fresh, true))

	deleted, err := s.store.DeleteExpired(s.ctx, s.now.Add(5*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, deleted)
	s.Equal(1, s.store.Len())

	loggedIn, err := s.store.LoggedIn(s.ctx, fresh)
	s.Require().NoError(err)
	s.True(loggedIn)
}

func (s *InMemoryStoreSuite) TestClearUnknownInstallIsNoOp() {
	s.Require().NoError(s.store.ClearRefreshToken(s.ctx, domain.NewInstallID()))
	s.Equal(0, s.store.Len())
}
