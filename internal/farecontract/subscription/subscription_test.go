package subscription

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"webshop/internal/docstore"
	"webshop/internal/farecontract/models"
)

const collection = "customers/42/fareContracts"

type received struct {
	contracts []models.FareContract
	err       error
}

type SubscriptionSuite struct {
	suite.Suite
	store *docstore.InMemoryStore
	sub   *Subscription
	ctx   context.Context
	got   chan received
}

func TestSubscriptionSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionSuite))
}

func (s *SubscriptionSuite) SetupTest() {
	s.store = docstore.NewInMemory()
	s.sub = New(s.store, WithLocation(time.UTC))
	s.ctx = context.Background()
	s.got = make(chan received, 16)
}

func (s *SubscriptionSuite) TearDownTest() {
	s.sub.Cancel()
}

func (s *SubscriptionSuite) handler(contracts []models.FareContract, err error) {
	s.got <- received{contracts: contracts, err: err}
}

func (s *SubscriptionSuite) next() received {
	select {
	case r := <-s.got:
		return r
	case <-time.After(time.Second):
		s.FailNow("no snapshot within 1s")
	}
	return received{}
}

func (s *SubscriptionSuite) put(id, body string) {
	s.Require().NoError(s.store.Set(s.ctx, collection+"/"+id, json.RawMessage(body)))
}

func (s *SubscriptionSuite) TestRebuildsOrderedListOnEverySnapshot() {
	s.put("old", `{"orderId":"O1","created":{"seconds":100,"nanoseconds":0},"travelRights":[
		{"id":"a","startDateTime":{"seconds":10,"nanoseconds":0},"endDateTime":{"seconds":20,"nanoseconds":0}},
		{"id":"b","startDateTime":{"seconds":5,"nanoseconds":0},"endDateTime":{"seconds":30,"nanoseconds":0}}
	]}`)
	s.Require().NoError(s.sub.Open(s.ctx, "42", s.handler))

	r := s.next()
	s.Require().NoError(r.err)
	s.Require().Len(r.contracts, 1)
	s.Equal(int64(5000), r.contracts[0].ValidFrom)
	s.Equal(int64(30000), r.contracts[0].ValidTo)

	s.put("new", `{"orderId":"O2","created":{"seconds":200,"nanoseconds":0},"travelRights":[]}`)
	r = s.next()
	s.Require().Len(r.contracts, 2)
	s.Equal("new", r.contracts[0].ID)
	s.Equal("old", r.contracts[1].ID)
	s.Zero(r.contracts[0].ValidFrom)
	s.Zero(r.contracts[0].ValidTo)
}

func (s *SubscriptionSuite) TestEmptyCollection() {
	s.Require().NoError(s.sub.Open(s.ctx, "42", s.handler))

	r := s.next()
	s.NoError(r.err)
	s.Empty(r.contracts)
}

func (s *SubscriptionSuite) TestReopenCancelsFirstHandle() {
	s.Require().NoError(s.sub.Open(s.ctx, "42", s.handler))
	s.next()
	s.Require().NoError(s.sub.Open(s.ctx, "42", s.handler))
	s.next()
	s.Equal(1, s.store.WatcherCount(collection))

	s.put("fc", `{"orderId":"O1"}`)
	s.next()
	select {
	case r := <-s.got:
		s.Failf("duplicate delivery", "%+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *SubscriptionSuite) TestInsufficientPermissions() {
	s.Require().NoError(s.sub.Open(s.ctx, "42", s.handler))
	s.next()

	s.Require().NoError(s.store.Revoke(s.ctx, "customers/42"))
	r := s.next()
	s.True(docstore.IsPermissionDenied(r.err))
}

func (s *SubscriptionSuite) TestSkipsUndecodableContract() {
	s.put("bad", `{"orderId":1}`)
	s.put("good", `{"orderId":"O1"}`)
	s.Require().NoError(s.sub.Open(s.ctx, "42", s.handler))

	r := s.next()
	s.Require().Len(r.contracts, 1)
	s.Equal("good", r.contracts[0].ID)
}
