// Package subscription keeps at most one live watch on a customer's fare
// contract collection and rebuilds the full contract list on every snapshot.
package subscription

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"webshop/internal/docstore"
	"webshop/internal/farecontract/models"
	"webshop/internal/platform/stream"
	"webshop/pkg/domain"
)

// Handler receives the complete, newest-first contract list of each
// snapshot, or the terminal watch error.
type Handler func(contracts []models.FareContract, err error)

type Subscription struct {
	store      docstore.Store
	customers  string
	collection string
	loc        *time.Location
	logger     *slog.Logger

	mu      sync.Mutex
	current *stream.Stream[docstore.QuerySnapshot]
}

type Option func(*Subscription)

// WithCollections overrides the parent customer collection and the
// fare contract sub-collection names.
func WithCollections(customers, fareContracts string) Option {
	return func(s *Subscription) {
		if customers != "" {
			s.customers = customers
		}
		if fareContracts != "" {
			s.collection = fareContracts
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Subscription) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Subscription) {
		s.logger = logger
	}
}

func New(store docstore.Store, opts ...Option) *Subscription {
	s := &Subscription{
		store:      store,
		customers:  "customers",
		collection: "fareContracts",
		loc:        domain.LoadLocation(""),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open watches customers/{accountID}/fareContracts, cancelling any
// previous watch first.
func (s *Subscription) Open(ctx context.Context, accountID domain.AccountID, handler Handler) error {
	s.Cancel()

	path := docstore.DocumentPath(s.customers, accountID.String(), s.collection)
	st, err := s.store.WatchCollection(ctx, path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	prev := s.current
	s.current = st
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	st.Forward(func(ev stream.Event[docstore.QuerySnapshot]) {
		if ev.Err != nil {
			handler(nil, ev.Err)
			return
		}
		handler(s.rebuild(accountID, ev.Value), nil)
	})
	return nil
}

// rebuild converts a whole snapshot; nothing is carried over from the
// previous one.
func (s *Subscription) rebuild(accountID domain.AccountID, snap docstore.QuerySnapshot) []models.FareContract {
	contracts := make([]models.FareContract, 0, len(snap.Documents))
	for _, d := range snap.Documents {
		doc, err := models.DecodeDocument(d.Data)
		if err != nil {
			s.logger.Warn("skipping undecodable fare contract",
				"account_id", accountID.String(),
				"fare_contract_id", d.ID,
				"error", err,
			)
			continue
		}
		contracts = append(contracts, doc.ToFareContract(d.ID, s.loc))
	}
	models.SortNewestFirst(contracts)
	return contracts
}

// Cancel stops the live watch, if any. Synchronous and idempotent.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	st := s.current
	s.current = nil
	s.mu.Unlock()
	if st != nil {
		st.Close()
	}
}

// Active reports whether a watch is live.
func (s *Subscription) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}
