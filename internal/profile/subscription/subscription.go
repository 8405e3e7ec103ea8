// Package subscription keeps at most one live watch on a customer's
// profile document and turns its snapshots into normalized profiles.
package subscription

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"webshop/internal/docstore"
	"webshop/internal/platform/stream"
	"webshop/internal/profile/models"
	"webshop/pkg/domain"
)

// Handler receives every decoded snapshot, or the terminal watch error.
type Handler func(snap models.Snapshot, err error)

// Subscription owns the single profile watch of one session.
type Subscription struct {
	store      docstore.Store
	collection string
	loc        *time.Location
	logger     *slog.Logger

	mu      sync.Mutex
	current *stream.Stream[docstore.DocumentSnapshot]
}

// Option configures a Subscription.
type Option func(*Subscription)

// WithCollection overrides the customer collection name.
func WithCollection(name string) Option {
	return func(s *Subscription) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithLocation sets the zone used for calendar parts.
func WithLocation(loc *time.Location) Option {
	return func(s *Subscription) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger used for undecodable snapshots.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Subscription) {
		s.logger = logger
	}
}

func New(store docstore.Store, opts ...Option) *Subscription {
	s := &Subscription{
		store:      store,
		collection: "customers",
		loc:        domain.LoadLocation(""),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open watches customers/{accountID}. Any previous watch is cancelled
// before the new one is created.
func (s *Subscription) Open(ctx context.Context, accountID domain.AccountID, handler Handler) error {
	s.Cancel()

	st, err := s.store.WatchDocument(ctx, docstore.DocumentPath(s.collection, accountID.String()))
	if err != nil {
		return err
	}

	s.mu.Lock()
	prev := s.current
	s.current = st
	s.mu.Unlock()
	if prev != nil {
		// A concurrent Open won the race to the backend.
		prev.Close()
	}

	st.Forward(func(ev stream.Event[docstore.DocumentSnapshot]) {
		if ev.Err != nil {
			handler(models.Snapshot{}, ev.Err)
			return
		}
		if !ev.Value.Exists {
			handler(models.Snapshot{}, nil)
			return
		}
		doc, err := models.DecodeDocument(ev.Value.Data)
		if err != nil {
			s.logger.Warn("skipping undecodable profile snapshot",
				"account_id", accountID.String(),
				"error", err,
			)
			return
		}
		handler(models.Snapshot{Exists: true, Profile: doc.ToProfile(accountID, s.loc)}, nil)
	})
	return nil
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
