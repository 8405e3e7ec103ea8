package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"webshop/internal/platform/stream"
	"webshop/internal/sentinel"
)

type memoryDocument struct {
	collection string
	id         string
	data       json.RawMessage
	updatedAt  time.Time
}

// InMemoryStore keeps documents in memory for tests/dev.
type InMemoryStore struct {
	// publishMu orders mutations with their broadcasts so watchers never
	// see an older snapshot after a newer one. Taken before mu.
	publishMu sync.Mutex
	mu        sync.RWMutex
	docs      map[string]memoryDocument
	hub       *hub
	now       func() time.Time
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		docs: make(map[string]memoryDocument),
		hub:  newHub(),
		now:  time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, path string) (DocumentSnapshot, error) {
	if _, _, err := SplitDocumentPath(path); err != nil {
		return DocumentSnapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(path), nil
}

func (s *InMemoryStore) Exists(ctx context.Context, path string) (bool, error) {
	snap, err := s.Get(ctx, path)
	if err != nil {
		return false, err
	}
	return snap.Exists, nil
}

func (s *InMemoryStore) Set(_ context.Context, path string, data json.RawMessage) error {
	collection, id, err := SplitDocumentPath(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("document %q is not valid JSON: %w", path, sentinel.ErrInvalidInput)
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.mu.Lock()
	s.docs[path] = memoryDocument{
		collection: collection,
		id:         id,
		data:       append(json.RawMessage(nil), data...),
		updatedAt:  s.now(),
	}
	s.mu.Unlock()

	s.broadcast(path, collection)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, path string) error {
	collection, _, err := SplitDocumentPath(path)
	if err != nil {
		return err
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.mu.Lock()
	if _, ok := s.docs[path]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("document %q: %w", path, sentinel.ErrNotFound)
	}
	delete(s.docs, path)
	s.mu.Unlock()

	s.broadcast(path, collection)
	return nil
}

func (s *InMemoryStore) WatchDocument(_ context.Context, path string) (*stream.Stream[DocumentSnapshot], error) {
	if _, _, err := SplitDocumentPath(path); err != nil {
		return nil, err
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	st := s.hub.addDocument(path)
	s.mu.RLock()
	snap := s.snapshotLocked(path)
	s.mu.RUnlock()
	st.Publish(snap)
	return st, nil
}

func (s *InMemoryStore) WatchCollection(_ context.Context, collection string) (*stream.Stream[QuerySnapshot], error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return nil, err
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	st := s.hub.addCollection(collection)
	s.mu.RLock()
	snap := s.querySnapshotLocked(collection)
	s.mu.RUnlock()
	st.Publish(snap)
	return st, nil
}

func (s *InMemoryStore) Revoke(_ context.Context, prefix string) error {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.hub.revoke(prefix)
	return nil
}

// Interrupt fails every live watch under prefix with err, the way a
// backend drops its listeners when the connection is lost.
func (s *InMemoryStore) Interrupt(prefix string, err error) int {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	return s.hub.fail(prefix, err)
}

// WatcherCount reports live watches on a document or collection path.
func (s *InMemoryStore) WatcherCount(path string) int {
	return s.hub.watcherCount(path)
}

// broadcast runs with publishMu held.
func (s *InMemoryStore) broadcast(path, collection string) {
	s.mu.RLock()
	doc := s.snapshotLocked(path)
	query := s.querySnapshotLocked(collection)
	s.mu.RUnlock()

	for _, st := range s.hub.documentWatchers(path) {
		st.Publish(doc)
	}
	for _, st := range s.hub.collectionWatchers(collection) {
		st.Publish(query)
	}
}

func (s *InMemoryStore) snapshotLocked(path string) DocumentSnapshot {
	doc, ok := s.docs[path]
	if !ok {
		_, id, _ := SplitDocumentPath(path)
		return DocumentSnapshot{Path: path, ID: id}
	}
	return DocumentSnapshot{
		Path:      path,
		ID:        doc.id,
		Exists:    true,
		Data:      doc.data,
		UpdatedAt: doc.updatedAt,
	}
}

func (s *InMemoryStore) querySnapshotLocked(collection string) QuerySnapshot {
	snap := QuerySnapshot{Collection: collection, Documents: []DocumentSnapshot{}}
	for path, doc := range s.docs {
		if doc.collection != collection {
			continue
		}
		snap.Documents = append(snap.Documents, DocumentSnapshot{
			Path:      path,
			ID:        doc.id,
			Exists:    true,
			Data:      doc.data,
			UpdatedAt: doc.updatedAt,
		})
	}
	sort.Slice(snap.Documents, func(i, j int) bool {
		return snap.Documents[i].ID < snap.Documents[j].ID
	})
	return snap
}
