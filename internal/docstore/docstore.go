// Package docstore is the live document backend: documents addressed by
// slash-separated paths, grouped in collections, readable once or watched
// as a stream of full snapshots.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"webshop/internal/platform/stream"
	"webshop/internal/sentinel"
)

// DocumentSnapshot is the state of one document at a point in time.
type DocumentSnapshot struct {
	Path      string
	ID        string
	Exists    bool
	Data      json.RawMessage
	UpdatedAt time.Time
}

// QuerySnapshot is the full content of a collection, ordered by document ID.
type QuerySnapshot struct {
	Collection string
	Documents  []DocumentSnapshot
}

// Store is implemented by every backend.
//
// Watches publish the current state immediately and after every change.
// The ctx passed to a Watch call bounds only the open; the watch lives until
// the returned stream is closed or fails.
type Store interface {
	Get(ctx context.Context, path string) (DocumentSnapshot, error)
	Exists(ctx context.Context, path string) (bool, error)
	Set(ctx context.Context, path string, data json.RawMessage) error
	Delete(ctx context.Context, path string) error
	WatchDocument(ctx context.Context, path string) (*stream.Stream[DocumentSnapshot], error)
	WatchCollection(ctx context.Context, collection string) (*stream.Stream[QuerySnapshot], error)
	// Revoke fails every live watch under prefix with a permission error.
	Revoke(ctx context.Context, prefix string) error
}

// ErrPermissionDenied is delivered to watchers whose access was revoked.
var ErrPermissionDenied = fmt.Errorf("docstore: %w", sentinel.ErrPermissionDenied)

// IsPermissionDenied recognizes authorization loss, including errors that
// only carry the backend's "insufficient permissions" text.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sentinel.ErrPermissionDenied) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "insufficient permissions")
}

// DocumentPath joins segments into a document path.
func DocumentPath(segments ...string) string {
	return strings.Join(segments, "/")
}

// SplitDocumentPath returns the parent collection and document ID.
func SplitDocumentPath(path string) (collection, id string, err error) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 || len(segments)%2 != 0 || hasEmpty(segments) {
		return "", "", fmt.Errorf("invalid document path %q: %w", path, sentinel.ErrInvalidInput)
	}
	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1], nil
}

// ValidateCollectionPath checks that path names a collection (odd segment count).
func ValidateCollectionPath(path string) error {
	segments := strings.Split(path, "/")
	if len(segments)%2 != 1 || hasEmpty(segments) {
		return fmt.Errorf("invalid collection path %q: %w", path, sentinel.ErrInvalidInput)
	}
	return nil
}

func hasEmpty(segments []string) bool {
	for _, s := range segments {
		if s == "" {
			return true
		}
	}
	return false
}

// underPrefix matches whole path segments only.
func underPrefix(path, prefix string) bool {
	if prefix == "" || path == prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}
