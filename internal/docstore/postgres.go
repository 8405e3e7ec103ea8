package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"webshop/internal/platform/stream"
	"webshop/internal/sentinel"
)

const (
	changesChannel     = "docstore_changes"
	revocationsChannel = "docstore_revocations"
)

// PostgresStore keeps documents in a single JSONB table. Writers announce
// changes with pg_notify; Start runs the LISTEN loop that fans them out to
// the watchers of this process.
type PostgresStore struct {
	pool   *pgxpool.Pool
	hub    *hub
	logger *slog.Logger
}

// NewPostgres constructs a PostgresStore. Call Start to receive changes.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{pool: pool, hub: newHub(), logger: logger}
}

func (s *PostgresStore) Get(ctx context.Context, path string) (DocumentSnapshot, error) {
	_, id, err := SplitDocumentPath(path)
	if err != nil {
		return DocumentSnapshot{}, err
	}
	return s.get(ctx, s.pool, path, id)
}

func (s *PostgresStore) Exists(ctx context.Context, path string) (bool, error) {
	if _, _, err := SplitDocumentPath(path); err != nil {
		return false, err
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE path = $1)`, path).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check document %s: %w", path, err)
	}
	return exists, nil
}

func (s *PostgresStore) Set(ctx context.Context, path string, data json.RawMessage) error {
	collection, id, err := SplitDocumentPath(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("document %q is not valid JSON: %w", path, sentinel.ErrInvalidInput)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO documents (path, collection, id, data, updated_at)
			VALUES ($1, $2, $3, $4::jsonb, now())
			ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
			path, collection, id, string(data))
		if err != nil {
			return fmt.Errorf("upsert document %s: %w", path, err)
		}
		return notify(ctx, tx, changesChannel, path)
	})
}

func (s *PostgresStore) Delete(ctx context.Context, path string) error {
	if _, _, err := SplitDocumentPath(path); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE path = $1`, path)
		if err != nil {
			return fmt.Errorf("delete document %s: %w", path, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("document %q: %w", path, sentinel.ErrNotFound)
		}
		return notify(ctx, tx, changesChannel, path)
	})
}

func (s *PostgresStore) WatchDocument(ctx context.Context, path string) (*stream.Stream[DocumentSnapshot], error) {
	if _, _, err := SplitDocumentPath(path); err != nil {
		return nil, err
	}
	st := s.hub.addDocument(path)
	snap, err := s.Get(ctx, path)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Publish(snap)
	return st, nil
}

func (s *PostgresStore) WatchCollection(ctx context.Context, collection string) (*stream.Stream[QuerySnapshot], error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return nil, err
	}
	st := s.hub.addCollection(collection)
	snap, err := s.query(ctx, collection)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Publish(snap)
	return st, nil
}

// Revoke is broadcast through the database so every instance drops its
// watchers.
func (s *PostgresStore) Revoke(ctx context.Context, prefix string) error {
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, revocationsChannel, prefix); err != nil {
		return fmt.Errorf("notify revocation: %w", err)
	}
	return nil
}

// Start listens for change notifications until ctx is cancelled,
// reconnecting after connection loss.
func (s *PostgresStore) Start(ctx context.Context) error {
	for {
		err := s.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		s.logger.WarnContext(ctx, "docstore listener disconnected", "error", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}

func (s *PostgresStore) listen(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	for _, ch := range []string{changesChannel, revocationsChannel} {
		if _, err := conn.Exec(ctx, "LISTEN "+ch); err != nil {
			return fmt.Errorf("listen %s: %w", ch, err)
		}
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		switch n.Channel {
		case revocationsChannel:
			s.hub.revoke(n.Payload)
		case changesChannel:
			s.dispatch(ctx, n.Payload)
		}
	}
}

func (s *PostgresStore) dispatch(ctx context.Context, path string) {
	collection, id, err := SplitDocumentPath(path)
	if err != nil {
		return
	}
	if watchers := s.hub.documentWatchers(path); len(watchers) > 0 {
		snap, err := s.get(ctx, s.pool, path, id)
		for _, st := range watchers {
			if err != nil {
				st.Fail(fmt.Errorf("refresh watch %s: %w", path, err))
				continue
			}
			st.Publish(snap)
		}
	}
	if watchers := s.hub.collectionWatchers(collection); len(watchers) > 0 {
		snap, err := s.query(ctx, collection)
		for _, st := range watchers {
			if err != nil {
				st.Fail(fmt.Errorf("refresh watch %s: %w", collection, err))
				continue
			}
			st.Publish(snap)
		}
	}
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) get(ctx context.Context, q queryRower, path, id string) (DocumentSnapshot, error) {
	var (
		data      []byte
		updatedAt time.Time
	)
	err := q.QueryRow(ctx, `SELECT data, updated_at FROM documents WHERE path = $1`, path).Scan(&data, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DocumentSnapshot{Path: path, ID: id}, nil
	}
	if err != nil {
		return DocumentSnapshot{}, fmt.Errorf("read document %s: %w", path, err)
	}
	return DocumentSnapshot{Path: path, ID: id, Exists: true, Data: data, UpdatedAt: updatedAt}, nil
}

func (s *PostgresStore) query(ctx context.Context, collection string) (QuerySnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT path, id, data, updated_at FROM documents WHERE collection = $1 ORDER BY id`, collection)
	if err != nil {
		return QuerySnapshot{}, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer rows.Close()

	snap := QuerySnapshot{Collection: collection, Documents: []DocumentSnapshot{}}
	for rows.Next() {
		var doc DocumentSnapshot
		var data []byte
		if err := rows.Scan(&doc.Path, &doc.ID, &data, &doc.UpdatedAt); err != nil {
			return QuerySnapshot{}, fmt.Errorf("scan collection %s: %w", collection, err)
		}
		doc.Exists = true
		doc.Data = data
		snap.Documents = append(snap.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return QuerySnapshot{}, fmt.Errorf("iterate collection %s: %w", collection, err)
	}
	return snap, nil
}

func notify(ctx context.Context, tx pgx.Tx, channel, payload string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, channel, payload); err != nil {
		return fmt.Errorf("notify %s: %w", channel, err)
	}
	return nil
}
