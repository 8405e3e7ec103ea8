package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"webshop/internal/platform/stream"
	"webshop/internal/sentinel"
)

const (
	// Redis key prefixes for document data
	docKeyPrefix        = "docstore:doc:"
	collectionKeyPrefix = "docstore:col:"

	// Pub/sub channels announcing changes
	docChannelPrefix        = "docstore:changed:doc:"
	collectionChannelPrefix = "docstore:changed:col:"
	revokeChannel           = "docstore:revoked"

	defaultReadTimeout = 3 * time.Second
)

// redisDocument is the stored envelope; data stays opaque JSON.
type redisDocument struct {
	Data      json.RawMessage `json:"data"`
	UpdatedAt int64           `json:"updated_at"` // Unix nano
}

// RedisStore keeps documents as JSON strings with a set per collection and
// announces changes over pub/sub so every server instance can serve watches.
type RedisStore struct {
	rdb         redis.UniversalClient
	readTimeout time.Duration
	now         func() time.Time
}

// NewRedis constructs a RedisStore on an existing client.
func NewRedis(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb, readTimeout: defaultReadTimeout, now: time.Now}
}

func (s *RedisStore) Get(ctx context.Context, path string) (DocumentSnapshot, error) {
	_, id, err := SplitDocumentPath(path)
	if err != nil {
		return DocumentSnapshot{}, err
	}
	raw, err := s.rdb.Get(ctx, docKeyPrefix+path).Bytes()
	if errors.Is(err, redis.Nil) {
		return DocumentSnapshot{Path: path, ID: id}, nil
	}
	if err != nil {
		return DocumentSnapshot{}, fmt.Errorf("redis get %s: %w", path, errors.Join(sentinel.ErrUnavailable, err))
	}
	return decodeRedisDocument(path, id, raw)
}

func (s *RedisStore) Exists(ctx context.Context, path string) (bool, error) {
	if _, _, err := SplitDocumentPath(path); err != nil {
		return false, err
	}
	n, err := s.rdb.Exists(ctx, docKeyPrefix+path).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", path, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Set(ctx context.Context, path string, data json.RawMessage) error {
	collection, id, err := SplitDocumentPath(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("document %q is not valid JSON: %w", path, sentinel.ErrInvalidInput)
	}
	payload, err := json.Marshal(redisDocument{Data: data, UpdatedAt: s.now().UnixNano()})
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, docKeyPrefix+path, payload, 0)
		pipe.SAdd(ctx, collectionKeyPrefix+collection, id)
		pipe.Publish(ctx, docChannelPrefix+path, "set")
		pipe.Publish(ctx, collectionChannelPrefix+collection, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", path, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, path string) error {
	collection, id, err := SplitDocumentPath(path)
	if err != nil {
		return err
	}
	var del *redis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, docKeyPrefix+path)
		pipe.SRem(ctx, collectionKeyPrefix+collection, id)
		pipe.Publish(ctx, docChannelPrefix+path, "delete")
		pipe.Publish(ctx, collectionChannelPrefix+collection, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", path, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("document %q: %w", path, sentinel.ErrNotFound)
	}
	return nil
}

func (s *RedisStore) WatchDocument(ctx context.Context, path string) (*stream.Stream[DocumentSnapshot], error) {
	if _, _, err := SplitDocumentPath(path); err != nil {
		return nil, err
	}
	ps, err := s.subscribe(ctx, docChannelPrefix+path)
	if err != nil {
		return nil, err
	}
	st := stream.New[DocumentSnapshot](func() { _ = ps.Close() })

	// Subscribe before the first read so no change between the two is lost.
	snap, err := s.Get(ctx, path)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Publish(snap)

	go s.pump(ps, path, func() error {
		readCtx, cancel := context.WithTimeout(context.Background(), s.readTimeout)
		defer cancel()
		snap, err := s.Get(readCtx, path)
		if err != nil {
			return err
		}
		st.Publish(snap)
		return nil
	}, st.Fail, st.Closed)
	return st, nil
}

func (s *RedisStore) WatchCollection(ctx context.Context, collection string) (*stream.Stream[QuerySnapshot], error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return nil, err
	}
	ps, err := s.subscribe(ctx, collectionChannelPrefix+collection)
	if err != nil {
		return nil, err
	}
	st := stream.New[QuerySnapshot](func() { _ = ps.Close() })

	snap, err := s.query(ctx, collection)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Publish(snap)

	go s.pump(ps, collection, func() error {
		readCtx, cancel := context.WithTimeout(context.Background(), s.readTimeout)
		defer cancel()
		snap, err := s.query(readCtx, collection)
		if err != nil {
			return err
		}
		st.Publish(snap)
		return nil
	}, st.Fail, st.Closed)
	return st, nil
}

func (s *RedisStore) Revoke(ctx context.Context, prefix string) error {
	if err := s.rdb.Publish(ctx, revokeChannel, prefix).Err(); err != nil {
		return fmt.Errorf("redis publish revoke: %w", err)
	}
	return nil
}

func (s *RedisStore) subscribe(ctx context.Context, channel string) (*redis.PubSub, error) {
	ps := s.rdb.Subscribe(ctx, channel, revokeChannel)
	// Wait for the subscription confirmation.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}
	return ps, nil
}

// pump re-reads on every change message until the watch is closed, fails or
// is revoked.
func (s *RedisStore) pump(ps *redis.PubSub, path string, reread func() error, fail func(error) bool, closed func() bool) {
	defer ps.Close() //nolint:errcheck // best-effort; Close on an already closed PubSub is harmless
	for msg := range ps.Channel() {
		if closed() {
			return
		}
		if msg.Channel == revokeChannel {
			if underPrefix(path, msg.Payload) {
				fail(ErrPermissionDenied)
				return
			}
			continue
		}
		if err := reread(); err != nil {
			fail(fmt.Errorf("refresh watch %s: %w", path, err))
			return
		}
	}
}

func (s *RedisStore) query(ctx context.Context, collection string) (QuerySnapshot, error) {
	ids, err := s.rdb.SMembers(ctx, collectionKeyPrefix+collection).Result()
	if err != nil {
		return QuerySnapshot{}, fmt.Errorf("redis smembers %s: %w", collection, err)
	}
	sort.Strings(ids)
	snap := QuerySnapshot{Collection: collection, Documents: []DocumentSnapshot{}}
	if len(ids) == 0 {
		return snap, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKeyPrefix + collection + "/" + id
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return QuerySnapshot{}, fmt.Errorf("redis mget %s: %w", collection, err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Deleted between SMEMBERS and MGET.
			continue
		}
		doc, err := decodeRedisDocument(strings.TrimPrefix(keys[i], docKeyPrefix), ids[i], []byte(raw))
		if err != nil {
			return QuerySnapshot{}, err
		}
		snap.Documents = append(snap.Documents, doc)
	}
	return snap, nil
}

func decodeRedisDocument(path, id string, raw []byte) (DocumentSnapshot, error) {
	var doc redisDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return DocumentSnapshot{}, fmt.Errorf("decode document %s: %w", path, err)
	}
	return DocumentSnapshot{
		Path:      path,
		ID:        id,
		Exists:    true,
		Data:      doc.Data,
		UpdatedAt: time.Unix(0, doc.UpdatedAt),
	}, nil
}
