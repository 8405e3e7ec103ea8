package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"webshop/internal/platform/kafka/consumer"
)

// Replay feeds events read back from the session-events topic into a Store.
type Replay struct {
	store Store
}

func NewReplay(store Store) *Replay {
	return &Replay{store: store}
}

// Handle implements consumer.Handler. Undecodable records are reported and
// left uncommitted.
func (r *Replay) Handle(ctx context.Context, msg *consumer.Message) error {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode audit event at offset %d: %w", msg.Offset, err)
	}
	if event.Action == "" {
		event.Action = msg.Headers["event_type"]
	}
	if event.ID == "" {
		event.ID = msg.Headers["event_id"]
	}
	return r.store.Append(ctx, event)
}

// LogStore writes every event as one structured log line.
type LogStore struct {
	logger *slog.Logger
}

func NewLogStore(logger *slog.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) Append(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, event.Action,
		"event_id", event.ID,
		"timestamp", event.Timestamp,
		"install_id", event.InstallID,
		"account_id", event.AccountID,
		"user_id", event.UserID,
		"provider", event.Provider,
		"reason", event.Reason,
		"device", event.Device,
		"log_type", "audit",
	)
	return nil
}
