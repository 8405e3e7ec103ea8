package handler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"webshop/internal/session/models"
)

// connection owns the write side of one websocket. Notify never blocks: the
// manager calls it with its state lock held, so a peer that stops reading
// gets disconnected once the outbound buffer fills.
type connection struct {
	ws           *websocket.Conn
	logger       *slog.Logger
	writeTimeout time.Duration
	pingInterval time.Duration

	out       chan models.Notification
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func newConnection(ws *websocket.Conn, logger *slog.Logger, writeTimeout, pongWait time.Duration, buffer int) *connection {
	return &connection{
		ws:           ws,
		logger:       logger,
		writeTimeout: writeTimeout,
		pingInterval: pongWait * 9 / 10,
		out:          make(chan models.Notification, buffer),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// Notify implements service.Notifier.
func (c *connection) Notify(ctx context.Context, n models.Notification) {
	if c.isClosed() {
		return
	}
	select {
	case c.out <- n:
	case <-c.done:
	default:
		c.logger.WarnContext(ctx, "outbound buffer full, closing connection",
			"type", string(n.Type),
		)
		c.close()
	}
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *connection) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *connection) writeLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
		// Unblocks the reader when the writer gives up first.
		_ = c.ws.Close()
		close(c.stopped)
	}()

	for {
		select {
		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout))
			return
		case n := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteJSON(n); err != nil {
				c.logger.Debug("websocket write failed", "error", err, "type", string(n.Type))
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				c.logger.Debug("websocket ping failed", "error", err)
				return
			}
		}
	}
}
