package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

// inbound is a client frame; data may be the user id itself or an object
// carrying userId.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client is a websocket connection authenticated as one user. It only ever
// subscribes to that user's notifications.
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger.With("channel_id", id, "user_id", userID),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues an event for the write pump. A full buffer blocks until ctx
// expires, so a stalled reader only loses its own events.
func (c *Client) Send(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops both pumps and closes the connection.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait))
		err = c.conn.Close()
	})
	return err
}

// Run serves the connection until the peer disconnects, then removes the
// client from every group.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c)
		c.Close()
		c.logger.Debug("channel disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg inbound) {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	switch msg.Event {
	case EventSubscribe:
		requested := requestedUserID(msg.Data)
		if requested != "" && requested != c.userID {
			c.Send(ctx, Event{Name: EventError, Data: "cannot subscribe to another user's notifications"})
			return
		}
		if _, err := c.hub.Subscribe(c.userID, c); err != nil {
			c.Send(ctx, Event{Name: EventError, Data: err.Error()})
			return
		}
		c.Send(ctx, Event{Name: EventSubscribed, Data: c.userID})
	default:
		c.Send(ctx, Event{Name: EventError, Data: "unknown event " + msg.Event})
	}
}

func requestedUserID(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return strings.TrimSpace(id)
	}
	var obj struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return strings.TrimSpace(obj.UserID)
	}
	return ""
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.logger.Debug("websocket write failed", "error", err)
				}
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
