// Package realtime keeps per-user groups of open subscriber channels and
// pushes events to them. Delivery is best effort and at most once: nothing
// is queued for users without an open channel.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"vastconnect-api/metrics"
)

const (
	EventSubscribe           = "subscribeToNotifications"
	EventSubscribed          = "subscribed"
	EventReceiveNotification = "receiveNotification"
	EventError               = "error"
)

var (
	ErrNoSubscribers  = errors.New("realtime: no subscribers")
	ErrDeliveryFailed = errors.New("realtime: no channel accepted the event")
	ErrHubClosed      = errors.New("realtime: hub closed")
	ErrChannelClosed  = errors.New("realtime: channel closed")
)

// Event is the frame exchanged with clients.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data,omitempty"`
}

// Channel is one open connection. Send must respect ctx and return once it
// expires.
type Channel interface {
	ID() string
	Send(ctx context.Context, event Event) error
}

type closer interface {
	Close() error
}

type Hub struct {
	mu sync.RWMutex
	// userID -> channelID -> channel
	groups map[string]map[string]Channel
	// channelID -> userIDs it is subscribed under
	memberships map[string]map[string]struct{}
	closed      bool

	publishTimeout time.Duration
	logger         *slog.Logger
}

func NewHub(publishTimeout time.Duration, logger *slog.Logger) *Hub {
	return &Hub{
		groups:         make(map[string]map[string]Channel),
		memberships:    make(map[string]map[string]struct{}),
		publishTimeout: publishTimeout,
		logger:         logger,
	}
}

// Subscribe adds ch to the user's group. Subscribing the same channel twice
// is a no-op; it reports whether the channel was newly added.
func (h *Hub) Subscribe(userID string, ch Channel) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false, ErrHubClosed
	}

	group, ok := h.groups[userID]
	if !ok {
		group = make(map[string]Channel)
		h.groups[userID] = group
	}
	if _, ok := group[ch.ID()]; ok {
		return false, nil
	}
	group[ch.ID()] = ch

	users, ok := h.memberships[ch.ID()]
	if !ok {
		users = make(map[string]struct{})
		h.memberships[ch.ID()] = users
		metrics.RealtimeChannels.Inc()
	}
	users[userID] = struct{}{}

	h.logger.Debug("channel subscribed", "user_id", userID, "channel_id", ch.ID())
	return true, nil
}

// Unsubscribe removes ch from every group it joined.
func (h *Hub) Unsubscribe(ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(ch.ID())
}

func (h *Hub) removeLocked(channelID string) {
	users, ok := h.memberships[channelID]
	if !ok {
		return
	}
	for userID := range users {
		group := h.groups[userID]
		delete(group, channelID)
		if len(group) == 0 {
			delete(h.groups, userID)
		}
	}
	delete(h.memberships, channelID)
	metrics.RealtimeChannels.Dec()
}

// Subscribers returns the number of open channels for a user.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[userID])
}

// Publish sends event to every channel subscribed under userID, in
// parallel, each bounded by the publish timeout. It returns how many
// channels accepted the event. With no channels the event is dropped and
// ErrNoSubscribers returned; when every send fails the error wraps
// ErrDeliveryFailed.
func (h *Hub) Publish(ctx context.Context, userID string, event Event) (int, error) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return 0, ErrHubClosed
	}
	channels := make([]Channel, 0, len(h.groups[userID]))
	for _, ch := range h.groups[userID] {
		channels = append(channels, ch)
	}
	h.mu.RUnlock()

	if len(channels) == 0 {
		return 0, ErrNoSubscribers
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
		errs      []error
	)
	for _, ch := range channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, h.publishTimeout)
			defer cancel()

			err := ch.Send(sendCtx, event)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("channel %s: %w", ch.ID(), err))
				return
			}
			delivered++
		}(ch)
	}
	wg.Wait()

	if delivered == 0 {
		return 0, fmt.Errorf("%w: %w", ErrDeliveryFailed, errors.Join(errs...))
	}
	if len(errs) > 0 {
		h.logger.Warn("partial delivery", "user_id", userID, "event", event.Name,
			"delivered", delivered, "failed", len(errs), "error", errors.Join(errs...))
	}
	return delivered, nil
}

// Close detaches and closes every channel. Later subscribes and publishes
// fail with ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true

	var toClose []closer
	seen := make(map[string]struct{})
	for _, group := range h.groups {
		for id, ch := range group {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if c, ok := ch.(closer); ok {
				toClose = append(toClose, c)
			}
		}
	}
	for id := range seen {
		h.removeLocked(id)
	}
	h.mu.Unlock()

	for _, c := range toClose {
		if err := c.Close(); err != nil {
			h.logger.Debug("close channel", "error", err)
		}
	}
	h.logger.Info("realtime hub closed", "channels", len(seen))
}
