// File: /jobs/notification_dispatcher.go
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"vastconnect-api/metrics"
	"vastconnect-api/models"
	"vastconnect-api/realtime"
	"vastconnect-api/utils"
)

// NotificationHandler performs one fan-out: persist, then push.
type NotificationHandler interface {
	Notify(ctx context.Context, params models.CreateNotificationParams) (*models.Notification, error)
}

// NotificationDispatcher runs fan-outs off the request path. Jobs are queued
// for a fixed pool of workers; when the queue is full the job gets its own
// goroutine instead of being dropped. Every job runs to completion on its
// own context, detached from the request that triggered it.
type NotificationDispatcher struct {
	handler NotificationHandler
	queue   chan models.CreateNotificationParams
	workers int
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.RWMutex
	stopped  bool
	inflight sync.WaitGroup
	pool     sync.WaitGroup
}

func NewNotificationDispatcher(handler NotificationHandler, workers, queueSize int, timeout time.Duration, logger *slog.Logger) *NotificationDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &NotificationDispatcher{
		handler: handler,
		queue:   make(chan models.CreateNotificationParams, queueSize),
		workers: workers,
		timeout: timeout,
		logger:  logger,
	}
}

// Start launches the worker pool
func (d *NotificationDispatcher) Start() {
	d.logger.Info("notification dispatcher started", "workers", d.workers, "queue_size", cap(d.queue))

	for i := 0; i < d.workers; i++ {
		d.pool.Add(1)
		go func() {
			defer d.pool.Done()
			for params := range d.queue {
				metrics.DispatchQueueDepth.Dec()
				d.run(params)
				d.inflight.Done()
			}
		}()
	}
}

// Dispatch schedules a fan-out and returns immediately.
func (d *NotificationDispatcher) Dispatch(params models.CreateNotificationParams) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.logger.Warn("dispatcher stopped, notification dropped", "type", params.Type, "user_id", params.UserID)
		metrics.NotificationsFailed.WithLabelValues("dispatch").Inc()
		return
	}

	d.inflight.Add(1)
	select {
	case d.queue <- params:
		metrics.DispatchQueueDepth.Inc()
	default:
		d.logger.Debug("dispatch queue full, running detached", "type", params.Type)
		go func() {
			defer d.inflight.Done()
			d.run(params)
		}()
	}
}

func (d *NotificationDispatcher) run(params models.CreateNotificationParams) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	notification, err := d.handler.Notify(ctx, params)
	switch {
	case err == nil:
		if notification != nil {
			d.logger.Debug("notification delivered", "notification_id", notification.ID, "type", params.Type)
		}
	case errors.Is(err, realtime.ErrNoSubscribers):
		d.logger.Debug("recipient offline, notification stored only", "type", params.Type, "user_id", params.UserID)
	case utils.IsKind(err, utils.KindDeliveryFailure):
		d.logger.Warn("notification push failed", "type", params.Type, "user_id", params.UserID, "error", err)
	default:
		d.logger.Error("notification fan-out failed", "type", params.Type, "user_id", params.UserID, "error", err)
	}
}

// Stop refuses new jobs and waits for queued and detached ones to finish
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	d.inflight.Wait()
	close(d.queue)
	d.pool.Wait()
	d.logger.Info("notification dispatcher stopped")
}
