package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"vastconnect-api/models"
)

type recordingHandler struct {
	mu     sync.Mutex
	delay  time.Duration
	calls  []models.CreateNotificationParams
	ctxErr []error
}

func (h *recordingHandler) Notify(ctx context.Context, params models.CreateNotificationParams) (*models.Notification, error) {
	time.Sleep(h.delay)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, params)
	h.ctxErr = append(h.ctxErr, ctx.Err())
	return &models.Notification{ID: "n", Type: params.Type}, nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherRunsEveryJobBeforeStop(t *testing.T) {
	handler := &recordingHandler{delay: 5 * time.Millisecond}
	d := NewNotificationDispatcher(handler, 2, 4, time.Second, discardLogger())
	d.Start()

	// More jobs than queue slots forces the detached path as well.
	for i := 0; i < 20; i++ {
		d.Dispatch(models.FollowNotification("a", "b"))
	}
	d.Stop()

	if got := handler.count(); got != 20 {
		t.Fatalf("handled %d jobs, want 20", got)
	}
	for _, err := range handler.ctxErr {
		if err != nil {
			t.Errorf("job ran with a cancelled context: %v", err)
		}
	}
}

func TestDispatchReturnsImmediately(t *testing.T) {
	handler := &recordingHandler{delay: 200 * time.Millisecond}
	d := NewNotificationDispatcher(handler, 1, 0, time.Second, discardLogger())
	d.Start()
	defer d.Stop()

	start := time.Now()
	d.Dispatch(models.FollowNotification("a", "b"))
	d.Dispatch(models.FollowNotification("a", "c"))
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Dispatch blocked for %v", elapsed)
	}
}

func TestDispatchAfterStopIsDropped(t *testing.T) {
	handler := &recordingHandler{}
	d := NewNotificationDispatcher(handler, 1, 1, time.Second, discardLogger())
	d.Start()
	d.Stop()
	d.Stop()

	d.Dispatch(models.FollowNotification("a", "b"))
	time.Sleep(20 * time.Millisecond)
	if handler.count() != 0 {
		t.Error("job ran after Stop")
	}
}
