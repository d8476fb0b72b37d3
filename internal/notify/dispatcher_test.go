package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"taxpro/internal/common"
	"taxpro/internal/domain/notification"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []notification.Notification
	err   error
	block chan struct{}
}

func (s *fakeSender) Send(ctx context.Context, n notification.Notification) error {
	if s.block != nil {
		<-s.block
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type counters struct {
	sent, failed, dropped atomic.Int64
}

func (c *counters) IncNotificationsSent()    { c.sent.Add(1) }
func (c *counters) IncNotificationsFailed()  { c.failed.Add(1) }
func (c *counters) IncNotificationsDropped() { c.dropped.Add(1) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sample() notification.Notification {
	return notification.New(notification.KindConnectionAccepted, common.NewUUID(), map[string]string{"connection_id": "c1"})
}

func TestDispatcherDeliversAfterRequestContextEnds(t *testing.T) {
	sender := &fakeSender{}
	stats := &counters{}
	d := NewDispatcher(sender, quietLogger(), stats, Options{Buffer: 8, Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	d.Notify(ctx, sample())
	d.Notify(ctx, sample())
	cancel()

	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if sender.count() != 2 {
		t.Fatalf("expected 2 sent, got %d", sender.count())
	}
	if stats.sent.Load() != 2 {
		t.Fatalf("expected sent counter 2, got %d", stats.sent.Load())
	}
}

func TestDispatcherCountsFailures(t *testing.T) {
	sender := &fakeSender{err: errors.New("broker unavailable")}
	stats := &counters{}
	d := NewDispatcher(sender, quietLogger(), stats, Options{Buffer: 4, Workers: 1})

	d.Notify(context.Background(), sample())
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if stats.failed.Load() != 1 || stats.sent.Load() != 0 {
		t.Fatalf("unexpected counters sent=%d failed=%d", stats.sent.Load(), stats.failed.Load())
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{})}
	stats := &counters{}
	d := NewDispatcher(sender, quietLogger(), stats, Options{Buffer: 1, Workers: 1})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Notify(context.Background(), sample())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Notify blocked on a full queue")
	}
	close(sender.block)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if stats.dropped.Load() == 0 {
		t.Fatalf("expected dropped notifications")
	}
	if got := stats.sent.Load() + stats.dropped.Load(); got != 10 {
		t.Fatalf("expected every notification accounted for, got %d", got)
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	sender := &fakeSender{}
	stats := &counters{}
	d := NewDispatcher(sender, quietLogger(), stats, Options{})
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	d.Notify(context.Background(), sample())
	if stats.dropped.Load() != 1 {
		t.Fatalf("expected notify after close to drop")
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestLogSender(t *testing.T) {
	if err := NewLogSender(quietLogger()).Send(context.Background(), sample()); err != nil {
		t.Fatalf("send: %v", err)
	}
}
