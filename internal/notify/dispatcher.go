// Package notify delivers workflow notifications outside the request path.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"taxpro/internal/domain/notification"
)

// Sender delivers a single notification to its transport.
type Sender interface {
	Send(ctx context.Context, n notification.Notification) error
}

// Recorder counts delivery outcomes. The HTTP metrics collector satisfies it.
type Recorder interface {
	IncNotificationsSent()
	IncNotificationsFailed()
	IncNotificationsDropped()
}

type Options struct {
	Buffer      int
	Workers     int
	SendTimeout time.Duration
}

// Dispatcher queues notifications and sends them from a fixed worker pool.
// Notify never blocks: when the queue is full the notification is dropped.
type Dispatcher struct {
	sender   Sender
	logger   *slog.Logger
	recorder Recorder
	timeout  time.Duration
	queue    chan queued
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type queued struct {
	ctx context.Context
	n   notification.Notification
}

func NewDispatcher(sender Sender, logger *slog.Logger, recorder Recorder, opts Options) *Dispatcher {
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		sender:   sender,
		logger:   logger,
		recorder: recorder,
		timeout:  opts.SendTimeout,
		queue:    make(chan queued, opts.Buffer),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

func (d *Dispatcher) Notify(ctx context.Context, n notification.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(n, "dispatcher closed")
		return
	}
	select {
	case d.queue <- queued{ctx: context.WithoutCancel(ctx), n: n}:
	default:
		d.drop(n, "queue full")
	}
}

func (d *Dispatcher) drop(n notification.Notification, reason string) {
	if d.recorder != nil {
		d.recorder.IncNotificationsDropped()
	}
	d.logger.Warn("notification dropped",
		slog.String("reason", reason),
		slog.String("kind", string(n.Kind)),
		slog.String("recipient_profile_id", n.RecipientID.String()),
	)
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for item := range d.queue {
		d.deliver(item)
	}
}

func (d *Dispatcher) deliver(item queued) {
	ctx, cancel := context.WithTimeout(item.ctx, d.timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			if d.recorder != nil {
				d.recorder.IncNotificationsFailed()
			}
			d.logger.Error("notification sender panic", slog.Any("panic", rec), slog.String("kind", string(item.n.Kind)))
		}
	}()
	if err := d.sender.Send(ctx, item.n); err != nil {
		if d.recorder != nil {
			d.recorder.IncNotificationsFailed()
		}
		d.logger.Error("notification delivery failed",
			slog.String("kind", string(item.n.Kind)),
			slog.String("notification_id", item.n.ID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	if d.recorder != nil {
		d.recorder.IncNotificationsSent()
	}
}

// Close stops accepting notifications and waits for queued ones to be sent.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
