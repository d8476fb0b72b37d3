package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

type Collector struct {
	requests             atomic.Uint64
	errors               atomic.Uint64
	notificationsSent    atomic.Uint64
	notificationsFailed  atomic.Uint64
	notificationsDropped atomic.Uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncRequests()             { c.requests.Add(1) }
func (c *Collector) IncErrors()               { c.errors.Add(1) }
func (c *Collector) IncNotificationsSent()    { c.notificationsSent.Add(1) }
func (c *Collector) IncNotificationsFailed()  { c.notificationsFailed.Add(1) }
func (c *Collector) IncNotificationsDropped() { c.notificationsDropped.Add(1) }

type Snapshot struct {
	Requests             uint64
	Errors               uint64
	NotificationsSent    uint64
	NotificationsFailed  uint64
	NotificationsDropped uint64
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Requests:             c.requests.Load(),
		Errors:               c.errors.Load(),
		NotificationsSent:    c.notificationsSent.Load(),
		NotificationsFailed:  c.notificationsFailed.Load(),
		NotificationsDropped: c.notificationsDropped.Load(),
	}
}

// WriteText renders the counters in the Prometheus text exposition format.
func (c *Collector) WriteText(w http.ResponseWriter) {
	var s Snapshot
	if c != nil {
		s = c.Snapshot()
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	counter(w, "taxpro_http_requests_total", "Total number of HTTP requests.", s.Requests)
	counter(w, "taxpro_http_errors_total", "Total number of 5xx HTTP responses.", s.Errors)
	counter(w, "taxpro_notifications_sent_total", "Notifications handed to the transport.", s.NotificationsSent)
	counter(w, "taxpro_notifications_failed_total", "Notifications the transport rejected.", s.NotificationsFailed)
	counter(w, "taxpro_notifications_dropped_total", "Notifications dropped before delivery.", s.NotificationsDropped)
}

func counter(w http.ResponseWriter, name, help string, value uint64) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	_, _ = fmt.Fprintf(w, "# TYPE %s counter\n", name)
	_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
}
