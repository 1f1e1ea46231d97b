// Package notify is the best-effort side channel for operational event
// summaries (logins, logouts, nickname changes). Delivery failures are
// logged and counted, never surfaced to the operation that raised the event.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/metrics"
)

// EventKind labels the operational events the sink receives.
type EventKind string

const (
	EventLogin          EventKind = "login"
	EventLogout         EventKind = "logout"
	EventNicknameChange EventKind = "nickname_change"
)

// Event is one operational event with its correlation context.
type Event struct {
	Kind        EventKind
	Username    string
	OldUsername string // nickname changes only
	Email       string
	RemoteAddr  string
	UserAgent   string
	At          time.Time
}

// Sink delivers one event summary. Implementations must bound their own
// delivery time; the dispatcher additionally enforces a deadline.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// NoopSink is the inert sink used when no credentials are configured.
// Missing configuration is a legitimate state, not an error.
type NoopSink struct{}

func (NoopSink) Deliver(context.Context, Event) error { return nil }

const (
	queueSize       = 64
	deliveryTimeout = 5 * time.Second
)

// Dispatcher decouples event delivery from the operations that raise events.
// Dispatch never blocks: events go onto a bounded queue consumed by a single
// background sender, and a full queue drops the event.
type Dispatcher struct {
	sink   Sink
	logger zerolog.Logger
	queue  chan Event
	done   chan struct{}
}

// NewDispatcher creates a dispatcher and starts its background sender.
func NewDispatcher(sink Sink, logger zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:   sink,
		logger: logger,
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch enqueues an event without blocking. No entity lock is ever held
// here; callers fire after their store operation has completed.
func (d *Dispatcher) Dispatch(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case d.queue <- ev:
	default:
		metrics.NotifyFailures.WithLabelValues("queue_full").Inc()
		d.logger.Warn().
			Str("kind", string(ev.Kind)).
			Msg("notification queue full, event dropped")
	}
}

// Close stops the sender after draining queued events.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		err := d.sink.Deliver(ctx, ev)
		cancel()
		if err != nil {
			metrics.NotifyFailures.WithLabelValues("deliver").Inc()
			d.logger.Warn().
				Err(err).
				Str("kind", string(ev.Kind)).
				Str("username", ev.Username).
				Msg("notification delivery failed")
			continue
		}
		metrics.NotifyDelivered.Inc()
	}
}
