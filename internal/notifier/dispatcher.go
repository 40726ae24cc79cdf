package notifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher delivers events on a background worker so a slow gateway
// never holds up a conversation. A full queue drops the event.
type Dispatcher struct {
	notifier Notifier
	log      *zap.Logger
	queue    chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(n Notifier, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		log:      log,
		queue:    make(chan Event, 100),
		done:     make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.notifier.Notify(ctx, ev); err != nil {
			d.log.Warn("notification failed",
				zap.String("kind", string(ev.Kind)),
				zap.String("appointment_id", ev.AppointmentID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("notification queue full, dropping event",
			zap.String("kind", string(ev.Kind)),
			zap.String("appointment_id", ev.AppointmentID),
		)
	}
}

// Close drains pending events. Dispatch must not be called after Close.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.queue) })
	<-d.done
}
