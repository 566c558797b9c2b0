package notification

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Notifier is what the workflow sees: hand over the event and move on.
// Delivery failure must never reach the caller.
type Notifier interface {
	EnqueueSubmitted(event Event)
	EnqueueApproved(event Event)
}

type delivery struct {
	kind  Kind
	event Event
}

// Dispatcher is a bounded fire-and-forget delivery queue with its own
// lifecycle. When the queue is full the event is dropped with a warning
// rather than blocking the submitting request.
type Dispatcher struct {
	transport Transport
	queue     chan delivery
	logger    *zap.Logger

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

func NewDispatcher(transport Transport, queueSize int, logger ...*zap.Logger) *Dispatcher {
	l := zap.L().Named("notification.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.dispatcher")
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		transport: transport,
		queue:     make(chan delivery, queueSize),
		logger:    l,
		done:      make(chan struct{}),
	}
}

// Start launches the delivery worker. Call Stop to drain and finish.
func (d *Dispatcher) Start() {
	go func() {
		defer close(d.done)
		for dl := range d.queue {
			if err := d.transport.Send(context.Background(), dl.kind, dl.event); err != nil {
				// Soft failure only: the store write already happened and
				// must not be rolled back because a webhook misbehaved.
				d.logger.Warn("webhook delivery failed",
					zap.String("kind", string(dl.kind)),
					zap.String("employee_id", dl.event.EmployeeID),
					zap.Error(err),
				)
				continue
			}
			d.logger.Info("webhook delivered",
				zap.String("kind", string(dl.kind)),
				zap.String("employee_id", dl.event.EmployeeID),
			)
		}
	}()
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) EnqueueSubmitted(event Event) { d.enqueue(KindSubmitted, event) }
func (d *Dispatcher) EnqueueApproved(event Event)  { d.enqueue(KindApproved, event) }

func (d *Dispatcher) enqueue(kind Kind, event Event) {
	// The read lock keeps Stop from closing the queue between the
	// stopped check and the send; sending on a closed channel panics.
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.logger.Warn("notification queue closed, dropping event",
			zap.String("kind", string(kind)),
			zap.String("employee_id", event.EmployeeID),
		)
		return
	}

	select {
	case d.queue <- delivery{kind: kind, event: event}:
	default:
		d.logger.Warn("notification queue full, dropping event",
			zap.String("kind", string(kind)),
			zap.String("employee_id", event.EmployeeID),
		)
	}
}
