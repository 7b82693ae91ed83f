package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/vaccine-scheduler/internal/events"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
)

// NotificationWorker moves notification delivery off the request path.
// It subscribes to the domain events and pushes them onto a bounded
// queue drained by a single goroutine; bookings never wait on email or
// webhook delivery, and a full queue drops the notification rather
// than blocking the publisher.
type NotificationWorker struct {
	queue    chan events.Event
	notifier *service.NotificationService
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewNotificationWorker wires the worker into the dispatcher.
func NewNotificationWorker(dispatcher events.Dispatcher, notifier *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	w := &NotificationWorker{
		queue:    make(chan events.Event, queueSize),
		notifier: notifier,
		logger:   logger,
	}
	for _, eventType := range []events.EventType{
		events.EventReservationBooked,
		events.EventReservationCancelled,
		events.EventAvailabilityPublished,
		events.EventDosesRestocked,
	} {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
	return w
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
	}
	return nil
}

// Start launches the drain goroutine. It runs until Stop is called or
// the context is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.queue:
				if !ok {
					return
				}
				if err := w.notifier.Notify(ctx, event); err != nil {
					w.logger.Warn("notification delivery failed",
						zap.String("event_id", event.ID), zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop closes the queue and waits for in-flight deliveries.
func (w *NotificationWorker) Stop() {
	close(w.queue)
	w.wg.Wait()
}
