package tasks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"conferencecentral/internal/domain"
)

// Dispatcher is an in-process deferred task queue: a buffered channel fed
// by Enqueue and drained by a fixed worker pool that sends confirmation
// emails. Enqueue never blocks the caller; when the queue is full the
// task is dropped and logged.
type Dispatcher struct {
	emailService domain.EmailService
	logger       *slog.Logger
	queue        chan domain.ConfirmationTask
	wg           sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewDispatcher creates a Dispatcher with the given queue capacity.
// Call Start before enqueueing and Stop on shutdown.
func NewDispatcher(emailService domain.EmailService, logger *slog.Logger, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		emailService: emailService,
		logger:       logger,
		queue:        make(chan domain.ConfirmationTask, queueSize),
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Enqueue accepts the task for background delivery. It never blocks and
// never returns an error: delivery is at-least-once best effort, and a
// failure to enqueue must not affect the caller's already-committed write.
func (d *Dispatcher) Enqueue(task domain.ConfirmationTask) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		d.logger.Warn("task dropped, dispatcher stopped", "task_id", task.ID, "kind", task.Kind)
		return
	}
	select {
	case d.queue <- task:
	default:
		d.logger.Warn("task dropped, queue full", "task_id", task.ID, "kind", task.Kind)
	}
}

// Stop closes the queue and waits for in-flight tasks to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.queue {
		d.deliver(task)
	}
}

func (d *Dispatcher) deliver(task domain.ConfirmationTask) {
	ctx := context.Background()
	var err error
	switch task.Kind {
	case domain.TaskConferenceCreated:
		err = d.emailService.SendConferenceCreated(ctx, &domain.ConferenceCreatedEmailData{
			Email:          task.Email,
			ConferenceInfo: task.Info,
		})
	case domain.TaskSessionCreated:
		err = d.emailService.SendSessionCreated(ctx, &domain.SessionCreatedEmailData{
			Email:       task.Email,
			SessionInfo: task.Info,
		})
	default:
		d.logger.Warn("unknown task kind", "task_id", task.ID, "kind", task.Kind)
		return
	}
	if err != nil {
		// Best effort: log and move on, never roll anything back.
		d.logger.Error("task delivery failed", "task_id", task.ID, "kind", task.Kind, "err", err)
	}
}
