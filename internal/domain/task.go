package domain

// TaskKind discriminates deferred confirmation tasks.
type TaskKind string

const (
	TaskConferenceCreated TaskKind = "conference_created"
	TaskSessionCreated    TaskKind = "session_created"
)

// ConfirmationTask is the payload handed to the deferred task dispatcher:
// the recipient address and a textual description of what was created.
type ConfirmationTask struct {
	ID    string
	Kind  TaskKind
	Email string
	Info  string
}

// TaskDispatcher enqueues best-effort background work decoupled from the
// request path. Enqueue must never block; a task that cannot be accepted
// is dropped and logged, never surfaced to the caller.
type TaskDispatcher interface {
	Enqueue(task ConfirmationTask)
}
