package hook

import (
	"time"

	"github.com/todui/todui/internal/domain"
)

// Kind identifies an event on the bus.
type Kind string

// Event kinds. The *-ing kinds are before-events; the rest are after-events.
const (
	KindTaskCreating   Kind = "task.creating"
	KindTaskCreated    Kind = "task.created"
	KindTaskUpdating   Kind = "task.updating"
	KindTaskUpdated    Kind = "task.updated"
	KindTaskCompleting Kind = "task.completing"
	KindTaskCompleted  Kind = "task.completed"
	KindTaskDeleting   Kind = "task.deleting"
	KindTaskDeleted    Kind = "task.deleted"
	KindAppStartup     Kind = "app.startup"
	KindAppShutdown    Kind = "app.shutdown"
	KindViewChanged    Kind = "view.changed"
	KindTimerStarted   Kind = "timer.started"
	KindTimerStopped   Kind = "timer.stopped"
)

var beforeKinds = map[Kind]bool{
	KindTaskCreating:   true,
	KindTaskUpdating:   true,
	KindTaskCompleting: true,
	KindTaskDeleting:   true,
}

var allKinds = map[Kind]bool{
	KindTaskCreating: true, KindTaskCreated: true,
	KindTaskUpdating: true, KindTaskUpdated: true,
	KindTaskCompleting: true, KindTaskCompleted: true,
	KindTaskDeleting: true, KindTaskDeleted: true,
	KindAppStartup: true, KindAppShutdown: true,
	KindViewChanged: true, KindTimerStarted: true, KindTimerStopped: true,
}

// Before reports whether the kind is a before-event (cancellable, waterfall).
func (k Kind) Before() bool {
	return beforeKinds[k]
}

// Valid reports whether the kind is known to the bus.
func (k Kind) Valid() bool {
	return allKinds[k]
}

// Payload is the tagged union of event payloads; exactly one concrete type
// exists per kind.
type Payload interface {
	EventKind() Kind
}

// Waterfaller is implemented by before-event payloads whose parameters
// handlers may rewrite.
type Waterfaller interface {
	Payload

	// Params returns the mutable parameter map handler updates merge into,
	// allocating it on first use.
	Params() map[string]any
}

// TaskCreating fires before a task is created. CreateParams holds the
// proposed creation parameters; handlers may rewrite them.
type TaskCreating struct {
	CreateParams map[string]any
}

func (p *TaskCreating) EventKind() Kind { return KindTaskCreating }

func (p *TaskCreating) Params() map[string]any {
	if p.CreateParams == nil {
		p.CreateParams = make(map[string]any)
	}
	return p.CreateParams
}

// TaskCreated fires after a task was created.
type TaskCreated struct {
	Task domain.Task
}

func (p *TaskCreated) EventKind() Kind { return KindTaskCreated }

// TaskUpdating fires before a task update. UpdateParams holds the proposed
// changes; handlers may rewrite them.
type TaskUpdating struct {
	Task         domain.Task
	UpdateParams map[string]any
}

func (p *TaskUpdating) EventKind() Kind { return KindTaskUpdating }

func (p *TaskUpdating) Params() map[string]any {
	if p.UpdateParams == nil {
		p.UpdateParams = make(map[string]any)
	}
	return p.UpdateParams
}

// TaskUpdated fires after a task was updated.
type TaskUpdated struct {
	Task domain.Task
}

func (p *TaskUpdated) EventKind() Kind { return KindTaskUpdated }

// TaskCompleting fires before a task is completed.
type TaskCompleting struct {
	Task domain.Task
}

func (p *TaskCompleting) EventKind() Kind { return KindTaskCompleting }

// TaskCompleted fires after a task was completed.
type TaskCompleted struct {
	Task domain.Task
}

func (p *TaskCompleted) EventKind() Kind { return KindTaskCompleted }

// TaskDeleting fires before a task is deleted.
type TaskDeleting struct {
	Task domain.Task
}

func (p *TaskDeleting) EventKind() Kind { return KindTaskDeleting }

// TaskDeleted fires after a task was deleted.
type TaskDeleted struct {
	TaskID string
}

func (p *TaskDeleted) EventKind() Kind { return KindTaskDeleted }

// AppStartup fires once all plugins are loaded.
type AppStartup struct{}

func (p *AppStartup) EventKind() Kind { return KindAppStartup }

// AppShutdown fires before the process exits.
type AppShutdown struct{}

func (p *AppShutdown) EventKind() Kind { return KindAppShutdown }

// ViewChanged fires after the main view switches.
type ViewChanged struct {
	View string
}

func (p *ViewChanged) EventKind() Kind { return KindViewChanged }

// TimerStarted fires after the time tracker starts on a task.
type TimerStarted struct {
	TaskID string
}

func (p *TimerStarted) EventKind() Kind { return KindTimerStarted }

// TimerStopped fires after the time tracker stops.
type TimerStopped struct {
	TaskID  string
	Elapsed time.Duration
}

func (p *TimerStopped) EventKind() Kind { return KindTimerStopped }
