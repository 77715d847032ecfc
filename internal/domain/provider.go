package domain

import "context"

// TaskParams carries the mutable fields for task creation and updates.
// Hook handlers may rewrite these before the operation runs.
type TaskParams struct {
	Content     string   `json:"content,omitempty"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"projectId,omitempty"`
	SectionID   string   `json:"sectionId,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	DueString   string   `json:"dueString,omitempty"`
}

// TaskProvider performs task CRUD against the backing API.
type TaskProvider interface {
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, projectID string) ([]Task, error)
	Create(ctx context.Context, params TaskParams) (*Task, error)
	Update(ctx context.Context, id string, params TaskParams) (*Task, error)
	Complete(ctx context.Context, id string) error
	Reopen(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ProjectProvider performs project CRUD.
type ProjectProvider interface {
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Create(ctx context.Context, name string) (*Project, error)
	Delete(ctx context.Context, id string) error
}

// LabelProvider performs label CRUD.
type LabelProvider interface {
	List(ctx context.Context) ([]Label, error)
	Create(ctx context.Context, name string) (*Label, error)
	Delete(ctx context.Context, id string) error
}

// SectionProvider performs section CRUD.
type SectionProvider interface {
	List(ctx context.Context, projectID string) ([]Section, error)
	Create(ctx context.Context, projectID, name string) (*Section, error)
	Delete(ctx context.Context, id string) error
}

// CommentProvider performs comment CRUD.
type CommentProvider interface {
	List(ctx context.Context, taskID string) ([]Comment, error)
	Create(ctx context.Context, taskID, content string) (*Comment, error)
	Delete(ctx context.Context, id string) error
}

// Providers bundles every domain provider handed to the plugin system.
// Individual fields may be nil; the corresponding API surface is then
// unavailable to plugins.
type Providers struct {
	Tasks    TaskProvider
	Projects ProjectProvider
	Labels   LabelProvider
	Sections SectionProvider
	Comments CommentProvider
}

// UIController exposes the interactive-mode UI operations plugins may invoke.
// It is nil in command-line mode.
type UIController interface {
	// Status shows a transient message in the status bar.
	Status(msg string)

	// Notify shows a notification with a title and body.
	Notify(title, body string)

	// Navigate switches the main area to the named view.
	Navigate(view string) error

	// OpenModal opens a registered modal by identifier.
	OpenModal(id string) error

	// RefreshTasks forces a task-list reload.
	RefreshTasks()
}
