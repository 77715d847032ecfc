package domain

import "time"

// Task is a single task item.
type Task struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Description string    `json:"description,omitempty"`
	ProjectID   string    `json:"projectId,omitempty"`
	SectionID   string    `json:"sectionId,omitempty"`
	Priority    int       `json:"priority"` // 1 (lowest) through 4 (highest)
	Labels      []string  `json:"labels,omitempty"`
	Due         *DueDate  `json:"due,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DueDate is a task due date, optionally with a time component.
type DueDate struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Datetime  string `json:"datetime,omitempty"`
	Recurring bool   `json:"recurring,omitempty"`
	String    string `json:"string,omitempty"` // human form, e.g. "every friday"
}

// Project groups tasks.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	Favorite bool   `json:"favorite,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

// Label is a user-defined task label.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Section subdivides a project.
type Section struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Order     int    `json:"order"`
}

// Comment is a note attached to a task.
type Comment struct {
	ID       string    `json:"id"`
	TaskID   string    `json:"taskId"`
	Content  string    `json:"content"`
	PostedAt time.Time `json:"postedAt"`
}
