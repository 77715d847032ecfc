package extension

import (
	"github.com/sirupsen/logrus"

	"github.com/todui/todui/internal/domain"
)

// TaskColumn adds a column to the task list.
type TaskColumn struct {
	ID     string
	Plugin string
	Title  string
	Width  int
	Render func(t domain.Task) string
}

func (c TaskColumn) ExtensionID() string { return c.ID }
func (c TaskColumn) OwnerName() string   { return c.Plugin }

// DetailSection adds a block to the task detail pane.
type DetailSection struct {
	ID     string
	Plugin string
	Title  string
	Render func(t domain.Task) []string
}

func (s DetailSection) ExtensionID() string { return s.ID }
func (s DetailSection) OwnerName() string   { return s.Plugin }

// Keybinding binds a normalized key combo to an action. Identity is the
// combo string itself. When, if set, is evaluated at dispatch time; a false
// result means the binding does not fire for that keypress.
type Keybinding struct {
	Combo       string
	Plugin      string
	Description string
	Handler     func() error
	When        func() bool
}

func (k Keybinding) ExtensionID() string { return k.Combo }
func (k Keybinding) OwnerName() string   { return k.Plugin }

// Active reports whether the binding should fire right now.
func (k Keybinding) Active() bool {
	return k.When == nil || k.When()
}

// StatusBarItem adds a segment to the status bar.
type StatusBarItem struct {
	ID     string
	Plugin string
	// Align is "left" or "right".
	Align  string
	Render func() string
}

func (i StatusBarItem) ExtensionID() string { return i.ID }
func (i StatusBarItem) OwnerName() string   { return i.Plugin }

// Modal is a plugin-defined dialog the host can open by id.
type Modal struct {
	ID     string
	Plugin string
	Title  string
	Render func() []string
	// OnClose, if set, runs when the modal is dismissed.
	OnClose func()
}

func (m Modal) ExtensionID() string { return m.ID }
func (m Modal) OwnerName() string   { return m.Plugin }

// SidebarSection adds a group of entries to the navigation sidebar.
type SidebarSection struct {
	ID     string
	Plugin string
	Title  string
	Items  func() []string
}

func (s SidebarSection) ExtensionID() string { return s.ID }
func (s SidebarSection) OwnerName() string   { return s.Plugin }

// PaletteCommand adds an entry to the command palette.
type PaletteCommand struct {
	ID     string
	Plugin string
	Title  string
	Run    func() error
}

func (c PaletteCommand) ExtensionID() string { return c.ID }
func (c PaletteCommand) OwnerName() string   { return c.Plugin }

// View is a full-screen plugin-defined view, switchable by name.
type View struct {
	Name   string
	Plugin string
	Title  string
	Render func() []string
}

func (v View) ExtensionID() string { return v.Name }
func (v View) OwnerName() string   { return v.Plugin }

// Set bundles every registry the host exposes to plugins.
type Set struct {
	TaskColumns     *Registry[TaskColumn]
	DetailSections  *Registry[DetailSection]
	Keybindings     *Registry[Keybinding]
	StatusBarItems  *Registry[StatusBarItem]
	Modals          *Registry[Modal]
	SidebarSections *Registry[SidebarSection]
	PaletteCommands *Registry[PaletteCommand]
	Views           *Registry[View]
}

// NewSet creates the full registry set.
func NewSet(log *logrus.Logger) *Set {
	return &Set{
		TaskColumns:     NewRegistry[TaskColumn]("task_column", log),
		DetailSections:  NewRegistry[DetailSection]("detail_section", log),
		Keybindings:     NewRegistry[Keybinding]("keybinding", log),
		StatusBarItems:  NewRegistry[StatusBarItem]("status_bar_item", log),
		Modals:          NewRegistry[Modal]("modal", log),
		SidebarSections: NewRegistry[SidebarSection]("sidebar_section", log),
		PaletteCommands: NewRegistry[PaletteCommand]("palette_command", log),
		Views:           NewRegistry[View]("view", log),
	}
}

// RemoveAllForOwner removes every extension the named plugin registered, in
// any registry, and returns the total removed.
func (s *Set) RemoveAllForOwner(owner string) int {
	return s.TaskColumns.RemoveAllForOwner(owner) +
		s.DetailSections.RemoveAllForOwner(owner) +
		s.Keybindings.RemoveAllForOwner(owner) +
		s.StatusBarItems.RemoveAllForOwner(owner) +
		s.Modals.RemoveAllForOwner(owner) +
		s.SidebarSections.RemoveAllForOwner(owner) +
		s.PaletteCommands.RemoveAllForOwner(owner) +
		s.Views.RemoveAllForOwner(owner)
}
