package api

import (
	"fmt"

	glua "github.com/yuin/gopher-lua"

	"github.com/todui/todui/internal/domain"
	"github.com/todui/todui/internal/plugin/extension"
	plua "github.com/todui/todui/internal/plugin/lua"
)

// uiModule implements td.ui. It is installed only in interactive mode;
// command-line invocations get no td.ui table at all.
type uiModule struct {
	ctx *Context
}

func (m *uiModule) Name() string { return "ui" }

func (m *uiModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "status", L.NewFunction(m.status))
	L.SetField(mod, "notify", L.NewFunction(m.notify))
	L.SetField(mod, "navigate", L.NewFunction(m.navigate))
	L.SetField(mod, "open_modal", L.NewFunction(m.openModal))
	L.SetField(mod, "refresh", L.NewFunction(m.refresh))

	L.SetField(mod, "add_column", L.NewFunction(m.addColumn))
	L.SetField(mod, "add_detail_section", L.NewFunction(m.addDetailSection))
	L.SetField(mod, "add_keybinding", L.NewFunction(m.addKeybinding))
	L.SetField(mod, "add_status_item", L.NewFunction(m.addStatusItem))
	L.SetField(mod, "add_modal", L.NewFunction(m.addModal))
	L.SetField(mod, "add_sidebar_section", L.NewFunction(m.addSidebarSection))
	L.SetField(mod, "add_command", L.NewFunction(m.addCommand))
	L.SetField(mod, "add_view", L.NewFunction(m.addView))
}

// status(msg)
func (m *uiModule) status(L *glua.LState) int {
	m.ctx.deps.UI.Status(L.CheckString(1))
	return 0
}

// notify(title, body)
func (m *uiModule) notify(L *glua.LState) int {
	m.ctx.deps.UI.Notify(L.CheckString(1), L.CheckString(2))
	return 0
}

// navigate(view)
func (m *uiModule) navigate(L *glua.LState) int {
	if err := m.ctx.deps.UI.Navigate(L.CheckString(1)); err != nil {
		L.RaiseError("ui.navigate: %v", err)
	}
	return 0
}

// open_modal(id)
func (m *uiModule) openModal(L *glua.LState) int {
	if err := m.ctx.deps.UI.OpenModal(L.CheckString(1)); err != nil {
		L.RaiseError("ui.open_modal: %v", err)
	}
	return 0
}

// refresh()
func (m *uiModule) refresh(L *glua.LState) int {
	m.ctx.deps.UI.RefreshTasks()
	return 0
}

// add_column{id=, title=, width=?, render=fn(task) -> string} -> bool
func (m *uiModule) addColumn(L *glua.LState) int {
	t := L.CheckTable(1)
	id := mustField(L, t, "id")
	render := mustFunc(L, t, "render")

	col := extension.TaskColumn{
		ID:     id,
		Plugin: m.ctx.deps.Plugin,
		Title:  optString(t, "title", id),
		Render: m.taskStringFunc(L, render, "column "+id),
	}
	if n, ok := t.RawGetString("width").(glua.LNumber); ok {
		col.Width = int(n)
	}
	L.Push(glua.LBool(m.ctx.deps.Extensions.TaskColumns.Add(col)))
	return 1
}

// add_detail_section{id=, title=, render=fn(task) -> {line, ...}} -> bool
func (m *uiModule) addDetailSection(L *glua.LState) int {
	t := L.CheckTable(1)
	id := mustField(L, t, "id")
	render := mustFunc(L, t, "render")

	sec := extension.DetailSection{
		ID:     id,
		Plugin: m.ctx.deps.Plugin,
		Title:  optString(t, "title", id),
		Render: m.taskLinesFunc(L, render, "detail section "+id),
	}
	L.Push(glua.LBool(m.ctx.deps.Extensions.DetailSections.Add(sec)))
	return 1
}

// add_keybinding{key=, action=fn(), desc=?, when=fn() -> bool} -> bool
func (m *uiModule) addKeybinding(L *glua.LState) int {
	t := L.CheckTable(1)
	rawCombo := mustField(L, t, "key")
	action := mustFunc(L, t, "action")

	combo, err := extension.NormalizeCombo(rawCombo)
	if err != nil {
		L.RaiseError("ui.add_keybinding: %v", err)
		return 0
	}

	kb := extension.Keybinding{
		Combo:       combo,
		Plugin:      m.ctx.deps.Plugin,
		Description: optString(t, "desc", ""),
		Handler: func() error {
			_, err := plua.CallFunc(L, action)
			return err
		},
	}
	if when, ok := plua.TableFunc(t, "when"); ok {
		kb.When = func() bool {
			results, err := plua.CallFunc(L, when)
			if err != nil {
				m.ctx.log.WithError(err).Warn("keybinding when predicate failed")
				return false
			}
			return len(results) > 0 && results[0] == true
		}
	}
	L.Push(glua.LBool(m.ctx.deps.Extensions.Keybindings.Add(kb)))
	return 1
}

// add_status_item{id=, align=?, render=fn() -> string} -> bool
func (m *uiModule) addStatusItem(L *glua.LState) int {
	t := L.CheckTable(1)
	id := mustField(L, t, "id")
	render := mustFunc(L, t, "render")

	item := extension.StatusBarItem{
		ID:     id,
		Plugin: m.ctx.deps.Plugin,
		Align:  optString(t, "align", "right"),
		Render: m.stringFunc(L, render, "status item "+id),
	}
	L.Push(glua.LBool(m.ctx.deps.Extensions.StatusBarItems.Add(item)))
	return 1
}

// add_modal{id=, title=?, render=fn() -> {line, ...}, on_close=?} -> bool
func (m *uiModule) addModal(L *glua.LState) int {
	t := L.CheckTable(1)
	id := mustField(L, t, "id")
	render := mustFunc(L, t, "render")

	modal := extension.Modal{
		ID:     id,
		Plugin: m.ctx.deps.Plugin,
		Title:  optString(t, "title", id),
		Render: m.linesFunc(L, render, "modal "+id),
	}
	if onClose, ok := plua.TableFunc(t, "on_close"); ok {
		modal.OnClose = func() {
			if _, err := plua.CallFunc(L, onClose); err != nil {
				m.ctx.log.WithError(err).Warn("modal on_close failed")
			}
		}
	}
	L.Push(glua.LBool(m.ctx.deps.Extensions.Modals.Add(modal)))
	return 1
}

// add_sidebar_section{id=, title=?, items=fn() -> {line, ...}} -> bool
func (m *uiModule) addSidebarSection(L *glua.LState) int {
	t := L.CheckTable(1)
	id := mustField(L, t, "id")
	items := mustFunc(L, t, "items")

	sec := extension.SidebarSection{
		ID:     id,
		Plugin: m.ctx.deps.Plugin,
		Title:  optString(t, "title", id),
		Items:  m.linesFunc(L, items, "sidebar section "+id),
	}
	L.Push(glua.LBool(m.ctx.deps.Extensions.SidebarSections.Add(sec)))
	return 1
}

// add_command{id=, title=, run=fn()} -> bool
func (m *uiModule) addCommand(L *glua.LState) int {
	t := L.CheckTable(1)
	id := mustField(L, t, "id")
	run := mustFunc(L, t, "run")

	cmd := extension.PaletteCommand{
		ID:     id,
		Plugin: m.ctx.deps.Plugin,
		Title:  optString(t, "title", id),
		Run: func() error {
			_, err := plua.CallFunc(L, run)
			return err
		},
	}
	L.Push(glua.LBool(m.ctx.deps.Extensions.PaletteCommands.Add(cmd)))
	return 1
}

// add_view{name=, title=?, render=fn() -> {line, ...}} -> bool
func (m *uiModule) addView(L *glua.LState) int {
	t := L.CheckTable(1)
	name := mustField(L, t, "name")
	render := mustFunc(L, t, "render")

	view := extension.View{
		Name:   name,
		Plugin: m.ctx.deps.Plugin,
		Title:  optString(t, "title", name),
		Render: m.linesFunc(L, render, "view "+name),
	}
	L.Push(glua.LBool(m.ctx.deps.Extensions.Views.Add(view)))
	return 1
}

// taskStringFunc wraps a Lua render function taking a task and returning a
// string. Failures log and render empty.
func (m *uiModule) taskStringFunc(L *glua.LState, fn *glua.LFunction, what string) func(domain.Task) string {
	return func(task domain.Task) string {
		results, err := plua.CallFunc(L, fn, task)
		if err != nil {
			m.ctx.log.WithError(err).Warnf("%s render failed", what)
			return ""
		}
		if len(results) > 0 {
			if s, ok := results[0].(string); ok {
				return s
			}
		}
		return ""
	}
}

func (m *uiModule) taskLinesFunc(L *glua.LState, fn *glua.LFunction, what string) func(domain.Task) []string {
	return func(task domain.Task) []string {
		return m.callLines(L, fn, what, task)
	}
}

func (m *uiModule) stringFunc(L *glua.LState, fn *glua.LFunction, what string) func() string {
	return func() string {
		results, err := plua.CallFunc(L, fn)
		if err != nil {
			m.ctx.log.WithError(err).Warnf("%s render failed", what)
			return ""
		}
		if len(results) > 0 {
			if s, ok := results[0].(string); ok {
				return s
			}
		}
		return ""
	}
}

func (m *uiModule) linesFunc(L *glua.LState, fn *glua.LFunction, what string) func() []string {
	return func() []string {
		return m.callLines(L, fn, what)
	}
}

func (m *uiModule) callLines(L *glua.LState, fn *glua.LFunction, what string, args ...any) []string {
	results, err := plua.CallFunc(L, fn, args...)
	if err != nil {
		m.ctx.log.WithError(err).Warnf("%s render failed", what)
		return nil
	}
	if len(results) == 0 {
		return nil
	}
	arr, ok := results[0].([]any)
	if !ok {
		return nil
	}
	lines := make([]string, 0, len(arr))
	for _, e := range arr {
		lines = append(lines, fmt.Sprint(e))
	}
	return lines
}

func mustField(L *glua.LState, t *glua.LTable, key string) string {
	s, ok := plua.TableString(t, key)
	if !ok || s == "" {
		L.RaiseError("missing required field %q", key)
	}
	return s
}

func mustFunc(L *glua.LState, t *glua.LTable, key string) *glua.LFunction {
	fn, ok := plua.TableFunc(t, key)
	if !ok {
		L.RaiseError("missing required function %q", key)
	}
	return fn
}

func optString(t *glua.LTable, key, fallback string) string {
	if s, ok := plua.TableString(t, key); ok {
		return s
	}
	return fallback
}
