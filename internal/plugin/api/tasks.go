package api

import (
	glua "github.com/yuin/gopher-lua"

	"github.com/todui/todui/internal/domain"
	plua "github.com/todui/todui/internal/plugin/lua"
)

// tasksModule implements td.tasks.
type tasksModule struct {
	ctx *Context
}

func (m *tasksModule) Name() string { return "tasks" }

func (m *tasksModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "list", L.NewFunction(m.list))
	L.SetField(mod, "get", L.NewFunction(m.get))
	L.SetField(mod, "create", L.NewFunction(m.create))
	L.SetField(mod, "update", L.NewFunction(m.update))
	L.SetField(mod, "complete", L.NewFunction(m.complete))
	L.SetField(mod, "reopen", L.NewFunction(m.reopen))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
}

// list(project_id?) -> {task, ...}
func (m *tasksModule) list(L *glua.LState) int {
	projectID := L.OptString(1, "")

	tasks, err := m.ctx.deps.Providers.Tasks.List(m.ctx.reqCtx(), projectID)
	if err != nil {
		L.RaiseError("tasks.list: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, tasks))
	return 1
}

// get(id) -> task
func (m *tasksModule) get(L *glua.LState) int {
	id := L.CheckString(1)

	task, err := m.ctx.deps.Providers.Tasks.Get(m.ctx.reqCtx(), id)
	if err != nil {
		L.RaiseError("tasks.get: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, task))
	return 1
}

// create(params) -> task
func (m *tasksModule) create(L *glua.LState) int {
	params := taskParamsFromTable(L.CheckTable(1))

	task, err := m.ctx.deps.Providers.Tasks.Create(m.ctx.reqCtx(), params)
	if err != nil {
		L.RaiseError("tasks.create: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, task))
	return 1
}

// update(id, params) -> task
func (m *tasksModule) update(L *glua.LState) int {
	id := L.CheckString(1)
	params := taskParamsFromTable(L.CheckTable(2))

	task, err := m.ctx.deps.Providers.Tasks.Update(m.ctx.reqCtx(), id, params)
	if err != nil {
		L.RaiseError("tasks.update: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, task))
	return 1
}

// complete(id)
func (m *tasksModule) complete(L *glua.LState) int {
	id := L.CheckString(1)
	if err := m.ctx.deps.Providers.Tasks.Complete(m.ctx.reqCtx(), id); err != nil {
		L.RaiseError("tasks.complete: %v", err)
	}
	return 0
}

// reopen(id)
func (m *tasksModule) reopen(L *glua.LState) int {
	id := L.CheckString(1)
	if err := m.ctx.deps.Providers.Tasks.Reopen(m.ctx.reqCtx(), id); err != nil {
		L.RaiseError("tasks.reopen: %v", err)
	}
	return 0
}

// delete(id)
func (m *tasksModule) delete(L *glua.LState) int {
	id := L.CheckString(1)
	if err := m.ctx.deps.Providers.Tasks.Delete(m.ctx.reqCtx(), id); err != nil {
		L.RaiseError("tasks.delete: %v", err)
	}
	return 0
}

// taskParamsFromTable reads the fields tasks.create and tasks.update accept.
// Field names match the task table shape plugins read back.
func taskParamsFromTable(t *glua.LTable) domain.TaskParams {
	var p domain.TaskParams
	if s, ok := plua.TableString(t, "content"); ok {
		p.Content = s
	}
	if s, ok := plua.TableString(t, "description"); ok {
		p.Description = s
	}
	if s, ok := plua.TableString(t, "projectId"); ok {
		p.ProjectID = s
	}
	if s, ok := plua.TableString(t, "sectionId"); ok {
		p.SectionID = s
	}
	if s, ok := plua.TableString(t, "dueString"); ok {
		p.DueString = s
	}
	if n, ok := t.RawGetString("priority").(glua.LNumber); ok {
		p.Priority = int(n)
	}
	if labels, ok := plua.TableTable(t, "labels"); ok {
		labels.ForEach(func(_, v glua.LValue) {
			if s, ok := v.(glua.LString); ok {
				p.Labels = append(p.Labels, string(s))
			}
		})
	}
	return p
}
