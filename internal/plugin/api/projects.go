package api

import (
	glua "github.com/yuin/gopher-lua"

	plua "github.com/todui/todui/internal/plugin/lua"
)

// projectsModule implements td.projects.
type projectsModule struct {
	ctx *Context
}

func (m *projectsModule) Name() string { return "projects" }

func (m *projectsModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "list", L.NewFunction(m.list))
	L.SetField(mod, "get", L.NewFunction(m.get))
	L.SetField(mod, "create", L.NewFunction(m.create))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
}

// list() -> {project, ...}
func (m *projectsModule) list(L *glua.LState) int {
	projects, err := m.ctx.deps.Providers.Projects.List(m.ctx.reqCtx())
	if err != nil {
		L.RaiseError("projects.list: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, projects))
	return 1
}

// get(id) -> project
func (m *projectsModule) get(L *glua.LState) int {
	id := L.CheckString(1)
	project, err := m.ctx.deps.Providers.Projects.Get(m.ctx.reqCtx(), id)
	if err != nil {
		L.RaiseError("projects.get: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, project))
	return 1
}

// create(name) -> project
func (m *projectsModule) create(L *glua.LState) int {
	name := L.CheckString(1)
	project, err := m.ctx.deps.Providers.Projects.Create(m.ctx.reqCtx(), name)
	if err != nil {
		L.RaiseError("projects.create: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, project))
	return 1
}

// delete(id)
func (m *projectsModule) delete(L *glua.LState) int {
	id := L.CheckString(1)
	if err := m.ctx.deps.Providers.Projects.Delete(m.ctx.reqCtx(), id); err != nil {
		L.RaiseError("projects.delete: %v", err)
	}
	return 0
}
