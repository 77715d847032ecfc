package api

import (
	glua "github.com/yuin/gopher-lua"

	plua "github.com/todui/todui/internal/plugin/lua"
)

// sectionsModule implements td.sections.
type sectionsModule struct {
	ctx *Context
}

func (m *sectionsModule) Name() string { return "sections" }

func (m *sectionsModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "list", L.NewFunction(m.list))
	L.SetField(mod, "create", L.NewFunction(m.create))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
}

// list(project_id) -> {section, ...}
func (m *sectionsModule) list(L *glua.LState) int {
	projectID := L.CheckString(1)
	sections, err := m.ctx.deps.Providers.Sections.List(m.ctx.reqCtx(), projectID)
	if err != nil {
		L.RaiseError("sections.list: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, sections))
	return 1
}

// create(project_id, name) -> section
func (m *sectionsModule) create(L *glua.LState) int {
	projectID := L.CheckString(1)
	name := L.CheckString(2)
	section, err := m.ctx.deps.Providers.Sections.Create(m.ctx.reqCtx(), projectID, name)
	if err != nil {
		L.RaiseError("sections.create: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, section))
	return 1
}

// delete(id)
func (m *sectionsModule) delete(L *glua.LState) int {
	id := L.CheckString(1)
	if err := m.ctx.deps.Providers.Sections.Delete(m.ctx.reqCtx(), id); err != nil {
		L.RaiseError("sections.delete: %v", err)
	}
	return 0
}
