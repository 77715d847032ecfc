package api

import (
	glua "github.com/yuin/gopher-lua"

	plua "github.com/todui/todui/internal/plugin/lua"
)

// labelsModule implements td.labels.
type labelsModule struct {
	ctx *Context
}

func (m *labelsModule) Name() string { return "labels" }

func (m *labelsModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "list", L.NewFunction(m.list))
	L.SetField(mod, "create", L.NewFunction(m.create))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
}

// list() -> {label, ...}
func (m *labelsModule) list(L *glua.LState) int {
	labels, err := m.ctx.deps.Providers.Labels.List(m.ctx.reqCtx())
	if err != nil {
		L.RaiseError("labels.list: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, labels))
	return 1
}

// create(name) -> label
func (m *labelsModule) create(L *glua.LState) int {
	name := L.CheckString(1)
	label, err := m.ctx.deps.Providers.Labels.Create(m.ctx.reqCtx(), name)
	if err != nil {
		L.RaiseError("labels.create: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, label))
	return 1
}

// delete(id)
func (m *labelsModule) delete(L *glua.LState) int {
	id := L.CheckString(1)
	if err := m.ctx.deps.Providers.Labels.Delete(m.ctx.reqCtx(), id); err != nil {
		L.RaiseError("labels.delete: %v", err)
	}
	return 0
}
