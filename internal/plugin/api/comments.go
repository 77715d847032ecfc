package api

import (
	glua "github.com/yuin/gopher-lua"

	plua "github.com/todui/todui/internal/plugin/lua"
)

// commentsModule implements td.comments.
type commentsModule struct {
	ctx *Context
}

func (m *commentsModule) Name() string { return "comments" }

func (m *commentsModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "list", L.NewFunction(m.list))
	L.SetField(mod, "create", L.NewFunction(m.create))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
}

// list(task_id) -> {comment, ...}
func (m *commentsModule) list(L *glua.LState) int {
	taskID := L.CheckString(1)
	comments, err := m.ctx.deps.Providers.Comments.List(m.ctx.reqCtx(), taskID)
	if err != nil {
		L.RaiseError("comments.list: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, comments))
	return 1
}

// create(task_id, content) -> comment
func (m *commentsModule) create(L *glua.LState) int {
	taskID := L.CheckString(1)
	content := L.CheckString(2)
	comment, err := m.ctx.deps.Providers.Comments.Create(m.ctx.reqCtx(), taskID, content)
	if err != nil {
		L.RaiseError("comments.create: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, comment))
	return 1
}

// delete(id)
func (m *commentsModule) delete(L *glua.LState) int {
	id := L.CheckString(1)
	if err := m.ctx.deps.Providers.Comments.Delete(m.ctx.reqCtx(), id); err != nil {
		L.RaiseError("comments.delete: %v", err)
	}
	return 0
}
