package api

import (
	glua "github.com/yuin/gopher-lua"

	"github.com/todui/todui/internal/plugin/hook"
	plua "github.com/todui/todui/internal/plugin/lua"
)

// hooksModule implements td.hooks. Handlers registered here run on the
// goroutine emitting the event, which is the same one driving this plugin's
// Lua state.
type hooksModule struct {
	ctx *Context
}

func (m *hooksModule) Name() string { return "hooks" }

func (m *hooksModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "on", L.NewFunction(m.on))
	L.SetField(mod, "off", L.NewFunction(m.off))
}

// on(event, fn) -> id
// Registers fn for the named event. For before-events fn may return a table
// with any of: message, cancel, reason, update. A plain string return is
// treated as a message.
func (m *hooksModule) on(L *glua.LState) int {
	kind := hook.Kind(L.CheckString(1))
	fn := L.CheckFunction(2)

	handler := func(p hook.Payload) (hook.HandlerResult, error) {
		results, err := plua.CallFunc(L, fn, payloadTable(L, p))
		if err != nil {
			return hook.HandlerResult{}, err
		}
		return handlerResultFromLua(results), nil
	}

	id, err := m.ctx.deps.Bus.On(kind, handler, m.ctx.deps.Plugin)
	if err != nil {
		L.RaiseError("hooks.on: %v", err)
		return 0
	}
	L.Push(glua.LString(id))
	return 1
}

// off(event, id) -> bool
func (m *hooksModule) off(L *glua.LState) int {
	kind := hook.Kind(L.CheckString(1))
	id := L.CheckString(2)
	L.Push(glua.LBool(m.ctx.deps.Bus.Off(kind, id)))
	return 1
}

// payloadTable converts an event payload to the table handed to Lua
// handlers. The event name rides along under "event".
func payloadTable(L *glua.LState, p hook.Payload) *glua.LTable {
	t, ok := plua.ToLua(L, p).(*glua.LTable)
	if !ok {
		t = L.NewTable()
	}
	t.RawSetString("event", glua.LString(string(p.EventKind())))
	return t
}

// handlerResultFromLua interprets a Lua handler's return values.
func handlerResultFromLua(results []any) hook.HandlerResult {
	if len(results) == 0 || results[0] == nil {
		return hook.HandlerResult{}
	}

	switch v := results[0].(type) {
	case string:
		return hook.HandlerResult{Message: v}
	case map[string]any:
		var hr hook.HandlerResult
		if msg, ok := v["message"].(string); ok {
			hr.Message = msg
		}
		if cancel, ok := v["cancel"].(bool); ok {
			hr.Cancel = cancel
		}
		if reason, ok := v["reason"].(string); ok {
			hr.Reason = reason
		}
		if update, ok := v["update"].(map[string]any); ok {
			hr.Update = update
		}
		return hr
	default:
		return hook.HandlerResult{}
	}
}
