package api

import (
	"time"

	"github.com/google/uuid"
	glua "github.com/yuin/gopher-lua"
)

// utilModule implements td.util.
type utilModule struct{}

func (m *utilModule) Name() string { return "util" }

func (m *utilModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "uuid", L.NewFunction(m.uuid))
	L.SetField(mod, "now", L.NewFunction(m.now))
	L.SetField(mod, "today", L.NewFunction(m.today))
}

// uuid() -> string
func (m *utilModule) uuid(L *glua.LState) int {
	L.Push(glua.LString(uuid.NewString()))
	return 1
}

// now() -> string
// Current time in RFC 3339.
func (m *utilModule) now(L *glua.LState) int {
	L.Push(glua.LString(time.Now().Format(time.RFC3339)))
	return 1
}

// today() -> string
// Current date as YYYY-MM-DD, matching due date fields.
func (m *utilModule) today(L *glua.LState) int {
	L.Push(glua.LString(time.Now().Format("2006-01-02")))
	return 1
}
