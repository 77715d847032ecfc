package api

import (
	glua "github.com/yuin/gopher-lua"
)

// logModule implements td.log. Every line carries the plugin name.
type logModule struct {
	ctx *Context
}

func (m *logModule) Name() string { return "log" }

func (m *logModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "debug", L.NewFunction(m.debug))
	L.SetField(mod, "info", L.NewFunction(m.info))
	L.SetField(mod, "warn", L.NewFunction(m.warn))
	L.SetField(mod, "error", L.NewFunction(m.logError))
}

func (m *logModule) debug(L *glua.LState) int {
	m.ctx.log.Debug(L.CheckString(1))
	return 0
}

func (m *logModule) info(L *glua.LState) int {
	m.ctx.log.Info(L.CheckString(1))
	return 0
}

func (m *logModule) warn(L *glua.LState) int {
	m.ctx.log.Warn(L.CheckString(1))
	return 0
}

func (m *logModule) logError(L *glua.LState) int {
	m.ctx.log.Error(L.CheckString(1))
	return 0
}
