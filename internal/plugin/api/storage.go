package api

import (
	"encoding/json"

	glua "github.com/yuin/gopher-lua"

	plua "github.com/todui/todui/internal/plugin/lua"
	"github.com/todui/todui/internal/storage"
)

// storageModule implements td.storage, the plugin's namespaced key-value
// store. Values round-trip through JSON, so tables, numbers, strings, and
// booleans all persist.
type storageModule struct {
	ctx *Context
}

func (m *storageModule) Name() string { return "storage" }

func (m *storageModule) Register(L *glua.LState, mod *glua.LTable) {
	L.SetField(mod, "get", L.NewFunction(m.get))
	L.SetField(mod, "set", L.NewFunction(m.set))
	L.SetField(mod, "del", L.NewFunction(m.del))
	L.SetField(mod, "keys", L.NewFunction(m.keys))
	L.SetField(mod, "task", L.NewFunction(m.task))
	L.SetField(mod, "txn", L.NewFunction(m.txn))
}

// get(key) -> value or nil
func (m *storageModule) get(L *glua.LState) int {
	key := L.CheckString(1)
	raw, ok, err := m.ctx.ns.Get(key)
	if err != nil {
		L.RaiseError("storage.get: %v", err)
		return 0
	}
	L.Push(decodeValue(L, raw, ok))
	return 1
}

// set(key, value)
func (m *storageModule) set(L *glua.LState) int {
	key := L.CheckString(1)
	raw, err := encodeValue(L.CheckAny(2))
	if err != nil {
		L.RaiseError("storage.set: %v", err)
		return 0
	}
	if err := m.ctx.ns.Set(key, raw); err != nil {
		L.RaiseError("storage.set: %v", err)
	}
	return 0
}

// del(key)
func (m *storageModule) del(L *glua.LState) int {
	key := L.CheckString(1)
	if err := m.ctx.ns.Delete(key); err != nil {
		L.RaiseError("storage.del: %v", err)
	}
	return 0
}

// keys() -> {key, ...}
func (m *storageModule) keys(L *glua.LState) int {
	keys, err := m.ctx.ns.Keys()
	if err != nil {
		L.RaiseError("storage.keys: %v", err)
		return 0
	}
	L.Push(plua.ToLua(L, keys))
	return 1
}

// task(task_id) -> {get=..., set=..., del=..., keys=...}
// Returns a store scoped to both this plugin and the given task.
func (m *storageModule) task(L *glua.LState) int {
	taskID := L.CheckString(1)
	ns := m.ctx.ns.Task(taskID)

	scoped := L.NewTable()
	L.SetField(scoped, "get", L.NewFunction(func(L *glua.LState) int {
		raw, ok, err := ns.Get(L.CheckString(1))
		if err != nil {
			L.RaiseError("storage.task.get: %v", err)
			return 0
		}
		L.Push(decodeValue(L, raw, ok))
		return 1
	}))
	L.SetField(scoped, "set", L.NewFunction(func(L *glua.LState) int {
		key := L.CheckString(1)
		raw, err := encodeValue(L.CheckAny(2))
		if err != nil {
			L.RaiseError("storage.task.set: %v", err)
			return 0
		}
		if err := ns.Set(key, raw); err != nil {
			L.RaiseError("storage.task.set: %v", err)
		}
		return 0
	}))
	L.SetField(scoped, "del", L.NewFunction(func(L *glua.LState) int {
		if err := ns.Delete(L.CheckString(1)); err != nil {
			L.RaiseError("storage.task.del: %v", err)
		}
		return 0
	}))
	L.SetField(scoped, "keys", L.NewFunction(func(L *glua.LState) int {
		keys, err := ns.Keys()
		if err != nil {
			L.RaiseError("storage.task.keys: %v", err)
			return 0
		}
		L.Push(plua.ToLua(L, keys))
		return 1
	}))

	L.Push(scoped)
	return 1
}

// txn(fn)
// Runs fn(tx) inside a single storage transaction. The transaction commits
// if fn returns normally and rolls back if it raises.
func (m *storageModule) txn(L *glua.LState) int {
	fn := L.CheckFunction(1)

	err := m.ctx.ns.Txn(func(tx *storage.Tx) error {
		txTable := L.NewTable()
		L.SetField(txTable, "get", L.NewFunction(func(L *glua.LState) int {
			raw, ok, err := tx.Get(L.CheckString(1))
			if err != nil {
				L.RaiseError("storage.txn.get: %v", err)
				return 0
			}
			L.Push(decodeValue(L, raw, ok))
			return 1
		}))
		L.SetField(txTable, "set", L.NewFunction(func(L *glua.LState) int {
			key := L.CheckString(1)
			raw, err := encodeValue(L.CheckAny(2))
			if err != nil {
				L.RaiseError("storage.txn.set: %v", err)
				return 0
			}
			if err := tx.Set(key, raw); err != nil {
				L.RaiseError("storage.txn.set: %v", err)
			}
			return 0
		}))
		L.SetField(txTable, "del", L.NewFunction(func(L *glua.LState) int {
			if err := tx.Delete(L.CheckString(1)); err != nil {
				L.RaiseError("storage.txn.del: %v", err)
			}
			return 0
		}))

		_, err := plua.CallFunc(L, fn, txTable)
		return err
	})
	if err != nil {
		L.RaiseError("storage.txn: %v", err)
	}
	return 0
}

func encodeValue(v glua.LValue) (string, error) {
	data, err := json.Marshal(plua.ToGo(v))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeValue(L *glua.LState, raw string, ok bool) glua.LValue {
	if !ok {
		return glua.LNil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// Value written by an older release before JSON encoding.
		return glua.LString(raw)
	}
	return plua.ToLua(L, v)
}
