package lua

import (
	"fmt"
	"reflect"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// ToGo converts a Lua value to its Go counterpart. Tables become
// map[string]any or []any depending on shape; functions and userdata that
// carry no Go value become nil. Circular tables are cut at the cycle.
func ToGo(lv lua.LValue) any {
	return toGo(lv, make(map[*lua.LTable]bool))
}

func toGo(lv lua.LValue, seen map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if seen[v] {
			return nil
		}
		seen[v] = true
		return tableToGo(v, seen)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, seen map[*lua.LTable]bool) any {
	// Array shape: contiguous integer keys from 1.
	isArray := true
	maxN, count := 0, 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, ok := k.(lua.LNumber)
		if !ok || float64(int(kn)) != float64(kn) || int(kn) < 1 {
			isArray = false
			return
		}
		if int(kn) > maxN {
			maxN = int(kn)
		}
	})

	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = toGo(t.RawGetInt(i), seen)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGo(v, seen)
	})
	return m
}

// ToLua converts a Go value to a Lua value. Structs become tables keyed by
// json tag (falling back to the field name); time values become RFC 3339
// strings.
func ToLua(L *lua.LState, v any) lua.LValue {
	if v == nil {
		return lua.LNil
	}

	switch val := v.(type) {
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case time.Time:
		if val.IsZero() {
			return lua.LNil
		}
		return lua.LString(val.Format(time.RFC3339))
	case time.Duration:
		return lua.LNumber(val.Seconds())
	case []any:
		t := L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, ToLua(L, e))
		}
		return t
	case []string:
		t := L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, lua.LString(e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, e := range val {
			t.RawSetString(k, ToLua(L, e))
		}
		return t
	default:
		return reflectToLua(L, reflect.ValueOf(v))
	}
}

func reflectToLua(L *lua.LState, rv reflect.Value) lua.LValue {
	if !rv.IsValid() {
		return lua.LNil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return lua.LNil
		}
		return ToLua(L, rv.Elem().Interface())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())

	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())

	case reflect.Slice, reflect.Array:
		t := L.NewTable()
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, ToLua(L, rv.Index(i).Interface()))
		}
		return t

	case reflect.Map:
		t := L.NewTable()
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSet(ToLua(L, iter.Key().Interface()), ToLua(L, iter.Value().Interface()))
		}
		return t

	case reflect.Struct:
		return structToLua(L, rv)

	default:
		ud := L.NewUserData()
		ud.Value = rv.Interface()
		return ud
	}
}

func structToLua(L *lua.LState, rv reflect.Value) lua.LValue {
	t := L.NewTable()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
			for j := 0; j < len(tag); j++ {
				if tag[j] == ',' {
					tag = tag[:j]
					break
				}
			}
			if tag != "" {
				name = tag
			}
		}
		t.RawSetString(name, ToLua(L, rv.Field(i).Interface()))
	}
	return t
}

// TableString reads a string field from a table.
func TableString(t *lua.LTable, key string) (string, bool) {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

// TableTable reads a nested table field.
func TableTable(t *lua.LTable, key string) (*lua.LTable, bool) {
	if nested, ok := t.RawGetString(key).(*lua.LTable); ok {
		return nested, true
	}
	return nil, false
}

// TableFunc reads a function field from a table.
func TableFunc(t *lua.LTable, key string) (*lua.LFunction, bool) {
	if fn, ok := t.RawGetString(key).(*lua.LFunction); ok {
		return fn, true
	}
	return nil, false
}

// CallFunc invokes a Lua function value with Go arguments and converts the
// results back to Go values. Panics inside the VM surface as errors.
func CallFunc(L *lua.LState, fn *lua.LFunction, args ...any) (results []any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()

	top := L.GetTop()
	L.Push(fn)
	for _, arg := range args {
		L.Push(ToLua(L, arg))
	}
	if err := L.PCall(len(args), lua.MultRet, nil); err != nil {
		L.SetTop(top)
		return nil, err
	}

	n := L.GetTop() - top
	if n <= 0 {
		return nil, nil
	}
	results = make([]any, n)
	for i := 0; i < n; i++ {
		results[i] = ToGo(L.Get(top + i + 1))
	}
	L.Pop(n)
	return results, nil
}
