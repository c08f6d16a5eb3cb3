package plugin

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/editcore/internal/engine/spans"
)

// LuaHost runs a highlight script in a sandboxed interpreter. The
// script defines `highlight(text)` and may define `annotate(text)`,
// each returning an array of tables with 0-based byte offsets.
//
// gopher-lua states are not goroutine-safe; every call is serialized
// through the host's mutex.
type LuaHost struct {
	mu    sync.Mutex
	state *lua.LState
}

// NewLuaHost compiles a script with only the base, table, and string
// libraries available.
func NewLuaHost(script string) (*LuaHost, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("plugin: open lua lib %s: %w", lib.name, err)
		}
	}
	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("plugin: load lua script: %w", err)
	}
	return &LuaHost{state: L}, nil
}

// Close releases the interpreter.
func (h *LuaHost) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Close()
}

// Highlight runs the script's highlight function over text. A script
// without one highlights nothing.
func (h *LuaHost) Highlight(text string) ([]Span, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rows, err := h.call("highlight", text)
	if err != nil || rows == nil {
		return nil, err
	}
	var out []Span
	rows.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		out = append(out, Span{
			Start: int(lua.LVAsNumber(row.RawGetString("start"))),
			Len:   int(lua.LVAsNumber(row.RawGetString("len"))),
			Style: spans.StyleID(lua.LVAsNumber(row.RawGetString("style"))),
		})
	})
	return out, nil
}

// Annotate runs the script's annotate function over text.
func (h *LuaHost) Annotate(text string) ([]Annotation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rows, err := h.call("annotate", text)
	if err != nil || rows == nil {
		return nil, err
	}
	var out []Annotation
	rows.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		out = append(out, Annotation{
			Start:   int(lua.LVAsNumber(row.RawGetString("start"))),
			Len:     int(lua.LVAsNumber(row.RawGetString("len"))),
			Payload: lua.LVAsString(row.RawGetString("payload")),
		})
	})
	return out, nil
}

// call invokes a global function with one string argument and returns
// its table result, or nil when the function is absent or returns
// something else.
func (h *LuaHost) call(name, arg string) (*lua.LTable, error) {
	fn := h.state.GetGlobal(name)
	if fn == lua.LNil {
		return nil, nil
	}
	if err := h.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(arg)); err != nil {
		return nil, fmt.Errorf("plugin: lua %s: %w", name, err)
	}
	ret := h.state.Get(-1)
	h.state.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, nil
	}
	return tbl, nil
}
