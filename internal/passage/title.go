package passage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/roach88/storyloom/internal/state"
)

// Title is either a Literal or a Computed title.
type Title interface {
	render(p *Passage, st *state.State) (string, error)
}

// Literal is a fixed title.
type Literal string

func (l Literal) render(*Passage, *state.State) (string, error) { return string(l), nil }

// Computed derives a title from the passage and the current state.
type Computed func(p *Passage, st *state.State) (string, error)

func (c Computed) render(p *Passage, st *state.State) (string, error) { return c(p, st) }

// LuaTitle compiles a Lua snippet into a Computed title. The snippet may be an
// expression ("'Room ' .. s.room") or a chunk with an explicit return. It
// sees the globals s (state), g (globals) and passage ({id, name, tags}).
func LuaTitle(code string) (Computed, error) {
	chunk := "return " + code
	if err := lua.LoadString(lua.NewState(), chunk); err != nil {
		chunk = code
		if err := lua.LoadString(lua.NewState(), chunk); err != nil {
			return nil, err
		}
	}
	return func(p *Passage, st *state.State) (string, error) {
		return evalLua(chunk, p, st)
	}, nil
}

func evalLua(chunk string, p *Passage, st *state.State) (string, error) {
	l := lua.NewState()
	openTitleLibraries(l)

	var s, g map[string]any
	if st != nil {
		s, g = st.State(), st.Globals()
	}
	pushValue(l, s)
	l.SetGlobal("s")
	pushValue(l, g)
	l.SetGlobal("g")
	pushValue(l, map[string]any{
		"id":   p.ID,
		"name": p.Name,
		"tags": p.Tags.String(),
	})
	l.SetGlobal("passage")

	if err := lua.LoadString(l, chunk); err != nil {
		return "", fmt.Errorf("load title script: %w", err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return "", fmt.Errorf("run title script: %w", err)
	}
	out, ok := l.ToString(-1)
	l.Pop(1)
	if !ok {
		return "", fmt.Errorf("title script for passage %q must return a string", p.ID)
	}
	return out, nil
}

// openTitleLibraries loads the side-effect free standard libraries only.
func openTitleLibraries(l *lua.State) {
	libs := []struct {
		name string
		open lua.Function
	}{
		{"_G", lua.BaseOpen},
		{"string", lua.StringOpen},
		{"table", lua.TableOpen},
		{"math", lua.MathOpen},
	}
	for _, lib := range libs {
		lua.Require(l, lib.name, lib.open, true)
		l.Pop(1)
	}
	for _, name := range []string{"dofile", "loadfile", "require"} {
		l.PushNil()
		l.SetGlobal(name)
	}
}

// pushValue pushes a JSON-shaped Go value onto the Lua stack.
func pushValue(l *lua.State, v any) {
	switch val := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(val)
	case string:
		l.PushString(val)
	case int:
		l.PushInteger(val)
	case int64:
		l.PushNumber(float64(val))
	case float64:
		l.PushNumber(val)
	case map[string]any:
		l.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pushValue(l, val[k])
			l.SetField(-2, k)
		}
	case []any:
		l.NewTable()
		for i, e := range val {
			pushValue(l, e)
			l.RawSetInt(-2, i+1)
		}
	case []string:
		l.NewTable()
		for i, e := range val {
			l.PushString(e)
			l.RawSetInt(-2, i+1)
		}
	default:
		l.PushString(strings.TrimSpace(fmt.Sprint(val)))
	}
}
