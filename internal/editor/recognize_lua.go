package editor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// luaTimeout bounds a single predicate evaluation.
const luaTimeout = 100 * time.Millisecond

// CompileLua parses and compiles a predicate chunk.
func CompileLua(src string) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(strings.NewReader(src), "<recognizer>")
	if err != nil {
		return nil, fmt.Errorf("parse lua predicate: %w", err)
	}
	proto, err := lua.Compile(chunk, "<recognizer>")
	if err != nil {
		return nil, fmt.Errorf("compile lua predicate: %w", err)
	}
	return proto, nil
}

// LuaRecognizer builds a recognizer from a Lua chunk. The chunk sees the
// globals path, name and ext and matches when it returns a truthy value:
//
//	return ext == ".mk" or name == "Makefile"
//
// Each evaluation runs in a fresh state with only the base, table, string
// and math libraries opened. Errors and timeouts count as no match.
func LuaRecognizer(src string) (Recognizer, error) {
	proto, err := CompileLua(src)
	if err != nil {
		return nil, err
	}
	return RecognizerFunc(func(path string) bool {
		ok, err := evalLua(proto, path)
		return err == nil && ok
	}), nil
}

func evalLua(proto *lua.FunctionProto, path string) (bool, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Base functions that reach outside the sandbox.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	// string.rep can allocate unbounded memory in a single call.
	if strlib, ok := L.GetGlobal("string").(*lua.LTable); ok {
		strlib.RawSetString("rep", lua.LNil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), luaTimeout)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("path", lua.LString(path))
	L.SetGlobal("name", lua.LString(filepath.Base(path)))
	L.SetGlobal("ext", lua.LString(strings.ToLower(filepath.Ext(path))))

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 1, nil); err != nil {
		return false, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}
