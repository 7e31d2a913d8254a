package luafmt

import (
	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"
)

// jsonToLua converts a gjson value into the equivalent Lua value.
// Objects and arrays become tables; null becomes nil.
func jsonToLua(L *lua.LState, res gjson.Result) lua.LValue {
	switch res.Type {
	case gjson.String:
		return lua.LString(res.Str)
	case gjson.Number:
		return lua.LNumber(res.Num)
	case gjson.True:
		return lua.LTrue
	case gjson.False:
		return lua.LFalse
	case gjson.JSON:
		tbl := L.NewTable()
		if res.IsArray() {
			i := 0
			res.ForEach(func(_, value gjson.Result) bool {
				i++
				tbl.RawSetInt(i, jsonToLua(L, value))
				return true
			})
		} else {
			res.ForEach(func(key, value gjson.Result) bool {
				tbl.RawSetString(key.String(), jsonToLua(L, value))
				return true
			})
		}
		return tbl
	default:
		return lua.LNil
	}
}

// optionsTable builds the Lua options table from an options JSON
// document. An empty or non-object document yields an empty table.
func optionsTable(L *lua.LState, optionsJSON string) *lua.LTable {
	if optionsJSON == "" {
		return L.NewTable()
	}

	res := gjson.Parse(optionsJSON)
	if !res.IsObject() {
		return L.NewTable()
	}

	tbl, ok := jsonToLua(L, res).(*lua.LTable)
	if !ok {
		return L.NewTable()
	}
	return tbl
}
