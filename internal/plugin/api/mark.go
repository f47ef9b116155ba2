package api

import (
	"errors"
	"io"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/coremark/internal/engine/mark"
	"github.com/dshills/coremark/internal/engine/text"
)

const handleType = "ks.mark.handle"

// MarkModule implements the ks.mark API module over one document.
type MarkModule struct {
	doc *mark.Document
}

// NewMarkModule creates a mark module for doc.
func NewMarkModule(doc *mark.Document) *MarkModule {
	return &MarkModule{doc: doc}
}

// Name returns the module name.
func (m *MarkModule) Name() string {
	return "mark"
}

// Register registers the module into the Lua state.
func (m *MarkModule) Register(L *lua.LState) error {
	mt := L.NewTypeMetatable(handleType)
	L.SetField(mt, "__tostring", L.NewFunction(handleString))
	L.SetField(mt, "__eq", L.NewFunction(handleEqual))

	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"add_view":      m.addView,
		"remove_view":   m.removeView,
		"new":           m.newMark,
		"point":         m.newPoint,
		"dup":           m.dup,
		"dup_view":      m.dupView,
		"dup_point":     m.dupPoint,
		"free":          m.free,
		"advance":       m.advance,
		"move_to":       m.moveTo,
		"offset":        m.offset,
		"seq":           m.seq,
		"valid":         m.valid,
		"is_point":      m.isPoint,
		"view_of":       m.viewOf,
		"same_position": m.samePosition,
		"compare":       m.compare,
		"first":         m.first,
		"last":          m.last,
		"next":          m.next,
		"prev":          m.prev,
		"at_or_before":  m.atOrBefore,
		"members":       m.members,
		"marks":         m.marks,
		"check":         m.check,
		"set_attr":      m.setAttr,
		"attr":          m.attr,
		"push_point":    m.pushPoint,
		"pop_point":     m.popPoint,
		"idle":          m.idle,
		"count":         m.count,
	})
	L.SetField(mod, "UNGROUPED", lua.LNumber(mark.Ungrouped))

	L.SetGlobal("_ks_mark", mod)
	return nil
}

func pushMark(L *lua.LState, mk mark.Mark) {
	ud := L.NewUserData()
	ud.Value = mk
	L.SetMetatable(ud, L.GetTypeMetatable(handleType))
	L.Push(ud)
}

func pushOptMark(L *lua.LState, mk mark.Mark, ok bool) int {
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	pushMark(L, mk)
	return 1
}

func checkMark(L *lua.LState, n int) mark.Mark {
	ud := L.CheckUserData(n)
	mk, ok := ud.Value.(mark.Mark)
	if !ok {
		L.ArgError(n, "mark handle expected")
	}
	return mk
}

// optView reads a view number, nil meaning ungrouped.
func optView(L *lua.LState, n int) mark.ViewID {
	if L.Get(n) == lua.LNil {
		return mark.Ungrouped
	}
	return mark.ViewID(L.CheckInt(n))
}

// checkPlacement reads a placement name at n and, for "after" and
// "before", the anchor handle at n+1.
func checkPlacement(L *lua.LState, n int) mark.Placement {
	switch where := L.OptString(n, "start"); where {
	case "start":
		return mark.AtStart()
	case "end":
		return mark.AtEnd()
	case "after":
		return mark.After(checkMark(L, n+1))
	case "before":
		return mark.Before(checkMark(L, n+1))
	default:
		L.ArgError(n, "placement must be start, end, after or before")
		return mark.Placement{}
	}
}

func handleString(L *lua.LState) int {
	L.Push(lua.LString(checkMark(L, 1).String()))
	return 1
}

func handleEqual(L *lua.LState) int {
	L.Push(lua.LBool(checkMark(L, 1) == checkMark(L, 2)))
	return 1
}

// add_view(owner) -> view
func (m *MarkModule) addView(L *lua.LState) int {
	v, err := m.doc.AddView(L.CheckString(1))
	if err != nil {
		L.RaiseError("add_view: %v", err)
		return 0
	}
	L.Push(lua.LNumber(v))
	return 1
}

// remove_view(view, owner)
func (m *MarkModule) removeView(L *lua.LState) int {
	if err := m.doc.RemoveView(mark.ViewID(L.CheckInt(1)), L.CheckString(2)); err != nil {
		L.RaiseError("remove_view: %v", err)
	}
	return 0
}

// new(view, owner, [placement, [anchor]]) -> handle
func (m *MarkModule) newMark(L *lua.LState) int {
	v := optView(L, 1)
	owner := L.OptString(2, "")
	mk, err := m.doc.NewMark(v, owner, checkPlacement(L, 3))
	if err != nil {
		L.RaiseError("new: %v", err)
		return 0
	}
	pushMark(L, mk)
	return 1
}

// point([placement, [anchor]]) -> handle
func (m *MarkModule) newPoint(L *lua.LState) int {
	p, err := m.doc.NewPoint(checkPlacement(L, 1))
	if err != nil {
		L.RaiseError("point: %v", err)
		return 0
	}
	pushMark(L, p)
	return 1
}

func (m *MarkModule) dup(L *lua.LState) int {
	mk, err := m.doc.Dup(checkMark(L, 1))
	if err != nil {
		L.RaiseError("dup: %v", err)
		return 0
	}
	pushMark(L, mk)
	return 1
}

// dup_view(handle, view, owner) -> handle
func (m *MarkModule) dupView(L *lua.LState) int {
	mk, err := m.doc.DupView(checkMark(L, 1), optView(L, 2), L.OptString(3, ""))
	if err != nil {
		L.RaiseError("dup_view: %v", err)
		return 0
	}
	pushMark(L, mk)
	return 1
}

func (m *MarkModule) dupPoint(L *lua.LState) int {
	p, err := m.doc.DupPoint(checkMark(L, 1))
	if err != nil {
		L.RaiseError("dup_point: %v", err)
		return 0
	}
	pushMark(L, p)
	return 1
}

func (m *MarkModule) free(L *lua.LState) int {
	if err := m.doc.Free(checkMark(L, 1)); err != nil {
		L.RaiseError("free: %v", err)
	}
	return 0
}

// advance(handle, ["forward"|"backward"]) -> unit or nil at a boundary
func (m *MarkModule) advance(L *lua.LState) int {
	mk := checkMark(L, 1)
	dir := mark.Forward
	switch L.OptString(2, "forward") {
	case "forward":
	case "backward":
		dir = mark.Backward
	default:
		L.ArgError(2, "direction must be forward or backward")
		return 0
	}

	unit, err := m.doc.Advance(mk, dir)
	if errors.Is(err, io.EOF) {
		L.Push(lua.LNil)
		return 1
	}
	if err != nil {
		L.RaiseError("advance: %v", err)
		return 0
	}
	L.Push(lua.LString(unit))
	return 1
}

// move_to(handle, target)
func (m *MarkModule) moveTo(L *lua.LState) int {
	if err := m.doc.MoveTo(checkMark(L, 1), checkMark(L, 2)); err != nil {
		L.RaiseError("move_to: %v", err)
	}
	return 0
}

// offset(handle) -> byte offset or nil
func (m *MarkModule) offset(L *lua.LState) int {
	off, ok := text.Offset(m.doc.Ref(checkMark(L, 1)))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(off))
	return 1
}

func (m *MarkModule) seq(L *lua.LState) int {
	L.Push(lua.LNumber(m.doc.Seq(checkMark(L, 1))))
	return 1
}

func (m *MarkModule) valid(L *lua.LState) int {
	L.Push(lua.LBool(m.doc.Valid(checkMark(L, 1))))
	return 1
}

func (m *MarkModule) isPoint(L *lua.LState) int {
	L.Push(lua.LBool(m.doc.IsPoint(checkMark(L, 1))))
	return 1
}

func (m *MarkModule) viewOf(L *lua.LState) int {
	v, err := m.doc.ViewOf(checkMark(L, 1))
	if err != nil {
		L.RaiseError("view_of: %v", err)
		return 0
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (m *MarkModule) samePosition(L *lua.LState) int {
	L.Push(lua.LBool(m.doc.SamePosition(checkMark(L, 1), checkMark(L, 2))))
	return 1
}

// compare(a, b) -> -1, 0 or 1
func (m *MarkModule) compare(L *lua.LState) int {
	c, err := m.doc.Compare(checkMark(L, 1), checkMark(L, 2))
	if err != nil {
		L.RaiseError("compare: %v", err)
		return 0
	}
	L.Push(lua.LNumber(c))
	return 1
}

func (m *MarkModule) first(L *lua.LState) int {
	mk, ok := m.doc.First(mark.ViewID(L.CheckInt(1)))
	return pushOptMark(L, mk, ok)
}

func (m *MarkModule) last(L *lua.LState) int {
	mk, ok := m.doc.Last(mark.ViewID(L.CheckInt(1)))
	return pushOptMark(L, mk, ok)
}

// next(view, handle) -> handle or nil
func (m *MarkModule) next(L *lua.LState) int {
	mk, ok := m.doc.Next(mark.ViewID(L.CheckInt(1)), checkMark(L, 2))
	return pushOptMark(L, mk, ok)
}

func (m *MarkModule) prev(L *lua.LState) int {
	mk, ok := m.doc.Prev(mark.ViewID(L.CheckInt(1)), checkMark(L, 2))
	return pushOptMark(L, mk, ok)
}

func (m *MarkModule) atOrBefore(L *lua.LState) int {
	mk, ok := m.doc.AtOrBefore(mark.ViewID(L.CheckInt(1)), checkMark(L, 2))
	return pushOptMark(L, mk, ok)
}

func (m *MarkModule) pushList(L *lua.LState, list []mark.Mark) int {
	tbl := L.NewTable()
	for i, mk := range list {
		pushMark(L, mk)
		tbl.RawSetInt(i+1, L.Get(-1))
		L.Pop(1)
	}
	L.Push(tbl)
	return 1
}

// members(view) -> {handles}
func (m *MarkModule) members(L *lua.LState) int {
	return m.pushList(L, m.doc.Members(mark.ViewID(L.CheckInt(1))))
}

// marks() -> {handles} in global order
func (m *MarkModule) marks(L *lua.LState) int {
	return m.pushList(L, m.doc.Marks())
}

// check() -> {violation strings}
func (m *MarkModule) check(L *lua.LState) int {
	tbl := L.NewTable()
	for i, v := range m.doc.Check() {
		tbl.RawSetInt(i+1, lua.LString(v.String()))
	}
	L.Push(tbl)
	return 1
}

// set_attr(handle, key, value); an empty value deletes
func (m *MarkModule) setAttr(L *lua.LState) int {
	if err := m.doc.SetAttr(checkMark(L, 1), L.CheckString(2), L.OptString(3, "")); err != nil {
		L.RaiseError("set_attr: %v", err)
	}
	return 0
}

func (m *MarkModule) attr(L *lua.LState) int {
	v, ok := m.doc.Attr(checkMark(L, 1), L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(v))
	return 1
}

func (m *MarkModule) pushPoint(L *lua.LState) int {
	if err := m.doc.PushPoint(checkMark(L, 1)); err != nil {
		L.RaiseError("push_point: %v", err)
	}
	return 0
}

// pop_point(point) -> true if a position was restored
func (m *MarkModule) popPoint(L *lua.LState) int {
	ok, err := m.doc.PopPoint(checkMark(L, 1))
	if err != nil {
		L.RaiseError("pop_point: %v", err)
		return 0
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (m *MarkModule) idle(L *lua.LState) int {
	L.Push(lua.LNumber(m.doc.Idle()))
	return 1
}

func (m *MarkModule) count(L *lua.LState) int {
	L.Push(lua.LNumber(m.doc.Len()))
	return 1
}
