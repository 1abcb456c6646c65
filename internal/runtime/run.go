package runtime

// Top-level entry points hosts and the console use.

// RunArray evaluates an array as top-level code bound into Lib, driving
// the trampoline until completion. The error return is an escaped panic.
func (rt *Runtime) RunArray(a *Array) (Cell, *ErrorStub) {
	rt.Manage(a)
	var out Cell
	feed := NewFeed(a, 0, rt.Lib)
	L := rt.PushEval(feed, &out)
	if err := rt.Trampoline(L); err != nil {
		return Cell{}, err
	}
	return out, nil
}

// RunCells evaluates a variadic stream of cells (the host API's spliced
// arguments) the same way.
func (rt *Runtime) RunCells(cells []Cell) (Cell, *ErrorStub) {
	var out Cell
	feed := NewVariadicFeed(cells, rt.Lib)
	L := rt.PushEval(feed, &out)
	if err := rt.Trampoline(L); err != nil {
		return Cell{}, err
	}
	return out, nil
}
