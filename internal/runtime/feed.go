package runtime

// A Feed is the look-ahead input abstraction the evaluator consumes:
// either a view over an array (with a position) or a variadic stream of
// cells a host supplied. The cached "gotten" resolution of the current
// word is invalidated whenever arbitrary code may have run.

type Feed struct {
	array *Array
	index int

	vals   []Cell // variadic source, nil for array feeds
	vIndex int

	binding *VarList // default lookup chain for words in this feed
	gotten  *Cell    // cached resolution of the current word
}

func NewFeed(a *Array, index int, binding *VarList) *Feed {
	return &Feed{array: a, index: index, binding: binding}
}

func NewVariadicFeed(vals []Cell, binding *VarList) *Feed {
	return &Feed{vals: vals, binding: binding}
}

func (f *Feed) Binding() *VarList { return f.binding }

func (f *Feed) AtEnd() bool {
	if f.vals != nil {
		return f.vIndex >= len(f.vals)
	}
	return f.array == nil || f.index >= f.array.Used()
}

// At is the current element. Callers must have checked AtEnd.
func (f *Feed) At() *Cell {
	if f.vals != nil {
		return &f.vals[f.vIndex]
	}
	return f.array.AtPtr(f.index)
}

// Next advances one element and drops any cached gotten value.
func (f *Feed) Next() {
	if f.vals != nil {
		f.vIndex++
	} else {
		f.index++
	}
	f.gotten = nil
}

// Gotten returns the cached resolution of the current word, resolving and
// caching on first ask. InvalidateGotten must run after any step that may
// have executed user code.
func (f *Feed) Gotten() *Cell {
	if f.gotten != nil {
		return f.gotten
	}
	if f.AtEnd() {
		return nil
	}
	cur := f.At()
	if cur.Heart != HeartWord {
		return nil
	}
	f.gotten = ResolveWord(cur, f.binding)
	return f.gotten
}

func (f *Feed) InvalidateGotten() { f.gotten = nil }

// Reify converts a variadic feed into an array feed in place, so the
// remaining input gains a stable identity (needed when a frame captures
// the feed beyond the current step).
func (rt *Runtime) Reify(f *Feed) {
	if f.vals == nil {
		return
	}
	a := rt.NewArrayFrom(f.vals[f.vIndex:])
	f.array = a
	f.index = 0
	f.vals = nil
	f.vIndex = 0
	f.gotten = nil
}
