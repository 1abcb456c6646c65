package runtime

import (
	"io"
	"os"
	"sync/atomic"
)

// Runtime groups the process-wide mutable state of one interpreter: the
// Level stack, the data stack, the mold buffer, the symbol table, the
// thrown-label slot, and the registry of managed stubs. Holding several
// Runtimes gives several isolated interpreters; nothing here is package
// global.

type Runtime struct {
	Out io.Writer

	// interning
	symbols map[string]*Symbol
	canons  map[string]*Symbol

	// the cooperative Level stack, linked through Level.prior
	top *Level

	// the shared data stack; Levels snapshot its depth as their baseline
	// and must restore it before returning a final value
	stack []Cell

	// throw machinery: a thrown label plus argument, and the Level the
	// unwind is aimed at (nil for label-matched catches)
	thrownLabel Cell
	thrownArg   Cell
	thrownPanic bool
	unwindTo    *Level
	hasThrown   bool

	// halt is set by the host from any goroutine; polled at step edges
	halt atomic.Bool

	// GC registry of managed stubs
	managed []Node

	// Lib is the boot context all top-level code binds into.
	Lib *VarList

	// shared definitional-return and yield machinery
	returnDetails *Details
	yieldDetails  *Details
}

func New() *Runtime {
	rt := &Runtime{
		Out:     os.Stdout,
		symbols: make(map[string]*Symbol),
		canons:  make(map[string]*Symbol),
	}
	rt.Lib = rt.bootLib()
	return rt
}

// RequestHalt asks the trampoline to stop at the next safe point. Safe to
// call from any goroutine.
func (rt *Runtime) RequestHalt() { rt.halt.Store(true) }

func (rt *Runtime) haltRequested() bool {
	if rt.halt.Load() {
		rt.halt.Store(false)
		return true
	}
	return false
}

// --- data stack -------------------------------------------------------------

func (rt *Runtime) StackDepth() int { return len(rt.stack) }

func (rt *Runtime) PushStack(c Cell) { rt.stack = append(rt.stack, c) }

func (rt *Runtime) PopStack() Cell {
	c := rt.stack[len(rt.stack)-1]
	rt.stack = rt.stack[:len(rt.stack)-1]
	return c
}

// StackAt indexes from a baseline upward.
func (rt *Runtime) StackAt(i int) *Cell { return &rt.stack[i] }

// DropTo rolls the data stack back to a baseline, discarding everything a
// Level pushed above it.
func (rt *Runtime) DropTo(baseline int) {
	if baseline < len(rt.stack) {
		rt.stack = rt.stack[:baseline]
	}
}

// PopToArray moves the cells above baseline into a fresh array, restoring
// the baseline.
func (rt *Runtime) PopToArray(baseline int) *Array {
	a := rt.NewArrayFrom(rt.stack[baseline:])
	rt.stack = rt.stack[:baseline]
	return a
}

// --- GC ---------------------------------------------------------------------

// Collect runs a mark/sweep over managed stubs: everything reachable from
// live Levels, Lib, and the data stack is kept; unmarked managed stubs are
// diminished so stale references see an inaccessible husk. Memory itself
// is reclaimed by the Go runtime once nothing points at the husk.
func (rt *Runtime) Collect() int {
	for _, n := range rt.managed {
		n.header().clearFlag(StubMarked)
	}

	m := &marker{}
	if rt.Lib != nil {
		m.markNode(rt.Lib)
	}
	for i := range rt.stack {
		m.markCell(&rt.stack[i])
	}
	for lvl := rt.top; lvl != nil; lvl = lvl.prior {
		m.markLevel(lvl)
	}

	kept := rt.managed[:0]
	swept := 0
	for _, n := range rt.managed {
		if n.header().hasFlag(StubMarked) {
			kept = append(kept, n)
		} else {
			diminish(n)
			swept++
		}
	}
	rt.managed = kept
	return swept
}

type marker struct{}

func (m *marker) markCell(c *Cell) {
	if c.Node != nil {
		m.markNode(c.Node)
	}
	if c.Aux != nil {
		// a missing coupling or binding is stored as a typed nil *VarList
		if v, ok := c.Aux.(*VarList); !ok || v != nil {
			m.markNode(c.Aux)
		}
	}
}

func (m *marker) markNode(n Node) {
	h := n.header()
	if h.hasFlag(StubMarked) {
		return
	}
	h.setFlag(StubMarked)
	switch v := n.(type) {
	case *Array:
		for i := range v.Cells {
			m.markCell(&v.Cells[i])
		}
	case *Pairing:
		m.markCell(&v.A)
		m.markCell(&v.B)
	case *VarList:
		if v.keys != nil {
			m.markNode(v.keys)
		}
		for i := range v.Vars {
			m.markCell(&v.Vars[i])
		}
	case *KeyList:
		for _, s := range v.Keys {
			m.markNode(s)
		}
	case *Details:
		if v.Paramlist != nil {
			m.markNode(v.Paramlist)
		}
		for i := range v.Slots {
			m.markCell(&v.Slots[i])
		}
		if v.Gen != nil {
			for _, plugged := range v.Gen.plug {
				m.markLevel(plugged)
			}
			m.markCell(&v.Gen.last)
			m.markCell(&v.Gen.bodyOut)
			for i := range v.Gen.stackSave {
				m.markCell(&v.Gen.stackSave[i])
			}
			if v.Gen.varlist != nil {
				m.markNode(v.Gen.varlist)
			}
		}
	case *RenMap:
		if v.Pairs != nil {
			m.markNode(v.Pairs)
		}
		if v.hash != nil {
			m.markNode(v.hash)
		}
	}
}

func (m *marker) markLevel(lvl *Level) {
	if lvl.Out != nil {
		m.markCell(lvl.Out)
	}
	m.markCell(&lvl.Scratch)
	m.markCell(&lvl.Spare)
	m.markCell(&lvl.cur)
	if lvl.varlist != nil {
		m.markNode(lvl.varlist)
	}
	if lvl.details != nil {
		m.markNode(lvl.details)
	}
	if lvl.Feed != nil {
		if lvl.Feed.array != nil {
			m.markNode(lvl.Feed.array)
		}
		for i := range lvl.Feed.vals {
			m.markCell(&lvl.Feed.vals[i])
		}
	}
}
