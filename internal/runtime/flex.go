package runtime

import (
	"github.com/renlang/ren/internal/config"
)

// A Flex is a stub with a variable-length payload of uniform-width items.
// Array is the cell-width flavor; Strand (strand.go) is the byte-width one.
// The operations here mirror each other: shift the tail right to open a
// gap, shift it left to close one, append uninitialized units at the end.

// Array holds cells for block/group/fence storage and for the internal
// lists (paramlists borrow VarList instead).
type Array struct {
	Stub
	Cells []Cell

	// Source location carried for error reporting, when known.
	File string
	Line int
}

func (rt *Runtime) NewArray(capacity int) *Array {
	if capacity < config.MinFlexCapacity {
		capacity = config.MinFlexCapacity
	}
	a := &Array{Cells: make([]Cell, 0, capacity)}
	a.stampFlavor(FlavorSource)
	return a
}

// NewArrayFrom copies cells into a fresh array. Antiforms are rejected:
// lists never contain them.
func (rt *Runtime) NewArrayFrom(cells []Cell) *Array {
	a := rt.NewArray(len(cells))
	for i := range cells {
		if IsAntiform(&cells[i]) {
			panic("antiform placed in list container")
		}
	}
	a.Cells = append(a.Cells, cells...)
	return a
}

func (a *Array) Used() int { return len(a.Cells) }

func (a *Array) At(i int) Cell { return a.Cells[i] }

func (a *Array) AtPtr(i int) *Cell { return &a.Cells[i] }

func (a *Array) NewlineAtTail() bool { return a.hasFlag(StubNewlineAtTail) }

func (a *Array) SetNewlineAtTail(on bool) {
	if on {
		a.setFlag(StubNewlineAtTail)
	} else {
		a.clearFlag(StubNewlineAtTail)
	}
}

func (a *Array) mutable() *ErrorStub {
	if a.IsFrozen() {
		return &ErrorStub{ID: "protected", Message: "series is frozen"}
	}
	if a.IsDiminished() {
		return &ErrorStub{ID: "bad-value", Message: "series is inaccessible"}
	}
	return nil
}

// ExpandAt opens delta erased cells at index, shifting the tail right.
func (a *Array) ExpandAt(index, delta int) *ErrorStub {
	if err := a.mutable(); err != nil {
		return err
	}
	if index > len(a.Cells) {
		index = len(a.Cells)
	}
	a.Cells = append(a.Cells, make([]Cell, delta)...)
	copy(a.Cells[index+delta:], a.Cells[index:])
	for i := index; i < index+delta; i++ {
		a.Cells[i].Erase()
	}
	return nil
}

// RemoveUnits closes delta cells at index, shifting the tail left.
func (a *Array) RemoveUnits(index, delta int) *ErrorStub {
	if err := a.mutable(); err != nil {
		return err
	}
	if index >= len(a.Cells) {
		return nil
	}
	if index+delta > len(a.Cells) {
		delta = len(a.Cells) - index
	}
	a.Cells = append(a.Cells[:index], a.Cells[index+delta:]...)
	return nil
}

// ExpandTail appends delta erased cells.
func (a *Array) ExpandTail(delta int) *ErrorStub {
	return a.ExpandAt(len(a.Cells), delta)
}

// AppendCell pushes one element at the tail. The antiform invariant is
// enforced here as everywhere cells enter arrays.
func (a *Array) AppendCell(c Cell) *ErrorStub {
	if IsAntiform(&c) {
		panic("antiform placed in list container")
	}
	if err := a.mutable(); err != nil {
		return err
	}
	a.Cells = append(a.Cells, c)
	return nil
}

// CopySlice duplicates cells [index, index+span) into a fresh array.
func (rt *Runtime) CopySlice(a *Array, index, span int) *Array {
	if index > a.Used() {
		index = a.Used()
	}
	if index+span > a.Used() {
		span = a.Used() - index
	}
	out := rt.NewArray(span)
	out.Cells = append(out.Cells, a.Cells[index:index+span]...)
	return out
}

// Pairing is the two-cell stub used by compressed length-2 sequences.
type Pairing struct {
	Stub
	A, B Cell
}

func (rt *Runtime) NewPairing(a, b Cell) *Pairing {
	p := &Pairing{A: a, B: b}
	p.stampFlavor(FlavorPairing)
	return p
}
