package runtime

import "github.com/renlang/ren/internal/config"

// A Level is one cooperative task on the trampoline's stack: a call frame
// for the evaluator, an action invocation, or a native continuation. Every
// executor must tolerate being called many times; the state byte chooses
// the code path, and state 0 always means initial entry with an erased
// output cell.

type LevelFlags uint16

const (
	// LevelCatchesThrows opts the level's executor into seeing throws
	// during unwind instead of being cleaned up past.
	LevelCatchesThrows LevelFlags = 1 << iota

	// LevelCatchesPanics additionally intercepts failure throws; only
	// rescue-like constructs set it.
	LevelCatchesPanics

	// LevelStepOnly makes the evaluator perform a single expression step
	// rather than consuming the feed to its end.
	LevelStepOnly

	// LevelNoLookahead forbids infix lookahead after the step completes
	// (set on the steps that gather an infix action's arguments).
	LevelNoLookahead

	// LevelDelegated marks a level whose sub-level's result replaces it
	// entirely; the trampoline pops it without re-entering the executor.
	LevelDelegated

	// LevelFulfillOnly gathers an action's arguments but stops before
	// dispatch, yielding the built frame instead (reframers use this).
	LevelFulfillOnly
)

type Executor func(rt *Runtime, L *Level) Bounce

type Level struct {
	Executor Executor
	Out      *Cell
	Feed     *Feed
	State    uint8
	Flags    LevelFlags
	Label    *Symbol // word the level was invoked through, for errors

	Scratch Cell
	Spare   Cell

	prior    *Level
	baseline int // data stack depth at push, restored on drop

	// evaluator-private
	cur       Cell
	sawResult bool // list mode: a non-ghost expression has completed

	// native-private: a feed a native steps across its continuations
	subfeed *Feed

	// action-private
	varlist     *VarList
	details     *Details
	coupling    *VarList
	paramIdx    int
	refBase     int // data stack mark where callsite refinements begin
	refCount    int
	left        Cell // infix: the already-evaluated first argument
	hasLeft     bool
	pendingArg  bool // a sub-evaluation into the current arg slot is live
	dispatching bool // fulfillment done; State now belongs to the dispatcher
}

func (L *Level) Prior() *Level { return L.prior }

func (L *Level) Varlist() *VarList { return L.varlist }

func (L *Level) Details() *Details { return L.details }

// Arg resolves a frame argument by name; dispatchers use it rather than
// raw slot indices.
func (L *Level) Arg(name string, rt *Runtime) *Cell {
	if L.varlist == nil {
		return nil
	}
	if i := L.varlist.Index(rt.Intern(name)); i != 0 {
		return &L.varlist.Vars[i]
	}
	return nil
}

// depth counts levels below, to enforce the recursion guard.
func (rt *Runtime) depth() int {
	n := 0
	for l := rt.top; l != nil; l = l.prior {
		n++
	}
	return n
}

// PushLevel places a fresh level atop the stack. The output cell is erased
// per the STATE_0 contract.
func (rt *Runtime) PushLevel(exec Executor, feed *Feed, out *Cell) *Level {
	if rt.depth() >= config.MaxLevelDepth {
		panic("level stack exhausted")
	}
	out.Erase()
	L := &Level{
		Executor: exec,
		Feed:     feed,
		Out:      out,
		prior:    rt.top,
		baseline: len(rt.stack),
	}
	rt.top = L
	return L
}

// DropLevel pops a level, restoring the data stack to the level's baseline
// and decaying its varlist if cells may still reference it.
func (rt *Runtime) DropLevel(L *Level) {
	if rt.top != L {
		panic("dropping a level that is not on top")
	}
	rt.DropTo(L.baseline)
	if L.varlist != nil {
		L.varlist.decayFromLevel()
	}
	rt.top = L.prior
}

// unplug detaches the contiguous slice of levels from the stack top down
// to just above `lower`, returning them top-first.
// Used by yielders to suspend.
func (rt *Runtime) unplug(lower *Level) []*Level {
	var plug []*Level
	for rt.top != lower {
		l := rt.top
		plug = append(plug, l)
		rt.top = l.prior
		l.prior = nil
	}
	return plug
}

// replug re-extends the stack with a previously unplugged slice. The
// levels keep their baselines; the caller rebases them if the data stack
// moved while they were detached.
func (rt *Runtime) replug(plug []*Level) {
	for i := len(plug) - 1; i >= 0; i-- {
		l := plug[i]
		l.prior = rt.top
		rt.top = l
	}
}
