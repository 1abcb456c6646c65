package runtime

// Actions: a paramlist describes the interface, a Details array carries
// the dispatcher and its private state, and invocation is a Level whose
// executor fulfills arguments (one trampoline continuation per evaluated
// argument) and then hands control to the dispatcher.

type ParamClass uint8

const (
	ParamNormal ParamClass = iota // evaluate one expression
	ParamMeta                     // evaluate, then lift (errors legal)
	ParamHard                     // take the element literally
	ParamSoft                     // literal, except groups evaluate
	ParamReturn                   // definitional return slot
)

// ParamSpec describes one parameter slot. It lives behind a
// PARAMETER!-heart cell inside the paramlist.
type ParamSpec struct {
	Stub
	Class      ParamClass
	Refinement bool
	TakesArg   bool // refinements only: the refinement carries a value
	Endable    bool // feed exhaustion yields null instead of an error
	Skippable  bool
	Variadic   bool
	Types      []string // typeset constraint names; empty accepts any stable value
}

func NewParamSpec(class ParamClass) *ParamSpec {
	p := &ParamSpec{Class: class}
	p.stampFlavor(FlavorParameter)
	return p
}

func ParamCell(p *ParamSpec) Cell {
	return Cell{Heart: HeartParameter, Lift: LiftNormal, Node: p}
}

func (c *Cell) ParamSpec() *ParamSpec {
	p, _ := c.Node.(*ParamSpec)
	return p
}

func IsParamCell(c *Cell) bool { return c.Heart == HeartParameter }

// Details is the fixed per-action array: the dispatcher, the paramlist it
// serves, and dispatcher-private cells. Slot meanings are per-dispatcher
// (see dispatchers.go).
type Details struct {
	Stub
	Name       string
	Dispatcher Executor
	Paramlist  *VarList // keys = param names; vars = PARAMETER! cells or specialized values
	Slots      []Cell
	Infix      bool
	Gen        *genState // yielders only
}

func (rt *Runtime) NewDetails(name string, dispatcher Executor, paramlist *VarList, slots ...Cell) *Details {
	d := &Details{Name: name, Dispatcher: dispatcher, Paramlist: paramlist}
	d.stampFlavor(FlavorDetails)
	d.Slots = append(d.Slots, slots...)
	return d
}

func (c *Cell) DetailsNode() *Details {
	d, _ := c.Node.(*Details)
	return d
}

func (c *Cell) Coupling() *VarList {
	v, _ := c.Aux.(*VarList)
	return v
}

// ParamDef is the construction-time description natives and func use to
// build paramlists.
type ParamDef struct {
	Name       string
	Class      ParamClass
	Refinement bool
	TakesArg   bool
	Endable    bool
	Types      []string
}

// MakeParamlist builds the varlist-of-parameters an action carries.
func (rt *Runtime) MakeParamlist(defs []ParamDef) *VarList {
	syms := make([]*Symbol, len(defs))
	for i, d := range defs {
		syms[i] = rt.Intern(d.Name)
	}
	v := rt.NewVarList(rt.NewKeyList(syms), nil)
	for i, d := range defs {
		p := NewParamSpec(d.Class)
		p.Refinement = d.Refinement
		p.TakesArg = d.TakesArg
		p.Endable = d.Endable
		p.Types = d.Types
		v.Vars[i+1] = ParamCell(p)
	}
	return v
}

// --- invocation -------------------------------------------------------------

const (
	stActInitial    uint8 = iota // STATE_0
	stActFulfilling              // iterating params; may re-enter per argument
)

// PushActionLevel begins an invocation. Callsite refinements must already
// sit on the data stack between refMark and the current depth; they are
// rolled back with the level. A non-nil left value feeds the first normal
// parameter (infix).
func (rt *Runtime) PushActionLevel(act *Cell, feed *Feed, out *Cell, label *Symbol, left *Cell, refMark int) *Level {
	L := rt.PushLevel(ActionExecutor, feed, out)
	L.baseline = refMark
	L.refBase = refMark
	L.refCount = len(rt.stack) - refMark
	L.details = act.DetailsNode()
	L.coupling = act.Coupling()
	L.Label = label
	if left != nil {
		L.left = *left
		L.hasLeft = true
	}
	rt.pushActionFrame(L)
	return L
}

// PushPreparedActionLevel invokes an action whose frame is already
// fulfilled (chain steps, enclose outers, frame eval).
func (rt *Runtime) PushPreparedActionLevel(d *Details, coupling *VarList, varlist *VarList, out *Cell) *Level {
	L := rt.PushLevel(ActionExecutor, nil, out)
	L.details = d
	L.coupling = coupling
	L.varlist = varlist
	varlist.level = L
	L.dispatching = true
	L.State = 0
	return L
}

// pushActionFrame allocates the varlist sized to the paramlist, with the
// rootvar naming the action and coupling; the frame is marked as invoked
// by pointing it at the Level.
func (rt *Runtime) pushActionFrame(L *Level) {
	pl := L.details.Paramlist
	v := rt.NewVarList(pl.keys, nil)
	*v.Rootvar() = FrameCell(L.details, L.coupling)
	v.level = L
	L.varlist = v
	L.paramIdx = 1
}

func (L *Level) refinementRequested(rt *Runtime, sym *Symbol) bool {
	for i := 0; i < L.refCount; i++ {
		c := rt.StackAt(L.refBase + i)
		if c.Heart == HeartWord && SameWord(c.Symbol(), sym) {
			return true
		}
	}
	return false
}

func ActionExecutor(rt *Runtime, L *Level) Bounce {
	if rt.ThrownActive() {
		// Only dispatchers that opted into catching get to see the throw:
		// catch/rescue/loops via their level flags, yielders so they can
		// poison themselves on panic.
		optedIn := L.Flags&(LevelCatchesThrows|LevelCatchesPanics) != 0 ||
			L.details.Gen != nil
		if L.dispatching && optedIn {
			return L.details.Dispatcher(rt, L)
		}
		return BounceThrown
	}

	if L.dispatching {
		return runDispatch(rt, L)
	}

	switch L.State {
	case stActInitial:
		L.State = stActFulfilling
		return fulfill(rt, L)
	case stActFulfilling:
		if L.pendingArg {
			L.pendingArg = false
			if b, done := finishPendingArg(rt, L); done {
				return b
			}
			L.paramIdx++
		}
		return fulfill(rt, L)
	}
	panic("action executor in impossible state")
}

// fulfill walks the paramlist from the current cursor. It returns
// BounceContinue whenever an argument needs a sub-evaluation; the state
// byte brings us back here.
func fulfill(rt *Runtime, L *Level) Bounce {
	pl := L.details.Paramlist
	keys := pl.keys.Keys

	for ; L.paramIdx <= len(keys); L.paramIdx++ {
		i := L.paramIdx
		spec := pl.Vars[i]
		slot := &L.varlist.Vars[i]

		if !IsParamCell(&spec) {
			// Specialized: the paramlist already holds the value.
			*slot = spec
			continue
		}
		ps := spec.ParamSpec()

		if ps.Class == ParamReturn {
			continue // the dispatcher wires definitional return itself
		}

		if ps.Refinement {
			if !L.refinementRequested(rt, keys[i-1]) {
				*slot = rt.NullCell()
				continue
			}
			if !ps.TakesArg {
				*slot = rt.OkayCell()
				continue
			}
			// fall through: the refinement's value is fulfilled like a
			// normal parameter
		}

		// Infix: the left-hand value satisfies the first value-taking
		// parameter without touching the feed.
		if L.hasLeft {
			L.hasLeft = false
			*slot = L.left
			if e := typecheckArg(rt, L, i, ps, slot); e != nil {
				return rt.PanicThrow(e)
			}
			continue
		}

		switch ps.Class {
		case ParamHard:
			if L.Feed == nil || L.Feed.AtEnd() {
				if ps.Endable {
					*slot = rt.NullCell()
					continue
				}
				return rt.PanicThrow(rt.NewError("missing-argument", keys[i-1].Text, L.details.Name))
			}
			*slot = *L.Feed.At()
			L.Feed.Next()
			if e := typecheckArg(rt, L, i, ps, slot); e != nil {
				return rt.PanicThrow(e)
			}

		case ParamSoft:
			if L.Feed == nil || L.Feed.AtEnd() {
				if ps.Endable {
					*slot = rt.NullCell()
					continue
				}
				return rt.PanicThrow(rt.NewError("missing-argument", keys[i-1].Text, L.details.Name))
			}
			cur := *L.Feed.At()
			if IsGroup(&cur) {
				L.Feed.Next()
				inner := NewFeed(cur.Array(), cur.Index, groupBinding(&cur, L.Feed))
				rt.PushEval(inner, slot)
				L.pendingArg = true
				return BounceContinue
			}
			*slot = cur
			L.Feed.Next()
			if e := typecheckArg(rt, L, i, ps, slot); e != nil {
				return rt.PanicThrow(e)
			}

		case ParamNormal, ParamMeta:
			if L.Feed == nil || L.Feed.AtEnd() {
				if ps.Endable {
					*slot = rt.NullCell()
					continue
				}
				return rt.PanicThrow(rt.NewError("missing-argument", keys[i-1].Text, L.details.Name))
			}
			sub := rt.PushEvalStep(L.Feed, slot)
			if L.details.Infix {
				sub.Flags |= LevelNoLookahead // operators apply strictly left to right
			}
			L.pendingArg = true
			return BounceContinue
		}
	}

	if L.Flags&LevelFulfillOnly != 0 {
		*L.Out = FrameInstanceCell(L.varlist, L.details)
		L.varlist.level = nil // frame exists, but nothing is running it
		return BounceDone
	}

	L.dispatching = true
	L.State = 0
	return runDispatch(rt, L)
}

// finishPendingArg post-processes an argument a sub-level just delivered:
// meta parameters lift, others decay, and all typecheck. Returns done=true
// with a bounce when the argument fails.
func finishPendingArg(rt *Runtime, L *Level) (Bounce, bool) {
	i := L.paramIdx
	pl := L.details.Paramlist
	ps := pl.Vars[i].ParamSpec()
	slot := &L.varlist.Vars[i]

	if ps.Class == ParamMeta {
		lifted := LiftCell(slot)
		*slot = lifted
	} else {
		v, errStub := rt.Decay(slot)
		if errStub != nil {
			return rt.PanicThrow(errStub), true
		}
		*slot = v
	}
	if e := typecheckArg(rt, L, i, ps, slot); e != nil {
		return rt.PanicThrow(e), true
	}
	return BounceContinue, false
}

func typecheckArg(rt *Runtime, L *Level, i int, ps *ParamSpec, slot *Cell) *ErrorStub {
	if ps.Class == ParamMeta {
		return nil // lifted arguments accept anything, errors included
	}
	if IsNulled(slot) && (ps.Endable || ps.Refinement) {
		return nil
	}
	if len(ps.Types) == 0 {
		if !IsStable(slot) {
			return rt.NewError("bad-argument-type",
				L.details.Paramlist.keys.Keys[i-1].Text, L.details.Name, TypeOf(slot))
		}
		return nil
	}
	for _, t := range ps.Types {
		if CheckTypeName(t, slot) {
			return nil
		}
	}
	return rt.NewError("bad-argument-type",
		L.details.Paramlist.keys.Keys[i-1].Text, L.details.Name, TypeOf(slot))
}

// runDispatch hands the level to the dispatcher and post-processes its
// completion (return-slot typecheck).
func runDispatch(rt *Runtime, L *Level) Bounce {
	b := L.details.Dispatcher(rt, L)
	if b != BounceDone {
		return b
	}
	if e := typecheckReturn(rt, L); e != nil {
		return rt.PanicThrow(e)
	}
	return BounceDone
}

func typecheckReturn(rt *Runtime, L *Level) *ErrorStub {
	pl := L.details.Paramlist
	for i, sym := range pl.keys.Keys {
		if sym.Text != "return" {
			continue
		}
		spec := pl.Vars[i+1]
		if !IsParamCell(&spec) {
			continue
		}
		ps := spec.ParamSpec()
		if len(ps.Types) == 0 {
			return nil
		}
		for _, t := range ps.Types {
			if CheckTypeName(t, L.Out) {
				return nil
			}
		}
		return rt.NewError("bad-return-type", TypeOf(L.Out))
	}
	return nil
}

// CheckTypeName implements the closed typeset vocabulary paramlists use.
func CheckTypeName(name string, c *Cell) bool {
	switch name {
	case "any-stable?":
		return IsStable(c)
	case "any-value?":
		return true
	case "integer!":
		return IsInteger(c)
	case "decimal!":
		return IsDecimal(c)
	case "any-number?":
		return AnyNumber(c)
	case "char!":
		return IsChar(c)
	case "text!":
		return IsText(c)
	case "blob!":
		return IsBlob(c)
	case "word!":
		return IsWord(c)
	case "any-word?":
		return AnyWord(c)
	case "block!":
		return IsBlock(c)
	case "group!":
		return IsGroup(c)
	case "any-list?":
		return AnyList(c)
	case "any-series?":
		return AnySeries(c)
	case "any-sequence?":
		return AnySequence(c)
	case "map!":
		return IsMapCell(c)
	case "frame!":
		return c.Heart == HeartFrame && c.Lift == LiftNormal
	case "action?":
		return IsAction(c)
	case "error!":
		return c.Heart == HeartError
	case "splice?":
		return IsSplice(c)
	case "logic?":
		return IsKeyword(c)
	case "null?":
		return IsNulled(c)
	case "blank!":
		return IsBlank(c)
	}
	return false
}
