package runtime

// The standard dispatchers. Each is an Executor invoked by the action
// executor once arguments are fulfilled; the Level's state byte belongs to
// the dispatcher from that point on, with state 0 the initial entry.

// Frame instance cells: payload is the varlist, Aux is the phase.
func FrameInstanceCell(v *VarList, phase *Details) Cell {
	return Cell{Heart: HeartFrame, Lift: LiftNormal, Node: v, Aux: phase}
}

func (c *Cell) FrameVarlist() *VarList {
	v, _ := c.Node.(*VarList)
	return v
}

func (c *Cell) FramePhase() *Details {
	d, _ := c.Aux.(*Details)
	return d
}

// --- natives ----------------------------------------------------------------

// MakeNative wires a Go function as an action. The function is the
// dispatcher itself, so natives may CONTINUE/DELEGATE like any other.
func (rt *Runtime) MakeNative(name string, defs []ParamDef, fn Executor) *Details {
	return rt.NewDetails(name, fn, rt.MakeParamlist(defs))
}

// RegisterNative puts a native action into Lib under its name.
func (rt *Runtime) RegisterNative(d *Details) {
	slot := rt.Lib.SlotForWrite(rt.Intern(d.Name))
	*slot = ActionCell(d, nil)
}

// --- definitional return ----------------------------------------------------

// returnDispatcher throws to the Level owning the frame the RETURN was
// coupled to. An uncoupled RETURN (or one whose frame already finished)
// is an invalid exit.
func returnDispatcher(rt *Runtime, L *Level) Bounce {
	if L.coupling == nil || L.coupling.level == nil {
		return rt.PanicThrow(rt.NewError("invalid-exit"))
	}
	target := L.coupling.level
	arg := *L.Arg("value", rt)
	return rt.ThrowTo(target, arg)
}

func (rt *Runtime) makeReturnDetails() *Details {
	return rt.MakeNative("return", []ParamDef{
		{Name: "value", Class: ParamNormal, Endable: true},
	}, returnDispatcher)
}

// --- func / lambda ----------------------------------------------------------

// Details slots for funcDispatcher and lambdaDispatcher.
const (
	idxInterpretedBody = 0
)

const (
	stBodyInitial uint8 = iota
	stBodyRunning
)

// funcDispatcher injects a definitional RETURN bound to the frame, then
// continues the body. The body's result is the action's result unless a
// RETURN cut it short.
func funcDispatcher(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case stBodyInitial:
		body := &L.details.Slots[idxInterpretedBody]
		if i := L.varlist.Index(rt.Intern("return")); i != 0 {
			L.varlist.Vars[i] = ActionCell(rt.returnDetails, L.varlist)
		}
		L.varlist.parent = body.Binding()
		feed := NewFeed(body.Array(), body.Index, L.varlist)
		rt.PushEval(feed, L.Out)
		L.State = stBodyRunning
		return BounceContinue
	case stBodyRunning:
		v, errStub := rt.Decay(L.Out)
		if errStub != nil {
			return rt.PanicThrow(errStub)
		}
		*L.Out = v
		return BounceDone
	}
	panic("func dispatcher in impossible state")
}

// lambdaDispatcher is func without a definitional RETURN; a fully vanishing
// body is allowed to vanish. A declared return: slot is still typechecked
// by runDispatch.
func lambdaDispatcher(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case stBodyInitial:
		body := &L.details.Slots[idxInterpretedBody]
		L.varlist.parent = body.Binding()
		feed := NewFeed(body.Array(), body.Index, L.varlist)
		rt.PushEval(feed, L.Out)
		L.State = stBodyRunning
		return BounceContinue
	case stBodyRunning:
		return BounceDone
	}
	panic("lambda dispatcher in impossible state")
}

// --- adapter ----------------------------------------------------------------

const (
	idxAdapterPrelude = 0
	idxAdapterTarget  = 1
)

// adapterDispatcher runs the prelude bound to the frame, then becomes the
// adaptee: same varlist, new phase.
func adapterDispatcher(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case 0:
		prelude := &L.details.Slots[idxAdapterPrelude]
		L.varlist.parent = prelude.Binding()
		feed := NewFeed(prelude.Array(), prelude.Index, L.varlist)
		rt.PushEval(feed, &L.Spare)
		L.State = 1
		return BounceContinue
	case 1:
		target := &L.details.Slots[idxAdapterTarget]
		L.details = target.DetailsNode()
		L.State = 0
		return BounceRedo // re-enters the adaptee's dispatcher, same frame
	}
	panic("adapter dispatcher in impossible state")
}

// --- chainer ----------------------------------------------------------------

const idxChainPipeline = 0

// chainerDispatcher runs the first action on the gathered frame, then
// pours each result into the next action as its sole argument.
func chainerDispatcher(rt *Runtime, L *Level) Bounce {
	pipeline := L.details.Slots[idxChainPipeline].Array()

	if L.State == 0 {
		first := pipeline.AtPtr(0)
		d := first.DetailsNode()
		rt.PushPreparedActionLevel(d, first.Coupling(), L.varlist, &L.Spare)
		L.State = 1
		return BounceContinue
	}

	step := int(L.State)
	if v, errStub := rt.Decay(&L.Spare); errStub != nil {
		return rt.PanicThrow(errStub)
	} else {
		L.Spare = v
	}
	if step >= pipeline.Used() {
		*L.Out = L.Spare
		return BounceDone
	}

	next := pipeline.AtPtr(step)
	d := next.DetailsNode()
	v := rt.NewVarList(d.Paramlist.keys, nil)
	*v.Rootvar() = FrameCell(d, next.Coupling())
	for i := 1; i < len(v.Vars); i++ {
		if spec := d.Paramlist.Vars[i]; IsParamCell(&spec) && spec.ParamSpec().Class != ParamReturn {
			v.Vars[i] = L.Spare
			break
		}
	}
	rt.PushPreparedActionLevel(d, next.Coupling(), v, &L.Spare)
	L.State++
	return BounceContinue
}

// --- specializer ------------------------------------------------------------

const idxSpecializeTarget = 0

// specializerDispatcher: the paramlist already carried the specialized
// values into the frame during fulfillment; just switch phase to the
// underlying action.
func specializerDispatcher(rt *Runtime, L *Level) Bounce {
	target := &L.details.Slots[idxSpecializeTarget]
	L.details = target.DetailsNode()
	L.State = 0
	return BounceRedo
}

// --- encloser ---------------------------------------------------------------

const (
	idxEncloseInner = 0
	idxEncloseOuter = 1
)

// encloserDispatcher builds the inner frame but hands it to the outer
// action instead of running it; the outer decides if and how the inner
// frame is evaluated.
func encloserDispatcher(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case 0:
		inner := &L.details.Slots[idxEncloseInner]
		outer := &L.details.Slots[idxEncloseOuter]
		frame := FrameInstanceCell(L.varlist, inner.DetailsNode())
		L.varlist.level = nil // the outer owns when (and if) this frame runs

		d := outer.DetailsNode()
		v := rt.NewVarList(d.Paramlist.keys, nil)
		*v.Rootvar() = FrameCell(d, outer.Coupling())
		for i := 1; i < len(v.Vars); i++ {
			if spec := d.Paramlist.Vars[i]; IsParamCell(&spec) && spec.ParamSpec().Class != ParamReturn {
				v.Vars[i] = frame
				break
			}
		}
		rt.PushPreparedActionLevel(d, outer.Coupling(), v, L.Out)
		L.State = 1
		return BounceContinue
	case 1:
		return BounceDone
	}
	panic("encloser dispatcher in impossible state")
}

// --- hijacker ---------------------------------------------------------------

const idxHijackReplacement = 0

// hijackerDispatcher forwards to the replacement through a fresh frame,
// matching arguments by name. Used when the paramlists differ; compatible
// hijacks share the replacement's dispatcher directly (see Hijack).
func hijackerDispatcher(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case 0:
		repl := &L.details.Slots[idxHijackReplacement]
		d := repl.DetailsNode()
		v := rt.NewVarList(d.Paramlist.keys, nil)
		*v.Rootvar() = FrameCell(d, repl.Coupling())
		for i, sym := range d.Paramlist.keys.Keys {
			if j := L.varlist.Index(sym); j != 0 {
				v.Vars[i+1] = L.varlist.Vars[j]
			}
		}
		rt.PushPreparedActionLevel(d, repl.Coupling(), v, L.Out)
		L.State = 1
		return BounceContinue
	case 1:
		return BounceDone
	}
	panic("hijacker dispatcher in impossible state")
}

// Hijack redirects victim to replacement in place. Shared paramlists swap
// the dispatcher wholesale; otherwise calls go through a frame-building
// shim.
func Hijack(victim, replacement *Details) {
	if victim.Paramlist == replacement.Paramlist {
		victim.Dispatcher = replacement.Dispatcher
		victim.Slots = replacement.Slots
		victim.Gen = replacement.Gen
		return
	}
	victim.Dispatcher = hijackerDispatcher
	victim.Slots = []Cell{ActionCell(replacement, nil)}
}

// --- reframer ---------------------------------------------------------------

const idxReframerShim = 0

// reframerDispatcher consumes the next callsite invocation, builds its
// frame without executing it, plants it in the shim's frame argument, and
// re-enters as the shim.
func reframerDispatcher(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case 0:
		if L.Feed == nil || L.Feed.AtEnd() {
			return rt.PanicThrow(rt.NewError("missing-argument", "frame", L.details.Name))
		}
		cur := *L.Feed.At()
		var act Cell
		if AnyWord(&cur) {
			slot := ResolveWord(&cur, L.Feed.Binding())
			if slot == nil || !IsAction(slot) {
				return rt.PanicThrow(rt.NewError("not-an-action", Mold(&cur)))
			}
			act = *slot
		} else if IsAction(&cur) {
			act = cur
		} else {
			return rt.PanicThrow(rt.NewError("not-an-action", Mold(&cur)))
		}
		L.Feed.Next()
		sub := rt.PushActionLevel(&act, L.Feed, &L.Spare, cur.Symbol(), nil, len(rt.stack))
		sub.Flags |= LevelFulfillOnly
		L.State = 1
		return BounceContinue

	case 1:
		shim := &L.details.Slots[idxReframerShim]
		// The placeholder slot is the one the reframer's paramlist holds
		// specialized (non-parameter); the shim sees it as its frame arg.
		for i := range L.details.Paramlist.keys.Keys {
			if spec := L.details.Paramlist.Vars[i+1]; !IsParamCell(&spec) {
				L.varlist.Vars[i+1] = L.Spare
				break
			}
		}
		L.details = shim.DetailsNode()
		L.dispatching = true
		L.State = 0
		return BounceRedo
	}
	panic("reframer dispatcher in impossible state")
}

// --- n-shot -----------------------------------------------------------------

const (
	idxNshotCounter = 0
	idxNshotTarget  = 1
)

// nshotDispatcher runs its target for the first N invocations, then
// returns null forever.
func nshotDispatcher(rt *Runtime, L *Level) Bounce {
	counter := &L.details.Slots[idxNshotCounter]
	if counter.Num <= 0 {
		*L.Out = rt.NullCell()
		return BounceDone
	}
	counter.Num--
	target := &L.details.Slots[idxNshotTarget]
	L.details = target.DetailsNode()
	L.State = 0
	return BounceRedo
}

// upshotDispatcher is the complement: null until N invocations have
// passed, the target afterwards.
func upshotDispatcher(rt *Runtime, L *Level) Bounce {
	counter := &L.details.Slots[idxNshotCounter]
	if counter.Num > 0 {
		counter.Num--
		*L.Out = rt.NullCell()
		return BounceDone
	}
	target := &L.details.Slots[idxNshotTarget]
	L.details = target.DetailsNode()
	L.State = 0
	return BounceRedo
}

// --- construction helpers (used by natives.go) ------------------------------

// MakeFunc builds an interpreted function action from a spec block and a
// body block. The paramlist always carries a definitional return slot.
func (rt *Runtime) MakeFunc(spec *Array, body Cell, lambda bool) (*Details, *ErrorStub) {
	defs, errStub := rt.parseSpec(spec)
	if errStub != nil {
		return nil, errStub
	}
	if !lambda {
		defs = append(defs, ParamDef{Name: "return", Class: ParamReturn})
	}
	disp := funcDispatcher
	if lambda {
		disp = lambdaDispatcher
	}
	d := rt.NewDetails("", disp, rt.MakeParamlist(defs), body)
	return d, nil
}

// parseSpec reads the spec-block dialect: plain word = normal parameter,
// 'word = hard quote, :word = soft quote, ^word = meta, /word = refinement,
// return: = result spec; a block after a word narrows its types.
func (rt *Runtime) parseSpec(spec *Array) ([]ParamDef, *ErrorStub) {
	var defs []ParamDef
	for i := 0; i < spec.Used(); i++ {
		c := spec.At(i)

		var types []string
		grab := func() {
			if i+1 < spec.Used() && IsBlock(spec.AtPtr(i + 1)) {
				tb := spec.AtPtr(i + 1).Array()
				for j := 0; j < tb.Used(); j++ {
					if w := tb.AtPtr(j).Symbol(); w != nil {
						types = append(types, w.Text)
					}
				}
				i++
			}
		}

		switch {
		case c.Heart == HeartText:
			continue // description string

		case IsSetWord(&c) && c.Symbol().Text == "return":
			grab()
			defs = append(defs, ParamDef{Name: "return", Class: ParamReturn, Types: types})

		case c.Quotes == 1 && c.Heart == HeartWord && c.Sigil == SigilNone:
			grab()
			defs = append(defs, ParamDef{Name: c.Symbol().Text, Class: ParamHard, Types: types})

		case IsGetWord(&c):
			grab()
			defs = append(defs, ParamDef{Name: c.Symbol().Text, Class: ParamSoft, Types: types})

		case IsMetaWord(&c):
			grab()
			defs = append(defs, ParamDef{Name: c.Symbol().Text, Class: ParamMeta, Types: types})

		case c.Heart == HeartPath && c.Flags&CellLeadingBlank != 0:
			parts := rt.SequenceCells(&c)
			if len(parts) != 1 || !AnyWord(&parts[0]) {
				return nil, rt.NewError("bad-value", Mold(&c))
			}
			grab()
			defs = append(defs, ParamDef{
				Name: parts[0].Symbol().Text, Class: ParamNormal,
				Refinement: true, TakesArg: len(types) > 0, Types: types,
			})

		case IsWord(&c):
			grab()
			defs = append(defs, ParamDef{Name: c.Symbol().Text, Class: ParamNormal, Types: types})

		default:
			return nil, rt.NewError("bad-value", Mold(&c))
		}
	}
	return defs, nil
}
