package runtime

// Yielders suspend by physically unplugging the slice of Levels between
// the YIELD call and the yielder invocation, parking it in the Details,
// and resuming by replugging that slice atop a later invocation. The
// frame keeps one identity across suspensions so closures over YIELD (and
// over the arguments) stay valid.

type genMode uint8

const (
	genFresh genMode = iota
	genRunning
	genSuspended
	genDone
	genPanicked
)

type genState struct {
	mode    genMode
	plug    []*Level // unplugged slice, top-first
	varlist *VarList // the original frame, identity-stolen each call
	bodyOut Cell     // where the body delivers; survives suspension
	last    Cell     // value the resumed YIELD reports

	// The data-stack segment the plugged levels had above the yielder's
	// baseline, saved across the suspension, plus the depth it sat at so
	// level baselines can be rebased on replug.
	stackSave []Cell
	stackBase int
}

// yielder invocation states (the Level's state byte, dispatcher-owned)
const (
	stYielderEntry   uint8 = 0
	stYielderBody    uint8 = 1
	stYielderYielded uint8 = 2
)

func yielderDispatcher(rt *Runtime, L *Level) Bounce {
	g := L.details.Gen

	switch L.State {
	case stYielderEntry:
		switch g.mode {
		case genDone:
			*L.Out = ErrorAntiCell(rt.DoneError())
			return BounceDone
		case genPanicked:
			return rt.PanicThrow(rt.NewError("yielder-panicked"))
		case genRunning:
			return rt.PanicThrow(rt.NewError("yielder-reentered"))

		case genFresh:
			// First invocation: this frame becomes the generator's one
			// true frame. YIELD is coupled to it definitionally.
			g.varlist = L.varlist
			if i := L.varlist.Index(rt.Intern("yield")); i != 0 {
				L.varlist.Vars[i] = ActionCell(rt.yieldDetails, L.varlist)
			}
			g.mode = genRunning
			body := &L.details.Slots[idxInterpretedBody]
			L.varlist.parent = body.Binding()
			feed := NewFeed(body.Array(), body.Index, L.varlist)
			L.Flags |= LevelCatchesPanics
			rt.PushEval(feed, &g.bodyOut)
			L.State = stYielderBody
			return BounceContinue

		case genSuspended:
			// Resumption: move the fresh argument slots into the old
			// varlist (identity preserved), adopt it, then re-extend the
			// stack with the saved slice. The saved Levels carry their
			// SPARE and state bytes untouched, so mid-expression state
			// resumes exactly.
			old := g.varlist
			for i := 1; i < len(old.Vars) && i < len(L.varlist.Vars); i++ {
				if spec := L.details.Paramlist.Vars[i]; IsParamCell(&spec) {
					ps := spec.ParamSpec()
					if ps.Class != ParamReturn && !ps.Refinement {
						old.Vars[i] = L.varlist.Vars[i]
					}
				}
			}
			g.last = firstArgValue(L)
			L.varlist.level = nil // the transient frame is discarded
			L.varlist = old
			old.level = L
			g.mode = genRunning
			L.Flags |= LevelCatchesPanics
			L.State = stYielderBody

			// Restore the data-stack segment the plugged levels owned and
			// rebase their baselines to the new depth.
			delta := len(rt.stack) - g.stackBase
			rt.stack = append(rt.stack, g.stackSave...)
			for _, plugged := range g.plug {
				plugged.baseline += delta
				plugged.refBase += delta
			}
			g.stackSave = nil
			rt.replug(g.plug)
			g.plug = nil
			return BounceContinue
		}

	case stYielderBody:
		// A panic in the body poisons the generator for good.
		if rt.ThrownActive() {
			if rt.ThrownIsPanic() {
				g.mode = genPanicked
			}
			return BounceThrown
		}
		// The body ran to completion without yielding again.
		g.mode = genDone
		*L.Out = ErrorAntiCell(rt.DoneError())
		return BounceDone

	case stYielderYielded:
		// yieldDispatcher already placed the value in our output.
		return BounceDone
	}
	panic("yielder dispatcher in impossible state")
}

// firstArgValue picks the value a resumed YIELD reports: the first real
// argument of the new invocation, or trash for argument-less generators.
func firstArgValue(L *Level) Cell {
	pl := L.details.Paramlist
	for i := 1; i < len(L.varlist.Vars); i++ {
		if spec := pl.Vars[i]; IsParamCell(&spec) {
			ps := spec.ParamSpec()
			if ps.Class != ParamReturn && !ps.Refinement {
				return L.varlist.Vars[i]
			}
		}
	}
	return TrashCell()
}

// yield dispatcher states
const (
	stYieldEntry   uint8 = 0
	stYieldResumed uint8 = 1
)

// yieldDispatcher suspends the yielder it is coupled to: everything
// between this call and the yielder level is unplugged into the Details,
// the yielded value lands in the yielder's output, and only the yielder
// remains atop the stack.
func yieldDispatcher(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case stYieldEntry:
		if L.coupling == nil || L.coupling.level == nil {
			return rt.PanicThrow(rt.NewError("invalid-exit"))
		}
		target := L.coupling.level
		g := target.details.Gen
		if g == nil {
			return rt.PanicThrow(rt.NewError("invalid-exit"))
		}
		val := *L.Arg("value", rt)

		// The done sentinel finishes the generator early.
		if IsError(&val) && IsDone(val.ErrorNode()) {
			g.mode = genDone
			*target.Out = ErrorAntiCell(rt.DoneError())
			target.State = stYielderYielded
			rt.unplug(target)
			g.plug = nil
			return BounceSuspend
		}

		L.State = stYieldResumed
		*target.Out = val
		target.State = stYielderYielded

		// Park the stack segment the about-to-be-unplugged levels pushed;
		// the yielder's own drop would wipe it otherwise.
		g.stackBase = target.baseline
		g.stackSave = append([]Cell(nil), rt.stack[target.baseline:]...)
		rt.DropTo(target.baseline)

		g.plug = rt.unplug(target)
		g.mode = genSuspended
		return BounceSuspend

	case stYieldResumed:
		// Replugged: report the value the new invocation supplied.
		if L.coupling != nil && L.coupling.level != nil {
			if g := L.coupling.level.details.Gen; g != nil {
				*L.Out = g.last
				return BounceDone
			}
		}
		*L.Out = TrashCell()
		return BounceDone
	}
	panic("yield dispatcher in impossible state")
}

func (rt *Runtime) makeYieldDetails() *Details {
	return rt.MakeNative("yield", []ParamDef{
		{Name: "value", Class: ParamMeta, Endable: true},
	}, yieldMetaShim)
}

// yieldMetaShim unlifts the meta-captured argument before the real yield
// logic, so ERROR! antiforms (the done sentinel) can pass through.
func yieldMetaShim(rt *Runtime, L *Level) Bounce {
	if L.State == stYieldEntry {
		arg := L.Arg("value", rt)
		if IsNulled(arg) {
			*arg = LiftCell(arg) // endable null passes as quasiform null
		}
		*arg = UnliftCell(arg)
	}
	return yieldDispatcher(rt, L)
}

// MakeYielder builds a yielder action: spec params plus the implicit
// definitional YIELD slot.
func (rt *Runtime) MakeYielder(spec *Array, body Cell) (*Details, *ErrorStub) {
	defs, errStub := rt.parseSpec(spec)
	if errStub != nil {
		return nil, errStub
	}
	defs = append(defs, ParamDef{Name: "yield", Class: ParamReturn})
	d := rt.NewDetails("yielder", yielderDispatcher, rt.MakeParamlist(defs), body)
	d.Gen = &genState{}
	return d, nil
}

// Close finalizes a suspended generator: the plugged levels are dropped
// and the generator reports done forever after. Hosts release generators
// they abandon so plugs do not linger.
func (d *Details) Close() {
	if d.Gen == nil {
		return
	}
	d.Gen.plug = nil
	if d.Gen.mode != genPanicked {
		d.Gen.mode = genDone
	}
}
