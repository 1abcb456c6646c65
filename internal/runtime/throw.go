package runtime

// A throw is a sentinel pair (label, argument) parked in runtime slots,
// plus an optional unwind-target Level. RETURN, UNWIND, BREAK, CONTINUE,
// QUIT and abrupt panics all ride this one mechanism; the trampoline
// unwinds Levels (running their cleanup) until something entitled to the
// throw takes it.

// Throw initiates a labeled, catchable throw.
func (rt *Runtime) Throw(label, arg Cell) Bounce {
	rt.thrownLabel = label
	rt.thrownArg = arg
	rt.thrownPanic = false
	rt.unwindTo = nil
	rt.hasThrown = true
	return BounceThrown
}

// ThrowTo aims the unwind at a specific Level; the trampoline completes
// that level with the argument as its result. Definitional RETURN and
// UNWIND use this.
func (rt *Runtime) ThrowTo(target *Level, arg Cell) Bounce {
	rt.thrownLabel = Cell{}
	rt.thrownArg = arg
	rt.thrownPanic = false
	rt.unwindTo = target
	rt.hasThrown = true
	return BounceThrown
}

// PanicThrow escalates an error to a failure throw, interceptable only by
// levels that opted into catching panics.
func (rt *Runtime) PanicThrow(e *ErrorStub) Bounce {
	rt.thrownLabel = Cell{Heart: HeartError, Lift: LiftNormal, Node: e}
	rt.thrownArg = ErrorAntiCell(e)
	rt.thrownPanic = true
	rt.unwindTo = nil
	rt.hasThrown = true
	return BounceThrown
}

// ThrownActive reports whether a throw is in flight; catching executors
// check this on re-entry.
func (rt *Runtime) ThrownActive() bool { return rt.hasThrown }

func (rt *Runtime) ThrownIsPanic() bool { return rt.thrownPanic }

// PeekThrow exposes the label without consuming the throw.
func (rt *Runtime) PeekThrow() (label Cell, arg Cell) {
	return rt.thrownLabel, rt.thrownArg
}

// TakeThrow consumes the throw, returning label and argument.
func (rt *Runtime) TakeThrow() (label Cell, arg Cell) {
	label, arg = rt.thrownLabel, rt.thrownArg
	rt.clearThrowTargets()
	return label, arg
}

// Rethrow puts a taken throw back in flight unchanged.
func (rt *Runtime) Rethrow(label, arg Cell, panicky bool) Bounce {
	rt.thrownLabel = label
	rt.thrownArg = arg
	rt.thrownPanic = panicky
	rt.hasThrown = true
	return BounceThrown
}

func (rt *Runtime) clearThrowTargets() {
	rt.thrownLabel = Cell{}
	rt.thrownArg = Cell{}
	rt.thrownPanic = false
	rt.unwindTo = nil
	rt.hasThrown = false
}
