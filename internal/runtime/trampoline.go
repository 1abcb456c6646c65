package runtime

// The trampoline is the single scheduler. Executors never call each other;
// they push Levels and return a Bounce, and the loop here decides what
// runs next. All recursion in the language (eval, calls, generators)
// flattens into this loop.

type Bounce uint8

const (
	// BounceDone: the level completed; its Out holds the result.
	BounceDone Bounce = iota

	// BounceContinue: a sub-level was pushed; resume this one after.
	BounceContinue

	// BounceDelegate: a sub-level was pushed whose result replaces this
	// level entirely (tail call). Pair with Delegate().
	BounceDelegate

	// BounceThrown: a non-local exit is in flight (throw.go).
	BounceThrown

	// BounceRedo: re-enter this level's executor immediately with
	// refreshed arguments (tail-recursion primitive).
	BounceRedo

	// BounceSuspend: levels were physically unplugged from the stack; the
	// new top is already correct.
	BounceSuspend
)

// Delegate wires a sub-level as a tail call: the sub writes straight into
// L's output and L is popped without being re-entered.
func (L *Level) Delegate(sub *Level) Bounce {
	if sub.Out != L.Out {
		panic("delegated level must share the output cell")
	}
	L.Flags |= LevelDelegated
	return BounceDelegate
}

// Trampoline drives the stack until L (and everything it pushed) has
// completed. It returns the uncaught failure if one escapes.
func (rt *Runtime) Trampoline(L *Level) *ErrorStub {
	base := L.prior
	for rt.top != base {
		if rt.haltRequested() {
			rt.PanicThrow(rt.NewError("halted"))
		}

		var b Bounce
		if rt.hasThrown {
			b = BounceThrown
		} else {
			b = rt.top.Executor(rt, rt.top)
		}

		switch b {
		case BounceDone:
			fin := rt.top
			rt.DropLevel(fin)
			// Delegated parents complete with the sub's value already in
			// their shared output cell.
			for rt.top != base && rt.top.Flags&LevelDelegated != 0 {
				d := rt.top
				rt.DropLevel(d)
			}

		case BounceContinue, BounceDelegate, BounceSuspend:
			// The executor arranged the stack; just keep going.

		case BounceRedo:
			// Same level runs again immediately.

		case BounceThrown:
			if err := rt.bubbleThrow(base); err != nil {
				return err
			}
		}
	}
	return nil
}

// bubbleThrow unwinds levels until one is entitled to see the throw. The
// unwind target is always entitled; otherwise catching is opt-in per
// flags, and failure throws need the stronger opt-in. Returns the error
// when the throw escapes past base.
func (rt *Runtime) bubbleThrow(base *Level) *ErrorStub {
	for {
		t := rt.top
		if t == base {
			// Escaped: hand the failure (or a no-catch complaint) out.
			label, arg := rt.TakeThrow()
			if e := label.ErrorNode(); e != nil {
				return e
			}
			_ = arg
			return rt.NewError("no-catch", Mold(&label))
		}

		if rt.unwindTo == t {
			// Deliver the argument as this level's result.
			_, arg := rt.TakeThrow()
			*t.Out = arg
			rt.DropLevel(t)
			for rt.top != base && rt.top.Flags&LevelDelegated != 0 {
				rt.DropLevel(rt.top)
			}
			return nil
		}

		catches := t.Flags&LevelCatchesThrows != 0
		if rt.thrownPanic {
			catches = t.Flags&LevelCatchesPanics != 0
		}
		if catches {
			// The executor resumes and inspects rt.ThrownActive itself.
			b := t.Executor(rt, t)
			switch b {
			case BounceThrown:
				rt.DropLevel(t)
				continue
			case BounceDone:
				rt.DropLevel(t)
				for rt.top != base && rt.top.Flags&LevelDelegated != 0 {
					rt.DropLevel(rt.top)
				}
				return nil
			default:
				// The catcher continued with new work (e.g. a handler
				// block); back to the main loop.
				return nil
			}
		}

		rt.DropLevel(t)
	}
}
