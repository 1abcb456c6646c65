package runtime

// The evaluator executor performs one expression step per trampoline
// iteration: fetch the current element, dispatch on its heart, then look
// ahead for an infix action before committing the result. In list mode it
// loops steps until the feed is exhausted; ghosts vanish between
// expressions.

const (
	stEvalInitial uint8 = iota // STATE_0: output erased, nothing read yet
	stEvalNextStep
	stEvalGroupResult
	stEvalSetRHS
	stEvalActionResult
)

// PushEval pushes a list-mode evaluator over a feed.
func (rt *Runtime) PushEval(feed *Feed, out *Cell) *Level {
	return rt.PushLevel(EvalExecutor, feed, out)
}

// PushEvalStep pushes a single-step evaluator (one expression only).
func (rt *Runtime) PushEvalStep(feed *Feed, out *Cell) *Level {
	L := rt.PushLevel(EvalExecutor, feed, out)
	L.Flags |= LevelStepOnly
	return L
}

func EvalExecutor(rt *Runtime, L *Level) Bounce {
	if rt.ThrownActive() {
		return BounceThrown // plain evaluation never intercepts throws
	}

	switch L.State {
	case stEvalInitial:
		L.State = stEvalNextStep
		fallthrough
	case stEvalNextStep:
		return evalNewStep(rt, L)
	case stEvalGroupResult, stEvalActionResult:
		L.Feed.InvalidateGotten()
		return evalLookahead(rt, L)
	case stEvalSetRHS:
		return evalAssign(rt, L)
	}
	panic("evaluator in impossible state")
}

func evalNewStep(rt *Runtime, L *Level) Bounce {
	f := L.Feed
	if f.AtEnd() {
		return evalFinishList(rt, L)
	}
	L.cur = *f.At()
	f.Next()
	cur := &L.cur

	// Quoted elements drop one quote and are otherwise inert.
	if cur.Quotes > 0 {
		*L.Out = *cur
		L.Out.Quotes--
		return evalLookahead(rt, L)
	}

	// A literal quasiform evaluates to its antiform.
	if cur.Lift == LiftQuasi {
		*L.Out = UnliftCell(cur)
		return evalLookahead(rt, L)
	}

	if cur.Heart == HeartWord {
		return evalWord(rt, L, cur)
	}

	switch cur.Heart {
	case HeartComma:
		*L.Out = GhostCell()
		return evalLookahead(rt, L)

	case HeartGroup:
		inner := NewFeed(cur.Array(), cur.Index, groupBinding(cur, L.Feed))
		rt.PushEval(inner, L.Out)
		L.State = stEvalGroupResult
		return BounceContinue

	case HeartBlock, HeartFence:
		*L.Out = *cur
		if L.Out.Binding() == nil {
			L.Out.SetBinding(L.Feed.Binding())
		}
		return evalLookahead(rt, L)

	case HeartPath, HeartTuple, HeartChain:
		return evalSequence(rt, L, cur)

	case HeartFrame:
		// An action literal in the feed (host variadics) invokes as
		// prefix; frame instances are inert.
		if d := cur.DetailsNode(); d != nil {
			act := ActionCell(d, cur.Coupling())
			rt.PushActionLevel(&act, L.Feed, L.Out, nil, nil, len(rt.stack))
			L.State = stEvalActionResult
			return BounceContinue
		}
		*L.Out = *cur
		return evalLookahead(rt, L)
	}

	// Integers, decimals, chars, texts, blobs, maps, blanks: inert.
	*L.Out = *cur
	return evalLookahead(rt, L)
}

// groupBinding picks the lookup chain for a nested list: its own binding
// when it has one, else the enclosing feed's.
func groupBinding(c *Cell, f *Feed) *VarList {
	if b := c.Binding(); b != nil {
		return b
	}
	return f.Binding()
}

func evalWord(rt *Runtime, L *Level, cur *Cell) Bounce {
	switch cur.Sigil {
	case SigilNone:
		slot := ResolveWord(cur, L.Feed.Binding())
		if slot == nil {
			return rt.PanicThrow(rt.NewError("no-binding", cur.Symbol().Text))
		}
		if slot.IsErased() {
			return rt.PanicThrow(rt.NewError("not-set", cur.Symbol().Text))
		}
		if IsAction(slot) {
			act := *slot
			rt.PushActionLevel(&act, L.Feed, L.Out, cur.Symbol(), nil, len(rt.stack))
			L.State = stEvalActionResult
			return BounceContinue
		}
		*L.Out = *slot
		return evalLookahead(rt, L)

	case SigilSet:
		L.Scratch = *cur
		rt.PushEvalStep(L.Feed, L.Out)
		L.State = stEvalSetRHS
		return BounceContinue

	case SigilGet:
		slot := ResolveWord(cur, L.Feed.Binding())
		if slot == nil {
			return rt.PanicThrow(rt.NewError("no-binding", cur.Symbol().Text))
		}
		if slot.IsErased() {
			return rt.PanicThrow(rt.NewError("not-set", cur.Symbol().Text))
		}
		*L.Out = *slot
		return evalLookahead(rt, L)

	case SigilMeta:
		slot := ResolveWord(cur, L.Feed.Binding())
		if slot == nil {
			return rt.PanicThrow(rt.NewError("no-binding", cur.Symbol().Text))
		}
		*L.Out = LiftCell(slot)
		return evalLookahead(rt, L)

	case SigilTie:
		// $word evaluates to the word, bound to the current context.
		*L.Out = *cur
		L.Out.Sigil = SigilNone
		if L.Out.Binding() == nil {
			L.Out.SetBinding(L.Feed.Binding())
		}
		return evalLookahead(rt, L)

	case SigilPin:
		// @word is inert.
		*L.Out = *cur
		return evalLookahead(rt, L)
	}
	panic("word with impossible sigil")
}

func evalAssign(rt *Runtime, L *Level) Bounce {
	target := L.Scratch
	val, errStub := rt.Decay(L.Out)
	if errStub != nil {
		return rt.PanicThrow(errStub)
	}

	if target.Heart == HeartWord {
		tc := target
		tc.Sigil = SigilNone
		if tc.Binding() == nil {
			tc.SetBinding(L.Feed.Binding())
		}
		slot := ResolveWordForWrite(&tc, L.Feed.Binding())
		if slot == nil {
			return rt.PanicThrow(rt.NewError("no-binding", tc.Symbol().Text))
		}
		if slot.Flags&CellProtected != 0 {
			return rt.PanicThrow(rt.NewError("protected"))
		}
		*slot = val
	} else {
		// Sequence target: m.a: ... pokes through the tweak chain.
		if e := rt.TweakSetPath(&target, L.Feed.Binding(), &val); e != nil {
			return rt.PanicThrow(e)
		}
	}
	*L.Out = val
	return evalLookahead(rt, L)
}

func evalSequence(rt *Runtime, L *Level, cur *Cell) Bounce {
	switch cur.Sigil {
	case SigilSet:
		L.Scratch = *cur
		rt.PushEvalStep(L.Feed, L.Out)
		L.State = stEvalSetRHS
		return BounceContinue
	case SigilGet:
		v, e := rt.TweakGetPath(cur, L.Feed.Binding(), false)
		if e != nil {
			return rt.PanicThrow(e)
		}
		*L.Out = v
		return evalLookahead(rt, L)
	}

	if cur.Heart == HeartChain {
		return evalChain(rt, L, cur)
	}

	if cur.Heart == HeartPath {
		// A path with a trailing blank fetches the action as a value.
		parts := rt.SequenceCells(cur)
		if cur.Flags&CellTrailingBlank != 0 && len(parts) >= 1 && AnyWord(&parts[0]) {
			slot := ResolveWord(&parts[0], L.Feed.Binding())
			if slot == nil {
				return rt.PanicThrow(rt.NewError("no-binding", parts[0].Symbol().Text))
			}
			*L.Out = *slot
			return evalLookahead(rt, L)
		}
	}

	// Tuples (and non-invoking paths) run the pick chain. Landing on an
	// action through a tuple is considered a surprise.
	v, e := rt.TweakGetPath(cur, L.Feed.Binding(), false)
	if e != nil {
		return rt.PanicThrow(e)
	}
	if cur.Heart == HeartTuple && IsAction(&v) {
		return rt.PanicThrow(rt.NewError("surprising-action"))
	}
	*L.Out = v
	return evalLookahead(rt, L)
}

// evalChain invokes head:ref1:ref2 — the head must name an action, the
// tail words name refinements pushed above the action level's baseline.
func evalChain(rt *Runtime, L *Level, cur *Cell) Bounce {
	parts := rt.SequenceCells(cur)
	if len(parts) == 0 || !AnyWord(&parts[0]) {
		return rt.PanicThrow(rt.NewError("bad-value", Mold(cur)))
	}
	slot := ResolveWord(&parts[0], L.Feed.Binding())
	if slot == nil {
		return rt.PanicThrow(rt.NewError("no-binding", parts[0].Symbol().Text))
	}
	if !IsAction(slot) {
		return rt.PanicThrow(rt.NewError("not-an-action", parts[0].Symbol().Text))
	}
	refMark := len(rt.stack)
	for i := 1; i < len(parts); i++ {
		if !AnyWord(&parts[i]) {
			return rt.PanicThrow(rt.NewError("bad-refines", Mold(&parts[i])))
		}
		rt.PushStack(WordCell(parts[i].Symbol()))
	}
	act := *slot
	rt.PushActionLevel(&act, L.Feed, L.Out, parts[0].Symbol(), nil, refMark)
	L.State = stEvalActionResult
	return BounceContinue
}

// evalLookahead peeks at the next element without consuming it; a word
// bound to an infix action steals the just-produced value as its left
// argument.
func evalLookahead(rt *Runtime, L *Level) Bounce {
	f := L.Feed
	if L.Flags&LevelNoLookahead == 0 && !f.AtEnd() {
		if gotten := f.Gotten(); gotten != nil && IsAction(gotten) {
			if d := gotten.DetailsNode(); d != nil && d.Infix {
				sym := f.At().Symbol()
				act := *gotten
				left := *L.Out
				f.Next()
				rt.PushActionLevel(&act, f, L.Out, sym, &left, len(rt.stack))
				L.State = stEvalActionResult
				return BounceContinue
			}
		}
	}
	return evalEndStep(rt, L)
}

func evalEndStep(rt *Runtime, L *Level) Bounce {
	if L.Flags&LevelStepOnly != 0 {
		return BounceDone
	}
	if !IsGhost(L.Out) {
		L.Spare = *L.Out
		L.sawResult = true
	}
	L.State = stEvalNextStep
	return BounceRedo
}

func evalFinishList(rt *Runtime, L *Level) Bounce {
	if L.Out.IsErased() || (IsGhost(L.Out) && L.sawResult) {
		if L.sawResult {
			*L.Out = L.Spare
		} else {
			*L.Out = GhostCell()
		}
	}
	return BounceDone
}
