package runtime

// Control-flow and function-building natives. These are the natives that
// exercise the continuation protocol: each is a dispatcher driving its
// own state byte across trampoline iterations.

func (rt *Runtime) registerControlNatives() {
	rt.RegisterNative(rt.MakeNative("if", []ParamDef{
		{Name: "condition", Class: ParamNormal},
		{Name: "branch", Class: ParamNormal, Types: []string{"block!"}},
	}, ifNative))

	rt.RegisterNative(rt.MakeNative("either", []ParamDef{
		{Name: "condition", Class: ParamNormal},
		{Name: "true-branch", Class: ParamNormal, Types: []string{"block!"}},
		{Name: "false-branch", Class: ParamNormal, Types: []string{"block!"}},
	}, eitherNative))

	rt.RegisterNative(rt.MakeNative("eval", []ParamDef{
		{Name: "source", Class: ParamNormal, Types: []string{"block!", "group!", "frame!"}},
	}, evalNative))

	rt.RegisterNative(rt.MakeNative("reduce", []ParamDef{
		{Name: "block", Class: ParamNormal, Types: []string{"block!"}},
	}, reduceNative))

	rt.RegisterNative(rt.MakeNative("try", []ParamDef{
		{Name: "value", Class: ParamMeta, Endable: true},
	}, func(rt *Runtime, L *Level) Bounce {
		v := UnliftCell(L.Arg("value", rt))
		if IsError(&v) || IsNulled(&v) {
			*L.Out = rt.NullCell()
			return BounceDone
		}
		d, err := rt.Decay(&v)
		if err != nil {
			*L.Out = rt.NullCell()
			return BounceDone
		}
		*L.Out = d
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("rescue", []ParamDef{
		{Name: "block", Class: ParamNormal, Types: []string{"block!"}},
	}, rescueNative))

	rt.RegisterNative(rt.MakeNative("catch", []ParamDef{
		{Name: "block", Class: ParamNormal, Types: []string{"block!"}},
	}, catchNative))

	rt.RegisterNative(rt.MakeNative("throw", []ParamDef{
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		return rt.Throw(WordCell(rt.Intern("throw")), *L.Arg("value", rt))
	}))

	rt.RegisterNative(rt.MakeNative("break", nil, func(rt *Runtime, L *Level) Bounce {
		return rt.Throw(WordCell(rt.Intern("break")), rt.NullCell())
	}))

	rt.RegisterNative(rt.MakeNative("continue", nil, func(rt *Runtime, L *Level) Bounce {
		return rt.Throw(WordCell(rt.Intern("continue")), rt.NullCell())
	}))

	rt.RegisterNative(rt.MakeNative("repeat", []ParamDef{
		{Name: "count", Class: ParamNormal, Types: []string{"integer!"}},
		{Name: "body", Class: ParamNormal, Types: []string{"block!"}},
	}, repeatNative))

	rt.RegisterNative(rt.MakeNative("collect", []ParamDef{
		{Name: "body", Class: ParamNormal, Types: []string{"block!"}},
	}, collectNative))

	rt.RegisterNative(rt.MakeNative("each-pair", []ParamDef{
		{Name: "map", Class: ParamNormal, Types: []string{"map!"}},
		{Name: "body", Class: ParamNormal, Types: []string{"block!"}},
	}, eachPairNative))

	rt.RegisterNative(rt.MakeNative("func", []ParamDef{
		{Name: "spec", Class: ParamNormal, Types: []string{"block!"}},
		{Name: "body", Class: ParamNormal, Types: []string{"block!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		d, err := rt.MakeFunc(L.Arg("spec", rt).Array(), *L.Arg("body", rt), false)
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = ActionCell(d, nil)
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("lambda", []ParamDef{
		{Name: "spec", Class: ParamNormal, Types: []string{"block!"}},
		{Name: "body", Class: ParamNormal, Types: []string{"block!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		d, err := rt.MakeFunc(L.Arg("spec", rt).Array(), *L.Arg("body", rt), true)
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = ActionCell(d, nil)
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("adapt", []ParamDef{
		{Name: "action", Class: ParamNormal, Types: []string{"action?", "frame!"}},
		{Name: "prelude", Class: ParamNormal, Types: []string{"block!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		target := L.Arg("action", rt)
		td := target.DetailsNode()
		d := rt.NewDetails("adapted-"+td.Name, adapterDispatcher, td.Paramlist,
			*L.Arg("prelude", rt), FrameCell(td, target.Coupling()))
		*L.Out = ActionCell(d, target.Coupling())
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("specialize", []ParamDef{
		{Name: "action", Class: ParamNormal, Types: []string{"action?", "frame!"}},
		{Name: "frame", Class: ParamNormal, Types: []string{"block!"}},
	}, specializeNative))

	rt.RegisterNative(rt.MakeNative("enclose", []ParamDef{
		{Name: "inner", Class: ParamNormal, Types: []string{"action?", "frame!"}},
		{Name: "outer", Class: ParamNormal, Types: []string{"action?", "frame!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		inner := L.Arg("inner", rt)
		outer := L.Arg("outer", rt)
		id := inner.DetailsNode()
		d := rt.NewDetails("enclosed-"+id.Name, encloserDispatcher, id.Paramlist,
			FrameCell(id, inner.Coupling()),
			FrameCell(outer.DetailsNode(), outer.Coupling()))
		*L.Out = ActionCell(d, inner.Coupling())
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("chain", []ParamDef{
		{Name: "pipeline", Class: ParamNormal, Types: []string{"block!"}},
	}, chainNative))

	rt.RegisterNative(rt.MakeNative("n-shot", []ParamDef{
		{Name: "n", Class: ParamNormal, Types: []string{"integer!"}},
		{Name: "action", Class: ParamNormal, Types: []string{"action?", "frame!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		target := L.Arg("action", rt)
		td := target.DetailsNode()
		d := rt.NewDetails("n-shot-"+td.Name, nshotDispatcher, td.Paramlist,
			IntCell(L.Arg("n", rt).Num), FrameCell(td, target.Coupling()))
		*L.Out = ActionCell(d, target.Coupling())
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("upshot", []ParamDef{
		{Name: "n", Class: ParamNormal, Types: []string{"integer!"}},
		{Name: "action", Class: ParamNormal, Types: []string{"action?", "frame!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		target := L.Arg("action", rt)
		td := target.DetailsNode()
		d := rt.NewDetails("upshot-"+td.Name, upshotDispatcher, td.Paramlist,
			IntCell(L.Arg("n", rt).Num), FrameCell(td, target.Coupling()))
		*L.Out = ActionCell(d, target.Coupling())
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("hijack", []ParamDef{
		{Name: "victim", Class: ParamNormal, Types: []string{"action?", "frame!"}},
		{Name: "replacement", Class: ParamNormal, Types: []string{"action?", "frame!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		Hijack(L.Arg("victim", rt).DetailsNode(), L.Arg("replacement", rt).DetailsNode())
		*L.Out = TrashCell()
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("reframer", []ParamDef{
		{Name: "shim", Class: ParamNormal, Types: []string{"action?", "frame!"}},
	}, reframerNative))

	rt.RegisterNative(rt.MakeNative("generator", []ParamDef{
		{Name: "body", Class: ParamNormal, Types: []string{"block!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		d, err := rt.MakeYielder(rt.NewArray(0), *L.Arg("body", rt))
		if err != nil {
			return rt.PanicThrow(err)
		}
		d.Name = "generator"
		*L.Out = ActionCell(d, nil)
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("yielder", []ParamDef{
		{Name: "spec", Class: ParamNormal, Types: []string{"block!"}},
		{Name: "body", Class: ParamNormal, Types: []string{"block!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		d, err := rt.MakeYielder(L.Arg("spec", rt).Array(), *L.Arg("body", rt))
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = ActionCell(d, nil)
		return BounceDone
	}))
}

// --- branch machinery -------------------------------------------------------

func pushBranch(rt *Runtime, branch *Cell, out *Cell) *Level {
	feed := NewFeed(branch.Array(), branch.Index, branch.Binding())
	return rt.PushEval(feed, out)
}

// ifNative delegates to the branch: the branch's result replaces the IF
// level wholesale, with no re-entry.
func ifNative(rt *Runtime, L *Level) Bounce {
	t, err := rt.Truthy(L.Arg("condition", rt))
	if err != nil {
		return rt.PanicThrow(err)
	}
	if !t {
		*L.Out = rt.NullCell()
		return BounceDone
	}
	return L.Delegate(pushBranch(rt, L.Arg("branch", rt), L.Out))
}

func eitherNative(rt *Runtime, L *Level) Bounce {
	t, err := rt.Truthy(L.Arg("condition", rt))
	if err != nil {
		return rt.PanicThrow(err)
	}
	branch := L.Arg("true-branch", rt)
	if !t {
		branch = L.Arg("false-branch", rt)
	}
	return L.Delegate(pushBranch(rt, branch, L.Out))
}

func evalNative(rt *Runtime, L *Level) Bounce {
	src := L.Arg("source", rt)
	if src.Heart == HeartFrame {
		v := src.FrameVarlist()
		if v == nil {
			return rt.PanicThrow(rt.NewError("bad-value", "frame has no variables"))
		}
		if v.level != nil {
			return rt.PanicThrow(rt.NewError("yielder-reentered"))
		}
		phase := src.FramePhase()
		if phase == nil {
			phase = v.Rootvar().DetailsNode()
		}
		return L.Delegate(rt.PushPreparedActionLevel(phase, v.Rootvar().Coupling(), v, L.Out))
	}
	return L.Delegate(pushBranch(rt, src, L.Out))
}

// reduceNative steps expression by expression, lifting any antiform
// result to its quasiform so the output block stays element-only; ghosts
// vanish.
func reduceNative(rt *Runtime, L *Level) Bounce {
	const (
		stSetup    uint8 = 0
		stStepping uint8 = 1
		stStepped  uint8 = 2
	)
	switch L.State {
	case stSetup:
		block := L.Arg("block", rt)
		L.Scratch = BlockCell(rt.NewArray(block.Array().Used()))
		L.subfeed = NewFeed(block.Array(), block.Index, blockBinding(rt, block))
		L.State = stStepping
		fallthrough
	case stStepping:
		if L.subfeed.AtEnd() {
			*L.Out = L.Scratch
			return BounceDone
		}
		rt.PushEvalStep(L.subfeed, &L.Spare)
		L.State = stStepped
		return BounceContinue
	case stStepped:
		acc := L.Scratch.Array()
		v := L.Spare
		if !IsGhost(&v) {
			if IsAntiform(&v) {
				v = LiftCell(&v)
			}
			acc.AppendCell(v)
		}
		L.State = stStepping
		return BounceRedo
	}
	panic("reduce native in impossible state")
}

func blockBinding(rt *Runtime, block *Cell) *VarList {
	if b := block.Binding(); b != nil {
		return b
	}
	return rt.Lib
}

func rescueNative(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case 0:
		L.Flags |= LevelCatchesPanics
		pushBranch(rt, L.Arg("block", rt), &L.Spare)
		L.State = 1
		return BounceContinue
	case 1:
		if rt.ThrownActive() {
			if !rt.ThrownIsPanic() {
				return BounceThrown // labeled throws pass through
			}
			// The error comes back as a plain ERROR! element so it can be
			// stored and inspected (err.id, err.message).
			label, _ := rt.TakeThrow()
			*L.Out = Cell{Heart: HeartError, Lift: LiftNormal, Node: label.ErrorNode()}
			return BounceDone
		}
		*L.Out = rt.NullCell()
		return BounceDone
	}
	panic("rescue native in impossible state")
}

func catchNative(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case 0:
		L.Flags |= LevelCatchesThrows
		pushBranch(rt, L.Arg("block", rt), &L.Spare)
		L.State = 1
		return BounceContinue
	case 1:
		if rt.ThrownActive() {
			label, arg := rt.PeekThrow()
			if label.Heart == HeartWord && label.Symbol().Text == "throw" {
				rt.TakeThrow()
				*L.Out = arg
				return BounceDone
			}
			return BounceThrown
		}
		*L.Out = rt.NullCell() // completed without a throw
		return BounceDone
	}
	panic("catch native in impossible state")
}

// loopThrow inspects a throw reaching a loop level: break completes the
// loop with null, continue resumes iteration, anything else keeps
// unwinding.
type loopSignal uint8

const (
	loopNoThrow loopSignal = iota
	loopBroke
	loopContinued
	loopPassThrough
)

func checkLoopThrow(rt *Runtime) loopSignal {
	if !rt.ThrownActive() {
		return loopNoThrow
	}
	if rt.ThrownIsPanic() {
		return loopPassThrough
	}
	label, _ := rt.PeekThrow()
	if label.Heart != HeartWord {
		return loopPassThrough
	}
	switch label.Symbol().Text {
	case "break":
		rt.TakeThrow()
		return loopBroke
	case "continue":
		rt.TakeThrow()
		return loopContinued
	}
	return loopPassThrough
}

func repeatNative(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case 0:
		count := L.Arg("count", rt).Num
		if count <= 0 {
			*L.Out = TrashCell()
			return BounceDone
		}
		L.Flags |= LevelCatchesThrows
		L.Spare = IntCell(0)
		pushBranch(rt, L.Arg("body", rt), L.Out)
		L.State = 1
		return BounceContinue
	case 1:
		switch checkLoopThrow(rt) {
		case loopBroke:
			*L.Out = rt.NullCell()
			return BounceDone
		case loopPassThrough:
			return BounceThrown
		}
		L.Spare.Num++
		if L.Spare.Num >= L.Arg("count", rt).Num {
			return BounceDone // last body result is the loop's value
		}
		pushBranch(rt, L.Arg("body", rt), L.Out)
		return BounceContinue
	}
	panic("repeat native in impossible state")
}

// collectNative runs the body with a definitional KEEP whose accumulator
// lives in the keep action's details.
func collectNative(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case 0:
		acc := rt.NewArray(8)
		L.Scratch = BlockCell(acc)

		keep := rt.NewDetails("keep", keepDispatcher, rt.MakeParamlist([]ParamDef{
			{Name: "value", Class: ParamNormal},
		}), BlockCell(acc))

		body := L.Arg("body", rt)
		ctx := rt.NewVarList(rt.NewKeyList([]*Symbol{rt.Intern("keep")}), blockBinding(rt, body))
		ctx.Vars[1] = ActionCell(keep, nil)

		feed := NewFeed(body.Array(), body.Index, ctx)
		rt.PushEval(feed, &L.Spare)
		L.State = 1
		return BounceContinue
	case 1:
		*L.Out = L.Scratch
		return BounceDone
	}
	panic("collect native in impossible state")
}

func keepDispatcher(rt *Runtime, L *Level) Bounce {
	acc := L.details.Slots[0].Array()
	v := L.Arg("value", rt)
	if IsSplice(v) {
		sa := v.Array()
		for i := v.Index; i < sa.Used(); i++ {
			acc.AppendCell(sa.At(i))
		}
	} else if IsAntiform(v) {
		return rt.PanicThrow(rt.NewError("bad-value", TypeOf(v)))
	} else {
		acc.AppendCell(*v)
	}
	*L.Out = *v
	return BounceDone
}

// eachPairNative iterates a map's live pairs in insertion order, binding
// key, value, and pair (a splice of both) for the body.
func eachPairNative(rt *Runtime, L *Level) Bounce {
	const (
		stSetup uint8 = 0
		stIter  uint8 = 1
	)
	if L.State == stSetup {
		L.Flags |= LevelCatchesThrows
		L.Spare = IntCell(0)
		L.State = stIter
		return eachPairStep(rt, L)
	}

	switch checkLoopThrow(rt) {
	case loopBroke:
		*L.Out = rt.NullCell()
		return BounceDone
	case loopPassThrough:
		return BounceThrown
	}
	L.Spare.Num += 2
	return eachPairStep(rt, L)
}

func eachPairStep(rt *Runtime, L *Level) Bounce {
	m := L.Arg("map", rt).Map()
	body := L.Arg("body", rt)

	for {
		i := int(L.Spare.Num)
		if i+1 >= m.Pairs.Used() {
			*L.Out = TrashCell()
			return BounceDone
		}
		if isZombie(m.Pairs.AtPtr(i + 1)) {
			L.Spare.Num += 2
			continue
		}

		pairArr := rt.NewArrayFrom([]Cell{m.Pairs.At(i), m.Pairs.At(i + 1)})
		ctx := rt.NewVarList(rt.NewKeyList([]*Symbol{
			rt.Intern("key"), rt.Intern("value"), rt.Intern("pair"),
		}), blockBinding(rt, body))
		ctx.Vars[1] = m.Pairs.At(i)
		ctx.Vars[2] = m.Pairs.At(i + 1)
		ctx.Vars[3] = SpliceCell(pairArr)

		feed := NewFeed(body.Array(), body.Index, ctx)
		rt.PushEval(feed, &L.Scratch)
		return BounceContinue
	}
}

// specializeNative evaluates the frame block with the paramlist's words
// writable, turning assignments into specialized slots.
func specializeNative(rt *Runtime, L *Level) Bounce {
	switch L.State {
	case 0:
		target := L.Arg("action", rt)
		td := target.DetailsNode()

		pl := rt.NewVarList(td.Paramlist.keys, nil)
		copy(pl.Vars, td.Paramlist.Vars)
		L.Scratch = FrameInstanceCell(pl, td)

		block := L.Arg("frame", rt)
		pl.parent = blockBinding(rt, block)
		feed := NewFeed(block.Array(), block.Index, pl)
		rt.PushEval(feed, &L.Spare)
		L.State = 1
		return BounceContinue
	case 1:
		target := L.Arg("action", rt)
		td := target.DetailsNode()
		pl := L.Scratch.FrameVarlist()
		pl.parent = nil
		d := rt.NewDetails("specialized-"+td.Name, specializerDispatcher, pl,
			FrameCell(td, target.Coupling()))
		*L.Out = ActionCell(d, target.Coupling())
		return BounceDone
	}
	panic("specialize native in impossible state")
}

// chainNative resolves the pipeline block (words and trailing-blank
// paths) to actions ahead of time.
func chainNative(rt *Runtime, L *Level) Bounce {
	block := L.Arg("pipeline", rt)
	a := block.Array()
	acts := rt.NewArray(a.Used())
	for i := block.Index; i < a.Used(); i++ {
		el := a.At(i)
		var act *Cell
		switch {
		case AnyWord(&el), el.Heart == HeartPath:
			cells := []Cell{el}
			if el.Heart == HeartPath {
				cells = rt.SequenceCells(&el)
			}
			slot := ResolveWord(&cells[0], blockBinding(rt, block))
			if slot == nil || !IsAction(slot) {
				return rt.PanicThrow(rt.NewError("not-an-action", Mold(&el)))
			}
			act = slot
		default:
			return rt.PanicThrow(rt.NewError("not-an-action", Mold(&el)))
		}
		acts.AppendCell(FrameCell(act.DetailsNode(), act.Coupling()))
	}
	if acts.Used() == 0 {
		return rt.PanicThrow(rt.NewError("bad-value", "empty pipeline"))
	}
	first := acts.At(0)
	d := rt.NewDetails("chained", chainerDispatcher, first.DetailsNode().Paramlist,
		BlockCell(acts))
	*L.Out = ActionCell(d, nil)
	return BounceDone
}

// reframerNative: the shim's frame-typed parameter becomes a placeholder
// the reframer dispatcher fills with the captured invocation.
func reframerNative(rt *Runtime, L *Level) Bounce {
	shim := L.Arg("shim", rt)
	sd := shim.DetailsNode()

	pl := rt.NewVarList(sd.Paramlist.keys, nil)
	copy(pl.Vars, sd.Paramlist.Vars)
	found := false
	for i := 1; i < len(pl.Vars); i++ {
		if spec := pl.Vars[i]; IsParamCell(&spec) {
			for _, t := range spec.ParamSpec().Types {
				if t == "frame!" {
					pl.Vars[i] = TrashCell() // placeholder: filled at reframe time
					found = true
					break
				}
			}
		}
		if found {
			break
		}
	}
	if !found {
		return rt.PanicThrow(rt.NewError("bad-value", "shim needs a frame! parameter"))
	}

	d := rt.NewDetails("reframed-"+sd.Name, reframerDispatcher, pl,
		FrameCell(sd, shim.Coupling()))
	*L.Out = ActionCell(d, shim.Coupling())
	return BounceDone
}
