package runtime

import "fmt"

// Core natives: value plumbing, molding, construction. Control flow lives
// in natives_control.go, series operations in natives_series.go, math in
// natives_math.go.

func (rt *Runtime) bootLib() *VarList {
	rt.Lib = rt.NewExpandableContext(nil)
	rt.returnDetails = rt.makeReturnDetails()
	rt.yieldDetails = rt.makeYieldDetails()
	rt.RegisterNative(rt.returnDetails)
	rt.RegisterNative(rt.yieldDetails)

	rt.registerDatatypes()
	rt.registerCoreNatives()
	rt.registerControlNatives()
	rt.registerSeriesNatives()
	rt.registerMathNatives()
	return rt.Lib
}

func (rt *Runtime) registerDatatypes() {
	for _, name := range []string{
		"integer", "decimal", "char", "text", "blob", "word", "block",
		"group", "fence", "path", "tuple", "chain", "map", "frame", "error",
	} {
		slot := rt.Lib.SlotForWrite(rt.Intern(name + "!"))
		*slot = Cell{Heart: HeartDatatype, Lift: LiftNormal, Node: rt.Intern(name)}
	}
}

func (rt *Runtime) registerCoreNatives() {
	rt.RegisterNative(rt.MakeNative("make", []ParamDef{
		{Name: "type", Class: ParamNormal},
		{Name: "def", Class: ParamNormal},
	}, makeNative))

	rt.RegisterNative(rt.MakeNative("mold", []ParamDef{
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		*L.Out = TextCell(rt.NewStrand(Mold(L.Arg("value", rt))))
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("form", []ParamDef{
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		*L.Out = TextCell(rt.NewStrand(Form(L.Arg("value", rt))))
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("print", []ParamDef{
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		v := L.Arg("value", rt)
		if IsBlock(v) {
			a := v.Array()
			for i := v.Index; i < a.Used(); i++ {
				if i > v.Index {
					fmt.Fprint(rt.Out, " ")
				}
				el := a.At(i)
				fmt.Fprint(rt.Out, Form(&el))
			}
			fmt.Fprintln(rt.Out)
		} else {
			fmt.Fprintln(rt.Out, Form(v))
		}
		*L.Out = TrashCell()
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("probe", []ParamDef{
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		v := L.Arg("value", rt)
		fmt.Fprintln(rt.Out, Mold(v))
		*L.Out = *v
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("spread", []ParamDef{
		{Name: "list", Class: ParamNormal, Types: []string{"any-list?", "blank!", "null?"}},
	}, func(rt *Runtime, L *Level) Bounce {
		v := L.Arg("list", rt)
		if IsBlank(v) || IsNulled(v) {
			*L.Out = rt.NullCell()
			return BounceDone
		}
		out := SpliceCell(v.Array())
		out.Index = v.Index
		*L.Out = out
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("pick", []ParamDef{
		{Name: "location", Class: ParamNormal},
		{Name: "picker", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		v, _, err := rt.Tweak(L.Arg("location", rt), L.Arg("picker", rt), nil)
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = v
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("poke", []ParamDef{
		{Name: "location", Class: ParamNormal},
		{Name: "picker", Class: ParamNormal},
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		val := L.Arg("value", rt)
		dual := LiftCell(val)
		_, wb, err := rt.Tweak(L.Arg("location", rt), L.Arg("picker", rt), &dual)
		if err != nil {
			return rt.PanicThrow(err)
		}
		if wb != nil {
			return rt.PanicThrow(rt.NewError("protected"))
		}
		*L.Out = *val
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("get", []ParamDef{
		{Name: "word", Class: ParamNormal, Types: []string{"any-word?"}},
	}, func(rt *Runtime, L *Level) Bounce {
		w := L.Arg("word", rt)
		slot := ResolveWord(w, rt.Lib)
		if slot == nil || slot.IsErased() {
			*L.Out = rt.NullCell()
			return BounceDone
		}
		*L.Out = *slot
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("set", []ParamDef{
		{Name: "word", Class: ParamNormal, Types: []string{"any-word?"}},
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		w := L.Arg("word", rt)
		slot := ResolveWordForWrite(w, rt.Lib)
		if slot == nil {
			return rt.PanicThrow(rt.NewError("no-binding", w.Symbol().Text))
		}
		*slot = *L.Arg("value", rt)
		*L.Out = *slot
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("length-of", []ParamDef{
		{Name: "series", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		v := L.Arg("series", rt)
		switch {
		case AnyList(v):
			*L.Out = IntCell(int64(v.Array().Used() - v.Index))
		case IsText(v), IsBlob(v):
			*L.Out = IntCell(int64(v.Strand().Len() - v.Index))
		case IsMapCell(v):
			*L.Out = IntCell(int64(v.Map().Len()))
		case AnySequence(v):
			*L.Out = IntCell(int64(rt.SequenceLen(v)))
		default:
			return rt.PanicThrow(rt.NewError("bad-value", TypeOf(v)))
		}
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("first", []ParamDef{
		{Name: "series", Class: ParamNormal, Types: []string{"any-series?", "any-sequence?"}},
	}, func(rt *Runtime, L *Level) Bounce {
		v := L.Arg("series", rt)
		one := IntCell(1)
		out, _, err := rt.Tweak(v, &one, nil)
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = out
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("null?", []ParamDef{
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		*L.Out = rt.LogicCell(IsNulled(L.Arg("value", rt)))
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("error?", []ParamDef{
		{Name: "value", Class: ParamMeta},
	}, func(rt *Runtime, L *Level) Bounce {
		v := UnliftCell(L.Arg("value", rt))
		*L.Out = rt.LogicCell(IsError(&v))
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("trash?", []ParamDef{
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		*L.Out = rt.LogicCell(IsTrash(L.Arg("value", rt)))
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("not", []ParamDef{
		{Name: "value", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		t, err := rt.Truthy(L.Arg("value", rt))
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = rt.LogicCell(!t)
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("elide", []ParamDef{
		{Name: "value", Class: ParamMeta},
	}, func(rt *Runtime, L *Level) Bounce {
		*L.Out = GhostCell()
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("comment", []ParamDef{
		{Name: "value", Class: ParamHard},
	}, func(rt *Runtime, L *Level) Bounce {
		*L.Out = GhostCell()
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("panic", []ParamDef{
		{Name: "reason", Class: ParamNormal},
	}, func(rt *Runtime, L *Level) Bounce {
		v := L.Arg("reason", rt)
		if e := v.ErrorNode(); e != nil {
			return rt.PanicThrow(e)
		}
		return rt.PanicThrow(rt.NewError("bad-value", Form(v)))
	}))

	rt.RegisterNative(rt.MakeNative("quit", []ParamDef{
		{Name: "value", Class: ParamNormal, Endable: true},
	}, func(rt *Runtime, L *Level) Bounce {
		return rt.Throw(WordCell(rt.Intern("quit")), *L.Arg("value", rt))
	}))

	rt.RegisterNative(rt.MakeNative("recycle", nil, func(rt *Runtime, L *Level) Bounce {
		*L.Out = IntCell(int64(rt.Collect()))
		return BounceDone
	}))
}

// makeNative dispatches MAKE on a datatype.
func makeNative(rt *Runtime, L *Level) Bounce {
	t := L.Arg("type", rt)
	def := L.Arg("def", rt)
	if t.Heart != HeartDatatype {
		return rt.PanicThrow(rt.NewError("bad-make", Mold(t), Mold(def)))
	}
	switch t.Symbol().Text {
	case "map":
		if IsInteger(def) {
			*L.Out = MapCell(rt.NewMap(int(def.Num)))
			return BounceDone
		}
		if !IsBlock(def) {
			return rt.PanicThrow(rt.NewError("bad-make", "map!", Mold(def)))
		}
		a := def.Array()
		m := rt.NewMap((a.Used() - def.Index) / 2)
		for i := def.Index; i+1 < a.Used(); i += 2 {
			k := a.At(i)
			v := a.At(i + 1)
			if err := m.Set(rt, &k, v); err != nil {
				return rt.PanicThrow(err)
			}
		}
		*L.Out = MapCell(m)
		return BounceDone

	case "block":
		if IsInteger(def) {
			*L.Out = BlockCell(rt.NewArray(int(def.Num)))
			return BounceDone
		}
	case "text":
		if IsInteger(def) {
			*L.Out = TextCell(rt.NewStrand(""))
			return BounceDone
		}
		if IsText(def) {
			*L.Out = TextCell(rt.NewStrand(def.Strand().String()))
			return BounceDone
		}
	case "blob":
		if IsText(def) {
			// Aliasing a strand as a blob: the UTF-8 rules travel along.
			*L.Out = BlobCell(def.Strand())
			return BounceDone
		}
	}
	return rt.PanicThrow(rt.NewError("bad-make", t.Symbol().Text+"!", Mold(def)))
}
