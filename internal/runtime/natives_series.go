package runtime

import "sort"

// Series natives: append/insert/change over Modify, plus sort and copy.

func modifyRefinements(rt *Runtime, L *Level) ModifyArgs {
	args := ModifyArgs{Part: -1, Dup: -1}
	if p := L.Arg("part", rt); p != nil && IsInteger(p) {
		args.Part = int(p.Num)
	}
	if d := L.Arg("dup", rt); d != nil && IsInteger(d) {
		args.Dup = int(d.Num)
	}
	if l := L.Arg("line", rt); l != nil && IsOkay(l) {
		args.Line = true
	}
	return args
}

var modifyParams = []ParamDef{
	{Name: "series", Class: ParamNormal, Types: []string{"any-series?"}},
	{Name: "value", Class: ParamNormal},
	{Name: "part", Refinement: true, TakesArg: true, Types: []string{"integer!"}},
	{Name: "dup", Refinement: true, TakesArg: true, Types: []string{"integer!"}},
	{Name: "line", Refinement: true},
}

func (rt *Runtime) registerSeriesNatives() {
	rt.RegisterNative(rt.MakeNative("append", modifyParams, func(rt *Runtime, L *Level) Bounce {
		dst := L.Arg("series", rt)
		_, err := rt.Modify(dst, ModAppend, L.Arg("value", rt), modifyRefinements(rt, L))
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = *dst // same view position: the head stays the head
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("insert", modifyParams, func(rt *Runtime, L *Level) Bounce {
		dst := L.Arg("series", rt)
		n, err := rt.Modify(dst, ModInsert, L.Arg("value", rt), modifyRefinements(rt, L))
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = *dst
		L.Out.Index += n // past the insertion
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("change", modifyParams, func(rt *Runtime, L *Level) Bounce {
		dst := L.Arg("series", rt)
		n, err := rt.Modify(dst, ModChange, L.Arg("value", rt), modifyRefinements(rt, L))
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = *dst
		L.Out.Index += n
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("remove", []ParamDef{
		{Name: "series", Class: ParamNormal, Types: []string{"any-series?"}},
		{Name: "part", Refinement: true, TakesArg: true, Types: []string{"integer!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		dst := L.Arg("series", rt)
		span := 1
		if p := L.Arg("part", rt); IsInteger(p) {
			span = int(p.Num)
		}
		var err *ErrorStub
		if AnyList(dst) {
			err = dst.Array().RemoveUnits(dst.Index, span)
		} else {
			err = dst.Strand().RemoveRange(dst.Index, span)
		}
		if err != nil {
			return rt.PanicThrow(err)
		}
		*L.Out = *dst
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("copy", []ParamDef{
		{Name: "series", Class: ParamNormal, Types: []string{"any-series?", "map!"}},
		{Name: "part", Refinement: true, TakesArg: true, Types: []string{"integer!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		src := L.Arg("series", rt)
		span := -1
		if p := L.Arg("part", rt); IsInteger(p) {
			span = int(p.Num)
		}
		switch {
		case AnyList(src):
			a := src.Array()
			if span < 0 {
				span = a.Used() - src.Index
			}
			out := *src
			out.Node = rt.CopySlice(a, src.Index, span)
			out.Index = 0
			*L.Out = out
		case IsText(src):
			s := src.Strand()
			if span < 0 {
				span = s.Len() - src.Index
			}
			*L.Out = TextCell(rt.NewStrand(s.Substring(src.Index, span)))
		case IsBlob(src):
			s := src.Strand()
			*L.Out = BlobCell(rt.NewBinary(s.Bytes[src.Index:]))
		case IsMapCell(src):
			m := src.Map()
			out := rt.NewMap(m.Len())
			var err *ErrorStub
			m.EachPair(func(k, v *Cell) bool {
				err = out.Set(rt, k, *v)
				return err == nil
			})
			if err != nil {
				return rt.PanicThrow(err)
			}
			*L.Out = MapCell(out)
		}
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("sort", []ParamDef{
		{Name: "series", Class: ParamNormal, Types: []string{"block!"}},
		{Name: "skip", Refinement: true, TakesArg: true, Types: []string{"integer!"}},
	}, sortNative))

	rt.RegisterNative(rt.MakeNative("freeze", []ParamDef{
		{Name: "value", Class: ParamNormal, Types: []string{"any-series?", "map!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		v := L.Arg("value", rt)
		if v.Node != nil {
			Freeze(v.Node, true)
		}
		*L.Out = *v
		return BounceDone
	}))
}

// sortNative sorts a block in place; with :skip N the block is treated as
// fixed-width records compared by their first cell. The sort is stable.
func sortNative(rt *Runtime, L *Level) Bounce {
	blk := L.Arg("series", rt)
	a := blk.Array()
	if err := a.mutable(); err != nil {
		return rt.PanicThrow(err)
	}

	width := 1
	if s := L.Arg("skip", rt); IsInteger(s) && s.Num > 1 {
		width = int(s.Num)
	}

	cells := a.Cells[blk.Index:]
	records := len(cells) / width

	var sortErr *ErrorStub
	idx := make([]int, records)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		if sortErr != nil {
			return false
		}
		cmp, err := rt.CompareCells(&cells[idx[x]*width], &cells[idx[y]*width], false)
		if err != nil {
			sortErr = err
			return false
		}
		return cmp < 0
	})
	if sortErr != nil {
		return rt.PanicThrow(sortErr)
	}

	sorted := make([]Cell, len(cells))
	for i, rec := range idx {
		copy(sorted[i*width:(i+1)*width], cells[rec*width:(rec+1)*width])
	}
	copy(cells, sorted)

	*L.Out = *blk
	return BounceDone
}
