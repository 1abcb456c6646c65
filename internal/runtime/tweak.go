package runtime

// TWEAK is the dual-protocol primitive behind GET and SET: one entry
// point taking (location, picker, dual) where the dual signal selects the
// operation. A nil dual is a pick request, the remove sentinel deletes,
// and any other dual is the lifted value to poke. Pokes may hand back a
// writeback dual that the caller must store into the parent container
// (immutable containers update by replacement).

// TweakRemove is the out-of-band removal signal.
var TweakRemove = &Cell{Heart: HeartNothing, Num: -2}

// Tweak performs one pick/poke step against a location.
func (rt *Runtime) Tweak(loc *Cell, picker *Cell, dual *Cell) (result Cell, writeback *Cell, err *ErrorStub) {
	switch loc.Heart {
	case HeartMap:
		return rt.tweakMap(loc, picker, dual)
	case HeartBlock, HeartGroup, HeartFence:
		return rt.tweakList(loc, picker, dual)
	case HeartText, HeartBlob:
		return rt.tweakUtf8(loc, picker, dual)
	case HeartFrame:
		return rt.tweakFrame(loc, picker, dual)
	case HeartError:
		return rt.tweakError(loc, picker, dual)
	case HeartPath, HeartTuple, HeartChain:
		return rt.tweakSequence(loc, picker, dual)
	}
	return Cell{}, nil, rt.NewError("bad-pick", Mold(picker))
}

func (rt *Runtime) tweakMap(loc, picker, dual *Cell) (Cell, *Cell, *ErrorStub) {
	m := loc.Map()
	if dual == nil {
		v, ok, err := m.Get(rt, picker)
		if err != nil {
			return Cell{}, nil, err
		}
		if !ok {
			return ErrorAntiCell(rt.NewError("bad-pick", Mold(picker))), nil, nil
		}
		return v, nil, nil
	}
	if dual == TweakRemove {
		return Cell{}, nil, m.Remove(rt, picker)
	}
	val := UnliftCell(dual)
	if err := m.Set(rt, picker, val); err != nil {
		return Cell{}, nil, err
	}
	return val, nil, nil
}

func (rt *Runtime) tweakList(loc, picker, dual *Cell) (Cell, *Cell, *ErrorStub) {
	a := loc.Array()
	if !IsInteger(picker) {
		return Cell{}, nil, rt.NewError("bad-pick", Mold(picker))
	}
	i := loc.Index + int(picker.Num) - 1 // pickers are 1-based from the view
	if dual == nil {
		if i < 0 || i >= a.Used() {
			return ErrorAntiCell(rt.NewError("bad-pick", Mold(picker))), nil, nil
		}
		return a.At(i), nil, nil
	}
	if dual == TweakRemove {
		return Cell{}, nil, a.RemoveUnits(i, 1)
	}
	if i < 0 || i >= a.Used() {
		return Cell{}, nil, rt.NewError("out-of-range", picker.Num)
	}
	val := UnliftCell(dual)
	if IsAntiform(&val) {
		return Cell{}, nil, rt.NewError("bad-poke", TypeOf(&val))
	}
	if err := a.mutable(); err != nil {
		return Cell{}, nil, err
	}
	*a.AtPtr(i) = val
	return val, nil, nil
}

func (rt *Runtime) tweakUtf8(loc, picker, dual *Cell) (Cell, *Cell, *ErrorStub) {
	s := loc.Strand()
	if !IsInteger(picker) {
		return Cell{}, nil, rt.NewError("bad-pick", Mold(picker))
	}
	i := loc.Index + int(picker.Num) - 1
	if dual == nil {
		if i < 0 || i >= s.Len() {
			return ErrorAntiCell(rt.NewError("bad-pick", Mold(picker))), nil, nil
		}
		if loc.Heart == HeartBlob && !s.IsStrand() {
			return IntCell(int64(s.Bytes[i])), nil, nil
		}
		return CharCell(s.RuneAt(i)), nil, nil
	}
	if dual == TweakRemove {
		return Cell{}, nil, s.RemoveRange(i, 1)
	}
	val := UnliftCell(dual)
	switch {
	case IsChar(&val) && s.IsStrand():
		if err := s.ChangeRange(i, 1, string(val.AsChar())); err != nil {
			return Cell{}, nil, err
		}
	case IsInteger(&val) && loc.Heart == HeartBlob:
		if val.Num == 0 && s.IsStrand() {
			return Cell{}, nil, rt.NewError("illegal-zero-byte")
		}
		if err := s.EditBytes(i, 1, []byte{byte(val.Num)}); err != nil {
			return Cell{}, nil, err
		}
	default:
		return Cell{}, nil, rt.NewError("bad-poke", TypeOf(&val))
	}
	return val, nil, nil
}

func (rt *Runtime) tweakFrame(loc, picker, dual *Cell) (Cell, *Cell, *ErrorStub) {
	v := loc.FrameVarlist()
	if v == nil || !AnyWord(picker) {
		return Cell{}, nil, rt.NewError("bad-pick", Mold(picker))
	}
	i := v.Index(picker.Symbol())
	if i == 0 {
		if dual == nil {
			return ErrorAntiCell(rt.NewError("bad-pick", Mold(picker))), nil, nil
		}
		return Cell{}, nil, rt.NewError("bad-poke", Mold(picker))
	}
	if dual == nil {
		return v.Vars[i], nil, nil
	}
	if dual == TweakRemove {
		return Cell{}, nil, rt.NewError("bad-poke", Mold(picker))
	}
	val := UnliftCell(dual)
	v.Vars[i] = val
	return val, nil, nil
}

func (rt *Runtime) tweakError(loc, picker, dual *Cell) (Cell, *Cell, *ErrorStub) {
	e := loc.ErrorNode()
	if dual != nil {
		return Cell{}, nil, rt.NewError("bad-poke", Mold(picker))
	}
	if e == nil || !AnyWord(picker) {
		return Cell{}, nil, rt.NewError("bad-pick", Mold(picker))
	}
	switch picker.Symbol().Canon().Text {
	case "id":
		return WordCell(rt.Intern(e.ID)), nil, nil
	case "message":
		return TextCell(rt.NewStrand(e.Message)), nil, nil
	}
	return ErrorAntiCell(rt.NewError("bad-pick", Mold(picker))), nil, nil
}

// tweakSequence picks from an immutable sequence; pokes produce a rebuilt
// sequence handed back as a writeback dual for the parent to store.
func (rt *Runtime) tweakSequence(loc, picker, dual *Cell) (Cell, *Cell, *ErrorStub) {
	if !IsInteger(picker) {
		return Cell{}, nil, rt.NewError("bad-pick", Mold(picker))
	}
	cells := rt.SequenceCells(loc)
	i := int(picker.Num) - 1
	if dual == nil {
		if i < 0 || i >= len(cells) {
			return ErrorAntiCell(rt.NewError("bad-pick", Mold(picker))), nil, nil
		}
		return cells[i], nil, nil
	}
	if dual == TweakRemove {
		return Cell{}, nil, rt.NewError("protected")
	}
	if i < 0 || i >= len(cells) {
		return Cell{}, nil, rt.NewError("out-of-range", picker.Num)
	}
	val := UnliftCell(dual)
	if IsAntiform(&val) {
		return Cell{}, nil, rt.NewError("bad-poke", TypeOf(&val))
	}
	cells[i] = val
	rebuilt, err := rt.MakeSequence(loc.Heart, cells,
		loc.Flags&CellLeadingBlank != 0, loc.Flags&CellTrailingBlank != 0)
	if err != nil {
		return Cell{}, nil, err
	}
	wb := LiftCell(&rebuilt)
	return val, &wb, nil
}

// --- path/tuple chains ------------------------------------------------------

// TweakGetPath resolves the head word and chains picks through the
// remaining steps. A missing leaf yields a recoverable bad-pick ERROR!
// antiform (so try x.missing is null); a missing interior step panics.
func (rt *Runtime) TweakGetPath(seq *Cell, binding *VarList, _ bool) (Cell, *ErrorStub) {
	parts := rt.SequenceCells(seq)
	if len(parts) == 0 || !AnyWord(&parts[0]) {
		return Cell{}, rt.NewError("bad-pick", Mold(seq))
	}
	slot := ResolveWord(&parts[0], binding)
	if slot == nil {
		return Cell{}, rt.NewError("no-binding", parts[0].Symbol().Text)
	}
	loc := *slot
	for i := 1; i < len(parts); i++ {
		picker := parts[i]
		v, _, err := rt.Tweak(&loc, &picker, nil)
		if err != nil {
			return Cell{}, err
		}
		if IsError(&v) {
			if i == len(parts)-1 {
				return v, nil // recoverable at the leaf only
			}
			return Cell{}, v.ErrorNode()
		}
		loc = v
	}
	return loc, nil
}

// TweakSetPath pokes the leaf, then walks writeback duals up the chain so
// immutable intermediates replace themselves in their parents.
func (rt *Runtime) TweakSetPath(seq *Cell, binding *VarList, val *Cell) *ErrorStub {
	parts := rt.SequenceCells(seq)
	if len(parts) == 0 || !AnyWord(&parts[0]) {
		return rt.NewError("bad-poke", Mold(seq))
	}
	head := parts[0]
	head.Sigil = SigilNone
	slot := ResolveWordForWrite(&head, binding)
	if slot == nil {
		return rt.NewError("no-binding", head.Symbol().Text)
	}

	// Walk down, remembering each location so writebacks can climb.
	locs := make([]Cell, len(parts))
	locs[0] = *slot
	for i := 1; i < len(parts)-1; i++ {
		picker := parts[i]
		v, _, err := rt.Tweak(&locs[i-1], &picker, nil)
		if err != nil {
			return err
		}
		if IsError(&v) {
			return v.ErrorNode()
		}
		locs[i] = v
	}

	dual := LiftCell(val)
	for i := len(parts) - 1; i >= 1; i-- {
		picker := parts[i]
		_, wb, err := rt.Tweak(&locs[i-1], &picker, &dual)
		if err != nil {
			return err
		}
		if wb == nil {
			return nil // mutation landed in place
		}
		dual = *wb // the parent must store the rebuilt container
	}
	*slot = UnliftCell(&dual)
	return nil
}
