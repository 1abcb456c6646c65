package runtime

import "testing"

func TestLiftUnliftRoundTrip(t *testing.T) {
	rt := New()
	values := []Cell{
		IntCell(42),
		DecimalCell(1.5),
		CharCell('é'),
		TextCell(rt.NewStrand("hi")),
		WordCell(rt.Intern("foo")),
		BlockCell(rt.NewArrayFrom([]Cell{IntCell(1), IntCell(2)})),
		BlankCell(),
		rt.NullCell(),
		TrashCell(),
		SpliceCell(rt.NewArray(0)),
	}
	for _, v := range values {
		lifted := LiftCell(&v)
		back := UnliftCell(&lifted)
		if !rt.EqualCells(&v, &back, true) {
			t.Errorf("Unlift(Lift(%s)) = %s", Mold(&v), Mold(&back))
		}
	}
}

func TestLiftOnAntiformGivesQuasiform(t *testing.T) {
	rt := New()
	n := rt.NullCell()
	lifted := LiftCell(&n)
	if !IsQuasiform(&lifted) {
		t.Fatalf("lift of antiform is %s, not a quasiform", TypeOf(&lifted))
	}
	back := UnliftCell(&lifted)
	if !IsNulled(&back) {
		t.Fatalf("unlift of quasiform is %s", TypeOf(&back))
	}
}

func TestQuotingLadder(t *testing.T) {
	v := IntCell(7)
	q1 := LiftCell(&v)
	q2 := LiftCell(&q1)
	if q2.Quotes != 2 {
		t.Fatalf("double lift has %d quotes", q2.Quotes)
	}
	u1 := UnliftCell(&q2)
	u2 := UnliftCell(&u1)
	if u2.Quotes != 0 || u2.Lift != LiftNormal || u2.Num != 7 {
		t.Fatalf("ladder did not invert: %s", Mold(&u2))
	}
}

func TestDecay(t *testing.T) {
	rt := New()

	// a one-item pack decays to its unlifted item
	item := IntCell(3)
	lifted := LiftCell(&item)
	pack := PackCell(rt.NewArrayFrom([]Cell{lifted}))
	v, err := rt.Decay(&pack)
	if err != nil || v.Num != 3 {
		t.Fatalf("pack decay = %s, %v", Mold(&v), err)
	}

	// a void (empty pack) decays to trash
	void := rt.VoidCell()
	v, err = rt.Decay(&void)
	if err != nil || !IsTrash(&v) {
		t.Fatalf("void decay = %s, %v", Mold(&v), err)
	}

	// a ghost decays to trash
	ghost := GhostCell()
	v, err = rt.Decay(&ghost)
	if err != nil || !IsTrash(&v) {
		t.Fatalf("ghost decay = %s, %v", Mold(&v), err)
	}

	// errors refuse to decay
	e := ErrorAntiCell(rt.NewError("zero-divide"))
	if _, err = rt.Decay(&e); err == nil {
		t.Fatal("error antiform decayed without complaint")
	}
}

func TestStability(t *testing.T) {
	rt := New()
	stable := []Cell{
		IntCell(1), rt.NullCell(), rt.OkayCell(), TrashCell(),
		SpliceCell(rt.NewArray(0)),
	}
	for _, c := range stable {
		if !IsStable(&c) {
			t.Errorf("%s should be stable", TypeOf(&c))
		}
	}
	unstable := []Cell{
		PackCell(rt.NewArray(0)),
		GhostCell(),
		ErrorAntiCell(rt.NewError("done")),
	}
	for _, c := range unstable {
		if IsStable(&c) {
			t.Errorf("%s should be unstable", TypeOf(&c))
		}
	}
}

func TestAntiformsRefuseContainers(t *testing.T) {
	rt := New()
	a := rt.NewArray(2)
	defer func() {
		if recover() == nil {
			t.Error("appending an antiform to an array did not panic")
		}
	}()
	n := rt.NullCell()
	a.AppendCell(n)
}

func TestSymbolInterning(t *testing.T) {
	rt := New()
	a1 := rt.Intern("Hello")
	a2 := rt.Intern("Hello")
	a3 := rt.Intern("HELLO")
	if a1 != a2 {
		t.Error("same spelling interned twice")
	}
	if a1 == a3 {
		t.Error("different spellings share a symbol")
	}
	if !SameWord(a1, a3) {
		t.Error("case synonyms do not share a canon")
	}
	if SameWord(a1, rt.Intern("other")) {
		t.Error("unrelated words compare equal")
	}
}
