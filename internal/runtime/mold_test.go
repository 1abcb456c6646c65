package runtime

import "testing"

func TestMoldBasics(t *testing.T) {
	rt := New()
	tests := []struct {
		cell     Cell
		expected string
	}{
		{IntCell(42), "42"},
		{IntCell(-3), "-3"},
		{DecimalCell(1.5), "1.5"},
		{DecimalCell(2), "2.0"},
		{CharCell('a'), `#"a"`},
		{TextCell(rt.NewStrand("hi")), `"hi"`},
		{BlobCell(rt.NewBinary([]byte{0xDE, 0xAD})), "#{DEAD}"},
		{WordCell(rt.Intern("foo")), "foo"},
		{SigilWordCell(rt.Intern("x"), SigilSet), "x:"},
		{SigilWordCell(rt.Intern("x"), SigilGet), ":x"},
		{SigilWordCell(rt.Intern("x"), SigilMeta), "^x"},
		{SigilWordCell(rt.Intern("x"), SigilPin), "@x"},
		{BlankCell(), "_"},
		{TrashCell(), "~"},
		{rt.NullCell(), "~null~"},
		{rt.OkayCell(), "~okay~"},
		{GhostCell(), "~,~"},
		{ErrorAntiCell(rt.NewError("done")), "~done~"},
		{BlockCell(rt.NewArrayFrom([]Cell{IntCell(1), IntCell(2)})), "[1 2]"},
		{GroupCell(rt.NewArrayFrom([]Cell{WordCell(rt.Intern("x"))})), "(x)"},
	}
	for _, tt := range tests {
		if got := Mold(&tt.cell); got != tt.expected {
			t.Errorf("Mold = %q, want %q", got, tt.expected)
		}
	}
}

func TestMoldQuoted(t *testing.T) {
	v := IntCell(5)
	v.Quotes = 2
	if got := Mold(&v); got != "''5" {
		t.Errorf("quoted mold = %q", got)
	}
}

func TestMoldQuasi(t *testing.T) {
	rt := New()
	w := WordCell(rt.Intern("foo"))
	w.Lift = LiftQuasi
	if got := Mold(&w); got != "~foo~" {
		t.Errorf("quasi mold = %q", got)
	}
}

func TestFormStripsQuotes(t *testing.T) {
	rt := New()
	v := TextCell(rt.NewStrand("hi"))
	if got := Form(&v); got != "hi" {
		t.Errorf("form = %q", got)
	}
}

func TestMoldCycleDetection(t *testing.T) {
	rt := New()
	a := rt.NewArray(2)
	block := BlockCell(a)
	a.AppendCell(IntCell(1))
	a.AppendCell(block) // the block now contains itself
	if got := Mold(&block); got != "[1 [...]]" {
		t.Errorf("cyclic mold = %q", got)
	}
}

func TestMoldMap(t *testing.T) {
	rt := New()
	m := rt.NewMap(2)
	k := WordCell(rt.Intern("a"))
	if err := m.Set(rt, &k, IntCell(1)); err != nil {
		t.Fatal(err)
	}
	c := MapCell(m)
	if got := Mold(&c); got != "make map! [a 1]" {
		t.Errorf("map mold = %q", got)
	}
}
