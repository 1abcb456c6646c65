package runtime

import "testing"

func TestSequenceCompression(t *testing.T) {
	rt := New()

	// pure small-integer tuples pack into bytes
	seq, err := rt.MakeSequence(HeartTuple, []Cell{IntCell(1), IntCell(2), IntCell(3)}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := seq.Node.(*Strand); !ok {
		t.Errorf("integer tuple stored as %T, want byte-compressed", seq.Node)
	}
	if got := Mold(&seq); got != "1.2.3" {
		t.Errorf("tuple molds as %q", got)
	}

	// two elements ride a pairing
	seq2, err := rt.MakeSequence(HeartPath, []Cell{
		WordCell(rt.Intern("a")), WordCell(rt.Intern("b")),
	}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := seq2.Node.(*Pairing); !ok {
		t.Errorf("two-element path stored as %T, want pairing", seq2.Node)
	}
	if got := Mold(&seq2); got != "a/b" {
		t.Errorf("path molds as %q", got)
	}

	// longer mixed sequences take a frozen array
	seq3, err := rt.MakeSequence(HeartPath, []Cell{
		WordCell(rt.Intern("a")), WordCell(rt.Intern("b")), WordCell(rt.Intern("c")),
	}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := seq3.Node.(*Array)
	if !ok {
		t.Fatalf("three-element path stored as %T, want array", seq3.Node)
	}
	if !arr.IsFrozen() {
		t.Error("sequence storage array is not frozen")
	}
}

func TestSequenceDevolution(t *testing.T) {
	rt := New()
	w := WordCell(rt.Intern("solo"))
	seq, err := rt.MakeSequence(HeartPath, []Cell{w}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if seq.Heart != HeartWord {
		t.Errorf("one-element undecorated sequence devolved to %s, want word", seq.Heart)
	}
}

func TestSequenceBlankDecoration(t *testing.T) {
	rt := New()
	w := WordCell(rt.Intern("f"))

	trail, err := rt.MakeSequence(HeartPath, []Cell{w}, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if trail.Heart != HeartPath || trail.Flags&CellTrailingBlank == 0 {
		t.Errorf("f/ lost its decoration: %s", Mold(&trail))
	}
	if got := Mold(&trail); got != "f/" {
		t.Errorf("trailing-blank path molds as %q", got)
	}

	lead, err := rt.MakeSequence(HeartPath, []Cell{w}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := Mold(&lead); got != "/f" {
		t.Errorf("leading-blank path molds as %q", got)
	}
}

func TestSequenceImmutable(t *testing.T) {
	rt := New()
	seq, err := rt.MakeSequence(HeartTuple, []Cell{
		WordCell(rt.Intern("m")), WordCell(rt.Intern("a")),
	}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	picker := IntCell(1)
	dual := LiftCell(&picker)
	if _, _, e := rt.Tweak(&seq, &picker, &dual); e == nil {
		// pokes must come back as writeback duals, never in-place
		_, wb, _ := rt.Tweak(&seq, &picker, &dual)
		if wb == nil {
			t.Error("sequence poke mutated in place")
		}
	}
}
