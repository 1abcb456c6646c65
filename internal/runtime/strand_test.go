package runtime

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"
)

func checkStrand(t *testing.T, s *Strand, want string) {
	t.Helper()
	if got := s.String(); got != want {
		t.Fatalf("strand = %q, want %q", got, want)
	}
	if !utf8.Valid(s.Bytes) {
		t.Fatalf("strand bytes are not valid UTF-8: %q", s.Bytes)
	}
	if s.Length != utf8.RuneCountInString(want) {
		t.Fatalf("codepoint count %d, want %d", s.Length, utf8.RuneCountInString(want))
	}
	for _, b := range s.Bytes {
		if b == 0 {
			t.Fatalf("strand holds a zero byte")
		}
	}
}

func TestStrandEdits(t *testing.T) {
	rt := New()
	s := rt.NewStrand("héllo wörld")

	if err := s.InsertText(5, "!!"); err != nil {
		t.Fatal(err)
	}
	checkStrand(t, s, "héllo!! wörld")

	if err := s.RemoveRange(5, 2); err != nil {
		t.Fatal(err)
	}
	checkStrand(t, s, "héllo wörld")

	if err := s.ChangeRange(0, 5, "BYE"); err != nil {
		t.Fatal(err)
	}
	checkStrand(t, s, "BYE wörld")
}

func TestStrandChangeScenario(t *testing.T) {
	rt := New()

	s := rt.NewStrand("abcdef")
	if err := s.ChangeRange(0, 3, "XYZ"); err != nil {
		t.Fatal(err)
	}
	checkStrand(t, s, "XYZdef")

	s2 := rt.NewStrand("abcdef")
	if err := s2.ChangeRange(0, 3, "XY"); err != nil {
		t.Fatal(err)
	}
	checkStrand(t, s2, "XYdef")
}

func TestStrandZeroByte(t *testing.T) {
	rt := New()
	s := rt.NewStrand("abc")
	if err := s.InsertText(1, "a\x00b"); err == nil || err.ID != "illegal-zero-byte" {
		t.Errorf("zero byte insert gave %v", err)
	}
}

func TestBlobAliasEdits(t *testing.T) {
	rt := New()
	s := rt.NewStrand("héllo") // é is two bytes

	// landing inside the é's encoding must be refused
	if err := s.EditBytes(2, 1, []byte{0x41}); err == nil || err.ID != "bad-utf8-bin-edit" {
		t.Errorf("mid-codepoint edit gave %v", err)
	}
	// a zero byte is refused even when UTF-8 would survive
	if err := s.EditBytes(0, 1, []byte{0}); err == nil || err.ID != "illegal-zero-byte" {
		t.Errorf("zero byte edit gave %v", err)
	}
	// replacing the whole é with a plain byte is fine
	if err := s.EditBytes(1, 2, []byte{'e'}); err != nil {
		t.Fatal(err)
	}
	checkStrand(t, s, "hello")

	// a true binary takes anything
	b := rt.NewBinary([]byte{1, 2, 3})
	if err := b.EditBytes(1, 1, []byte{0, 0xFF}); err != nil {
		t.Fatal(err)
	}
	if len(b.Bytes) != 4 {
		t.Errorf("binary length %d, want 4", len(b.Bytes))
	}
}

func TestBookmarkConsistency(t *testing.T) {
	rt := New()
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString("aé漢") // 1-, 2-, 3-byte codepoints
	}
	s := rt.NewStrand(sb.String())
	model := []rune(sb.String())

	// force a bookmark deep in the strand, then verify offsets all over
	for _, idx := range []int{900, 10, 1400, 0, 750, 1499} {
		off := s.ByteOffset(idx)
		want := len(string(model[:idx]))
		if off != want {
			t.Fatalf("ByteOffset(%d) = %d, want %d", idx, off, want)
		}
	}
}

// TestStrandRandomOps drives random edits against a pure []rune model, the
// property suggested by the testable-properties section.
func TestStrandRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rt := New()
	s := rt.NewStrand("")
	model := ""

	alphabet := []string{"a", "b", "é", "漢", "xyz", "öö"}

	for i := 0; i < 2000; i++ {
		n := utf8.RuneCountInString(model)
		switch rng.Intn(3) {
		case 0: // insert
			at := rng.Intn(n + 1)
			text := alphabet[rng.Intn(len(alphabet))]
			if err := s.InsertText(at, text); err != nil {
				t.Fatal(err)
			}
			r := []rune(model)
			model = string(r[:at]) + text + string(r[at:])
		case 1: // remove
			if n == 0 {
				continue
			}
			at := rng.Intn(n)
			span := rng.Intn(n-at) + 1
			if err := s.RemoveRange(at, span); err != nil {
				t.Fatal(err)
			}
			r := []rune(model)
			model = string(r[:at]) + string(r[at+span:])
		case 2: // change
			if n == 0 {
				continue
			}
			at := rng.Intn(n)
			span := rng.Intn(n - at)
			text := alphabet[rng.Intn(len(alphabet))]
			if err := s.ChangeRange(at, span, text); err != nil {
				t.Fatal(err)
			}
			r := []rune(model)
			model = string(r[:at]) + text + string(r[at+span:])
		}
		if s.String() != model {
			t.Fatalf("op %d diverged: strand %q, model %q", i, s.String(), model)
		}
		if s.Length != utf8.RuneCountInString(model) {
			t.Fatalf("op %d codepoint count %d, want %d", i, s.Length, utf8.RuneCountInString(model))
		}
		// spot-check the bookmark path
		if s.Length > 0 {
			idx := rng.Intn(s.Length)
			r, _ := utf8.DecodeRuneInString(model[len(string([]rune(model)[:idx])):])
			if got := s.RuneAt(idx); got != r {
				t.Fatalf("op %d RuneAt(%d) = %q, want %q", i, idx, got, r)
			}
		}
	}
}
