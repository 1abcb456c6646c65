package scan

import (
	"testing"

	"github.com/renlang/ren/internal/runtime"
)

func transcode(t *testing.T, src string) *runtime.Array {
	t.Helper()
	rt := runtime.New()
	a, err := Transcode(rt, "test", src)
	if err != nil {
		t.Fatalf("transcode %q: %v", src, err)
	}
	return a
}

// moldAll renders the scanned cells back to text for comparison.
func moldAll(a *runtime.Array) string {
	out := ""
	for i := 0; i < a.Used(); i++ {
		if i > 0 {
			out += " "
		}
		c := a.At(i)
		out += runtime.Mold(&c)
	}
	return out
}

func TestScanTokens(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"1 2 3", "1 2 3"},
		{"-5 +7", "-5 7"},
		{"1.5", "1.5"},
		{`"hello"`, `"hello"`},
		{`#"x"`, `#"x"`},
		{"#{CAFE}", "#{CAFE}"},
		{"foo bar-baz", "foo bar-baz"},
		{"x: 5", "x: 5"},
		{":x", ":x"},
		{"^x $x @x", "^x $x @x"},
		{"'x ''y", "'x ''y"},
		{"~ ~foo~", "~ ~foo~"},
		{"[1 2]", "[1 2]"},
		{"(a b)", "(a b)"},
		{"{x y}", "{x y}"},
		{"a/b a.b a/b/c", "a/b a.b a/b/c"},
		{"f/ /f", "f/ /f"},
		{"append:dup", "append:dup"},
		{"m.a: 10", "m.a: 10"},
		{"1.2.3", "1.2.3"},
		{"a, b", "a , b"},
		{"x ; comment\ny", "x y"},
		{"+ - * / < > <= >= = <>", "+ - * / < > <= >= = <>"},
		{"_", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := moldAll(transcode(t, tt.src)); got != tt.expected {
				t.Errorf("scan(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestScanNewlineFlags(t *testing.T) {
	a := transcode(t, "1 2\n3")
	c := a.At(2)
	if c.Flags&runtime.CellNewlineBefore == 0 {
		t.Error("cell after newline lacks the newline-before flag")
	}
	c = a.At(1)
	if c.Flags&runtime.CellNewlineBefore != 0 {
		t.Error("cell without preceding newline carries the flag")
	}

	a = transcode(t, "1 2\n")
	if !a.NewlineAtTail() {
		t.Error("array missed its newline-at-tail flag")
	}
}

func TestScanErrors(t *testing.T) {
	rt := runtime.New()
	for _, src := range []string{"[1 2", `"unterminated`, "(", "1 ]", "~foo"} {
		if _, err := Transcode(rt, "test", src); err == nil {
			t.Errorf("scan(%q) did not error", src)
		}
	}
}

func TestScanRoundTrip(t *testing.T) {
	// mold(transcode(mold(x))) is stable for round-trippable hearts
	sources := []string{
		"1 2 3",
		`"text" #"c" #{BEEF}`,
		"foo x: :y ^z",
		"[nested [deeper 1]] (group)",
		"a/b/c m.a 1.2.3",
		"1.5 -2.25",
	}
	rt := runtime.New()
	for _, src := range sources {
		a1, err := Transcode(rt, "test", src)
		if err != nil {
			t.Fatalf("first scan of %q: %v", src, err)
		}
		m1 := moldAll(a1)
		a2, err := Transcode(rt, "test", m1)
		if err != nil {
			t.Fatalf("second scan of %q: %v", m1, err)
		}
		if m2 := moldAll(a2); m2 != m1 {
			t.Errorf("round trip %q -> %q -> %q", src, m1, m2)
		}
	}
}

func TestScanLineNumbers(t *testing.T) {
	a := transcode(t, "1\n[\n2\n]")
	inner := a.At(1)
	if inner.Array().Line != 2 {
		t.Errorf("inner block line = %d, want 2", inner.Array().Line)
	}
}
