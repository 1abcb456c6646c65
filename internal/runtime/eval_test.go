package runtime_test

import (
	"testing"

	"github.com/renlang/ren/internal/runtime"
	"github.com/renlang/ren/internal/scan"
)

// run transcodes and evaluates src in a fresh interpreter, returning the
// molded result; escaped panics come back as "** id".
func run(t *testing.T, src string) string {
	t.Helper()
	rt := runtime.New()
	a, err := scan.Transcode(rt, "test", src)
	if err != nil {
		t.Fatalf("transcode %q: %v", src, err)
	}
	out, err2 := rt.RunArray(a)
	if err2 != nil {
		return "** " + err2.ID
	}
	return runtime.Mold(&out)
}

func TestEvalBasics(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"5", "5"},
		{"1.5", "1.5"},
		{`"hello"`, `"hello"`},
		{"[1 2 3]", "[1 2 3]"},
		{"(3)", "3"},
		{"3 + 4", "7"},
		{"1 + 2 * 3", "9"}, // strict left-to-right, no precedence
		{"x: 5 x", "5"},
		{"x: 5 x + 1", "6"},
		{"x: 5 y: x + 2 y", "7"},
		{"'x", "x"},
		{"''x", "'x"},
		{"~foo~", "~foo~"},
		{"~", "~"},
		{"x: 10 ^x", "'10"},
		{"#{DEADBEEF}", "#{DEADBEEF}"},
		{"1.2.3", "1.2.3"},
		{"10 20 30", "30"},
		{"5,", "5"}, // the ghost after the comma vanishes
		{"x: 5 :x", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		src string
		id  string
	}{
		{"novaluehere", "** no-binding"},
		{"1 / 0", "** zero-divide"},
		{`1 + "x"`, "** bad-argument-type"},
		{"f: func [x [integer!]] [x] f 1.5", "** bad-argument-type"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.id {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.id)
			}
		})
	}
}

func TestConditionals(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"if 1 < 2 [99]", "99"},
		{"if 1 > 2 [99]", "~null~"},
		{"either 1 > 2 [1] [2]", "2"},
		{"either 1 < 2 [1] [2]", "1"},
		{"not 1 = 1", "~false~"},
		{"1 <> 2", "~true~"},
		{"null? if 1 > 2 [3]", "~true~"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestReduceLiftsUnstable(t *testing.T) {
	if got := run(t, "reduce [1 + 2 3]"); got != "[3 3]" {
		t.Errorf("reduce = %q", got)
	}
	// nulls become their quasiform inside the reduced block
	if got := run(t, "reduce [if 1 > 2 [5]]"); got != "[~null~]" {
		t.Errorf("reduce null = %q", got)
	}
}

func TestDataStackRestored(t *testing.T) {
	rt := runtime.New()
	a, err := scan.Transcode(rt, "test", "append:dup [1] 2 3")
	if err != nil {
		t.Fatal(err)
	}
	if _, err2 := rt.RunArray(a); err2 != nil {
		t.Fatal(err2)
	}
	if rt.StackDepth() != 0 {
		t.Errorf("data stack depth %d after completed expression, want 0", rt.StackDepth())
	}
}

func TestTweakPaths(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"m: make map! [a 1 b 2] m.a", "1"},
		{"m: make map! [a 1 b 2] m.a: 10 m.a", "10"},
		{"m: make map! [a 1] try m.missing", "~null~"},
		{"m: make map! [a 1] m.missing", "~bad-pick~"},
		{"b: [10 20 30] b.2", "20"},
		{"b: [10 20 30] b.2: 99 b", "[10 99 30]"},
		{"s: \"abc\" s.2", "#\"b\""},
		{"pick [1 2 3] 2", "2"},
		{"try pick [1] 5", "~null~"},
		{"poke [1 2 3] 2 9", "9"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestCollectKeep(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"collect [keep 1 keep 2]", "[1 2]"},
		{"collect [keep spread [1 2] keep 3]", "[1 2 3]"},
		{"collect [repeat 3 [keep 7]]", "[7 7 7]"},
		{"collect []", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestMapScenario(t *testing.T) {
	src := "m: make map! [a 1 b 2], m.a: 10, sort:skip collect [each-pair m [keep pair]] 2"
	if got := run(t, src); got != "[a 10 b 2]" {
		t.Errorf("map scenario = %q, want [a 10 b 2]", got)
	}
}
