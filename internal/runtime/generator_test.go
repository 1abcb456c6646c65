package runtime_test

import "testing"

func TestGeneratorScenario(t *testing.T) {
	src := "g: generator [yield 10, yield 20] reduce [g g g]"
	if got := run(t, src); got != "[10 20 ~done~]" {
		t.Errorf("generator = %q, want [10 20 ~done~]", got)
	}
}

func TestYielderScenario(t *testing.T) {
	src := `y: yielder [n] [repeat n [yield "hi"]] reduce [y 2 y 2 y 2]`
	if got := run(t, src); got != `["hi" "hi" ~done~]` {
		t.Errorf("yielder = %q, want [\"hi\" \"hi\" ~done~]", got)
	}
}

func TestGeneratorCounts(t *testing.T) {
	// yields 1..n, then done forever (testable property 8)
	src := "i: 0 g: generator [repeat 3 [i: i + 1 yield i]] reduce [g g g g g]"
	if got := run(t, src); got != "[1 2 3 ~done~ ~done~]" {
		t.Errorf("counting generator = %q", got)
	}
}

func TestGeneratorStaysDone(t *testing.T) {
	src := "g: generator [yield 1] reduce [g g g g]"
	if got := run(t, src); got != "[1 ~done~ ~done~ ~done~]" {
		t.Errorf("done generator = %q", got)
	}
}

func TestGeneratorWithCollect(t *testing.T) {
	src := "g: generator [yield 1 yield 2 yield 3] " +
		"collect [repeat 3 [keep g]]"
	if got := run(t, src); got != "[1 2 3]" {
		t.Errorf("collected generator = %q", got)
	}
}

func TestYielderPanicPoisons(t *testing.T) {
	// after the body panics, resumption reports the panic; later calls
	// report the poisoning
	src := "g: generator [yield 1 1 / 0] " +
		"first-val: g " +
		"err: rescue [g] " +
		"reduce [first-val err.id]"
	if got := run(t, src); got != "[1 zero-divide]" {
		t.Errorf("poisoned generator first calls = %q", got)
	}
	src2 := "g: generator [yield 1 1 / 0] g rescue [g] err: rescue [g] err.id"
	if got := run(t, src2); got != "yielder-panicked" {
		t.Errorf("poisoned generator = %q", got)
	}
}

func TestGeneratorValuesThroughLoops(t *testing.T) {
	// suspension cuts through a repeat level and resumes it intact
	src := "g: generator [repeat 2 [yield 5] yield 9] reduce [g g g g]"
	if got := run(t, src); got != "[5 5 9 ~done~]" {
		t.Errorf("loop generator = %q", got)
	}
}
