package runtime_test

import "testing"

func TestFuncBasics(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"f: func [x] [x + 1] f 2", "3"},
		{"f: func [x [integer!]] [x * 2] f 3", "6"},
		{"f: func [x] [return x + 1 99] f 1", "2"},
		{"f: func [x y] [x - y] f 10 3", "7"},
		{"f: lambda [x] [x * x] f 4", "16"},
		{"f: func [] [7] f", "7"},
		// definitional return is frame-specific: the inner return exits
		// only the inner function
		{"inner: func [] [return 1 2] outer: func [] [inner 5] outer", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestQuotedAndSoftParams(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"f: func ['w] [w] f hello", "hello"},
		{"f: func [:v] [v] f (1 + 2)", "3"},
		{"f: func [:v] [v] f hello", "hello"},
		{"f: func [^v] [v] f 5", "'5"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestRefinements(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"f: func [x /double] [either null? double [x] [x * 2]] f 5", "5"},
		{"f: func [x /double] [either null? double [x] [x * 2]] f:double 5", "10"},
		{"f: func [x /by [integer!]] [either null? by [x] [x * by]] f:by 5 3", "15"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestAdapter(t *testing.T) {
	// the spec's end-to-end scenario: prelude bumps x, then the adaptee
	// doubles it
	src := "f: func [x [integer!]] [x * 2] adapter: adapt f/ [x: x + 1] adapter 3"
	if got := run(t, src); got != "8" {
		t.Errorf("adapter = %q, want 8", got)
	}
}

func TestSpecialize(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"ap5: specialize append/ [value: 5] ap5 [1 2]", "[1 2 5]"},
		{"add3: specialize :+ [value2: 3] add3 4", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestEnclose(t *testing.T) {
	src := "double: func [x] [x * 2] " +
		"wrapped: enclose double/ func [f [frame!]] [1 + eval f] " +
		"wrapped 5"
	if got := run(t, src); got != "11" {
		t.Errorf("enclose = %q, want 11", got)
	}
}

func TestChain(t *testing.T) {
	src := "bump: func [x] [x + 1] c: chain [bump/ negate/] c 5"
	if got := run(t, src); got != "-6" {
		t.Errorf("chain = %q, want -6", got)
	}
}

func TestNshot(t *testing.T) {
	src := "one: n-shot 1 func [] [7] reduce [one one]"
	if got := run(t, src); got != "[7 ~null~]" {
		t.Errorf("n-shot = %q, want [7 ~null~]", got)
	}
	src = "late: upshot 1 func [] [7] reduce [late late]"
	if got := run(t, src); got != "[~null~ 7]" {
		t.Errorf("upshot = %q, want [~null~ 7]", got)
	}
}

func TestHijack(t *testing.T) {
	src := "f: func [x] [x] g: func [x] [x + 1] hijack f/ g/ f 1"
	if got := run(t, src); got != "2" {
		t.Errorf("hijack = %q, want 2", got)
	}
}

func TestReframer(t *testing.T) {
	src := "pass: reframer func [f [frame!]] [eval f] pass negate 5"
	if got := run(t, src); got != "-5" {
		t.Errorf("reframer = %q, want -5", got)
	}
}

func TestTupleMissIsRecoverable(t *testing.T) {
	if got := run(t, "o: make map! [] o.f"); got != "~bad-pick~" {
		t.Errorf("tuple miss = %q", got)
	}
}
