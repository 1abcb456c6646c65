package runtime_test

import "testing"

func TestAppendScenario(t *testing.T) {
	// spec scenario 1: splice appends inline, result still views the head
	if got := run(t, "append [1 2 3] spread [4 5]"); got != "[1 2 3 4 5]" {
		t.Errorf("append spread = %q", got)
	}
	// without spread the block arrives as one element
	if got := run(t, "append [1 2 3] [4 5]"); got != "[1 2 3 [4 5]]" {
		t.Errorf("append block = %q", got)
	}
}

func TestChangeScenario(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{`s: "abcdef" change s "XYZ" s`, `"XYZdef"`},
		{`s: "abcdef" change:part s "XY" 3 s`, `"XYdef"`},
		{`s: "abc" insert s "X" s`, `"Xabc"`},
		{`s: "abc" append s "d" s`, `"abcd"`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestInsertReturnsPastInsertion(t *testing.T) {
	// insert hands back the series positioned after what went in
	if got := run(t, "b: [3 4] insert b spread [1 2]"); got != "[3 4]" {
		t.Errorf("insert tail view = %q", got)
	}
	if got := run(t, "b: [3 4] insert b spread [1 2] b"); got != "[1 2 3 4]" {
		t.Errorf("insert head view = %q", got)
	}
}

func TestDupAndPart(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"append:dup [1] 2 3", "[1 2 2 2]"},
		{"append:part [9] spread [1 2 3] 2", "[9 1 2]"},
		{"b: [1 2 3 4] remove b b", "[2 3 4]"},
		{"b: [1 2 3 4] remove:part b 2 b", "[3 4]"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestSelfSplice(t *testing.T) {
	if got := run(t, "b: [1 2] append b spread b"); got != "[1 2 1 2]" {
		t.Errorf("self splice = %q", got)
	}
}

func TestCopy(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"a: [1 2 3] b: copy a append b 4 a", "[1 2 3]"},
		{"a: [1 2 3] b: copy a append b 4 b", "[1 2 3 4]"},
		{`s: "abc" c: copy s append c "d" s`, `"abc"`},
		{"copy:part [1 2 3 4] 2", "[1 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestSortSkip(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"sort [3 1 2]", "[1 2 3]"},
		{"sort [c a b]", "[a b c]"},
		{"sort:skip [b 2 a 1] 2", "[a 1 b 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestFrozenRefusesWrites(t *testing.T) {
	if got := run(t, "b: freeze [1 2] append b 3"); got != "** protected" {
		t.Errorf("frozen append = %q", got)
	}
}

func TestLengthOf(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"length-of [1 2 3]", "3"},
		{`length-of "héllo"`, "5"},
		{"length-of make map! [a 1 b 2]", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}
