package runtime_test

import (
	"testing"

	"github.com/renlang/ren/internal/runtime"
	"github.com/renlang/ren/internal/scan"
)

func TestCatchThrow(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"catch [throw 7 8]", "7"},
		{"catch [1 2 3]", "~null~"},
		{"catch [if 1 < 2 [throw 42] 9]", "42"},
		{"f: func [] [throw 5] catch [f]", "5"},
		{"catch [catch [throw 1] throw 2]", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestRescue(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"rescue [1 / 0]", "#[error! zero-divide]"},
		{"e: rescue [1 / 0] e.id", "zero-divide"},
		{"rescue [1 + 1]", "~null~"},
		{"rescue [novaluehere]", "#[error! no-binding]"},
		// labeled throws pass through a rescue untouched
		{"catch [rescue [throw 3]]", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestLoops(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"n: 0 repeat 5 [n: n + 1] n", "5"},
		{"repeat 3 [7]", "7"},
		{"repeat 0 [7]", "~"},
		{"repeat 5 [break]", "~null~"},
		{"n: 0 repeat 5 [if n > 2 [break] n: n + 1] n", "3"},
		{"n: 0 repeat 5 [continue n: n + 1] n", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}

func TestHalt(t *testing.T) {
	rt := runtime.New()
	rt.RequestHalt()
	a, err := scan.Transcode(rt, "test", "repeat 100 [1 + 1]")
	if err != nil {
		t.Fatal(err)
	}
	_, err2 := rt.RunArray(a)
	if err2 == nil || err2.ID != "halted" {
		t.Errorf("halt produced %v, want halted error", err2)
	}
}

func TestUncaughtThrow(t *testing.T) {
	if got := run(t, "throw 5"); got != "** no-catch" {
		t.Errorf("uncaught throw = %q, want ** no-catch", got)
	}
}

func TestGC(t *testing.T) {
	rt := runtime.New()
	a, err := scan.Transcode(rt, "test", "x: [1 2 3] recycle x")
	if err != nil {
		t.Fatal(err)
	}
	out, err2 := rt.RunArray(a)
	if err2 != nil {
		t.Fatal(err2)
	}
	// x survives collection because Lib references it
	if got := runtime.Mold(&out); got != "[1 2 3]" {
		t.Errorf("after recycle x = %q", got)
	}
}
