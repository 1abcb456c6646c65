package reb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnboxInt64(t *testing.T) {
	s := NewSession()
	n, err := s.UnboxInt64("1 + 2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSplicedGoValues(t *testing.T) {
	s := NewSession()
	n, err := s.UnboxInt64("10 +", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)

	n, err = s.UnboxInt64("negate", int64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(-7), n)
}

func TestDid(t *testing.T) {
	s := NewSession()

	ok, err := s.Did("1 < 2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Did("1 > 2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnboxText(t *testing.T) {
	s := NewSession()
	text, err := s.UnboxText(`append "ab" "cd"`)
	require.NoError(t, err)
	assert.Equal(t, "abcd", text)

	molded, err := s.UnboxText("reduce [1 + 1 2 + 2]")
	require.NoError(t, err)
	assert.Equal(t, "[2 4]", molded)
}

func TestHandles(t *testing.T) {
	s := NewSession()

	h, err := s.Value("[1 2 3]")
	require.NoError(t, err)

	// handles splice back in as data
	n, err := s.UnboxInt64("length-of", h)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	s.Release(h)
	_, err = s.UnboxInt64("length-of", h)
	assert.Error(t, err, "released handles must not resolve")

	// double release is a no-op
	s.Release(h)
}

func TestSessionState(t *testing.T) {
	s := NewSession()
	_, err := s.Value("x: 41")
	require.NoError(t, err)

	n, err := s.UnboxInt64("x + 1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestSessionIsolation(t *testing.T) {
	a := NewSession()
	b := NewSession()
	_, err := a.Value("x: 1")
	require.NoError(t, err)

	_, err = b.UnboxInt64("x")
	assert.Error(t, err, "sessions must not share variables")
}

func TestErrorsSurface(t *testing.T) {
	s := NewSession()
	_, err := s.UnboxInt64("1 / 0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero-divide")
}

func TestGeneratorHandleRelease(t *testing.T) {
	s := NewSession()
	h, err := s.Value("generator [yield 1 yield 2]")
	require.NoError(t, err)
	s.Release(h) // closes the generator; plugged levels must not linger
}
