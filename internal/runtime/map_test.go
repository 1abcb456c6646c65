package runtime

import (
	"fmt"
	"math/rand"
	"testing"
)

func wordKey(rt *Runtime, s string) Cell { return WordCell(rt.Intern(s)) }

func TestMapBasics(t *testing.T) {
	rt := New()
	m := rt.NewMap(4)

	ka := wordKey(rt, "a")
	if err := m.Set(rt, &ka, IntCell(1)); err != nil {
		t.Fatal(err)
	}
	v, ok, err := m.Get(rt, &ka)
	if err != nil || !ok || v.Num != 1 {
		t.Fatalf("Get a = %v %v %v", v, ok, err)
	}

	// update through a differently-cased synonym hits the same pair
	kA := wordKey(rt, "A")
	if err := m.Set(rt, &kA, IntCell(2)); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Fatalf("caseless update created a new pair; len %d", m.Len())
	}
	v, _, _ = m.Get(rt, &ka)
	if v.Num != 2 {
		t.Fatalf("caseless update lost: %v", v.Num)
	}
}

func TestMapZombies(t *testing.T) {
	rt := New()
	m := rt.NewMap(4)

	for i := 0; i < 4; i++ {
		k := wordKey(rt, fmt.Sprintf("k%d", i))
		if err := m.Set(rt, &k, IntCell(int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	k1 := wordKey(rt, "k1")
	if err := m.Remove(rt, &k1); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 3 {
		t.Fatalf("len after remove = %d", m.Len())
	}
	if _, ok, _ := m.Get(rt, &k1); ok {
		t.Fatal("removed key still found")
	}

	pairsBefore := m.Pairs.Used()
	if err := m.Set(rt, &k1, IntCell(99)); err != nil {
		t.Fatal(err)
	}
	if m.Pairs.Used() != pairsBefore {
		t.Fatalf("reinsert did not reuse the zombie pair: %d -> %d", pairsBefore, m.Pairs.Used())
	}
	if v, ok, _ := m.Get(rt, &k1); !ok || v.Num != 99 {
		t.Fatalf("reinserted key = %v %v", v, ok)
	}
}

func TestMapKeysFrozen(t *testing.T) {
	rt := New()
	m := rt.NewMap(2)
	key := TextCell(rt.NewStrand("key"))
	if err := m.Set(rt, &key, IntCell(1)); err != nil {
		t.Fatal(err)
	}
	m.EachPair(func(k, v *Cell) bool {
		if !k.Strand().IsFrozen() {
			t.Error("stored key is not frozen")
		}
		return false
	})
}

// TestMapRandomOps compares against Go's map through forced rehashes, the
// property test shape the spec suggests.
func TestMapRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rt := New()
	m := rt.NewMap(2)
	ref := map[string]int64{}

	for i := 0; i < 3000; i++ {
		name := fmt.Sprintf("key-%d", rng.Intn(200))
		k := wordKey(rt, name)
		switch rng.Intn(3) {
		case 0, 1: // insert beats remove so the map grows past load factor
			val := rng.Int63n(1000)
			if err := m.Set(rt, &k, IntCell(val)); err != nil {
				t.Fatal(err)
			}
			ref[name] = val
		case 2:
			if err := m.Remove(rt, &k); err != nil {
				t.Fatal(err)
			}
			delete(ref, name)
		}
	}

	if m.Len() != len(ref) {
		t.Fatalf("len %d, want %d", m.Len(), len(ref))
	}
	for name, want := range ref {
		k := wordKey(rt, name)
		v, ok, err := m.Get(rt, &k)
		if err != nil || !ok || v.Num != want {
			t.Fatalf("key %s = (%v, %v, %v), want %d", name, v.Num, ok, err, want)
		}
	}
}

func TestMapIterationOrder(t *testing.T) {
	rt := New()
	m := rt.NewMap(4)
	names := []string{"one", "two", "three", "four"}
	for i, n := range names {
		k := wordKey(rt, n)
		if err := m.Set(rt, &k, IntCell(int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	m.EachPair(func(k, v *Cell) bool {
		got = append(got, k.Symbol().Text)
		return true
	})
	for i, n := range names {
		if got[i] != n {
			t.Fatalf("iteration order %v, want insertion order %v", got, names)
		}
	}
}
