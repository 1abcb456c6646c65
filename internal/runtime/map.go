package runtime

import (
	"strings"

	"github.com/renlang/ren/internal/config"
)

// A map owns a pairlist (cells alternating key, value) and a sibling
// hashlist of 1-based pair indices sized to a prime. Probing is linear
// with a hash-derived skip coprime to the size. Removed pairs leave
// "zombie" value cells that later insertions reuse. Keys are deeply
// frozen on insertion; no rehash fires if a key mutates behind the map's
// back, so mutation must be impossible.

type HashList struct {
	Stub
	Indexes []int // 0 empty, else pair-number+1
}

func (rt *Runtime) newHashList(size int) *HashList {
	h := &HashList{Indexes: make([]int, size)}
	h.stampFlavor(FlavorHashList)
	return h
}

type RenMap struct {
	Stub
	Pairs *Array
	hash  *HashList
}

// zombie value cells mark removed pairs; the slot (key and hashlist entry)
// is reusable.
func zombieCell() Cell { return Cell{Heart: HeartNothing, Num: -1} }

func isZombie(c *Cell) bool { return c.Heart == HeartNothing && c.Num == -1 }

func nextPrime(atLeast int) int {
	for _, p := range config.HashPrimes {
		if p >= atLeast {
			return p
		}
	}
	return config.HashPrimes[len(config.HashPrimes)-1]
}

func (rt *Runtime) NewMap(capacity int) *RenMap {
	m := &RenMap{
		Pairs: rt.NewArray(capacity * 2),
		hash:  rt.newHashList(nextPrime(capacity*2 + 1)),
	}
	m.stampFlavor(FlavorPairList)
	return m
}

// hashKey folds case for the caseless kinds so synonyms probe the same
// runs.
func hashKey(c *Cell) uint32 {
	switch c.Heart {
	case HeartWord:
		return c.Symbol().Hash()
	case HeartText:
		return hashString(strings.ToLower(c.Strand().String()))
	case HeartInteger, HeartChar:
		return hashString(Mold(c))
	}
	return hashString(Mold(c))
}

func keyEqual(a, b *Cell, strict bool) bool {
	if a.Heart != b.Heart {
		return false
	}
	switch a.Heart {
	case HeartWord:
		if strict {
			return a.Symbol() == b.Symbol()
		}
		return SameWord(a.Symbol(), b.Symbol())
	case HeartText:
		if strict {
			return a.Strand().String() == b.Strand().String()
		}
		return strings.EqualFold(a.Strand().String(), b.Strand().String())
	case HeartInteger, HeartChar:
		return a.Num == b.Num
	}
	return Mold(a) == Mold(b)
}

// findSlot probes for a key. It reports the hashlist slot holding the
// match (or -1), the first reusable slot seen (zombie or empty), and a
// conflicting-key error when two differently-cased stored keys both
// match caselessly.
func (m *RenMap) findSlot(rt *Runtime, key *Cell) (match int, reusable int, err *ErrorStub) {
	size := len(m.hash.Indexes)
	h := hashKey(key)
	slot := int(h) % size
	skip := int(h)%(size-1) + 1

	match = -1
	reusable = -1
	synonym := -1

	for probes := 0; probes < size; probes++ {
		idx := m.hash.Indexes[slot]
		if idx == 0 {
			if reusable < 0 {
				reusable = slot
			}
			break
		}
		pair := (idx - 1) * 2
		k := m.Pairs.AtPtr(pair)
		v := m.Pairs.AtPtr(pair + 1)
		if isZombie(v) {
			if reusable < 0 {
				reusable = slot
			}
		} else if keyEqual(k, key, true) {
			return slot, reusable, nil // exact spelling wins immediately
		} else if keyEqual(k, key, false) {
			if synonym >= 0 {
				other := m.Pairs.AtPtr((m.hash.Indexes[synonym] - 1) * 2)
				return -1, -1, rt.NewError("conflicting-key", Mold(other), Mold(k))
			}
			synonym = slot
		}
		slot = (slot + skip) % size
	}

	if synonym >= 0 {
		return synonym, reusable, nil
	}
	return -1, reusable, nil
}

// Find returns the pair offset for a key, or -1.
func (m *RenMap) Find(rt *Runtime, key *Cell) (int, *ErrorStub) {
	slot, _, err := m.findSlot(rt, key)
	if err != nil {
		return -1, err
	}
	if slot < 0 {
		return -1, nil
	}
	return (m.hash.Indexes[slot] - 1) * 2, nil
}

// Get looks a key up, returning ok=false when absent.
func (m *RenMap) Get(rt *Runtime, key *Cell) (Cell, bool, *ErrorStub) {
	pair, err := m.Find(rt, key)
	if err != nil {
		return Cell{}, false, err
	}
	if pair < 0 {
		return Cell{}, false, nil
	}
	return m.Pairs.At(pair + 1), true, nil
}

// Set inserts or updates. New keys are deeply frozen.
func (m *RenMap) Set(rt *Runtime, key *Cell, val Cell) *ErrorStub {
	if IsAntiform(&val) {
		return rt.NewError("bad-value", TypeOf(&val))
	}
	slot, reusable, err := m.findSlot(rt, key)
	if err != nil {
		return err
	}
	if slot >= 0 {
		pair := (m.hash.Indexes[slot] - 1) * 2
		*m.Pairs.AtPtr(pair + 1) = val
		return nil
	}

	frozen := *key
	if frozen.Node != nil {
		Freeze(frozen.Node, true)
	}

	if reusable >= 0 && m.hash.Indexes[reusable] != 0 {
		// Reuse a zombie pair in place.
		pair := (m.hash.Indexes[reusable] - 1) * 2
		*m.Pairs.AtPtr(pair) = frozen
		*m.Pairs.AtPtr(pair + 1) = val
		return nil
	}

	m.Pairs.AppendCell(frozen)
	m.Pairs.AppendCell(val)
	pairNum := m.Pairs.Used() / 2
	if reusable >= 0 {
		m.hash.Indexes[reusable] = pairNum
	}

	if m.Pairs.Used()/2*config.MapLoadDenominator >
		len(m.hash.Indexes)*config.MapLoadNumerator {
		m.rehash(rt)
	} else if reusable < 0 {
		m.rehash(rt) // probe fell off without a hole; force growth
	}
	return nil
}

// Remove zombifies the pair for a key; absent keys are a no-op.
func (m *RenMap) Remove(rt *Runtime, key *Cell) *ErrorStub {
	slot, _, err := m.findSlot(rt, key)
	if err != nil {
		return err
	}
	if slot < 0 {
		return nil
	}
	pair := (m.hash.Indexes[slot] - 1) * 2
	*m.Pairs.AtPtr(pair + 1) = zombieCell()
	return nil
}

// Len counts live pairs.
func (m *RenMap) Len() int {
	n := 0
	for i := 1; i < m.Pairs.Used(); i += 2 {
		if !isZombie(m.Pairs.AtPtr(i)) {
			n++
		}
	}
	return n
}

// EachPair calls fn for every live pair in insertion order.
func (m *RenMap) EachPair(fn func(k, v *Cell) bool) {
	for i := 0; i+1 < m.Pairs.Used(); i += 2 {
		v := m.Pairs.AtPtr(i + 1)
		if isZombie(v) {
			continue
		}
		if !fn(m.Pairs.AtPtr(i), v) {
			return
		}
	}
}

// rehash grows the hashlist to the next prime and reindexes live pairs;
// zombie pairs are compacted away here.
func (m *RenMap) rehash(rt *Runtime) {
	live := rt.NewArray(m.Pairs.Used())
	for i := 0; i+1 < m.Pairs.Used(); i += 2 {
		if isZombie(m.Pairs.AtPtr(i + 1)) {
			continue
		}
		live.AppendCell(m.Pairs.At(i))
		live.AppendCell(m.Pairs.At(i + 1))
	}
	m.Pairs = live
	m.hash = rt.newHashList(nextPrime(len(m.hash.Indexes) + 1))

	size := len(m.hash.Indexes)
	for i := 0; i+1 < live.Used(); i += 2 {
		h := hashKey(live.AtPtr(i))
		slot := int(h) % size
		skip := int(h)%(size-1) + 1
		for m.hash.Indexes[slot] != 0 {
			slot = (slot + skip) % size
		}
		m.hash.Indexes[slot] = i/2 + 1
	}
}
