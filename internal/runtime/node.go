package runtime

// Every dynamic object the interpreter allocates (arrays, strands, symbols,
// contexts, action details, hashlists, pairings) carries a Stub header. The
// header records the object's flavor, stamped exactly once at allocation,
// and its lifecycle flags. References to a stub stay valid for its whole
// life; "diminishing" empties the payload but keeps the identity.

type Flavor uint8

const (
	FlavorNone Flavor = iota
	FlavorSource       // array of cells (block/group/path/tuple/fence storage)
	FlavorStrand       // UTF-8 byte payload with codepoint metadata
	FlavorBinary       // raw byte payload
	FlavorSymbol       // interned spelling
	FlavorKeyList      // symbols describing a context's slots
	FlavorVarList      // context variables, slot 0 is the rootvar
	FlavorDetails      // per-action dispatcher state
	FlavorPairList     // alternating key/value cells owned by a map
	FlavorHashList     // probing index array siblinged to a pairlist
	FlavorPairing      // exactly two cells, used by compressed sequences
	FlavorError        // error id + rendered message
	FlavorParameter    // PARAMETER! spec describing one action parameter slot
)

type StubFlags uint16

const (
	StubManaged StubFlags = 1 << iota
	StubMarked            // GC mark bit, meaningful only during a sweep
	StubFrozen            // refuses writes, one-way
	StubFrozenDeep
	StubInaccessible // diminished: payload gone, identity retained
	StubNewlineAtTail
)

type Stub struct {
	flavor Flavor
	flags  StubFlags
}

// Node is the common face of every stub-headed object.
type Node interface {
	header() *Stub
}

func (s *Stub) header() *Stub { return s }

func (s *Stub) Flavor() Flavor { return s.flavor }

func (s *Stub) IsManaged() bool    { return s.flags&StubManaged != 0 }
func (s *Stub) IsFrozen() bool     { return s.flags&StubFrozen != 0 }
func (s *Stub) IsFrozenDeep() bool { return s.flags&StubFrozenDeep != 0 }
func (s *Stub) IsDiminished() bool { return s.flags&StubInaccessible != 0 }

func (s *Stub) setFlag(f StubFlags)   { s.flags |= f }
func (s *Stub) clearFlag(f StubFlags) { s.flags &^= f }
func (s *Stub) hasFlag(f StubFlags) bool { return s.flags&f != 0 }

// stampFlavor initializes a freshly allocated stub. Restamping is a bug.
func (s *Stub) stampFlavor(f Flavor) {
	if s.flavor != FlavorNone {
		panic("stub flavor stamped twice")
	}
	s.flavor = f
}

// Manage hands ownership of an unmanaged node to the GC. Irreversible.
func (rt *Runtime) Manage(n Node) {
	h := n.header()
	if h.IsManaged() {
		return
	}
	h.setFlag(StubManaged)
	rt.managed = append(rt.managed, n)
}

// Free releases an unmanaged node. Managed nodes are swept, never freed.
func (rt *Runtime) Free(n Node) {
	h := n.header()
	if h.IsManaged() {
		panic("freeing a managed stub")
	}
	diminish(n)
}

// diminish empties a node's payload while keeping its identity, so cells
// that still reference it see an inaccessible husk rather than junk.
func diminish(n Node) {
	h := n.header()
	h.setFlag(StubInaccessible)
	switch v := n.(type) {
	case *Array:
		v.Cells = nil
	case *Strand:
		v.Bytes = nil
		v.Length = 0
		v.book = nil
	case *VarList:
		v.Vars = nil
		v.level = nil
	case *HashList:
		v.Indexes = nil
	case *Details:
		v.Slots = nil
	}
}

// Freeze marks a node read-only. With deep set, reachable sub-series are
// frozen as well (keys going into maps rely on this).
func Freeze(n Node, deep bool) {
	h := n.header()
	h.setFlag(StubFrozen)
	if !deep {
		return
	}
	h.setFlag(StubFrozenDeep)
	switch v := n.(type) {
	case *Array:
		for i := range v.Cells {
			if sub := v.Cells[i].Node; sub != nil {
				if sub.header().hasFlag(StubFrozenDeep) {
					continue
				}
				Freeze(sub, true)
			}
		}
	case *Pairing:
		for _, c := range []*Cell{&v.A, &v.B} {
			if c.Node != nil && !c.Node.header().hasFlag(StubFrozenDeep) {
				Freeze(c.Node, true)
			}
		}
	}
}
