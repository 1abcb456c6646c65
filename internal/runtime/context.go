package runtime

// A VarList is the runtime representation of a context: a keylist naming
// the slots and a cell array holding them, slot 0 being the rootvar. Frames
// for action invocations, objects, and the boot Lib are all VarLists; only
// expandable ones (Lib) grow new slots on assignment.

type KeyList struct {
	Stub
	Keys []*Symbol
}

func (rt *Runtime) NewKeyList(syms []*Symbol) *KeyList {
	k := &KeyList{Keys: syms}
	k.stampFlavor(FlavorKeyList)
	return k
}

type VarList struct {
	Stub
	keys       *KeyList
	Vars       []Cell // Vars[0] is the rootvar
	level      *Level // weak: live while an invocation owns this frame
	parent     *VarList
	expandable bool
}

func (rt *Runtime) NewVarList(keys *KeyList, parent *VarList) *VarList {
	v := &VarList{keys: keys, parent: parent}
	v.stampFlavor(FlavorVarList)
	v.Vars = make([]Cell, len(keys.Keys)+1)
	return v
}

// NewExpandableContext makes a context that grows a slot whenever a new
// word is assigned into it; Lib and user modules work this way.
func (rt *Runtime) NewExpandableContext(parent *VarList) *VarList {
	v := rt.NewVarList(rt.NewKeyList(nil), parent)
	v.expandable = true
	return v
}

func (v *VarList) KeyList() *KeyList { return v.keys }

func (v *VarList) Len() int { return len(v.keys.Keys) }

// Rootvar is the frame archetype slot, carrying phase and coupling for
// frames; plain objects leave it erased.
func (v *VarList) Rootvar() *Cell { return &v.Vars[0] }

// Index finds the 1-based slot for a symbol, comparing through canons.
func (v *VarList) Index(sym *Symbol) int {
	for i, k := range v.keys.Keys {
		if SameWord(k, sym) {
			return i + 1
		}
	}
	return 0
}

// Slot resolves a symbol to its variable cell, walking the inheritance
// chain when the context itself has no such key.
func (v *VarList) Slot(sym *Symbol) *Cell {
	for ctx := v; ctx != nil; ctx = ctx.parent {
		if ctx.IsDiminished() {
			continue
		}
		if i := ctx.Index(sym); i != 0 {
			return &ctx.Vars[i]
		}
	}
	return nil
}

// SlotForWrite resolves like Slot but, when the word is unknown everywhere
// on the chain, appends a slot to the nearest expandable context.
func (v *VarList) SlotForWrite(sym *Symbol) *Cell {
	if s := v.Slot(sym); s != nil {
		return s
	}
	for ctx := v; ctx != nil; ctx = ctx.parent {
		if ctx.expandable {
			ctx.keys.Keys = append(ctx.keys.Keys, sym)
			ctx.Vars = append(ctx.Vars, Cell{})
			return &ctx.Vars[len(ctx.Vars)-1]
		}
	}
	return nil
}

// Level returns the invocation currently backing this frame, if any.
func (v *VarList) Level() *Level { return v.level }

// decayFromLevel runs when a Level drops while cells still reference its
// varlist: the keysource stays (paramlist-shaped keylist), the Level
// pointer is cleared, and the slots survive for outstanding references.
func (v *VarList) decayFromLevel() {
	v.level = nil
}

// ResolveWord looks a word cell up through its own binding first, then the
// supplied fallback chain (the feed's context).
func ResolveWord(c *Cell, fallback *VarList) *Cell {
	sym := c.Symbol()
	if sym == nil {
		return nil
	}
	if b := c.Binding(); b != nil {
		if s := b.Slot(sym); s != nil {
			return s
		}
	}
	if fallback != nil {
		return fallback.Slot(sym)
	}
	return nil
}

// ResolveWordForWrite is the assignment-target variant.
func ResolveWordForWrite(c *Cell, fallback *VarList) *Cell {
	sym := c.Symbol()
	if sym == nil {
		return nil
	}
	if b := c.Binding(); b != nil {
		if s := b.SlotForWrite(sym); s != nil {
			return s
		}
	}
	if fallback != nil {
		return fallback.SlotForWrite(sym)
	}
	return nil
}
