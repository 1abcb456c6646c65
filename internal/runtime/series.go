package runtime

import (
	"strings"
	"unicode/utf8"
)

// Modify implements APPEND/INSERT/CHANGE for arrays, strands and blobs:
// size the destination gap to dup × source-length, then copy, carrying
// newline flags for arrays and codepoint bookkeeping for strands.

type ModifyOp uint8

const (
	ModAppend ModifyOp = iota
	ModInsert
	ModChange
)

// ModifyArgs carries the refinements.
type ModifyArgs struct {
	Part int // CHANGE: destination span to replace; APPEND/INSERT: source limit. -1 = none
	Dup  int // repeat count; -1 = 1
	Line bool
}

// Modify edits dst in place and returns the number of units written (for
// the caller to position INSERT/CHANGE results past the edit).
func (rt *Runtime) Modify(dst *Cell, op ModifyOp, src *Cell, args ModifyArgs) (int, *ErrorStub) {
	dup := args.Dup
	if dup < 0 {
		dup = 1
	}
	if dup == 0 {
		return 0, nil
	}
	switch dst.Heart {
	case HeartBlock, HeartGroup, HeartFence:
		return rt.modifyArray(dst, op, src, args, dup)
	case HeartText, HeartBlob:
		return rt.modifyUtf8(dst, op, src, args, dup)
	}
	return 0, rt.NewError("bad-value", TypeOf(dst))
}

func (rt *Runtime) modifyArray(dst *Cell, op ModifyOp, src *Cell, args ModifyArgs, dup int) (int, *ErrorStub) {
	a := dst.Array()

	// Source cells: a splice inlines its elements, anything else is one
	// element. Self-splices copy first.
	var cells []Cell
	srcNewlineTail := false
	if IsSplice(src) {
		sa := src.Array()
		from := src.Index
		if sa == a {
			// self-splice: snapshot the source before the destination moves
			sa = rt.CopySlice(sa, src.Index, sa.Used()-src.Index)
			from = 0
		}
		cells = sa.Cells[min(from, sa.Used()):]
		srcNewlineTail = sa.NewlineAtTail()
	} else if IsAntiform(src) {
		return 0, rt.NewError("bad-value", TypeOf(src))
	} else {
		cells = []Cell{*src}
	}
	if op != ModChange && args.Part >= 0 && args.Part < len(cells) {
		cells = cells[:args.Part]
	}

	at := dst.Index
	if op == ModAppend {
		at = a.Used()
	}
	if at > a.Used() {
		at = a.Used()
	}

	total := len(cells) * dup
	if op == ModChange {
		span := args.Part
		if span < 0 {
			span = total
		}
		if at+span > a.Used() {
			span = a.Used() - at
		}
		if err := a.RemoveUnits(at, span); err != nil {
			return 0, err
		}
	}
	if err := a.ExpandAt(at, total); err != nil {
		return 0, err
	}

	for d := 0; d < dup; d++ {
		base := at + d*len(cells)
		for i := range cells {
			c := cells[i]
			if i == 0 && (args.Line || srcNewlineTail) {
				c.Flags |= CellNewlineBefore
			}
			*a.AtPtr(base + i) = c
		}
		// The element shifted past the splice keeps a leading newline if
		// the source's tail carried one.
		if srcNewlineTail && base+len(cells) < a.Used() {
			a.AtPtr(base + len(cells)).Flags |= CellNewlineBefore
		}
	}
	return total, nil
}

func (rt *Runtime) modifyUtf8(dst *Cell, op ModifyOp, src *Cell, args ModifyArgs, dup int) (int, *ErrorStub) {
	s := dst.Strand()

	var text string
	var blobBytes []byte
	switch {
	case IsChar(src):
		text = string(src.AsChar())
	case IsText(src):
		text = src.Strand().String()
	case IsInteger(src) && dst.Heart == HeartBlob:
		if src.Num < 0 || src.Num > 255 {
			return 0, rt.NewError("out-of-range", src.Num)
		}
		blobBytes = []byte{byte(src.Num)}
	case IsBlob(src):
		blobBytes = append([]byte(nil), src.Strand().Bytes...)
	case IsSplice(src):
		sa := src.Array()
		var sb strings.Builder
		for i := src.Index; i < sa.Used(); i++ {
			el := sa.At(i)
			sb.WriteString(Form(&el))
		}
		text = sb.String()
	default:
		return 0, rt.NewError("bad-value", TypeOf(src))
	}

	if dst.Heart == HeartBlob {
		if blobBytes == nil {
			blobBytes = []byte(text)
		}
		return rt.modifyBlob(dst, s, op, blobBytes, args, dup)
	}
	if blobBytes != nil {
		if !utf8.Valid(blobBytes) {
			return 0, rt.NewError("bad-utf8-bin-edit")
		}
		text = string(blobBytes)
	}

	if op != ModChange && args.Part >= 0 {
		rs := []rune(text)
		if args.Part < len(rs) {
			text = string(rs[:args.Part])
		}
	}
	text = strings.Repeat(text, dup)
	written := utf8.RuneCountInString(text)

	at := dst.Index
	if op == ModAppend {
		at = s.Len()
	}
	switch op {
	case ModAppend, ModInsert:
		if err := s.InsertText(at, text); err != nil {
			return 0, err
		}
	case ModChange:
		span := args.Part
		if span < 0 {
			span = written
		}
		if err := s.ChangeRange(at, span, text); err != nil {
			return 0, err
		}
	}
	return written, nil
}

// modifyBlob edits the byte view. A strand-backed blob must stay valid
// UTF-8 and zero-free; EditBytes enforces both.
func (rt *Runtime) modifyBlob(dst *Cell, s *Strand, op ModifyOp, src []byte, args ModifyArgs, dup int) (int, *ErrorStub) {
	if args.Part >= 0 && op != ModChange && args.Part < len(src) {
		src = src[:args.Part]
	}
	repl := make([]byte, 0, len(src)*dup)
	for d := 0; d < dup; d++ {
		repl = append(repl, src...)
	}

	at := dst.Index
	if op == ModAppend {
		at = len(s.Bytes)
	}
	span := 0
	if op == ModChange {
		span = args.Part
		if span < 0 {
			span = len(repl)
		}
	}
	if err := s.EditBytes(at, span, repl); err != nil {
		return 0, err
	}
	return len(repl), nil
}

// --- comparison -------------------------------------------------------------

// CompareCells orders two cells, folding case unless strict. Mixed
// integer/decimal comparisons promote; everything else must share a
// heart.
func (rt *Runtime) CompareCells(a, b *Cell, strict bool) (int, *ErrorStub) {
	if AnyNumber(a) && AnyNumber(b) {
		av, bv := numValue(a), numValue(b)
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		}
		return 0, nil
	}
	if a.Heart != b.Heart {
		return 0, rt.NewError("invalid-compare", TypeOf(a), TypeOf(b))
	}
	switch a.Heart {
	case HeartChar:
		return int(a.Num - b.Num), nil
	case HeartWord:
		as, bs := a.Symbol().Text, b.Symbol().Text
		if !strict {
			as, bs = strings.ToLower(as), strings.ToLower(bs)
		}
		return strings.Compare(as, bs), nil
	case HeartText:
		as, bs := a.Strand().String(), b.Strand().String()
		if !strict {
			as, bs = strings.ToLower(as), strings.ToLower(bs)
		}
		return strings.Compare(as, bs), nil
	case HeartBlob:
		return strings.Compare(string(a.Strand().Bytes), string(b.Strand().Bytes)), nil
	}
	return 0, rt.NewError("invalid-compare", TypeOf(a), TypeOf(b))
}

func numValue(c *Cell) float64 {
	if IsInteger(c) {
		return float64(c.Num)
	}
	return c.Dec
}

// EqualCells is comparison without ordering: hearts that cannot order can
// still answer equality.
func (rt *Runtime) EqualCells(a, b *Cell, strict bool) bool {
	if a.Lift != b.Lift || a.Quotes != b.Quotes || a.Sigil != b.Sigil {
		return false
	}
	if cmp, err := rt.CompareCells(a, b, strict); err == nil {
		return cmp == 0
	}
	if a.Heart != b.Heart {
		return false
	}
	switch a.Heart {
	case HeartBlank, HeartComma, HeartNothing:
		return true
	case HeartBlock, HeartGroup, HeartFence:
		aa, ba := a.Array(), b.Array()
		if aa.Used()-a.Index != ba.Used()-b.Index {
			return false
		}
		for i := 0; a.Index+i < aa.Used(); i++ {
			av, bv := aa.At(a.Index+i), ba.At(b.Index+i)
			if !rt.EqualCells(&av, &bv, strict) {
				return false
			}
		}
		return true
	case HeartPath, HeartTuple, HeartChain:
		return Mold(a) == Mold(b)
	case HeartMap:
		return a.Map() == b.Map()
	case HeartFrame:
		return a.Node == b.Node
	case HeartError:
		return a.ErrorNode() == b.ErrorNode()
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
