package runtime

import "fmt"

// A Cell is the universal value unit. It is copied bitwise; the nodes it
// points at are shared with the GC graph. Heart gives the primordial
// datatype, the lift byte and quote count give the distance from a plain
// value (antiform / normal / quasiform / quoted-N), and the sigil decorates
// words and other elements (:get, set:, ^meta, $tie, @pin).

type Heart uint8

const (
	HeartNothing Heart = iota // erased cell, not a legal element
	HeartBlank                // _
	HeartComma                // , (expression barrier; its antiform is the ghost)
	HeartInteger
	HeartDecimal
	HeartChar
	HeartText
	HeartBlob
	HeartWord
	HeartBlock
	HeartGroup
	HeartFence
	HeartPath
	HeartTuple
	HeartChain
	HeartMap
	HeartFrame     // actions are antiform frames
	HeartParameter // interface slot descriptions inside paramlists
	HeartError
	HeartVarargs
	HeartDatatype
	HeartHandle
)

var heartNames = map[Heart]string{
	HeartBlank: "blank", HeartComma: "comma",
	HeartInteger: "integer", HeartDecimal: "decimal", HeartChar: "char",
	HeartText: "text", HeartBlob: "blob", HeartWord: "word",
	HeartBlock: "block", HeartGroup: "group", HeartFence: "fence",
	HeartPath: "path", HeartTuple: "tuple", HeartChain: "chain",
	HeartMap: "map", HeartFrame: "frame", HeartParameter: "parameter",
	HeartError: "error", HeartVarargs: "varargs", HeartDatatype: "datatype",
	HeartHandle: "handle",
}

func (h Heart) String() string {
	if n, ok := heartNames[h]; ok {
		return n
	}
	return fmt.Sprintf("heart-%d", uint8(h))
}

type Lift uint8

const (
	LiftAntiform Lift = iota // one and only one rung below normal
	LiftNormal
	LiftQuasi // ~x~, evaluates to the antiform of x
)

type Sigil uint8

const (
	SigilNone Sigil = iota
	SigilSet  // word:
	SigilGet  // :word
	SigilMeta // ^word
	SigilTie  // $word
	SigilPin  // @word
)

type CellFlags uint16

const (
	CellNewlineBefore CellFlags = 1 << iota
	CellConst
	CellProtected
	CellLeadingBlank  // sequences: /a vs a/
	CellTrailingBlank
)

type Cell struct {
	Heart  Heart
	Lift   Lift
	Quotes uint8 // quoting levels; only meaningful with LiftNormal
	Sigil  Sigil
	Flags  CellFlags

	Num   int64   // integer, char codepoint, logic (0/1), counters
	Dec   float64 // decimal payload
	Node  Node    // series / symbol / varlist / details / pairing / error
	Index int     // series view position
	Aux   Node    // word binding, frame coupling, frame phase
}

// Erase resets a cell to the not-a-value state every output slot starts in.
func (c *Cell) Erase() {
	*c = Cell{}
}

func (c *Cell) IsErased() bool { return c.Heart == HeartNothing }

// --- constructors -----------------------------------------------------------

func IntCell(v int64) Cell     { return Cell{Heart: HeartInteger, Lift: LiftNormal, Num: v} }
func DecimalCell(v float64) Cell { return Cell{Heart: HeartDecimal, Lift: LiftNormal, Dec: v} }
func CharCell(r rune) Cell     { return Cell{Heart: HeartChar, Lift: LiftNormal, Num: int64(r)} }
func BlankCell() Cell          { return Cell{Heart: HeartBlank, Lift: LiftNormal} }
func CommaCell() Cell          { return Cell{Heart: HeartComma, Lift: LiftNormal} }

func WordCell(sym *Symbol) Cell {
	return Cell{Heart: HeartWord, Lift: LiftNormal, Node: sym}
}

func SigilWordCell(sym *Symbol, s Sigil) Cell {
	c := WordCell(sym)
	c.Sigil = s
	return c
}

func TextCell(s *Strand) Cell  { return Cell{Heart: HeartText, Lift: LiftNormal, Node: s} }
func BlobCell(s *Strand) Cell  { return Cell{Heart: HeartBlob, Lift: LiftNormal, Node: s} }
func BlockCell(a *Array) Cell  { return Cell{Heart: HeartBlock, Lift: LiftNormal, Node: a} }
func GroupCell(a *Array) Cell  { return Cell{Heart: HeartGroup, Lift: LiftNormal, Node: a} }
func FenceCell(a *Array) Cell  { return Cell{Heart: HeartFence, Lift: LiftNormal, Node: a} }
func MapCell(m *RenMap) Cell   { return Cell{Heart: HeartMap, Lift: LiftNormal, Node: m} }

// --- accessors --------------------------------------------------------------

func (c *Cell) AsInt() int64     { return c.Num }
func (c *Cell) AsDecimal() float64 { return c.Dec }
func (c *Cell) AsChar() rune     { return rune(c.Num) }

func (c *Cell) Symbol() *Symbol {
	sym, _ := c.Node.(*Symbol)
	return sym
}

func (c *Cell) Array() *Array {
	a, _ := c.Node.(*Array)
	return a
}

func (c *Cell) Strand() *Strand {
	s, _ := c.Node.(*Strand)
	return s
}

func (c *Cell) Map() *RenMap {
	m, _ := c.Node.(*RenMap)
	return m
}

func (c *Cell) Binding() *VarList {
	b, _ := c.Aux.(*VarList)
	return b
}

func (c *Cell) SetBinding(ctx *VarList) { c.Aux = ctx }

// --- type discipline --------------------------------------------------------

// HeartOf is the primordial datatype, disregarding quoting and lift.
func HeartOf(c *Cell) Heart { return c.Heart }

// IsElement reports whether the cell may be stored in a list container.
// Antiforms never qualify.
func IsElement(c *Cell) bool { return c.Lift != LiftAntiform }

func IsAntiform(c *Cell) bool { return c.Lift == LiftAntiform }
func IsQuasiform(c *Cell) bool { return c.Lift == LiftQuasi }
func IsQuoted(c *Cell) bool   { return c.Lift == LiftNormal && c.Quotes > 0 }

// plain reports a normal, unquoted, unsigiled cell of the given heart.
func plain(c *Cell, h Heart) bool {
	return c.Heart == h && c.Lift == LiftNormal && c.Quotes == 0 && c.Sigil == SigilNone
}

func IsInteger(c *Cell) bool { return plain(c, HeartInteger) }
func IsDecimal(c *Cell) bool { return plain(c, HeartDecimal) }
func IsChar(c *Cell) bool    { return plain(c, HeartChar) }
func IsText(c *Cell) bool    { return plain(c, HeartText) }
func IsBlob(c *Cell) bool    { return plain(c, HeartBlob) }
func IsBlock(c *Cell) bool   { return plain(c, HeartBlock) }
func IsGroup(c *Cell) bool   { return plain(c, HeartGroup) }
func IsFence(c *Cell) bool   { return plain(c, HeartFence) }
func IsMapCell(c *Cell) bool { return plain(c, HeartMap) }
func IsBlank(c *Cell) bool   { return plain(c, HeartBlank) }
func IsComma(c *Cell) bool   { return plain(c, HeartComma) }
func IsErrorCell(c *Cell) bool { return c.Heart == HeartError }

func IsWord(c *Cell) bool { return plain(c, HeartWord) }

func IsSetWord(c *Cell) bool {
	return c.Heart == HeartWord && c.Lift == LiftNormal && c.Quotes == 0 && c.Sigil == SigilSet
}
func IsGetWord(c *Cell) bool {
	return c.Heart == HeartWord && c.Lift == LiftNormal && c.Quotes == 0 && c.Sigil == SigilGet
}
func IsMetaWord(c *Cell) bool {
	return c.Heart == HeartWord && c.Lift == LiftNormal && c.Quotes == 0 && c.Sigil == SigilMeta
}
func IsTieWord(c *Cell) bool {
	return c.Heart == HeartWord && c.Lift == LiftNormal && c.Quotes == 0 && c.Sigil == SigilTie
}
func IsPinWord(c *Cell) bool {
	return c.Heart == HeartWord && c.Lift == LiftNormal && c.Quotes == 0 && c.Sigil == SigilPin
}

func AnyWord(c *Cell) bool {
	return c.Heart == HeartWord && c.Lift == LiftNormal && c.Quotes == 0
}

func AnyList(c *Cell) bool {
	if c.Lift != LiftNormal || c.Quotes != 0 {
		return false
	}
	switch c.Heart {
	case HeartBlock, HeartGroup, HeartFence:
		return true
	}
	return false
}

func AnySequence(c *Cell) bool {
	if c.Lift != LiftNormal || c.Quotes != 0 {
		return false
	}
	switch c.Heart {
	case HeartPath, HeartTuple, HeartChain:
		return true
	}
	return false
}

func AnyUtf8(c *Cell) bool {
	if c.Lift != LiftNormal || c.Quotes != 0 {
		return false
	}
	switch c.Heart {
	case HeartText, HeartWord:
		return true
	}
	return false
}

func AnyNumber(c *Cell) bool {
	return IsInteger(c) || IsDecimal(c)
}

func AnySeries(c *Cell) bool {
	return AnyList(c) || IsText(c) || IsBlob(c)
}

// TypeOf folds heart, sigil and lift into a display name for errors and
// the console.
func TypeOf(c *Cell) string {
	switch c.Lift {
	case LiftAntiform:
		return "~" + antiformName(c) + "~ antiform"
	case LiftQuasi:
		return "quasi-" + c.Heart.String() + "!"
	}
	if c.Quotes > 0 {
		return "quoted!"
	}
	if c.Heart == HeartWord {
		switch c.Sigil {
		case SigilSet:
			return "set-word!"
		case SigilGet:
			return "get-word!"
		case SigilMeta:
			return "meta-word!"
		case SigilTie:
			return "tie-word!"
		case SigilPin:
			return "pin-word!"
		}
	}
	return c.Heart.String() + "!"
}
