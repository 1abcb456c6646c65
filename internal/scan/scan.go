// Package scan turns source text into managed arrays of cells. The
// evaluator never sees text; it consumes the arrays produced here as
// feeds. Line numbers ride on the arrays and newline-before flags on the
// cells, so errors and molding can reproduce source shape.
package scan

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/renlang/ren/internal/runtime"
)

type scanner struct {
	rt   *runtime.Runtime
	src  string
	pos  int
	line int
	file string

	pendingNewline bool
	inTuple        bool // suppress decimal points while scanning tuple atoms
}

// Transcode scans a whole script into a block-storage array.
func Transcode(rt *runtime.Runtime, file, src string) (*runtime.Array, *runtime.ErrorStub) {
	s := &scanner{rt: rt, src: src, line: 1, file: file}
	a, err := s.scanInto(0)
	if err != nil {
		return nil, err
	}
	a.File = file
	a.Line = 1
	return a, nil
}

func (s *scanner) errf(format string, args ...interface{}) *runtime.ErrorStub {
	e := s.rt.NewError("bad-value", fmt.Sprintf(format, args...))
	e.File = s.file
	e.Line = s.line
	return e
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

// skipBlank consumes whitespace and comments, noting newlines for the
// next cell's newline-before flag.
func (s *scanner) skipBlank() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\n':
			s.line++
			s.pendingNewline = true
			s.pos++
		case c == ' ' || c == '\t' || c == '\r':
			s.pos++
		case c == ';':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

// scanInto reads cells until the closing delimiter (0 for EOF).
func (s *scanner) scanInto(closer byte) (*runtime.Array, *runtime.ErrorStub) {
	a := s.rt.NewArray(8)
	a.File = s.file
	a.Line = s.line
	for {
		s.skipBlank()
		if s.pos >= len(s.src) {
			if closer != 0 {
				return nil, s.errf("missing %q", string(closer))
			}
			if s.pendingNewline {
				a.SetNewlineAtTail(true)
				s.pendingNewline = false
			}
			return a, nil
		}
		if s.peek() == closer {
			s.pos++
			if s.pendingNewline {
				a.SetNewlineAtTail(true)
				s.pendingNewline = false
			}
			return a, nil
		}
		if c := s.peek(); c == ']' || c == ')' || c == '}' {
			return nil, s.errf("unexpected %q", string(c))
		}

		cell, err := s.scanValue()
		if err != nil {
			return nil, err
		}
		if s.pendingNewline {
			cell.Flags |= runtime.CellNewlineBefore
			s.pendingNewline = false
		}
		if err2 := a.AppendCell(cell); err2 != nil {
			return nil, err2
		}
	}
}

// scanValue reads one element, including any sequence it heads.
func (s *scanner) scanValue() (runtime.Cell, *runtime.ErrorStub) {
	c := s.peek()

	switch c {
	case ',':
		s.pos++
		return runtime.CommaCell(), nil

	case '\'':
		quotes := 0
		for s.peek() == '\'' {
			quotes++
			s.pos++
		}
		inner, err := s.scanValue()
		if err != nil {
			return runtime.Cell{}, err
		}
		inner.Quotes += uint8(quotes)
		return inner, nil

	case '~':
		return s.scanQuasi()

	case '[':
		s.pos++
		a, err := s.scanInto(']')
		if err != nil {
			return runtime.Cell{}, err
		}
		return s.maybeSequence(runtime.BlockCell(a))

	case '(':
		s.pos++
		a, err := s.scanInto(')')
		if err != nil {
			return runtime.Cell{}, err
		}
		return s.maybeSequence(runtime.GroupCell(a))

	case '{':
		s.pos++
		a, err := s.scanInto('}')
		if err != nil {
			return runtime.Cell{}, err
		}
		return runtime.FenceCell(a), nil

	case '"':
		return s.scanString()

	case '#':
		if s.peekAt(1) == '"' {
			return s.scanChar()
		}
		if s.peekAt(1) == '{' {
			return s.scanBlob()
		}

	case ':':
		// :word or :sequence — get sigil
		s.pos++
		cell, err := s.scanValue()
		if err != nil {
			return runtime.Cell{}, err
		}
		cell.Sigil = runtime.SigilGet
		return cell, nil

	case '^':
		s.pos++
		cell, err := s.scanValue()
		if err != nil {
			return runtime.Cell{}, err
		}
		cell.Sigil = runtime.SigilMeta
		return cell, nil

	case '$':
		s.pos++
		cell, err := s.scanValue()
		if err != nil {
			return runtime.Cell{}, err
		}
		cell.Sigil = runtime.SigilTie
		return cell, nil

	case '@':
		s.pos++
		cell, err := s.scanValue()
		if err != nil {
			return runtime.Cell{}, err
		}
		cell.Sigil = runtime.SigilPin
		return cell, nil

	case '/':
		if !isWordChar(s.peekAt(1)) {
			break // a lone / is the division word, read by scanAtom
		}
		// leading-blank path: /word
		s.pos++
		atom, err := s.scanAtom()
		if err != nil {
			return runtime.Cell{}, err
		}
		seq, err := s.rt.MakeSequence(runtime.HeartPath, []runtime.Cell{atom}, true, false)
		return seq, err
	}

	atom, err := s.scanAtom()
	if err != nil {
		return runtime.Cell{}, err
	}
	return s.maybeSequence(atom)
}

// maybeSequence extends an atom into a path/tuple/chain when a separator
// follows without intervening space; a trailing separator sets the
// trailing-blank flag (f/ fetches without invoking, x: assigns).
func (s *scanner) maybeSequence(head runtime.Cell) (runtime.Cell, *runtime.ErrorStub) {
	sep := s.peek()
	if sep != '/' && sep != '.' && sep != ':' {
		return head, nil
	}
	// 1.2-style decimals were consumed by scanAtom already, so a '.' here
	// really is a tuple separator.
	heart := runtime.HeartPath
	switch sep {
	case '.':
		heart = runtime.HeartTuple
	case ':':
		heart = runtime.HeartChain
	}

	cells := []runtime.Cell{head}
	trailing := false
	if heart == runtime.HeartTuple {
		s.inTuple = true
	}
	for s.peek() == sep {
		s.pos++
		if s.atTokenEnd() {
			trailing = true
			break
		}
		atom, err := s.scanAtom()
		if err != nil {
			s.inTuple = false
			return runtime.Cell{}, err
		}
		cells = append(cells, atom)
	}
	s.inTuple = false

	// word: with a single element is a set-word, not a chain
	if heart == runtime.HeartChain && trailing && len(cells) == 1 {
		cells[0].Sigil = runtime.SigilSet
		return cells[0], nil
	}
	// likewise m.a: is a set-tuple
	if s.peek() == ':' && heart == runtime.HeartTuple {
		s.pos++
		seq, err := s.rt.MakeSequence(heart, cells, false, trailing)
		if err != nil {
			return runtime.Cell{}, err
		}
		seq.Sigil = runtime.SigilSet
		return seq, nil
	}

	return s.rt.MakeSequence(heart, cells, false, trailing)
}

func (s *scanner) atTokenEnd() bool {
	c := s.peek()
	return c == 0 || c == ' ' || c == '\t' || c == '\n' || c == '\r' ||
		c == ']' || c == ')' || c == '}' || c == ',' || c == ';'
}

func isWordChar(c byte) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '-', '+', '*', '=', '<', '>', '?', '!', '&', '_', '|', '%', '\'':
		return true
	}
	return c >= utf8.RuneSelf
}

// scanAtom reads a bare token: number, word, blank, or nested group used
// as a sequence element.
func (s *scanner) scanAtom() (runtime.Cell, *runtime.ErrorStub) {
	c := s.peek()

	if c == '(' {
		s.pos++
		a, err := s.scanInto(')')
		if err != nil {
			return runtime.Cell{}, err
		}
		return runtime.GroupCell(a), nil
	}

	if c == '_' && !isWordChar(s.peekAt(1)) {
		s.pos++
		return runtime.BlankCell(), nil
	}

	// numbers (with optional sign and decimal point)
	if c >= '0' && c <= '9' ||
		(c == '-' || c == '+') && s.peekAt(1) >= '0' && s.peekAt(1) <= '9' {
		return s.scanNumber()
	}

	if c == '/' && !isWordChar(s.peekAt(1)) {
		// the division word
		s.pos++
		return runtime.WordCell(s.rt.Intern("/")), nil
	}

	if !isWordChar(c) {
		return runtime.Cell{}, s.errf("unexpected character %q", string(c))
	}

	start := s.pos
	for s.pos < len(s.src) && isWordChar(s.src[s.pos]) {
		s.pos++
	}
	text := s.src[start:s.pos]

	// trailing ':' with whitespace after means set-word; handled by
	// maybeSequence to disambiguate chains
	return runtime.WordCell(s.rt.Intern(text)), nil
}

func (s *scanner) scanNumber() (runtime.Cell, *runtime.ErrorStub) {
	start := s.pos
	if c := s.peek(); c == '-' || c == '+' {
		s.pos++
	}
	sawDot := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c >= '0' && c <= '9' {
			s.pos++
			continue
		}
		if c == '.' && !sawDot && !s.inTuple && s.peekAt(1) >= '0' && s.peekAt(1) <= '9' {
			// one dot makes a decimal; a second one is a tuple separator,
			// which maybeSequence picks up after we stop here
			sawDot = true
			s.pos++
			continue
		}
		break
	}
	text := s.src[start:s.pos]
	if sawDot {
		// 1.2.3 came through as "1.2" + ".3"; back off the fraction and
		// let the tuple machinery have it when another dot follows
		if s.peek() == '.' {
			dot := strings.IndexByte(text, '.')
			s.pos = start + dot
			text = text[:dot]
			sawDot = false
		}
	}
	if sawDot {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return runtime.Cell{}, s.errf("bad decimal %q", text)
		}
		return runtime.DecimalCell(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return runtime.Cell{}, s.errf("bad integer %q", text)
	}
	return runtime.IntCell(n), nil
}

func (s *scanner) scanString() (runtime.Cell, *runtime.ErrorStub) {
	start := s.pos
	s.pos++ // opening quote
	var sb strings.Builder
	for {
		if s.pos >= len(s.src) {
			return runtime.Cell{}, s.errf("unterminated string")
		}
		c := s.src[s.pos]
		if c == '"' {
			s.pos++
			return runtime.TextCell(s.rt.NewStrand(sb.String())), nil
		}
		if c == '\\' {
			// the molder emits Go-style escapes; accept them back
			quoted := s.src[start:]
			if dec, rest, err := decodeEscaped(quoted); err == nil {
				s.pos = start + len(quoted) - len(rest)
				return runtime.TextCell(s.rt.NewStrand(dec)), nil
			}
			return runtime.Cell{}, s.errf("bad string escape")
		}
		if c == '\n' {
			s.line++
		}
		sb.WriteByte(c)
		s.pos++
	}
}

// decodeEscaped unquotes a leading Go-quoted string, returning the value
// and the remaining source.
func decodeEscaped(src string) (string, string, error) {
	val, err := strconv.QuotedPrefix(src)
	if err != nil {
		return "", "", err
	}
	dec, err := strconv.Unquote(val)
	if err != nil {
		return "", "", err
	}
	return dec, src[len(val):], nil
}

func (s *scanner) scanChar() (runtime.Cell, *runtime.ErrorStub) {
	s.pos += 2 // #"
	if s.pos >= len(s.src) {
		return runtime.Cell{}, s.errf("unterminated char")
	}
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	if r == utf8.RuneError && size <= 1 {
		return runtime.Cell{}, s.errf("bad char literal")
	}
	s.pos += size
	if s.peek() != '"' {
		return runtime.Cell{}, s.errf("unterminated char")
	}
	s.pos++
	return runtime.CharCell(r), nil
}

func (s *scanner) scanBlob() (runtime.Cell, *runtime.ErrorStub) {
	s.pos += 2 // #{
	var out []byte
	for {
		if s.pos >= len(s.src) {
			return runtime.Cell{}, s.errf("unterminated blob")
		}
		c := s.src[s.pos]
		if c == '}' {
			s.pos++
			return runtime.BlobCell(s.rt.NewBinary(out)), nil
		}
		if c == ' ' || c == '\t' || c == '\n' {
			if c == '\n' {
				s.line++
			}
			s.pos++
			continue
		}
		hi := hexVal(c)
		lo := hexVal(s.peekAt(1))
		if hi < 0 || lo < 0 {
			return runtime.Cell{}, s.errf("bad blob digit %q", string(c))
		}
		out = append(out, byte(hi<<4|lo))
		s.pos += 2
	}
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func (s *scanner) scanQuasi() (runtime.Cell, *runtime.ErrorStub) {
	s.pos++ // ~
	if s.atTokenEnd() {
		// bare ~ is the trash literal (quasi blank)
		c := runtime.BlankCell()
		c.Lift = runtime.LiftQuasi
		return c, nil
	}
	if s.peek() == ',' {
		s.pos++
		if s.peek() != '~' {
			return runtime.Cell{}, s.errf("bad quasiform")
		}
		s.pos++
		c := runtime.CommaCell()
		c.Lift = runtime.LiftQuasi
		return c, nil
	}
	start := s.pos
	for s.pos < len(s.src) && isWordChar(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start || s.peek() != '~' {
		return runtime.Cell{}, s.errf("bad quasiform")
	}
	text := s.src[start:s.pos]
	s.pos++ // closing ~
	c := runtime.WordCell(s.rt.Intern(text))
	c.Lift = runtime.LiftQuasi
	return c, nil
}
