package runtime

import (
	"unicode/utf8"

	"github.com/renlang/ren/internal/config"
)

// A Strand is a byte Flex guaranteed to hold valid UTF-8 with no interior
// NUL, plus a codepoint count and one bookmark caching a recent
// (codepoint index → byte offset) pair. Binaries share the type under
// FlavorBinary and skip the UTF-8 rules; a strand aliased as a blob keeps
// FlavorStrand and so keeps enforcing them on edits.

type Bookmark struct {
	Index  int // codepoint index
	Offset int // byte offset of that codepoint
}

type Strand struct {
	Stub
	Bytes  []byte
	Length int // codepoints; -1 and unused for binaries
	book   *Bookmark
}

func (rt *Runtime) NewStrand(s string) *Strand {
	st := &Strand{Bytes: []byte(s), Length: utf8.RuneCountInString(s)}
	st.stampFlavor(FlavorStrand)
	return st
}

func (rt *Runtime) NewBinary(b []byte) *Strand {
	st := &Strand{Bytes: append([]byte(nil), b...), Length: -1}
	st.stampFlavor(FlavorBinary)
	return st
}

func (s *Strand) IsStrand() bool { return s.Flavor() == FlavorStrand }

func (s *Strand) String() string { return string(s.Bytes) }

// Len is the codepoint count for strands, the byte count for binaries.
func (s *Strand) Len() int {
	if s.IsStrand() {
		return s.Length
	}
	return len(s.Bytes)
}

func (s *Strand) mutable() *ErrorStub {
	if s.IsFrozen() {
		return &ErrorStub{ID: "protected", Message: "series is frozen"}
	}
	if s.IsDiminished() {
		return &ErrorStub{ID: "bad-value", Message: "series is inaccessible"}
	}
	return nil
}

// ByteOffset maps a codepoint index to its byte offset, using the bookmark
// when the request falls near it and otherwise walking from whichever of
// head, tail or bookmark is closest. Long traversals move the bookmark.
func (s *Strand) ByteOffset(index int) int {
	if index <= 0 {
		return 0
	}
	if index >= s.Length {
		return len(s.Bytes)
	}

	// Pick the nearest anchor.
	fromIdx, fromOff := 0, 0
	distance := index
	if tail := s.Length - index; tail < distance {
		fromIdx, fromOff = s.Length, len(s.Bytes)
		distance = tail
	}
	if s.book != nil {
		d := s.book.Index - index
		if d < 0 {
			d = -d
		}
		if d < distance {
			fromIdx, fromOff = s.book.Index, s.book.Offset
			distance = d
		}
	}

	off := fromOff
	i := fromIdx
	for i < index {
		_, size := utf8.DecodeRune(s.Bytes[off:])
		off += size
		i++
	}
	for i > index {
		_, size := utf8.DecodeLastRune(s.Bytes[:off])
		off -= size
		i--
	}

	if distance >= config.BookmarkThreshold {
		s.book = &Bookmark{Index: index, Offset: off}
	}
	return off
}

// adjustBookmark keeps the cache coherent after an edit at codepoint index
// cpAt with a known codepoint delta cpDelta and byte delta byteDelta. An
// edit with unknown shape passes exact=false, which resets any bookmark at
// or past the edit point rather than shifting it.
func (s *Strand) adjustBookmark(cpAt, cpDelta, byteDelta int, exact bool) {
	if s.book == nil {
		return
	}
	if s.book.Index < cpAt {
		return // strictly before the edit: offsets unaffected
	}
	if !exact {
		s.book = &Bookmark{Index: cpAt, Offset: s.ByteOffsetRaw(cpAt)}
		return
	}
	s.book.Index += cpDelta
	s.book.Offset += byteDelta
	if s.book.Index < cpAt {
		s.book = nil
	}
}

// ByteOffsetRaw walks from the head without consulting or moving the
// bookmark; used while the bookmark itself is being repaired.
func (s *Strand) ByteOffsetRaw(index int) int {
	off := 0
	for i := 0; i < index && off < len(s.Bytes); i++ {
		_, size := utf8.DecodeRune(s.Bytes[off:])
		off += size
	}
	return off
}

// InsertText splices a string at codepoint index, maintaining length and
// bookmark coherence.
func (s *Strand) InsertText(index int, text string) *ErrorStub {
	if err := s.mutable(); err != nil {
		return err
	}
	if !s.IsStrand() {
		s.Bytes = insertBytes(s.Bytes, index, []byte(text))
		return nil
	}
	for _, b := range []byte(text) {
		if b == 0 {
			return &ErrorStub{ID: "illegal-zero-byte", Message: "strand cannot hold a zero byte"}
		}
	}
	off := s.ByteOffset(index)
	s.Bytes = insertBytes(s.Bytes, off, []byte(text))
	cpDelta := utf8.RuneCountInString(text)
	s.Length += cpDelta
	s.adjustBookmark(index, cpDelta, len(text), true)
	return nil
}

// RemoveRange deletes span codepoints starting at index.
func (s *Strand) RemoveRange(index, span int) *ErrorStub {
	if err := s.mutable(); err != nil {
		return err
	}
	if !s.IsStrand() {
		end := index + span
		if end > len(s.Bytes) {
			end = len(s.Bytes)
		}
		s.Bytes = append(s.Bytes[:index], s.Bytes[end:]...)
		return nil
	}
	if index >= s.Length {
		return nil
	}
	if index+span > s.Length {
		span = s.Length - index
	}
	start := s.ByteOffset(index)
	end := s.ByteOffset(index + span)
	byteDelta := end - start
	s.Bytes = append(s.Bytes[:start], s.Bytes[end:]...)
	s.Length -= span
	s.adjustBookmark(index, -span, -byteDelta, true)
	return nil
}

// ChangeRange overwrites span codepoints at index with text. The shape of
// the change is arbitrary, so the bookmark is reset to the change point.
func (s *Strand) ChangeRange(index, span int, text string) *ErrorStub {
	if err := s.mutable(); err != nil {
		return err
	}
	if !s.IsStrand() {
		end := index + span
		if end > len(s.Bytes) {
			end = len(s.Bytes)
		}
		out := make([]byte, 0, len(s.Bytes)-(end-index)+len(text))
		out = append(out, s.Bytes[:index]...)
		out = append(out, text...)
		out = append(out, s.Bytes[end:]...)
		s.Bytes = out
		return nil
	}
	for _, b := range []byte(text) {
		if b == 0 {
			return &ErrorStub{ID: "illegal-zero-byte", Message: "strand cannot hold a zero byte"}
		}
	}
	if index > s.Length {
		index = s.Length
	}
	if index+span > s.Length {
		span = s.Length - index
	}
	start := s.ByteOffset(index)
	end := s.ByteOffset(index + span)
	out := make([]byte, 0, len(s.Bytes)-(end-start)+len(text))
	out = append(out, s.Bytes[:start]...)
	out = append(out, text...)
	out = append(out, s.Bytes[end:]...)
	s.Bytes = out
	s.Length += utf8.RuneCountInString(text) - span
	s.adjustBookmark(index, 0, 0, false)
	return nil
}

// EditBytes performs a byte-level change on a blob view. When the
// underlying flex is a strand alias, the edit must keep the payload valid
// UTF-8 and zero-free.
func (s *Strand) EditBytes(byteIndex, byteSpan int, repl []byte) *ErrorStub {
	if err := s.mutable(); err != nil {
		return err
	}
	if byteIndex > len(s.Bytes) {
		byteIndex = len(s.Bytes)
	}
	if byteIndex+byteSpan > len(s.Bytes) {
		byteSpan = len(s.Bytes) - byteIndex
	}
	out := make([]byte, 0, len(s.Bytes)-byteSpan+len(repl))
	out = append(out, s.Bytes[:byteIndex]...)
	out = append(out, repl...)
	out = append(out, s.Bytes[byteIndex+byteSpan:]...)

	if s.IsStrand() {
		for _, b := range repl {
			if b == 0 {
				return &ErrorStub{ID: "illegal-zero-byte", Message: "strand cannot hold a zero byte"}
			}
		}
		if !utf8.Valid(out) {
			return &ErrorStub{ID: "bad-utf8-bin-edit", Message: "edit would corrupt UTF-8 in aliased strand"}
		}
		s.Bytes = out
		s.Length = utf8.RuneCount(out)
		s.book = nil
		return nil
	}
	s.Bytes = out
	return nil
}

// RuneAt returns the codepoint at index.
func (s *Strand) RuneAt(index int) rune {
	off := s.ByteOffset(index)
	r, _ := utf8.DecodeRune(s.Bytes[off:])
	return r
}

// Substring extracts [index, index+span) as a Go string.
func (s *Strand) Substring(index, span int) string {
	if index >= s.Length {
		return ""
	}
	if index+span > s.Length {
		span = s.Length - index
	}
	return string(s.Bytes[s.ByteOffset(index):s.ByteOffset(index+span)])
}

func insertBytes(dst []byte, at int, src []byte) []byte {
	if at > len(dst) {
		at = len(dst)
	}
	out := make([]byte, 0, len(dst)+len(src))
	out = append(out, dst[:at]...)
	out = append(out, src...)
	out = append(out, dst[at:]...)
	return out
}
