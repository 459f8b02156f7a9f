package microxml

import (
	"fmt"
	"unicode/utf8"
)

// Span represents a source location in the normalized input.
type Span struct {
	Offset int // Byte offset in the input
	Line   int // 1-based line number
	Column int // 1-based column number (in runes, not bytes)
	Length int // Length in bytes
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// advance returns the position following the text s starting at the
// position of span.
func (s Span) advance(text []rune) Span {
	next := s
	for _, r := range text {
		next.Offset += utf8.RuneLen(r)
		if r == '\n' {
			next.Line++
			next.Column = 1
		} else {
			next.Column++
		}
	}
	next.Length = 0
	return next
}
