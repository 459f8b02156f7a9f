// Package microxml implements a recovering parser for MicroXML, a subset of
// XML with elements, attributes and character references. Comments,
// processing instructions and DOCTYPE declarations are recognized and
// dropped.
//
// The parser never rejects input. Markup that a strict parser would refuse
// is repaired: unknown entities are kept as text, unmatched end tags are
// ignored, unterminated tags are closed, and malformed attributes fall back
// to the most permissive reading. Every string produces a tree.
package microxml

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const byteOrderMark = "\uFEFF"

// Parser parses MicroXML with an optional extended entity table. The zero
// value is ready to use. A Parser is safe for concurrent use as long as
// Entities is not modified.
type Parser struct {
	// Entities extends the predefined entities (lt, gt, amp, quot, apos).
	// Entries named like a predefined entity are ignored.
	Entities map[string]string
}

// Parse returns the tree for text. The tree is always usable. The error,
// when not nil, joins one *RecoveryError per repair that was applied; use
// Diagnostics to unpack it.
func (p *Parser) Parse(text string) (*Node, error) {
	b := newBuilder(entityTable{extra: p.Entities})
	t := newTokenizer(normalize(text), b)
	t.run()
	doc := b.end()
	return doc, errors.Join(b.errs...)
}

// Parse returns the tree for text, discarding diagnostics.
func Parse(text string) *Node {
	var p Parser
	doc, _ := p.Parse(text)
	return doc
}

// ParseReader reads r to the end and parses it. The returned error is only
// ever a read error; recoveries are not reported.
func ParseReader(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return Parse(string(data)), nil
}

// normalize strips a leading byte order mark and turns CRLF and lone CR into
// LF.
func normalize(text string) string {
	text = strings.TrimPrefix(text, byteOrderMark)
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Normalize returns text as the tokenizer sees it. Diagnostic spans refer to
// offsets in this string.
func Normalize(text string) string {
	return normalize(text)
}
