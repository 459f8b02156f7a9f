package microxml

// A tokenizer scans the input with the rules of its current mode and feeds
// the builder. It owns all per-parse scanning state.
type tokenizer struct {
	in    []rune
	pos   int
	span  Span
	mode  mode
	b     *builder
	table *[numModes][]rule
	// closes tracks the terminators of patterns that scan ahead.
	closes closeIndex
}

func newTokenizer(text string, b *builder) *tokenizer {
	return &tokenizer{
		in:    []rune(text),
		span:  Span{Line: 1, Column: 1},
		mode:  mainMode,
		b:     b,
		table: &modes,
	}
}

func (t *tokenizer) next() (*rule, tokenMatch) {
	return longestMatch(t.table[t.mode], t.in, t.pos, &t.closes)
}

// longestMatch selects the rule with the longest match against in[pos:]. On
// equal lengths the later rule wins, unless it is dataChar: single characters
// are the fallback of every mode. Rules that ci knows cannot match are not
// tried; ci may be nil.
func longestMatch(rules []rule, in []rune, pos int, ci *closeIndex) (*rule, tokenMatch) {
	var (
		best  *rule
		bestM tokenMatch
	)
	rest := in[pos:]
	for i := range rules {
		r := &rules[i]
		if !ci.possible(r.pat.id, in, pos) {
			continue
		}
		m, ok := r.pat.match(rest)
		if !ok {
			continue
		}
		if best == nil || m.n > bestM.n || (m.n == bestM.n && r.pat.id != dataChar) {
			best, bestM = r, m
		}
	}
	return best, bestM
}

func (t *tokenizer) run() {
	for t.pos < len(t.in) {
		r, m := t.next()
		if r == nil {
			panic(&InternalError{Mode: t.mode.String(), Span: t.span, Msg: "no rule matched"})
		}

		consumed := t.in[t.pos : t.pos+m.n]
		t.b.span = t.span
		t.b.span.Length = len(string(consumed))
		t.pos += m.n
		t.span = t.span.advance(consumed)

		prev := t.mode
		t.mode = r.act(t.mode, t.b, m.groups[0], m.groups[1])
		if t.mode < 0 || t.mode >= numModes {
			panic(&InternalError{Mode: prev.String(), Span: t.b.span, Msg: "rule " + r.pat.name + " moved to an undefined mode"})
		}
		if m.n == 0 && t.mode == prev {
			panic(&InternalError{Mode: prev.String(), Span: t.b.span, Msg: "rule " + r.pat.name + " made no progress"})
		}
	}
	t.eof()
}

// eof closes whatever construct the input ended in.
func (t *tokenizer) eof() {
	t.b.span = t.span
	switch {
	case t.mode.inTag():
		t.b.report(ErrUnterminatedTag, t.b.top().Data)
		t.b.startTagClose()
	case t.mode == cdataMode, t.mode == doctypeMode, t.mode == subsetMode:
		t.b.report(ErrUnterminatedSection, t.mode.String())
	}
	t.mode = mainMode
}

// closers are the terminators of the patterns that run ahead until a closing
// delimiter. Without a terminator in the rest of the input such a pattern
// cannot match.
var closers = [numPatterns][]rune{
	comment:               []rune("-->"),
	processingInstruction: []rune("?>"),
	declaration:           []rune(">"),
}

// closeIndex remembers, per pattern, the position of the next terminator
// found by the last search, or -1 once no terminator is left. Positions only
// grow during a parse, so a missing terminator stays missing and each search
// starts past the previous hit. The zero value is ready to use.
type closeIndex struct {
	at [numPatterns]int
}

// possible reports whether pattern id may match at pos.
func (ci *closeIndex) possible(id patternID, in []rune, pos int) bool {
	c := closers[id]
	if ci == nil || c == nil {
		return true
	}
	switch at := ci.at[id]; {
	case at == -1:
		return false
	case at >= pos:
		return true
	}
	ci.at[id] = indexRunes(in, pos, c)
	return ci.at[id] != -1
}

// indexRunes returns the index of the first occurrence of sub in in at or
// after from, or -1.
func indexRunes(in []rune, from int, sub []rune) int {
	for i := from; i+len(sub) <= len(in); i++ {
		j := 0
		for j < len(sub) && in[i+j] == sub[j] {
			j++
		}
		if j == len(sub) {
			return i
		}
	}
	return -1
}
