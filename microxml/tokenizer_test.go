package microxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLongestMatch(t *testing.T) {
	tests := []struct {
		mode   mode
		input  string
		want   patternID
		n      int
		groups [2]string
	}{
		{mainMode, "<a>", startTagOpen, 2, [2]string{"a", ""}},
		{mainMode, "<a", dataChar, 1, [2]string{"<", ""}},
		{mainMode, "<a b", dataChar, 1, [2]string{"<", ""}},
		{mainMode, "<a b=", startTagOpen, 2, [2]string{"a", ""}},
		{mainMode, "&amp;x", namedCharRef, 5, [2]string{"amp", ""}},
		{mainMode, "&#x41;", numericCharRef, 6, [2]string{"41", ""}},
		{mainMode, "&#65;", numericCharRef, 5, [2]string{"", "65"}},
		{mainMode, "&#;", dataChar, 1, [2]string{"&", ""}},
		{mainMode, "<!-- x -->y", comment, 10, [2]string{}},
		{mainMode, "<?pi?>", processingInstruction, 6, [2]string{}},
		{mainMode, "<![CDATA[x", cdataOpen, 9, [2]string{}},
		{mainMode, "<!DOCTYPE r>", doctypeOpen, 9, [2]string{}},
		{mainMode, "</a >", endTag, 5, [2]string{"a", ""}},
		{mainMode, "日", dataChar, 1, [2]string{"日", ""}},
		{tagMode, "/>", emptyElementClose, 2, [2]string{}},
		{tagMode, ">", tagClose, 1, [2]string{}},
		{tagMode, " \n\t>", whitespaceRun, 3, [2]string{}},
		{tagMode, "x=", attributeNameEquals, 2, [2]string{"x", ""}},
		{tagMode, "x =", attributeNameEquals, 3, [2]string{"x", ""}},
		{tagMode, "x y", attributeName, 1, [2]string{"x", ""}},
		{tagMode, `"x"`, emptyMatch, 0, [2]string{}},
		{startAttributeValueMode, "'", singleQuote, 1, [2]string{}},
		{startAttributeValueMode, "x", emptyMatch, 0, [2]string{}},
		{unquoteAttributeValueMode, ">", tagClose, 1, [2]string{}},
		{unquoteAttributeValueMode, "/>", emptyElementClose, 2, [2]string{}},
		{unquoteAttributeValueMode, "/x", dataChar, 1, [2]string{"/", ""}},
		{singleQuoteAttributeValueMode, `"`, dataChar, 1, [2]string{`"`, ""}},
		{singleQuoteAttributeValueMode, "'", singleQuote, 1, [2]string{}},
		{doubleQuoteAttributeValueMode, ">", dataChar, 1, [2]string{">", ""}},
		{cdataMode, "]]>", cdataClose, 3, [2]string{}},
		{cdataMode, "]]", dataChar, 1, [2]string{"]", ""}},
		{doctypeMode, "[", subsetOpen, 1, [2]string{}},
		{doctypeMode, `"a>b"`, quotedLiteral, 5, [2]string{}},
		{subsetMode, "<!ENTITY x 'y>'>", declaration, 16, [2]string{}},
		{subsetMode, "<!-- ]> -->", comment, 11, [2]string{}},
		{subsetMode, "] >", subsetClose, 3, [2]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.input, func(t *testing.T) {
			r, m := longestMatch(modes[tt.mode], []rune(tt.input), 0, nil)
			require.NotNil(t, r)
			require.Equal(t, tt.want, r.pat.id, "got %s", r.pat.id)
			require.Equal(t, tt.n, m.n)
			if tt.groups != ([2]string{}) {
				require.Equal(t, tt.groups, m.groups)
			}
		})
	}
}

func TestLongestMatch_TieBreak(t *testing.T) {
	t.Run("dataChar never wins a tie", func(t *testing.T) {
		rules := []rule{on(tagClose, ignore), on(dataChar, appendText)}
		r, _ := longestMatch(rules, []rune(">"), 0, nil)
		require.Equal(t, tagClose, r.pat.id)
	})

	t.Run("later rule wins a tie", func(t *testing.T) {
		rules := []rule{on(tagClose, to(tagMode)), on(tagClose, to(cdataMode))}
		r, _ := longestMatch(rules, []rune(">"), 0, nil)
		require.Same(t, &rules[1], r)
	})

	t.Run("longer match wins regardless of order", func(t *testing.T) {
		rules := []rule{on(attributeNameEquals, ignore), on(attributeName, ignore)}
		r, m := longestMatch(rules, []rune("abc=1"), 0, nil)
		require.Equal(t, attributeNameEquals, r.pat.id)
		require.Equal(t, 4, m.n)
	})

	t.Run("no match", func(t *testing.T) {
		r, _ := longestMatch([]rule{on(tagClose, ignore)}, []rune("x"), 0, nil)
		require.Nil(t, r)
	})
}

func TestStartTagContext(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"<a>", true},
		{"<a/>", true},
		{"<a >", true},
		{"<a\n>", true},
		{"<a x>", true},
		{"<a x='1'>", true},
		{`<a x="1" y>`, true},
		{`<a x="1" y/>`, true},
		{"<a x=", true},
		{"<a x = 1", true},
		{"<a and b>", true},
		{"<a", false},
		{"<a ", false},
		{"<a x", false},
		{"<a x y", false},
		{"<a#>", false},
		{"< a>", false},
		{"<1a>", false},
		{"<a/", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, ok := patterns[startTagOpen].match([]rune(tt.input))
			require.Equal(t, tt.want, ok)
		})
	}
}

// Every mode must make progress on any input: some rule matches, and a rule
// that consumes nothing moves to another mode.
func TestModes_AlwaysProgress(t *testing.T) {
	var inputs []string
	for c := rune(0); c < 0x80; c++ {
		inputs = append(inputs, string(c))
	}
	inputs = append(inputs, "é", "日", "😀", "\uFFFD")

	for m := mode(0); m < numModes; m++ {
		for _, in := range inputs {
			r, tm := longestMatch(modes[m], []rune(in), 0, nil)
			require.NotNil(t, r, "mode %s has no rule for %q", m, in)
			if tm.n == 0 {
				b := newBuilder(entityTable{})
				b.startTagOpen("x")
				next := r.act(m, b, tm.groups[0], tm.groups[1])
				require.NotEqual(t, m, next, "mode %s loops on %q", m, in)
			}
		}
	}
}

func catchInternalError(f func()) (ie *InternalError) {
	defer func() {
		if r := recover(); r != nil {
			ie, _ = r.(*InternalError)
		}
	}()
	f()
	return nil
}

func TestTokenizer_InternalError(t *testing.T) {
	tests := []struct {
		name  string
		rules []rule
		msg   string
	}{
		{"no rule matched", []rule{on(whitespaceRun, ignore)}, "no rule matched"},
		{"no progress", []rule{on(emptyMatch, ignore)}, "rule empty made no progress"},
		{"undefined mode", []rule{on(dataChar, to(numModes))}, "rule dataChar moved to an undefined mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var table [numModes][]rule
			table[mainMode] = tt.rules
			tok := newTokenizer("x", newBuilder(entityTable{}))
			tok.table = &table

			ie := catchInternalError(tok.run)
			require.NotNil(t, ie)
			require.Equal(t, "Main", ie.Mode)
			require.Equal(t, tt.msg, ie.Msg)
			require.Contains(t, ie.Error(), "internal error in mode Main at 1:1")
		})
	}
}

func TestTokenizer_EOF(t *testing.T) {
	b := newBuilder(entityTable{})
	tok := newTokenizer(`<a x="1`, b)
	tok.run()
	require.Equal(t, mainMode, tok.mode)

	doc := b.end()
	v, ok := doc.Attr.Get("x")
	require.True(t, ok)
	require.Equal(t, "1", v)
	require.Len(t, b.errs, 2)
	require.ErrorIs(t, b.errs[0], ErrUnterminatedTag)
	require.ErrorIs(t, b.errs[1], ErrUnclosedElement)
}

func TestSpan_Advance(t *testing.T) {
	s := Span{Line: 1, Column: 1}
	s = s.advance([]rune("ab\nцд"))
	require.Equal(t, Span{Offset: 7, Line: 2, Column: 3}, s)
	require.Equal(t, "2:3", s.String())
}

func TestModeAndPatternNames(t *testing.T) {
	for m := mode(0); m < numModes; m++ {
		require.NotEqual(t, "invalid", m.String())
	}
	require.Equal(t, "invalid", numModes.String())
	for id := patternID(0); id < numPatterns; id++ {
		require.Equal(t, id, patterns[id].id)
		require.NotEqual(t, "invalid", id.String())
	}
	require.Equal(t, "invalid", numPatterns.String())
}

func TestCloseIndex(t *testing.T) {
	in := []rune("<!-- a --> <!-- b")
	var ci closeIndex

	require.True(t, ci.possible(comment, in, 0))
	require.True(t, ci.possible(comment, in, 3))
	require.Equal(t, 7, ci.at[comment])

	require.False(t, ci.possible(comment, in, 11))
	require.Equal(t, -1, ci.at[comment])
	require.False(t, ci.possible(comment, in, 15))

	require.False(t, ci.possible(processingInstruction, in, 1))
	require.True(t, ci.possible(dataChar, in, 11))

	var none *closeIndex
	require.True(t, none.possible(comment, in, 11))
}

func TestIndexRunes(t *testing.T) {
	in := []rune("日?>x?>")
	require.Equal(t, 1, indexRunes(in, 0, []rune("?>")))
	require.Equal(t, 4, indexRunes(in, 2, []rune("?>")))
	require.Equal(t, -1, indexRunes(in, 5, []rune("?>")))
	require.Equal(t, -1, indexRunes(in, 0, []rune("-->")))
}
