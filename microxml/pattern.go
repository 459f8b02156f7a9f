package microxml

import (
	"github.com/dlclark/regexp2"
)

// patternID names a lexical rule of the pattern table.
type patternID int

const (
	dataChar patternID = iota
	namedCharRef
	numericCharRef
	startTagOpen
	attributeName
	attributeNameEquals
	tagClose
	emptyElementClose
	endTag
	singleQuote
	doubleQuote
	whitespaceRun
	comment
	processingInstruction
	cdataOpen
	cdataClose
	doctypeOpen
	quotedLiteral
	declaration
	subsetOpen
	subsetClose
	emptyMatch
	numPatterns
)

const whitespace = " \t\n"

// Name grammar. The ranges follow the NameStartChar and NameChar productions
// of XML 1.0, fifth edition. The strings are interpreted Go literals so the
// non-ASCII bounds reach the regexp engine as literal characters.
const (
	nameStartChars = "A-Za-z_:" +
		"\u00C0-\u00D6\u00D8-\u00F6\u00F8-\u02FF\u0370-\u037D\u037F-\u1FFF" +
		"\u200C-\u200D\u2070-\u218F\u2C00-\u2FEF\u3001-\uD7FF\uF900-\uFDCF" +
		"\uFDF0-\uFFFD\U00010000-\U000EFFFF"
	nameChars = nameStartChars + `\-.0-9` + "\u00B7\u0300-\u036F\u203F-\u2040"

	reName = `[` + nameStartChars + `][` + nameChars + `]*`
	// reAtomicName never gives back characters once matched, which keeps the
	// tag-context lookahead linear on long runs of words.
	reAtomicName = `(?>` + reName + `)`
	reS          = `[ \t\n]`

	reQuoted = `(?:"[^"<]*"|'[^'<]*')`

	// A start tag opening is accepted only when the rest of the input looks
	// like a tag body: attributes, then a tag close, an empty-element close or
	// the start of another attribute assignment.
	reTagContext = `(?=` +
		`(?:` + reS + `+` + reAtomicName + `(?:` + reS + `*=` + reS + `*` + reQuoted + `)?)*` +
		`(?:` + reS + `*/?>|` + reS + `+` + reAtomicName + reS + `*=)` +
		`)`
)

type pattern struct {
	id   patternID
	name string
	re   *regexp2.Regexp
}

// tokenMatch is a successful match of a pattern against the remaining input.
type tokenMatch struct {
	n      int // consumed length in runes
	groups [2]string
}

// match tries p at the start of in.
func (p *pattern) match(in []rune) (tokenMatch, bool) {
	m, err := p.re.FindRunesMatch(in)
	if err != nil || m == nil || m.Index != 0 {
		return tokenMatch{}, false
	}
	tm := tokenMatch{n: m.Length}
	gs := m.Groups()
	for i := 1; i < len(gs) && i <= len(tm.groups); i++ {
		if len(gs[i].Captures) > 0 {
			tm.groups[i-1] = gs[i].String()
		}
	}
	return tm, true
}

func newPattern(id patternID, name, expr string) *pattern {
	return &pattern{
		id:   id,
		name: name,
		re:   regexp2.MustCompile(`^(?:`+expr+`)`, regexp2.None),
	}
}

// patterns is the pattern table, indexed by patternID. It is built once and
// never modified.
var patterns = [numPatterns]*pattern{
	dataChar:              newPattern(dataChar, "dataChar", `([\s\S])`),
	namedCharRef:          newPattern(namedCharRef, "namedCharRef", `&(`+reName+`);`),
	numericCharRef:        newPattern(numericCharRef, "numericCharRef", `&#(?:x([0-9A-Fa-f]+)|([0-9]+));`),
	startTagOpen:          newPattern(startTagOpen, "startTagOpen", `<(`+reName+`)`+reTagContext),
	attributeName:         newPattern(attributeName, "attributeName", `(`+reName+`)`),
	attributeNameEquals:   newPattern(attributeNameEquals, "attributeNameEquals", `(`+reName+`)`+reS+`*=`),
	tagClose:              newPattern(tagClose, "tagClose", `>`),
	emptyElementClose:     newPattern(emptyElementClose, "emptyElementClose", `/>`),
	endTag:                newPattern(endTag, "endTag", `</(`+reName+`)`+reS+`*>`),
	singleQuote:           newPattern(singleQuote, "singleQuote", `'`),
	doubleQuote:           newPattern(doubleQuote, "doubleQuote", `"`),
	whitespaceRun:         newPattern(whitespaceRun, "whitespace", reS+`+`),
	comment:               newPattern(comment, "comment", `<!--[\s\S]*?-->`),
	processingInstruction: newPattern(processingInstruction, "pi", `<\?[\s\S]*?\?>`),
	cdataOpen:             newPattern(cdataOpen, "cdataOpen", `<!\[CDATA\[`),
	cdataClose:            newPattern(cdataClose, "cdataClose", `\]\]>`),
	doctypeOpen:           newPattern(doctypeOpen, "doctypeOpen", `<!DOCTYPE`),
	quotedLiteral:         newPattern(quotedLiteral, "quotedLiteral", `"[^"]*"|'[^']*'`),
	declaration:           newPattern(declaration, "declaration", `<!(?!--)(?:[^>"']|"[^"]*"|'[^']*')*>`),
	subsetOpen:            newPattern(subsetOpen, "subsetOpen", `\[`),
	subsetClose:           newPattern(subsetClose, "subsetClose", `\]`+reS+`*>`),
	emptyMatch:            newPattern(emptyMatch, "empty", ``),
}

func (id patternID) String() string {
	if id >= 0 && id < numPatterns {
		return patterns[id].name
	}
	return "invalid"
}
