package microxml

// A mode is a scanner state. It selects the rules the tokenizer tries.
type mode int

const (
	mainMode mode = iota
	tagMode
	startAttributeValueMode
	unquoteAttributeValueMode
	singleQuoteAttributeValueMode
	doubleQuoteAttributeValueMode
	cdataMode
	doctypeMode
	subsetMode
	numModes
)

var modeNames = [numModes]string{
	mainMode:                      "Main",
	tagMode:                       "Tag",
	startAttributeValueMode:       "StartAttributeValue",
	unquoteAttributeValueMode:     "UnquoteAttributeValue",
	singleQuoteAttributeValueMode: "SingleQuoteAttributeValue",
	doubleQuoteAttributeValueMode: "DoubleQuoteAttributeValue",
	cdataMode:                     "CData",
	doctypeMode:                   "Doctype",
	subsetMode:                    "Subset",
}

func (m mode) String() string {
	if m >= 0 && m < numModes {
		return modeNames[m]
	}
	return "invalid"
}

// inTag reports whether m belongs to a start tag that is still open.
func (m mode) inTag() bool {
	switch m {
	case tagMode, startAttributeValueMode, unquoteAttributeValueMode,
		singleQuoteAttributeValueMode, doubleQuoteAttributeValueMode:
		return true
	}
	return false
}

// An action is run when its rule wins. It receives the current mode and up to
// two captured groups, emits builder events and returns the next mode.
type action func(m mode, b *builder, g1, g2 string) mode

type rule struct {
	pat *pattern
	act action
}

func on(id patternID, act action) rule {
	return rule{pat: patterns[id], act: act}
}

// modes maps every mode to its rules, in registration order. Registration
// order decides ties between two rules that match the same length: the
// later rule wins, except that dataChar never wins a tie.
var modes = [numModes][]rule{
	mainMode: {
		on(dataChar, appendText),
		on(namedCharRef, appendNamedRef),
		on(numericCharRef, appendNumericRef),
		on(comment, ignore),
		on(processingInstruction, ignore),
		on(startTagOpen, func(_ mode, b *builder, name, _ string) mode {
			b.startTagOpen(name)
			return tagMode
		}),
		on(endTag, func(m mode, b *builder, name, _ string) mode {
			b.endTag(name)
			return m
		}),
		on(cdataOpen, to(cdataMode)),
		on(doctypeOpen, to(doctypeMode)),
	},
	tagMode: {
		on(whitespaceRun, ignore),
		on(tagClose, closeStartTag),
		on(emptyElementClose, closeEmptyElement),
		on(attributeName, func(m mode, b *builder, name, _ string) mode {
			b.attributeName(name)
			b.flushAttribute()
			return m
		}),
		on(attributeNameEquals, func(_ mode, b *builder, name, _ string) mode {
			b.attributeName(name)
			return startAttributeValueMode
		}),
		on(emptyMatch, func(_ mode, b *builder, _, _ string) mode {
			b.report(ErrMalformedTag, "")
			b.startTagClose()
			return mainMode
		}),
	},
	startAttributeValueMode: {
		on(whitespaceRun, ignore),
		on(singleQuote, to(singleQuoteAttributeValueMode)),
		on(doubleQuote, to(doubleQuoteAttributeValueMode)),
		on(tagClose, closeStartTag),
		on(emptyElementClose, closeEmptyElement),
		on(emptyMatch, to(unquoteAttributeValueMode)),
	},
	unquoteAttributeValueMode: {
		on(dataChar, appendText),
		on(namedCharRef, appendNamedRef),
		on(numericCharRef, appendNumericRef),
		on(whitespaceRun, endAttributeValue),
		on(tagClose, closeStartTag),
		on(emptyElementClose, closeEmptyElement),
	},
	singleQuoteAttributeValueMode: {
		on(dataChar, appendText),
		on(namedCharRef, appendNamedRef),
		on(numericCharRef, appendNumericRef),
		on(singleQuote, endAttributeValue),
	},
	doubleQuoteAttributeValueMode: {
		on(dataChar, appendText),
		on(namedCharRef, appendNamedRef),
		on(numericCharRef, appendNumericRef),
		on(doubleQuote, endAttributeValue),
	},
	cdataMode: {
		on(dataChar, appendText),
		on(cdataClose, to(mainMode)),
	},
	doctypeMode: {
		on(dataChar, ignore),
		on(quotedLiteral, ignore),
		on(subsetOpen, to(subsetMode)),
		on(tagClose, to(mainMode)),
	},
	subsetMode: {
		on(dataChar, ignore),
		on(whitespaceRun, ignore),
		on(declaration, ignore),
		on(comment, ignore),
		on(processingInstruction, ignore),
		on(subsetClose, to(mainMode)),
	},
}

func ignore(m mode, _ *builder, _, _ string) mode {
	return m
}

func to(next mode) action {
	return func(mode, *builder, string, string) mode {
		return next
	}
}

func appendText(m mode, b *builder, s, _ string) mode {
	b.text(s)
	return m
}

func appendNamedRef(m mode, b *builder, name, _ string) mode {
	b.namedRef(name)
	return m
}

func appendNumericRef(m mode, b *builder, hex, dec string) mode {
	b.numericRef(hex, dec)
	return m
}

func endAttributeValue(_ mode, b *builder, _, _ string) mode {
	b.flushAttribute()
	return tagMode
}

func closeStartTag(_ mode, b *builder, _, _ string) mode {
	b.startTagClose()
	return mainMode
}

func closeEmptyElement(_ mode, b *builder, _, _ string) mode {
	b.emptyElementClose()
	return mainMode
}
