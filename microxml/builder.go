package microxml

import (
	"strings"
)

// A builder receives events from the tokenizer and builds the Node tree.
type builder struct {
	// root is the permanent bottom frame. It is never popped.
	root *Node
	// oe is the stack of open elements, root first.
	oe nodeStack
	// buf holds characters not yet attached to the tree: text content, or the
	// value of the pending attribute while attrOpen is set.
	buf strings.Builder
	// attrName is the name of the attribute being filled when attrOpen is set.
	attrName string
	attrOpen bool
	// entities resolves named character references.
	entities entityTable
	// span is the location of the token being processed.
	span Span
	// errs captures the recoveries applied during parsing.
	errs []error
}

func newBuilder(entities entityTable) *builder {
	root := NewDocument()
	return &builder{
		root:     root,
		oe:       nodeStack{root},
		entities: entities,
	}
}

func (b *builder) top() *Node {
	return b.oe.top()
}

func (b *builder) report(err error, token string) {
	b.errs = append(b.errs, newRecoveryError(err, b.span, token))
}

// addText adds text to the preceding node if it is a text node, or else it
// appends a new text node to the top element.
func (b *builder) addText(text string) {
	if text == "" {
		return
	}
	t := b.top()
	if n := t.LastChild(); n != nil && n.Type == TextNode {
		n.Data += text
		return
	}
	t.AppendChild(NewText(text))
}

func (b *builder) flushData() {
	if b.buf.Len() > 0 {
		b.addText(b.buf.String())
		b.buf.Reset()
	}
}

func (b *builder) flushAttribute() {
	if !b.attrOpen {
		return
	}
	if !b.top().Attr.Set(b.attrName, b.buf.String()) {
		b.report(ErrDuplicateAttribute, b.attrName)
	}
	b.attrName = ""
	b.attrOpen = false
	b.buf.Reset()
}

// text appends literal characters to the pending buffer.
func (b *builder) text(s string) {
	b.buf.WriteString(s)
}

// namedRef appends the resolution of &name;.
func (b *builder) namedRef(name string) {
	s, ok := b.entities.resolveNamed(name)
	if !ok {
		b.report(ErrUnknownEntity, s)
	}
	b.text(s)
}

// numericRef appends the resolution of a numeric reference.
func (b *builder) numericRef(hex, dec string) {
	s, ok := resolveNumeric(hex, dec)
	if !ok {
		if hex != "" {
			b.report(ErrInvalidCharRef, "&#x"+hex+";")
		} else {
			b.report(ErrInvalidCharRef, "&#"+dec+";")
		}
	}
	b.text(s)
}

func (b *builder) startTagOpen(name string) {
	b.flushData()
	n := NewElement(name)
	b.top().AppendChild(n)
	b.oe = append(b.oe, n)
}

func (b *builder) startTagClose() {
	b.flushAttribute()
}

func (b *builder) emptyElementClose() {
	// Text before the element was flushed by startTagOpen.
	b.flushAttribute()
	if len(b.oe) > 1 {
		b.oe.pop()
	}
}

// endTag closes the topmost open element named name together with every
// element above it. Without such an element the end tag is ignored.
func (b *builder) endTag(name string) {
	b.flushData()
	i := b.oe.lastIndex(name, 0)
	if i == -1 {
		b.report(ErrUnmatchedEndTag, name)
		return
	}
	b.oe = b.oe[:i]
}

func (b *builder) attributeName(name string) {
	b.flushAttribute()
	b.attrName = name
	b.attrOpen = true
}

// end flushes pending text and returns the finished document.
func (b *builder) end() *Node {
	b.flushAttribute()
	b.flushData()
	for _, n := range b.oe[1:] {
		b.report(ErrUnclosedElement, n.Data)
	}
	b.oe = b.oe[:1]
	return finish(b.root)
}
