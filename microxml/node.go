package microxml

import (
	"strings"
)

// NodeType identifies the variant held by a Node.
type NodeType uint32

const (
	TextNode NodeType = iota + 1
	ElementNode
	// DocumentNode is the synthetic container produced when the top level of
	// the input does not consist of exactly one element.
	DocumentNode
)

func (t NodeType) String() string {
	switch t {
	case TextNode:
		return "text"
	case ElementNode:
		return "element"
	case DocumentNode:
		return "document"
	default:
		return "invalid"
	}
}

// DocumentTag is the tag name of the synthetic container node. It never
// matches the name grammar, so it cannot be produced by parsing.
const DocumentTag = "#doc"

// Node is either a text leaf or an element.
//
// For a TextNode, Data is the text. For an ElementNode, Data is the tag name
// and Attr and Children hold the element content. A DocumentNode behaves like
// an element named DocumentTag with no attributes.
type Node struct {
	Type     NodeType
	Data     string
	Attr     Attributes
	Children []*Node
}

// NewText returns a text node.
func NewText(s string) *Node {
	return &Node{Type: TextNode, Data: s}
}

// NewElement returns an element node with no attributes and no children.
func NewElement(name string) *Node {
	return &Node{Type: ElementNode, Data: name}
}

// NewDocument returns a synthetic container wrapping children.
func NewDocument(children ...*Node) *Node {
	return &Node{Type: DocumentNode, Data: DocumentTag, Children: children}
}

// Name returns the tag name of an element or container, and "" for text.
func (n *Node) Name() string {
	if n.Type == TextNode {
		return ""
	}
	return n.Data
}

// IsWhitespace reports whether n is a text node made only of markup
// whitespace.
func (n *Node) IsWhitespace() bool {
	return n.Type == TextNode && strings.TrimLeft(n.Data, whitespace) == ""
}

// AppendChild adds c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	n.Children = append(n.Children, c)
}

// LastChild returns the last child of n, or nil.
func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// Text returns the concatenated text content of n and its descendants.
func (n *Node) Text() string {
	if n.Type == TextNode {
		return n.Data
	}
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	for _, c := range n.Children {
		if c.Type == TextNode {
			sb.WriteString(c.Data)
		} else {
			c.writeText(sb)
		}
	}
}

// Attributes is an insertion-ordered dictionary of attribute names to values.
// Every name is an ordinary key: there are no reserved or inherited members,
// so names like "__proto__" or "constructor" behave like any other.
// The zero value is an empty dictionary.
type Attributes struct {
	names []string
	vals  map[string]string
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	return len(a.names)
}

// Get returns the value of the attribute name.
func (a *Attributes) Get(name string) (string, bool) {
	v, ok := a.vals[name]
	return v, ok
}

// Has reports whether the attribute name is present.
func (a *Attributes) Has(name string) bool {
	_, ok := a.vals[name]
	return ok
}

// Set adds the attribute unless an attribute with the same name is already
// present. It reports whether the value was stored.
func (a *Attributes) Set(name, value string) bool {
	if _, ok := a.vals[name]; ok {
		return false
	}
	if a.vals == nil {
		a.vals = make(map[string]string)
	}
	a.vals[name] = value
	a.names = append(a.names, name)
	return true
}

// Names returns the attribute names in insertion order.
func (a *Attributes) Names() []string {
	return append([]string(nil), a.names...)
}

// Each calls fn for every attribute in insertion order.
func (a *Attributes) Each(fn func(name, value string)) {
	for _, k := range a.names {
		fn(k, a.vals[k])
	}
}

// Map returns a copy of the attributes as a plain map.
func (a *Attributes) Map() map[string]string {
	m := make(map[string]string, len(a.names))
	for k, v := range a.vals {
		m[k] = v
	}
	return m
}

// Equal compares two dictionaries by content; insertion order is ignored.
func (a Attributes) Equal(b Attributes) bool {
	if len(a.names) != len(b.names) {
		return false
	}
	for k, v := range a.vals {
		if bv, ok := b.vals[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// nodeStack is a stack of nodes.
type nodeStack []*Node

// pop pops the stack. It will panic if s is empty.
func (s *nodeStack) pop() *Node {
	i := len(*s)
	n := (*s)[i-1]
	*s = (*s)[:i-1]
	return n
}

// top returns the most recently pushed node, or nil if s is empty.
func (s *nodeStack) top() *Node {
	if i := len(*s); i > 0 {
		return (*s)[i-1]
	}
	return nil
}

// lastIndex returns the index of the topmost element named name, searching
// down to but excluding index stop, or -1.
func (s *nodeStack) lastIndex(name string, stop int) int {
	for i := len(*s) - 1; i > stop; i-- {
		if (*s)[i].Data == name {
			return i
		}
	}
	return -1
}
