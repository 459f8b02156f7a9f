package microxml

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderOptions control Render.
type RenderOptions struct {
	// Indent, when positive, pretty-prints the output with that many spaces
	// per level. Indentation adds whitespace text to the output.
	Indent int
}

// ToETree converts n into an etree document. The synthetic container
// contributes its children, so a multi-rooted tree becomes a document with
// several top-level tokens.
func ToETree(n *Node) *etree.Document {
	doc := etree.NewDocument()
	if n.Type == DocumentNode {
		for _, c := range n.Children {
			appendETree(&doc.Element, c)
		}
	} else {
		appendETree(&doc.Element, n)
	}
	return doc
}

func appendETree(parent *etree.Element, n *Node) {
	switch n.Type {
	case TextNode:
		parent.AddChild(etree.NewText(n.Data))
	case ElementNode, DocumentNode:
		el := parent.CreateElement(n.Data)
		n.Attr.Each(func(name, value string) {
			el.CreateAttr(name, value)
		})
		for _, c := range n.Children {
			appendETree(el, c)
		}
	}
}

// Render writes n as well-formed markup.
func Render(w io.Writer, n *Node, opts RenderOptions) error {
	doc := ToETree(n)
	if opts.Indent > 0 {
		doc.Indent(opts.Indent)
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write xml: %w", err)
	}
	return nil
}

// ToHTML converts n into a golang.org/x/net/html tree. Elements whose name
// is a known HTML tag get the matching atom.
func ToHTML(n *Node) *html.Node {
	switch n.Type {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	case DocumentNode:
		dst := &html.Node{Type: html.DocumentNode}
		for _, c := range n.Children {
			dst.AppendChild(ToHTML(c))
		}
		return dst
	default:
		dst := &html.Node{Type: html.ElementNode, Data: n.Data, DataAtom: atom.Lookup([]byte(n.Data))}
		n.Attr.Each(func(name, value string) {
			dst.Attr = append(dst.Attr, html.Attribute{Key: name, Val: value})
		})
		for _, c := range n.Children {
			dst.AppendChild(ToHTML(c))
		}
		return dst
	}
}

// RenderHTML writes n with the HTML serializer. It fails when the tree
// cannot be expressed as HTML, for example a void element with children.
func RenderHTML(w io.Writer, n *Node) error {
	if err := html.Render(w, ToHTML(n)); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// Dump writes the tree in an indented debugging format, one node or
// attribute per line:
//
//	| <a>
//	|   href="x"
//	|   "text"
//
// The synthetic container is not printed, only its children.
func Dump(w io.Writer, n *Node) error {
	if n.Type == DocumentNode {
		for _, c := range n.Children {
			if err := dumpLevel(w, c, 0); err != nil {
				return err
			}
		}
		return nil
	}
	return dumpLevel(w, n, 0)
}

func dumpIndent(w io.Writer, level int) error {
	if _, err := io.WriteString(w, "| "); err != nil {
		return err
	}
	for i := 0; i < level; i++ {
		if _, err := io.WriteString(w, "  "); err != nil {
			return err
		}
	}
	return nil
}

func dumpLevel(w io.Writer, n *Node, level int) error {
	if err := dumpIndent(w, level); err != nil {
		return err
	}
	switch n.Type {
	case TextNode:
		if _, err := fmt.Fprintf(w, "%q\n", n.Data); err != nil {
			return err
		}
		return nil
	case ElementNode, DocumentNode:
		if _, err := fmt.Fprintf(w, "<%s>\n", n.Data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("microxml: unknown node type %d", n.Type)
	}

	var err error
	n.Attr.Each(func(name, value string) {
		if err != nil {
			return
		}
		if err = dumpIndent(w, level+1); err == nil {
			_, err = fmt.Fprintf(w, "%s=%q\n", name, value)
		}
	})
	if err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := dumpLevel(w, c, level+1); err != nil {
			return err
		}
	}
	return nil
}
