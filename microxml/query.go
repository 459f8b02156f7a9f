package microxml

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// queryEnv is what a query expression sees for each element.
type queryEnv struct {
	Name     string            `expr:"name"`
	Attr     map[string]string `expr:"attr"`
	Text     string            `expr:"text"`
	Depth    int               `expr:"depth"`
	Children int               `expr:"children"`
}

// Query is a compiled boolean expression over elements, for example
//
//	name == "item" && attr.id startsWith "x-"
//
// The expression sees name, attr (a map), text (the text content), depth (0
// for the top element) and children (number of child nodes).
type Query struct {
	src  string
	prog *vm.Program
}

// Compile parses and type-checks a query expression.
func Compile(src string) (*Query, error) {
	prog, err := expr.Compile(src, expr.Env(queryEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile query %q: %w", src, err)
	}
	return &Query{src: src, prog: prog}, nil
}

func (q *Query) String() string {
	return q.src
}

// Match evaluates the query against an element at the given depth.
func (q *Query) Match(n *Node, depth int) (bool, error) {
	if n.Type != ElementNode {
		return false, nil
	}
	out, err := expr.Run(q.prog, queryEnv{
		Name:     n.Data,
		Attr:     n.Attr.Map(),
		Text:     n.Text(),
		Depth:    depth,
		Children: len(n.Children),
	})
	if err != nil {
		return false, fmt.Errorf("eval query %q on <%s>: %w", q.src, n.Data, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Select returns the elements of the tree rooted at root that match q, in
// document order. The synthetic container is never matched.
func (q *Query) Select(root *Node) ([]*Node, error) {
	var (
		out  []*Node
		walk func(n *Node, depth int) error
	)
	walk = func(n *Node, depth int) error {
		ok, err := q.Match(n, depth)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, n)
		}
		for _, c := range n.Children {
			if c.Type == ElementNode {
				if err := walk(c, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if root.Type == DocumentNode {
		for _, c := range root.Children {
			if c.Type == ElementNode {
				if err := walk(c, 0); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// Select compiles src and runs it against root.
func Select(root *Node, src string) ([]*Node, error) {
	q, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return q.Select(root)
}
