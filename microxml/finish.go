package microxml

import "strings"

// finish turns the content of the root frame into the returned document:
// edge whitespace is trimmed, and a lone element is returned unwrapped.
func finish(root *Node) *Node {
	content := trimContent(root.Children)
	if len(content) == 0 {
		return NewDocument()
	}
	if len(content) == 1 && content[0].Type != TextNode {
		return content[0]
	}
	return NewDocument(content...)
}

// trimContent removes leading whitespace from the first entry and trailing
// whitespace from the last entry when they are text. Entries left empty are
// dropped. Only the two edge entries are looked at.
func trimContent(content []*Node) []*Node {
	if len(content) == 0 {
		return content
	}
	if first := content[0]; first.Type == TextNode {
		first.Data = strings.TrimLeft(first.Data, whitespace)
		if first.Data == "" {
			content = content[1:]
		}
	}
	if len(content) == 0 {
		return content
	}
	if last := content[len(content)-1]; last.Type == TextNode {
		last.Data = strings.TrimRight(last.Data, whitespace)
		if last.Data == "" {
			content = content[:len(content)-1]
		}
	}
	return content
}
