package microxml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// The JSON form of a tree is the one used by the conformance fixtures: a
// text node is a JSON string and an element is the array
// [name, {attributes}, [children]]. The synthetic container is an element
// named DocumentTag.

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n.Type == TextNode {
		return writeJSONString(buf, n.Data)
	}
	if n.Type != ElementNode && n.Type != DocumentNode {
		return fmt.Errorf("microxml: cannot marshal %s node", n.Type)
	}

	buf.WriteByte('[')
	if err := writeJSONString(buf, n.Data); err != nil {
		return err
	}
	buf.WriteString(",{")
	for i, k := range n.Attr.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeJSONString(buf, n.Attr.vals[k]); err != nil {
			return err
		}
	}
	buf.WriteString("},[")
	for i, c := range n.Children {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := c.writeJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteString("]]")
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode terminates with a newline
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("microxml: empty node")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Node{Type: TextNode, Data: s}
		return nil
	case '[':
	default:
		return fmt.Errorf("microxml: node must be a string or an array, got %.20s", data)
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("microxml: element must have 3 members, got %d", len(parts))
	}

	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return fmt.Errorf("microxml: element name: %w", err)
	}
	attr, err := decodeAttributes(parts[1])
	if err != nil {
		return fmt.Errorf("microxml: attributes of %q: %w", name, err)
	}
	var children []*Node
	if err := json.Unmarshal(parts[2], &children); err != nil {
		return fmt.Errorf("microxml: children of %q: %w", name, err)
	}

	if len(children) == 0 {
		children = nil
	}

	typ := ElementNode
	if name == DocumentTag {
		typ = DocumentNode
	}
	*n = Node{Type: typ, Data: name, Attr: attr, Children: children}
	return nil
}

// decodeAttributes reads a JSON object keeping the member order.
func decodeAttributes(data []byte) (Attributes, error) {
	var attr Attributes
	if string(bytes.TrimSpace(data)) == "null" {
		return attr, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return attr, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return attr, fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return attr, err
		}
		key, ok := tok.(string)
		if !ok {
			return attr, fmt.Errorf("expected attribute name, got %v", tok)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return attr, fmt.Errorf("value of %q: %w", key, err)
		}
		attr.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return attr, err
	}
	return attr, nil
}
