package doctree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse builds a tree from well-formed markup with exactly one root element.
// Names keep their prefixes as written, so namespaced markup round-trips.
// The decoder imposes no limit on the number of nodes, so arbitrarily large
// structures are accepted.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var root *Node
	var stack []*Node

	for {
		// RawToken leaves prefixes alone but does not pair tags, so the
		// stack below does.
		tok, err := dec.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Tag: qualifiedName(t.Name)}
			for _, a := range t.Attr {
				node.Set(qualifiedName(a.Name), a.Value)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("offset %d: second root element <%s>", dec.InputOffset(), node.Tag)
				}
				root = node
			} else {
				stack[len(stack)-1].Append(node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 0 {
				return nil, fmt.Errorf("offset %d: unexpected end element </%s>", dec.InputOffset(), name)
			}
			if open := stack[len(stack)-1]; open.Tag != name {
				return nil, fmt.Errorf("offset %d: element <%s> closed by </%s>", dec.InputOffset(), open.Tag, name)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, fmt.Errorf("offset %d: character data outside the root element", dec.InputOffset())
				}
				continue
			}
			parent := stack[len(stack)-1]
			if n := len(parent.Children); n > 0 {
				parent.Children[n-1].Tail += string(t)
			} else {
				parent.Text += string(t)
			}
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("unexpected EOF: element <%s> is not closed", stack[len(stack)-1].Tag)
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
