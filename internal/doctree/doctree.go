// Package doctree is the attributed tree a vertical structure is built into.
//
// Character data follows the text/tail model: Text is the data between a
// node's start tag and its first child, Tail is the data after the node's end
// tag, up to the next sibling (or the parent's end tag).
package doctree

import (
	"slices"
	"strings"
)

// Attr is a single attribute. Order of Attrs on a Node is document order.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of the tree. Each child is owned by exactly one parent.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Tail     string
	Children []*Node
}

// NewNode creates a node with a private copy of attrs.
func NewNode(tag string, attrs []Attr) *Node {
	return &Node{Tag: tag, Attrs: cloneAttrs(attrs)}
}

// Get returns the value of the named attribute.
func (n *Node) Get(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Has reports whether the named attribute is set.
func (n *Node) Has(name string) bool {
	_, ok := n.Get(name)
	return ok
}

// Set replaces the named attribute in place, or appends it.
func (n *Node) Set(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Append adds child as the last child of n.
func (n *Node) Append(child *Node) {
	n.Children = append(n.Children, child)
}

// Remove detaches child from n, taking its tail along. It reports whether
// child was found.
func (n *Node) Remove(child *Node) bool {
	i := slices.Index(n.Children, child)
	if i < 0 {
		return false
	}
	n.Children = slices.Delete(n.Children, i, i+1)
	return true
}

// Iter returns n and all its descendants whose tag equals tag, in document
// order. An empty tag matches every node.
func (n *Node) Iter(tag string) []*Node {
	var out []*Node
	n.Walk(func(node, _ *Node) bool {
		if tag == "" || node.Tag == tag {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Walk visits n and its descendants in document order. parent is nil for n
// itself. Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(node, parent *Node) bool) {
	walk(n, nil, fn)
}

func walk(n, parent *Node, fn func(node, parent *Node) bool) {
	if !fn(n, parent) {
		return
	}
	for _, c := range n.Children {
		walk(c, n, fn)
	}
}

// Copy returns a deep copy of n, including its tail.
func (n *Node) Copy() *Node {
	c := &Node{
		Tag:   n.Tag,
		Attrs: cloneAttrs(n.Attrs),
		Text:  n.Text,
		Tail:  n.Tail,
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Copy()
		}
	}
	return c
}

// TextContent concatenates all character data dominated by n. The node's own
// tail is not part of it.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	b.WriteString(n.Text)
	for _, c := range n.Children {
		c.writeText(b)
		b.WriteString(c.Tail)
	}
}

func cloneAttrs(attrs []Attr) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(attrs))
	copy(out, attrs)
	return out
}
