package rewrite

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/dgallion1/vertical/internal/doctree"
)

// AbsentValue stands in for a missing key attribute in group ids.
const AbsentValue = "None"

// ErrMissingAttribute is returned by Group when RequireKeys is set and a
// target lacks one of the key attributes.
var ErrMissingAttribute = errors.New("missing required attribute")

// GroupOptions controls Group.
type GroupOptions struct {
	Target         string   // structures to group
	Keys           []string // attributes whose values form the group key
	Name           string   // tag of the new group elements
	FallbackRootID string   // used when root has no id
	RequireKeys    bool     // fail instead of grouping missing keys as absent
}

func (o GroupOptions) validate() error {
	switch {
	case o.Target == "":
		return fmt.Errorf("%w: group target tag is empty", ErrInvalidOptions)
	case o.Name == "":
		return fmt.Errorf("%w: group name is empty", ErrInvalidOptions)
	case len(o.Keys) == 0:
		return fmt.Errorf("%w: no grouping attributes", ErrInvalidOptions)
	}
	return nil
}

// Group moves every Target structure of root under a Name element, one per
// distinct tuple of Keys values. Groups appear in the order their key is
// first seen and keep targets in document order. A group's attributes are
// root's attributes overridden by those of its first target, plus
// id = {root id}/{comma-joined key values}.
//
// Targets are detached from root, so root should not be reused afterwards.
func Group(root *doctree.Node, opts GroupOptions) (*doctree.Node, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	rootID, ok := root.Get("id")
	if !ok {
		if opts.FallbackRootID == "" {
			return nil, fmt.Errorf("group <%s>: %w", root.Tag, ErrMissingUniqueID)
		}
		rootID = opts.FallbackRootID
	}

	out := doctree.NewNode(root.Tag, root.Attrs)
	out.Text, out.Tail = "\n", "\n"

	var targets []*doctree.Node
	parents := make(map[*doctree.Node]*doctree.Node)
	root.Walk(func(node, parent *doctree.Node) bool {
		if node.Tag == opts.Target {
			targets = append(targets, node)
			parents[node] = parent
		}
		return true
	})
	groups := make(map[string]*doctree.Node)

	for _, target := range targets {
		values := make([]*string, len(opts.Keys))
		for i, k := range opts.Keys {
			if v, ok := target.Get(k); ok {
				values[i] = &v
			} else if opts.RequireKeys {
				return nil, fmt.Errorf("<%s> in <%s id=%q> has no %q: %w", target.Tag, root.Tag, rootID, k, ErrMissingAttribute)
			}
		}

		key := groupKey(values)
		g, ok := groups[key]
		if !ok {
			g = doctree.NewNode(opts.Name, root.Attrs)
			for _, a := range target.Attrs {
				g.Set(a.Name, a.Value)
			}
			g.Set("id", rootID+"/"+strings.Join(lo.Map(values, func(v *string, _ int) string {
				if v == nil {
					return AbsentValue
				}
				return *v
			}), ","))
			g.Text, g.Tail = "\n", "\n"
			groups[key] = g
			out.Append(g)
		}

		// The parent may itself be a target already moved to a group.
		if p := parents[target]; p != nil {
			p.Remove(target)
		}
		g.Append(target)
	}

	return out, nil
}

// groupKey encodes a value tuple injectively, keeping absent apart from any
// string value.
func groupKey(values []*string) string {
	var b strings.Builder
	for _, v := range values {
		if v == nil {
			b.WriteString("-;")
			continue
		}
		b.WriteString(strconv.Quote(*v))
		b.WriteByte(';')
	}
	return b.String()
}
