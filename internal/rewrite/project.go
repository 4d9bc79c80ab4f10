package rewrite

import "github.com/dgallion1/vertical/internal/doctree"

// Project copies root's attributes onto every child structure, in place.
// Copies are named {root}_{key}, with underscores appended while the name is
// taken by a different value. Attributes the child already has under the
// plain key are left alone, and a copy that is already present is not added
// twice, so projecting again changes nothing.
func Project(root *doctree.Node, child string) {
	attrs := append([]doctree.Attr(nil), root.Attrs...)
	for _, c := range root.Iter(child) {
		for _, a := range attrs {
			if c.Has(a.Name) {
				continue
			}
			name := root.Tag + "_" + a.Name
			for {
				v, ok := c.Get(name)
				if !ok {
					c.Set(name, a.Value)
					break
				}
				if v == a.Value {
					break
				}
				name += "_"
			}
		}
	}
}
