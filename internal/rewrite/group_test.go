package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/vertical/internal/doctree"
)

func texts(nodes []*doctree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.TextContent()
	}
	return out
}

func TestGroup_ByOneKey(t *testing.T) {
	root := parse(t, `<s><w pos="N">dog</w><w pos="V">runs</w><w pos="N">cat</w></s>`)

	out, err := Group(root, GroupOptions{Target: "w", Keys: []string{"pos"}, Name: "g", FallbackRootID: "x"})
	require.NoError(t, err)

	assert.Equal(t, "s", out.Tag)
	require.Len(t, out.Children, 2)

	n, v := out.Children[0], out.Children[1]
	assert.Equal(t, "g", n.Tag)
	assert.Equal(t, "x/N", attr(t, n, "id"))
	assert.Equal(t, "N", attr(t, n, "pos"))
	assert.Equal(t, []string{"dog", "cat"}, texts(n.Children))

	assert.Equal(t, "x/V", attr(t, v, "id"))
	assert.Equal(t, []string{"runs"}, texts(v.Children))
}

func TestGroup_RootIDWinsOverFallback(t *testing.T) {
	root := parse(t, `<doc id="d1" lang="cs"><w pos="N" lang="en">a</w></doc>`)

	out, err := Group(root, GroupOptions{Target: "w", Keys: []string{"pos"}, Name: "g", FallbackRootID: "ignored"})
	require.NoError(t, err)
	require.Len(t, out.Children, 1)

	g := out.Children[0]
	assert.Equal(t, "d1/N", attr(t, g, "id"))
	assert.Equal(t, "en", attr(t, g, "lang"), "target attributes override the root's")
	assert.Equal(t, []doctree.Attr{{Name: "id", Value: "d1/N"}, {Name: "lang", Value: "en"}, {Name: "pos", Value: "N"}}, g.Attrs)
}

func TestGroup_MissingIDFails(t *testing.T) {
	root := parse(t, `<s><w pos="N">dog</w></s>`)

	_, err := Group(root, GroupOptions{Target: "w", Keys: []string{"pos"}, Name: "g"})
	assert.ErrorIs(t, err, ErrMissingUniqueID)
}

func TestGroup_AbsentKeyIsItsOwnValue(t *testing.T) {
	root := parse(t, `<s id="r"><w pos="">a</w><w>b</w><w pos="">c</w><w>d</w></s>`)

	out, err := Group(root, GroupOptions{Target: "w", Keys: []string{"pos"}, Name: "g"})
	require.NoError(t, err)
	require.Len(t, out.Children, 2)

	assert.Equal(t, "r/", attr(t, out.Children[0], "id"))
	assert.Equal(t, []string{"a", "c"}, texts(out.Children[0].Children))
	assert.Equal(t, "r/None", attr(t, out.Children[1], "id"))
	assert.Equal(t, []string{"b", "d"}, texts(out.Children[1].Children))
}

func TestGroup_RequireKeys(t *testing.T) {
	root := parse(t, `<s id="r"><w pos="N">a</w><w>b</w></s>`)

	_, err := Group(root, GroupOptions{Target: "w", Keys: []string{"pos"}, Name: "g", RequireKeys: true})
	assert.ErrorIs(t, err, ErrMissingAttribute)
}

func TestGroup_MultipleKeysInFirstSeenOrder(t *testing.T) {
	root := parse(t, `<doc id="1"><p>`+
		`<sp who="A" lang="cs">1</sp>`+
		`<sp who="B" lang="cs">2</sp>`+
		`</p><p>`+
		`<sp who="A" lang="en">3</sp>`+
		`<sp who="A" lang="cs">4</sp>`+
		`</p></doc>`)

	out, err := Group(root, GroupOptions{Target: "sp", Keys: []string{"who", "lang"}, Name: "group"})
	require.NoError(t, err)

	var ids []string
	for _, g := range out.Children {
		ids = append(ids, attr(t, g, "id"))
	}
	assert.Equal(t, []string{"1/A,cs", "1/B,cs", "1/A,en"}, ids)
	assert.Equal(t, []string{"1", "4"}, texts(out.Children[0].Children))
}

func TestGroup_MovesTargets(t *testing.T) {
	root := parse(t, `<doc id="1"><p><w k="a">x</w>t</p><w k="b">y</w></doc>`)
	before := root.Iter("w")

	out, err := Group(root, GroupOptions{Target: "w", Keys: []string{"k"}, Name: "g"})
	require.NoError(t, err)

	var after []*doctree.Node
	for _, g := range out.Children {
		after = append(after, g.Children...)
	}
	assert.ElementsMatch(t, before, after)
	assert.Empty(t, root.Iter("w"), "targets are detached from the source tree")
	assert.Equal(t, "t", after[0].Tail, "a target keeps its tail")
}

func TestGroup_NestedTargetsAreMovedOnce(t *testing.T) {
	root := parse(t, `<doc id="x"><w pos="A">outer<w pos="B">inner</w></w></doc>`)

	out, err := Group(root, GroupOptions{Target: "w", Keys: []string{"pos"}, Name: "g"})
	require.NoError(t, err)

	require.Len(t, out.Children, 2)
	a, b := out.Children[0], out.Children[1]
	assert.Equal(t, "x/A", attr(t, a, "id"))
	require.Len(t, a.Children, 1)
	assert.Empty(t, a.Children[0].Children)
	assert.Equal(t, "outer", a.Children[0].TextContent())

	assert.Equal(t, "x/B", attr(t, b, "id"))
	assert.Equal(t, []string{"inner"}, texts(b.Children))
	assert.Len(t, out.Iter("w"), 2)
}

func TestGroup_PreservesTargetMultiset(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"siblings", `<doc id="x"><w pos="A">1</w><w pos="B">2</w><w pos="A">3</w></doc>`},
		{"nested", `<doc id="x"><w pos="A">1<w pos="B">2<w pos="A">3</w></w></w><w pos="B">4</w></doc>`},
		{"wrapped", `<doc id="x"><p><s><w pos="A">1</w></s><w pos="B">2</w></p><p><w pos="A">3<w pos="A">4</w></w></p></doc>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parse(t, tt.input)
			before := root.Iter("w")

			out, err := Group(root, GroupOptions{Target: "w", Keys: []string{"pos"}, Name: "g"})
			require.NoError(t, err)

			after := out.Iter("w")
			assert.ElementsMatch(t, before, after)

			seen := make(map[*doctree.Node]bool)
			out.Walk(func(node, _ *doctree.Node) bool {
				assert.False(t, seen[node], "<%s> reachable twice", node.Tag)
				seen[node] = true
				return true
			})
		})
	}
}

func TestGroup_InvalidOptions(t *testing.T) {
	root := parse(t, `<doc id="1"/>`)
	for _, opts := range []GroupOptions{
		{Keys: []string{"k"}, Name: "g"},
		{Target: "w", Name: "g"},
		{Target: "w", Keys: []string{"k"}},
	} {
		_, err := Group(root, opts)
		assert.ErrorIs(t, err, ErrInvalidOptions, "%+v", opts)
	}
}
