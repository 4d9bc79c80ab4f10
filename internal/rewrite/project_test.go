package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgallion1/vertical/internal/doctree"
)

func TestProject(t *testing.T) {
	root := parse(t, `<doc id="1" author="A" year="1990">`+
		`<s id="s1">x</s>`+
		`<p><s doc_author="someone">y</s></p>`+
		`</doc>`)

	Project(root, "s")

	s := root.Iter("s")
	assert.Equal(t, []doctree.Attr{
		{Name: "id", Value: "s1"},
		{Name: "doc_author", Value: "A"},
		{Name: "doc_year", Value: "1990"},
	}, s[0].Attrs, "own id is never overwritten or shadowed")

	assert.Equal(t, []doctree.Attr{
		{Name: "doc_author", Value: "someone"},
		{Name: "doc_id", Value: "1"},
		{Name: "doc_author_", Value: "A"},
		{Name: "doc_year", Value: "1990"},
	}, s[1].Attrs)
}

func TestProject_IsIdempotent(t *testing.T) {
	root := parse(t, `<doc id="1" author="A"><s doc_author="B">x</s><s>y</s></doc>`)

	Project(root, "s")
	once := root.String()
	Project(root, "s")

	assert.Equal(t, once, root.String())
}

func TestProject_RootMatchingChildIsUnchanged(t *testing.T) {
	root := parse(t, `<s id="1"><s>x</s></s>`)

	Project(root, "s")

	assert.Equal(t, []doctree.Attr{{Name: "id", Value: "1"}}, root.Attrs)
	assert.Equal(t, []doctree.Attr{{Name: "s_id", Value: "1"}}, root.Children[0].Attrs)
}
