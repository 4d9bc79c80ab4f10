package vert

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStructure(t *testing.T) {
	st := NewStructure("\n\n<doc id=\"7\" title=\"A &amp; B\" x=\"\">\n</doc>\n\n", nil)

	assert.Equal(t, "<doc id=\"7\" title=\"A &amp; B\" x=\"\">\n</doc>\n", st.Raw)
	assert.Equal(t, "doc", st.Name)
	assert.Equal(t, map[string]string{"id": "7", "title": "A &amp; B", "x": ""}, st.Attr)
}

func TestXmlize(t *testing.T) {
	raw := strings.Join([]string{
		`<doc id="1">`,
		`<s>`,
		"a&amp;b\tNN",
		"&#65;\t&lt;x&gt;",
		"<s>\t<s>",
		`<sp>`,
		`<foo>`,
		`<g/>`,
		`</s>`,
		`</doc>`,
		"",
	}, "\n")

	got := Xmlize(raw, NewTagSet("doc", "s", "g"))
	want := strings.Join([]string{
		`<doc id="1">`,
		`<s>`,
		"a&amp;b\tNN",
		"A\t&lt;x&gt;",
		"&lt;s&gt;\t&lt;s&gt;",
		`&lt;sp&gt;`,
		`&lt;foo&gt;`,
		`<g/>`,
		`</s>`,
		`</doc>`,
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestXmlize_NoValidTags(t *testing.T) {
	assert.Equal(t, "&lt;doc&gt;\n", Xmlize("<doc>\n", nil))
}

func TestTree_RoundTrip(t *testing.T) {
	raw := "<doc id=\"1\" title=\"a &amp; b\">\n<p>\n<s>\na&amp;b\t<x>\n</s>\n<g/>\n</p>\n</doc>\n"
	structs := collect(t, raw, WithBoundary("doc"))
	require.Len(t, structs, 1)

	tree, err := structs[0].Tree()
	require.NoError(t, err)

	assert.Equal(t, "doc", tree.Tag)
	assert.Equal(t, "\n", tree.Tail)
	assert.Equal(t, "<doc id=\"1\" title=\"a &amp; b\">\n<p>\n<s>\na&amp;b\t&lt;x&gt;\n</s>\n<g/>\n</p>\n</doc>\n", tree.String())
}

func TestTree_UnbalancedTagStaysText(t *testing.T) {
	structs := collect(t, "<doc>\n<s>\n<foo>\n</s>\n</doc>\n", WithBoundary("doc"))
	require.Len(t, structs, 1)

	tree, err := structs[0].Tree()
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "\n<foo>\n", tree.Children[0].Text)
}

func TestTree_IsMemoized(t *testing.T) {
	st := NewStructure("<doc>\n</doc>\n", NewTagSet("doc"))

	first, err := st.Tree()
	require.NoError(t, err)
	second, err := st.Tree()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestTree_MalformedBlockIsDumped(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	raw := "<doc>\n<p>\n<s>\n</p>\n</s>\n</doc>\n"
	st := NewStructure(raw, NewTagSet("doc", "p", "s"))

	_, err := st.Tree()
	require.Error(t, err)

	var mb *MalformedBlockError
	require.True(t, errors.As(err, &mb))
	assert.Equal(t, "doc", mb.Name)
	assert.Contains(t, err.Error(), mb.Path)

	dumped, readErr := os.ReadFile(mb.Path)
	require.NoError(t, readErr)
	assert.Equal(t, Xmlize(raw, st.ValidTags()), string(dumped))

	_, again := st.Tree()
	assert.Same(t, err, again, "failed builds are not retried")
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "&\n<\n", Unescape("&amp;\n&lt;\n", true))
	assert.Equal(t, "&lt;", Unescape("&amp;lt;", false))
	assert.Equal(t, "<", Unescape("&amp;lt;", true))
	assert.Equal(t, "<", Unescape("&amp;amp;lt;", true))
	assert.Equal(t, "plain", Unescape("plain", true))
}
