package vert

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, input string, opts ...Option) []*Structure {
	t.Helper()
	seg := NewSegmenter(strings.NewReader(input), opts...)
	var out []*Structure
	for seg.Scan() {
		out = append(out, seg.Structure())
	}
	require.NoError(t, seg.Err())
	return out
}

const twoDocs = `preamble
<corpus>
<doc id="1" author="foo">
<s>
a	A
</s>
</doc>
<doc id="2" author="bar" author="baz">
<s>
b	B
<foo>
</s>
</doc>
<doc id="3">
<s>
unterminated
`

func TestSegmenter_Boundary(t *testing.T) {
	structs := collect(t, twoDocs, WithBoundary("doc"))
	require.Len(t, structs, 2)

	first := structs[0]
	assert.Equal(t, "doc", first.Name)
	assert.Equal(t, map[string]string{"id": "1", "author": "foo"}, first.Attr)
	assert.Equal(t, "<doc id=\"1\" author=\"foo\">\n<s>\na\tA\n</s>\n</doc>\n", first.Raw)
	assert.Equal(t, []string{"doc", "s"}, first.ValidTags().Names())

	second := structs[1]
	assert.Equal(t, "baz", second.Attr["author"], "last duplicate attribute wins")
	assert.False(t, second.ValidTags().Has("foo"))
}

func TestSegmenter_FreshInferencePerBlock(t *testing.T) {
	input := "<doc>\n<p>\n</p>\n</doc>\n<doc>\n<p>\n</doc>\n"
	structs := collect(t, input, WithBoundary("doc"))
	require.Len(t, structs, 2)

	assert.True(t, structs[0].ValidTags().Has("p"))
	assert.False(t, structs[1].ValidTags().Has("p"))
}

func TestSegmenter_WrapsWholeInput(t *testing.T) {
	input := "<s>\na\n</s>\n<s>\nb\n</s>\n"
	structs := collect(t, input)
	require.Len(t, structs, 1)

	st := structs[0]
	assert.Equal(t, RootTag, st.Name)
	assert.Equal(t, "<root>\n<s>\na\n</s>\n<s>\nb\n</s>\n</root>\n", st.Raw)
	assert.Equal(t, []string{"root", "s"}, st.ValidTags().Names())
}

func TestSegmenter_WrapIgnoresLiteralRootClose(t *testing.T) {
	structs := collect(t, "a\n</root>\nb\n")
	require.Len(t, structs, 1)
	assert.Contains(t, structs[0].Raw, "b\n</root>\n")
}

func TestSegmenter_WrapEmptyInput(t *testing.T) {
	structs := collect(t, "")
	require.Len(t, structs, 1)
	assert.Equal(t, "<root>\n</root>\n", structs[0].Raw)
}

func TestSegmenter_FixedTagsBypassInference(t *testing.T) {
	supplied := NewTagSet("s")
	structs := collect(t, "<s>\n<p>\nx\n</p>\n</s>\n", WithValidTags(supplied))
	require.Len(t, structs, 1)

	assert.Equal(t, []string{"root", "s"}, structs[0].ValidTags().Names())
	assert.False(t, supplied.Has(RootTag), "caller's set must not be mutated")
}

func TestSegmenter_FixedTagsWithBoundary(t *testing.T) {
	structs := collect(t, twoDocs, WithBoundary("doc"), WithValidTags(NewTagSet("doc")))
	require.Len(t, structs, 2)
	assert.Equal(t, []string{"doc"}, structs[0].ValidTags().Names())
}

func TestSegmenter_LineTooLong(t *testing.T) {
	input := "<doc>\n" + strings.Repeat("x", 200) + "\n</doc>\n"
	seg := NewSegmenter(strings.NewReader(input), WithBoundary("doc"), WithMaxLineSize(100))
	for seg.Scan() {
	}
	assert.Error(t, seg.Err())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestSegmenter_ReadErrorStopsWrapping(t *testing.T) {
	seg := NewSegmenter(failingReader{})
	assert.False(t, seg.Scan())
	assert.EqualError(t, seg.Err(), "boom")
	assert.Nil(t, seg.Structure())
}
