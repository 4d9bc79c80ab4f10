// Package rewrite restructures the tree of a vertical structure: chunking,
// grouping by attribute values, projecting metadata and filtering.
package rewrite

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/dgallion1/vertical/internal/doctree"
)

var (
	// ErrMissingUniqueID means neither the structure nor the caller supplied
	// an id, so the generated ids could collide.
	ErrMissingUniqueID = errors.New("structure has no id attribute and no fallback id was given")

	// ErrInvalidOptions is returned for unusable rewrite parameters.
	ErrInvalidOptions = errors.New("invalid rewrite options")
)

// RandSource draws uniform integers in [0, n). *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

// ChunkOptions controls Chunk.
type ChunkOptions struct {
	Child      string     // structure the chunks consist of; never split
	Name       string     // tag of the new chunk elements
	Min        int        // minimum target length in positions
	Max        int        // maximum target length in positions
	FallbackID string     // used when the structure has no id
	Rand       RandSource // nil means a fixed-seed source
}

func (o ChunkOptions) validate() error {
	switch {
	case o.Child == "":
		return fmt.Errorf("%w: chunk child tag is empty", ErrInvalidOptions)
	case o.Name == "":
		return fmt.Errorf("%w: chunk name is empty", ErrInvalidOptions)
	case o.Min < 0 || o.Max < o.Min:
		return fmt.Errorf("%w: chunk length range [%d, %d]", ErrInvalidOptions, o.Min, o.Max)
	}
	return nil
}

// Chunk returns a new tree in which the Child structures of root are bundled
// into Name elements of roughly Min..Max positions (token lines). Each target
// length is drawn anew for every chunk. A child is never split, so a long
// child can push its chunk past Max, and the last chunk may be shorter than
// Min. Everything except root, the chunks and the children is dropped.
//
// Chunks carry root's attributes plus {root}_id, id ({root id}_{index}) and
// position_in_text.
func Chunk(root *doctree.Node, opts ChunkOptions) (*doctree.Node, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 0))
	}

	out := doctree.NewNode(root.Tag, root.Attrs)
	out.Text, out.Tail = "\n", "\n"

	newChunk := func() (*doctree.Node, int) {
		c := doctree.NewNode(opts.Name, root.Attrs)
		c.Text, c.Tail = "\n", "\n"
		return c, opts.Min + rng.IntN(opts.Max-opts.Min+1)
	}

	chunk, target := newChunk()
	positions := 0
	for _, child := range root.Iter(opts.Child) {
		chunk.Append(child.Copy())
		positions += countPositions(child)
		if positions >= target {
			out.Append(chunk)
			chunk, target = newChunk()
			positions = 0
		}
	}
	if positions > 0 {
		out.Append(chunk)
	}

	total := len(out.Children)
	for i, c := range out.Children {
		origID, ok := c.Get("id")
		if !ok {
			if opts.FallbackID == "" {
				return nil, fmt.Errorf("chunk <%s>: %w", root.Tag, ErrMissingUniqueID)
			}
			origID = opts.FallbackID
		}
		c.Set(root.Tag+"_id", origID)
		c.Set("id", fmt.Sprintf("%s_%d", origID, i))
		c.Set("position_in_text", PositionInText(i, total))
	}

	return out, nil
}

var blankLines = regexp.MustCompile(`\n{2,}`)

// countPositions counts the lines of all text dominated by n, ignoring
// leading, trailing and repeated blank lines.
func countPositions(n *doctree.Node) int {
	text := strings.Trim(n.TextContent(), "\n")
	if text == "" {
		return 0
	}
	text = blankLines.ReplaceAllString(text, "\n")
	return strings.Count(text, "\n") + 1
}

// PositionInText classifies chunk idx of total into thirds.
func PositionInText(idx, total int) string {
	if total <= 2 {
		if idx == 0 {
			return "beginning"
		}
		return "end"
	}
	switch t := float64(total); {
	case idx < int(math.Round(t/3)):
		return "beginning"
	case idx < int(math.Round(2*t/3)):
		return "middle"
	default:
		return "end"
	}
}
