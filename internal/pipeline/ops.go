package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/dgallion1/vertical/internal/doctree"
	"github.com/dgallion1/vertical/internal/rewrite"
	"github.com/dgallion1/vertical/internal/vert"
)

// Op rewrites one structure and writes the result to w. It reports whether
// anything was written.
type Op interface {
	Name() string
	Apply(index int, s *vert.Structure, w io.Writer) (bool, error)
}

// IDFallback supplies an id for the index-th structure of a stream when the
// structure has none of its own.
type IDFallback func(index int) string

// IndexFallback numbers structures by their position in the stream.
func IndexFallback(index int) string {
	return fmt.Sprintf("__autoid%d__", index)
}

// UUIDFallback ignores the position and returns a random UUID.
func UUIDFallback(int) string {
	return uuid.NewString()
}

// ParseFallback maps "index" and "uuid" to their strategies. The empty
// string and "none" mean no fallback.
func ParseFallback(s string) (IDFallback, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return nil, nil
	case "index":
		return IndexFallback, nil
	case "uuid":
		return UUIDFallback, nil
	}
	return nil, fmt.Errorf("%w: unknown id fallback %q (want index or uuid)", rewrite.ErrInvalidOptions, s)
}

func (f IDFallback) id(index int) string {
	if f == nil {
		return ""
	}
	return f(index)
}

// ChunkOp applies rewrite.Chunk to every structure.
type ChunkOp struct {
	Options  rewrite.ChunkOptions
	Fallback IDFallback
}

func (op ChunkOp) Name() string { return "chunk" }

func (op ChunkOp) Apply(index int, s *vert.Structure, w io.Writer) (bool, error) {
	root, err := s.Tree()
	if err != nil {
		return false, err
	}
	opts := op.Options
	if opts.FallbackID == "" {
		opts.FallbackID = op.Fallback.id(index)
	}
	out, err := rewrite.Chunk(root, opts)
	if err != nil {
		return false, err
	}
	return writeTree(w, out)
}

// GroupOp applies rewrite.Group to every structure.
type GroupOp struct {
	Options  rewrite.GroupOptions
	Fallback IDFallback
}

func (op GroupOp) Name() string { return "group" }

func (op GroupOp) Apply(index int, s *vert.Structure, w io.Writer) (bool, error) {
	root, err := s.Tree()
	if err != nil {
		return false, err
	}
	opts := op.Options
	if opts.FallbackRootID == "" {
		opts.FallbackRootID = op.Fallback.id(index)
	}
	out, err := rewrite.Group(root, opts)
	if err != nil {
		return false, err
	}
	return writeTree(w, out)
}

// ProjectOp applies rewrite.Project to every structure.
type ProjectOp struct {
	Child string
}

func (op ProjectOp) Name() string { return "project" }

func (op ProjectOp) Apply(_ int, s *vert.Structure, w io.Writer) (bool, error) {
	root, err := s.Tree()
	if err != nil {
		return false, err
	}
	rewrite.Project(root, op.Child)
	return writeTree(w, root)
}

// FilterOp passes through the raw text of structures whose attributes match.
// It never builds a tree, so malformed structures are passed through too.
type FilterOp struct {
	Conditions []rewrite.Condition
	Policy     rewrite.MatchPolicy
}

func (op FilterOp) Name() string { return "filter" }

func (op FilterOp) Apply(_ int, s *vert.Structure, w io.Writer) (bool, error) {
	if !rewrite.Filter(s.Attr, op.Conditions, op.Policy) {
		return false, nil
	}
	if _, err := io.WriteString(w, s.Raw); err != nil {
		return false, err
	}
	return true, nil
}

func writeTree(w io.Writer, n *doctree.Node) (bool, error) {
	if _, err := n.WriteTo(w); err != nil {
		return false, err
	}
	return true, nil
}
