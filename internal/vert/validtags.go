package vert

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// TagSet is a set of tag names trusted to be real structural markup.
type TagSet map[string]struct{}

// NewTagSet builds a set from names.
func NewTagSet(names ...string) TagSet {
	s := make(TagSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// ParseTagList parses a comma-separated list of tag names. Blank entries are
// ignored; an empty list yields a nil set.
func ParseTagList(list string) TagSet {
	names := lo.Compact(lo.Map(strings.Split(list, ","), func(n string, _ int) string {
		return strings.TrimSpace(n)
	}))
	if len(names) == 0 {
		return nil
	}
	return NewTagSet(names...)
}

func (s TagSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// With returns a copy of s extended by names. s itself is left untouched.
func (s TagSet) With(names ...string) TagSet {
	out := make(TagSet, len(s)+len(names))
	for n := range s {
		out[n] = struct{}{}
	}
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// Names returns the members in sorted order.
func (s TagSet) Names() []string {
	names := lo.Keys(s)
	sort.Strings(names)
	return names
}

// TagSource collects the valid tag names of one structure from its lines.
type TagSource interface {
	// Observe records a line and reports whether it looked like a tag.
	Observe(line string) bool
	Resolve() TagSet
}

// Inferencer trusts a tag name only when it is seen both opened and closed,
// or self-closing. Unbalanced names are token data or corpus errors and are
// never promoted to markup.
type Inferencer struct {
	opened     TagSet
	closed     TagSet
	selfClosed TagSet
}

func NewInferencer() *Inferencer {
	return &Inferencer{
		opened:     TagSet{},
		closed:     TagSet{},
		selfClosed: TagSet{},
	}
}

func (in *Inferencer) Observe(line string) bool {
	kind, name := Classify(line)
	switch kind {
	case OpenTag:
		in.opened[name] = struct{}{}
	case CloseTag:
		in.closed[name] = struct{}{}
	case SelfClosingTag:
		in.selfClosed[name] = struct{}{}
	default:
		return false
	}
	return true
}

// Resolve returns (opened ∩ closed) ∪ selfClosed.
func (in *Inferencer) Resolve() TagSet {
	balanced := lo.Intersect(lo.Keys(in.opened), lo.Keys(in.closed))
	return NewTagSet(lo.Union(balanced, lo.Keys(in.selfClosed))...)
}

// FixedTags skips inference and always resolves to a caller-supplied,
// exhaustive list. Tags missing from the list stay escaped.
type FixedTags struct {
	tags TagSet
}

func NewFixedTags(tags TagSet) *FixedTags {
	return &FixedTags{tags: tags}
}

func (f *FixedTags) Observe(line string) bool {
	kind, _ := Classify(line)
	return kind != NotTag
}

func (f *FixedTags) Resolve() TagSet {
	return f.tags
}
