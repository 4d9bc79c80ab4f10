package vert

import (
	"regexp"
	"strings"

	"github.com/dgallion1/vertical/internal/doctree"
)

var (
	nameRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	attrRe = regexp.MustCompile(`([\p{L}\p{N}_]+)="(.*?)"`)
)

// Structure is one top-level block of a vertical. Its tree is built on first
// use and cached; a failed build is cached as well.
type Structure struct {
	Raw  string            // raw lines, ending in a newline
	Name string            // first tag name on the first line
	Attr map[string]string // attributes of the opening tag

	tags TagSet

	built   bool
	tree    *doctree.Node
	treeErr error
}

// NewStructure wraps raw vertical text whose valid tag names are tags.
func NewStructure(raw string, tags TagSet) *Structure {
	raw = strings.TrimSpace(raw) + "\n"
	first, _, _ := strings.Cut(raw, "\n")

	attr := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(first, -1) {
		attr[m[1]] = m[2]
	}

	return &Structure{
		Raw:  raw,
		Name: nameRe.FindString(first),
		Attr: attr,
		tags: tags,
	}
}

// ValidTags returns the tag names promoted to markup in this structure.
func (s *Structure) ValidTags() TagSet {
	return s.tags
}

// Tree returns the structure as a tree, building it on the first call. A
// *MalformedBlockError is returned when the escaped text does not parse.
func (s *Structure) Tree() (*doctree.Node, error) {
	if !s.built {
		s.tree, s.treeErr = s.build()
		s.built = true
	}
	return s.tree, s.treeErr
}
