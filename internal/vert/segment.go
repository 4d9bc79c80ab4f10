package vert

import (
	"bufio"
	"io"
	"strings"
)

// RootTag wraps the whole input when no boundary structure is given.
const RootTag = "root"

const defaultMaxLineSize = 16 * 1024 * 1024

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithBoundary splits the input into one Structure per top-level boundary
// tag. The boundary structure must not nest inside itself.
func WithBoundary(tag string) Option {
	return func(s *Segmenter) { s.boundary = tag }
}

// WithValidTags bypasses inference with an exhaustive list of tag names.
func WithValidTags(tags TagSet) Option {
	return func(s *Segmenter) { s.fixed = tags }
}

// WithMaxLineSize bounds the length of a single input line.
func WithMaxLineSize(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.maxLine = n
		}
	}
}

// Segmenter pulls Structures off a vertical one at a time, in the manner of
// bufio.Scanner:
//
//	seg := vert.NewSegmenter(r, vert.WithBoundary("doc"))
//	for seg.Scan() {
//		st := seg.Structure()
//		...
//	}
//	if err := seg.Err(); err != nil { ... }
//
// Lines before the first boundary and an unterminated trailing block are
// dropped.
type Segmenter struct {
	sc       *bufio.Scanner
	boundary string
	fixed    TagSet
	maxLine  int

	wrap     bool
	started  bool
	finished bool

	inBlock bool
	buf     strings.Builder
	source  TagSource
	current *Structure
	err     error
	done    bool
}

// NewSegmenter creates a Segmenter over r.
func NewSegmenter(r io.Reader, opts ...Option) *Segmenter {
	s := &Segmenter{maxLine: defaultMaxLineSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.boundary == "" {
		s.boundary = RootTag
		s.wrap = true
		if s.fixed != nil {
			s.fixed = s.fixed.With(RootTag)
		}
	}
	s.sc = bufio.NewScanner(r)
	s.sc.Buffer(make([]byte, 0, min(64*1024, s.maxLine)), s.maxLine)
	return s
}

// Scan advances to the next Structure. It returns false at the end of the
// input or on a read error; see Err.
func (s *Segmenter) Scan() bool {
	if s.done {
		return false
	}
	s.current = nil

	for {
		line, synthetic, ok := s.nextLine()
		if !ok {
			s.done = true
			s.err = s.sc.Err()
			return false
		}
		line = strings.TrimSpace(line)

		if !s.inBlock {
			if !s.opens(line, synthetic) {
				continue
			}
			s.inBlock = true
			s.source = s.newSource()
		}

		s.source.Observe(line)
		s.buf.WriteString(line)
		s.buf.WriteByte('\n')

		if s.closes(line, synthetic) {
			s.current = NewStructure(s.buf.String(), s.source.Resolve())
			s.buf.Reset()
			s.inBlock = false
			return true
		}
	}
}

// Structure returns the Structure produced by the last successful Scan.
func (s *Segmenter) Structure() *Structure {
	return s.current
}

// Err returns the first read error, if any.
func (s *Segmenter) Err() error {
	return s.err
}

func (s *Segmenter) newSource() TagSource {
	if s.fixed != nil {
		return NewFixedTags(s.fixed)
	}
	return NewInferencer()
}

// When wrapping, only the synthetic root lines delimit the block, so a
// literal </root> in the data cannot end it early.
func (s *Segmenter) opens(line string, synthetic bool) bool {
	if s.wrap {
		return synthetic
	}
	return IsOpen(line, s.boundary)
}

func (s *Segmenter) closes(line string, synthetic bool) bool {
	if s.wrap {
		return synthetic && line == "</"+RootTag+">"
	}
	return IsClose(line, s.boundary)
}

func (s *Segmenter) nextLine() (line string, synthetic, ok bool) {
	if s.wrap && !s.started {
		s.started = true
		return "<" + RootTag + ">", true, true
	}
	if s.sc.Scan() {
		return s.sc.Text(), false, true
	}
	if s.wrap && !s.finished && s.sc.Err() == nil {
		s.finished = true
		return "</" + RootTag + ">", true, true
	}
	return "", false, false
}
