package parser

import "strings"

// Outline is a document flattened into runs of paragraphs, each under the
// heading path it appeared beneath.
type Outline struct {
	Title    string
	Sections []Section
}

// Section is a run of paragraphs sharing one heading path and page.
type Section struct {
	Headings   []string // outermost first; empty before the first heading
	Paragraphs []string
	Page       int // source page, 0 if the format has no pages
}

// Paragraphs returns the number of paragraphs across all sections.
func (o *Outline) Paragraphs() int {
	n := 0
	for _, s := range o.Sections {
		n += len(s.Paragraphs)
	}
	return n
}

type heading struct {
	level int
	title string
}

// builder tracks the heading stack while a parser walks a document.
type builder struct {
	out     *Outline
	stack   []heading
	pending []string
	page    int
}

func newBuilder(title string) *builder {
	return &builder{out: &Outline{Title: title}}
}

// heading closes the current section and makes title the innermost heading
// at level, popping any headings at the same or a deeper level.
func (b *builder) heading(level int, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	b.flush()
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	b.stack = append(b.stack, heading{level: level, title: title})
}

func (b *builder) paragraph(text string) {
	if text = strings.TrimSpace(text); text != "" {
		b.pending = append(b.pending, text)
	}
}

func (b *builder) setPage(page int) {
	b.flush()
	b.page = page
}

func (b *builder) flush() {
	if len(b.pending) == 0 {
		return
	}
	var path []string
	for _, h := range b.stack {
		path = append(path, h.title)
	}
	b.out.Sections = append(b.out.Sections, Section{
		Headings:   path,
		Paragraphs: b.pending,
		Page:       b.page,
	})
	b.pending = nil
}

func (b *builder) outline() *Outline {
	b.flush()
	return b.out
}

// splitParagraphs splits text on blank lines.
func splitParagraphs(text string) []string {
	var paras []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paras = append(paras, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(strings.TrimRight(line, "\r"))
	}
	if current.Len() > 0 {
		paras = append(paras, current.String())
	}
	return paras
}
