package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Intro

Welcome *to* the guide.

## Setup

Install it.
Then run it.

### Details

- first item
- second item

## Usage

> Quoted advice.

` + "```go\nfunc main() {}\n```" + `

# Appendix

The end.
`
	p := &MarkdownParser{}
	out, err := p.Parse(strings.NewReader(input), "guide.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Title != "guide" {
		t.Errorf("expected title %q, got %q", "guide", out.Title)
	}

	want := []struct {
		path  string
		paras []string
	}{
		{"Intro", []string{"Welcome to the guide."}},
		{"Intro > Setup", []string{"Install it.\nThen run it."}},
		{"Intro > Setup > Details", []string{"first item", "second item"}},
		{"Intro > Usage", []string{"Quoted advice."}},
		{"Appendix", []string{"The end."}},
	}
	if len(out.Sections) != len(want) {
		t.Fatalf("expected %d sections, got %d: %+v", len(want), len(out.Sections), out.Sections)
	}
	for i, w := range want {
		s := out.Sections[i]
		if got := strings.Join(s.Headings, " > "); got != w.path {
			t.Errorf("section[%d]: path %q, want %q", i, got, w.path)
		}
		if len(s.Paragraphs) != len(w.paras) {
			t.Errorf("section[%d]: paragraphs %q, want %q", i, s.Paragraphs, w.paras)
			continue
		}
		for j := range w.paras {
			if s.Paragraphs[j] != w.paras[j] {
				t.Errorf("section[%d] paragraph[%d]: %q, want %q", i, j, s.Paragraphs[j], w.paras[j])
			}
		}
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	p := &MarkdownParser{}
	out, err := p.Parse(strings.NewReader("Just text.\n\nMore text."), "plain.markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Title != "plain" {
		t.Errorf("expected title %q, got %q", "plain", out.Title)
	}
	if len(out.Sections) != 1 || len(out.Sections[0].Headings) != 0 {
		t.Fatalf("expected one headless section, got %+v", out.Sections)
	}
	if n := out.Paragraphs(); n != 2 {
		t.Errorf("expected 2 paragraphs, got %d", n)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	out, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(out.Sections))
	}
}
