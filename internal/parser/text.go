package parser

import (
	"io"
	"strings"
)

// TextParser handles plain text: paragraphs are separated by blank lines.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Outline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	b := newBuilder(titleFromFilename(filename))
	for _, para := range splitParagraphs(strings.ReplaceAll(string(data), "\r\n", "\n")) {
		b.paragraph(para)
	}
	return b.outline(), nil
}
