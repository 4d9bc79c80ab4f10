// Package verticalize turns a parsed document into the vertical format: one
// token per line, wrapped in doc, p and s structures.
package verticalize

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/blevesearch/segment"

	"github.com/dgallion1/vertical/internal/parser"
)

// HeadingSeparator joins a section's heading path in the heading attribute.
const HeadingSeparator = " > "

// Stats counts what Write emitted.
type Stats struct {
	Paragraphs int `json:"paragraphs"`
	Sentences  int `json:"sentences"`
	Tokens     int `json:"tokens"`
}

// ContentHashHex returns the first 16 hex digits of the SHA-256 of data,
// used as a stable document id.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:8])
}

// Write emits o as a single <doc> structure with the given id.
func Write(w io.Writer, o *parser.Outline, id string) (Stats, error) {
	var st Stats
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "<doc id=\"%s\" title=\"%s\">\n", attrValue(id), attrValue(o.Title))
	for _, sec := range o.Sections {
		open := "<p"
		if len(sec.Headings) > 0 {
			open += ` heading="` + attrValue(strings.Join(sec.Headings, HeadingSeparator)) + `"`
		}
		if sec.Page > 0 {
			open += ` page="` + strconv.Itoa(sec.Page) + `"`
		}
		open += ">\n"

		for _, para := range sec.Paragraphs {
			sentences := splitSentences(strings.Join(strings.Fields(para), " "))
			if len(sentences) == 0 {
				continue
			}
			st.Paragraphs++
			bw.WriteString(open)
			for _, sent := range sentences {
				n, err := writeSentence(bw, sent)
				if err != nil {
					return st, err
				}
				if n > 0 {
					st.Sentences++
					st.Tokens += n
				}
			}
			bw.WriteString("</p>\n")
		}
	}
	bw.WriteString("</doc>\n")
	return st, bw.Flush()
}

// writeSentence writes one <s> structure and returns its token count. A
// sentence with no tokens is not written.
func writeSentence(bw *bufio.Writer, sent string) (int, error) {
	tokens, err := Tokenize(sent)
	if err != nil || len(tokens) == 0 {
		return 0, err
	}
	bw.WriteString("<s>\n")
	for _, tok := range tokens {
		bw.WriteString(tok)
		bw.WriteByte('\n')
	}
	bw.WriteString("</s>\n")
	return len(tokens), nil
}

// Tokenize splits text at Unicode word boundaries, dropping whitespace.
// Punctuation runs become tokens of their own.
func Tokenize(text string) ([]string, error) {
	var tokens []string
	seg := segment.NewWordSegmenter(strings.NewReader(text))
	for seg.Segment() {
		tok := seg.Text()
		if strings.TrimSpace(tok) == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	if err := seg.Err(); err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	return tokens, nil
}

// splitSentences breaks on '.', '!' or '?' followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			flush()
		}
	}
	flush()
	return sentences
}

var attrCleaner = strings.NewReplacer(`"`, "'", "\t", " ", "\n", " ", "\r", " ")

func attrValue(s string) string {
	return html.EscapeString(attrCleaner.Replace(s))
}
