// Package vert reads corpora in the vertical format: one token per line
// (tab-separated positional attributes) interleaved with structural tags,
// each structural tag alone on its line.
package vert

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the shape of a line.
type Kind int

const (
	NotTag Kind = iota
	OpenTag
	CloseTag
	SelfClosingTag
)

func (k Kind) String() string {
	switch k {
	case OpenTag:
		return "open"
	case CloseTag:
		return "close"
	case SelfClosingTag:
		return "self-closing"
	default:
		return "none"
	}
}

// Classify decides whether the whole (trimmed) line is a structural tag and
// returns its kind and name. The name is the run of word characters right
// after "<" or "</".
func Classify(line string) (Kind, string) {
	line = strings.TrimSpace(line)
	if len(line) < 3 || line[0] != '<' || line[len(line)-1] != '>' {
		return NotTag, ""
	}
	body := line[1 : len(line)-1]

	if rest, ok := strings.CutPrefix(body, "/"); ok {
		if rest != "" && leadingName(rest) == rest {
			return CloseTag, rest
		}
		return NotTag, ""
	}

	name := leadingName(body)
	if name == "" {
		return NotTag, ""
	}
	if strings.HasSuffix(body, "/") {
		return SelfClosingTag, name
	}
	return OpenTag, name
}

// IsOpen reports whether line opens a structure called name.
func IsOpen(line, name string) bool {
	k, n := Classify(line)
	return k == OpenTag && n == name
}

// IsClose reports whether line closes a structure called name.
func IsClose(line, name string) bool {
	k, n := Classify(line)
	return k == CloseTag && n == name
}

func leadingName(s string) string {
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	return s[:end]
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
