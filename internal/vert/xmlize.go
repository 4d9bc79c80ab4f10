package vert

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"

	"github.com/dgallion1/vertical/internal/doctree"
)

// & goes first so that the entities produced for < and > are not escaped
// again; a Replacer never rescans its own output.
var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Xmlize turns raw vertical text into parseable markup: entities are decoded
// once, everything is escaped, and only whole lines that are tags from the
// valid set (and contain no tab) get their angle brackets back.
func Xmlize(raw string, tags TagSet) string {
	text := escaper.Replace(html.UnescapeString(raw))
	if len(tags) == 0 {
		return text
	}
	return tagPattern(tags).ReplaceAllString(text, "<$1>")
}

func tagPattern(tags TagSet) *regexp.Regexp {
	names := lo.Map(tags.Names(), func(n string, _ int) string {
		return regexp.QuoteMeta(n)
	})
	// The name must end at a space, a slash or the closing bracket, so that
	// a valid "s" does not also restore "<sp>".
	return regexp.MustCompile(`(?m)^&lt;(/?(?:` + strings.Join(names, "|") + `)(?:[ /][^\t\n]*)?)&gt;$`)
}

func (s *Structure) build() (*doctree.Node, error) {
	text := Xmlize(s.Raw, s.tags)
	root, err := doctree.Parse(strings.NewReader(text))
	if err != nil {
		path, dumpErr := dump(text)
		if dumpErr != nil {
			return nil, fmt.Errorf("parse structure %q: %w (dump failed: %v)", s.Name, err, dumpErr)
		}
		return nil, &MalformedBlockError{Name: s.Name, Path: path, Err: err}
	}
	root.Tail = "\n"
	return root, nil
}

// dump writes the offending text to a fresh temp file that is left behind
// for inspection.
func dump(text string) (string, error) {
	f, err := os.CreateTemp("", "vrt-malformed-*.xml")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return f.Name(), err
	}
	return f.Name(), f.Close()
}
