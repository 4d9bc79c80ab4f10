package vert

import "golang.org/x/net/html"

// Unescape decodes character references in s. When recursive is set it keeps
// decoding until nothing changes, so "&amp;lt;" becomes "<".
func Unescape(s string, recursive bool) string {
	for {
		out := html.UnescapeString(s)
		if !recursive || out == s {
			return out
		}
		s = out
	}
}
