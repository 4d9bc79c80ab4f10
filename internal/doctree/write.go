package doctree

import (
	"bufio"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#9;",
		"\n", "&#10;",
		"\r", "&#13;",
	)
)

// Write serializes n, including its tail, as markup. Nodes without text or
// children are written as empty-element tags.
func Write(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	write(bw, n)
	return bw.Flush()
}

// String returns the serialized form of n.
func (n *Node) String() string {
	var b strings.Builder
	bw := bufio.NewWriter(&b)
	write(bw, n)
	bw.Flush()
	return b.String()
}

func write(w *bufio.Writer, n *Node) {
	w.WriteByte('<')
	w.WriteString(n.Tag)
	for _, a := range n.Attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		attrEscaper.WriteString(w, a.Value)
		w.WriteByte('"')
	}

	if n.Text == "" && len(n.Children) == 0 {
		w.WriteString("/>")
	} else {
		w.WriteByte('>')
		textEscaper.WriteString(w, n.Text)
		for _, c := range n.Children {
			write(w, c)
		}
		w.WriteString("</")
		w.WriteString(n.Tag)
		w.WriteByte('>')
	}
	textEscaper.WriteString(w, n.Tail)
}

// WriteTo implements io.WriterTo.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := Write(cw, n)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
