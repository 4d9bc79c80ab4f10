package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/vertical/internal/parser"
	"github.com/dgallion1/vertical/internal/verticalize"
	"github.com/dgallion1/vertical/internal/version"
	"github.com/dgallion1/vertical/internal/vert"
)

func newUnescapeCmd(g *globals) *cobra.Command {
	var noRecursive bool

	cmd := &cobra.Command{
		Use:   "unescape",
		Short: "Decode HTML entities line by line",
		Long: `Decode character references on every line. By default decoding repeats
until the line stops changing, so double-escaped text such as &amp;lt; becomes <.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			log, err := g.logger(cmd)
			if err != nil {
				return err
			}
			r, closeIn, err := g.openInput(cmd)
			if err != nil {
				return err
			}
			defer closeIn()
			out, err := g.output(cmd)
			if err != nil {
				return err
			}
			bw := bufio.NewWriter(out)
			defer func() {
				err = errors.Join(err, bw.Flush(), out.Close())
			}()

			sc := bufio.NewScanner(r)
			sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
			lines := 0
			for sc.Scan() {
				bw.WriteString(vert.Unescape(sc.Text(), !noRecursive))
				bw.WriteByte('\n')
				lines++
			}
			log.Debug("unescaped", "lines", lines)
			return sc.Err()
		},
	}

	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "decode each line only once")
	return cmd
}

func newVerticalizeCmd(g *globals) *cobra.Command {
	var (
		title string
		docID string
	)

	cmd := &cobra.Command{
		Use:   "verticalize FILE",
		Short: "Convert a document into a vertical",
		Long: `Parse a .txt, .md, .html, .pdf or .docx document and write it as a single
<doc> structure with one <p> per paragraph, one <s> per sentence and one token
per line. The doc id defaults to a hash of the file's contents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			log, err := g.logger(cmd)
			if err != nil {
				return err
			}
			path := args[0]
			p, err := parser.ForFile(path)
			if err != nil {
				return err
			}
			if pdf, ok := p.(*parser.PDFParser); ok {
				pdf.FallbackPdftotext = g.cfg.PDFFallbackPdftotext
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			outline, err := p.Parse(bytes.NewReader(data), filepath.Base(path))
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			if title != "" {
				outline.Title = title
			}
			if docID == "" {
				docID = verticalize.ContentHashHex(data)
			}

			out, err := g.output(cmd)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, out.Close())
			}()
			st, err := verticalize.Write(out, outline, docID)
			if err != nil {
				return err
			}
			log.Info("verticalized",
				"file", path,
				"doc_id", docID,
				"paragraphs", st.Paragraphs,
				"sentences", st.Sentences,
				"tokens", st.Tokens,
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "document title (default: from the document or file name)")
	f.StringVar(&docID, "doc-id", "", "document id (default: content hash)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vrt %s\n", version.String())
		},
	}
}

