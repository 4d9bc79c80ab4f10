// Package cli implements the vrt command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dgallion1/vertical/internal/config"
	"github.com/dgallion1/vertical/internal/version"
	"github.com/dgallion1/vertical/internal/vert"
)

// globals holds the flags shared by every subcommand.
type globals struct {
	cfg config.Config

	input     string
	inenc     string
	outenc    string
	callID    string
	logLevel  string
	validTags string
}

// NewRootCmd builds the vrt command tree. cfg supplies flag defaults.
func NewRootCmd(cfg config.Config) *cobra.Command {
	g := &globals{cfg: cfg}

	root := &cobra.Command{
		Use:   "vrt",
		Short: "Rewrite corpora in the vertical format",
		Long: `vrt reads a vertical (one token or structural tag per line), infers which
tags are real markup, builds a tree per structure and rewrites it: chunking,
grouping, projecting metadata, filtering and entity unescaping.

Documents (.txt, .md, .html, .pdf, .docx) can be turned into a vertical with
the verticalize command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Version = version.Version
	root.SetVersionTemplate(fmt.Sprintf("vrt %s\n", version.String()))

	pf := root.PersistentFlags()
	pf.StringVarP(&g.input, "input", "i", "-", "input file, - for stdin")
	pf.StringVar(&g.inenc, "inenc", cfg.InputEncoding, "input encoding")
	pf.StringVar(&g.outenc, "outenc", "utf-8", "output encoding")
	pf.StringVar(&g.callID, "id", "", "call id attached to every log record")
	pf.StringVarP(&g.logLevel, "log", "l", "WARN", "log level (DEBUG, INFO, WARN, ERROR)")
	pf.StringVar(&g.validTags, "valid-tags", strings.Join(cfg.ValidTags, ","),
		"comma-separated exhaustive list of structural tags; disables inference")

	root.AddCommand(
		newChunkCmd(g),
		newGroupCmd(g),
		newProjectCmd(g),
		newFilterCmd(g),
		newUnescapeCmd(g),
		newVerticalizeCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the vrt command line and exits non-zero on failure.
func Execute() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logger builds the stderr logger for cmd and records the invocation.
func (g *globals) logger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("--log: %w", err)
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With("command", cmd.Name())
	if g.callID != "" {
		log = log.With("call_id", g.callID)
	}

	var args []any
	cmd.Flags().Visit(func(f *pflag.Flag) {
		args = append(args, f.Name, f.Value.String())
	})
	log.Info("invocation", args...)
	return log, nil
}

// segmentOptions returns the segmenter options for boundary, honoring
// --valid-tags.
func (g *globals) segmentOptions(boundary string) []vert.Option {
	var opts []vert.Option
	if boundary != "" {
		opts = append(opts, vert.WithBoundary(boundary))
	}
	if tags := vert.ParseTagList(g.validTags); len(tags) > 0 {
		opts = append(opts, vert.WithValidTags(tags))
	}
	return opts
}

// openInput opens --input and decodes it from --inenc.
func (g *globals) openInput(cmd *cobra.Command) (io.Reader, func() error, error) {
	var r io.Reader = cmd.InOrStdin()
	closer := func() error { return nil }
	if g.input != "-" && g.input != "" {
		f, err := os.Open(g.input)
		if err != nil {
			return nil, nil, err
		}
		r, closer = f, f.Close
	}

	enc, err := lookupEncoding(g.inenc)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("--inenc: %w", err)
	}
	if enc != nil {
		r = enc.NewDecoder().Reader(r)
	}
	return r, closer, nil
}

// output wraps the command's stdout in an encoder for --outenc. The returned
// writer must be closed to flush the encoder.
func (g *globals) output(cmd *cobra.Command) (io.WriteCloser, error) {
	enc, err := lookupEncoding(g.outenc)
	if err != nil {
		return nil, fmt.Errorf("--outenc: %w", err)
	}
	if enc == nil {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return transform.NewWriter(cmd.OutOrStdout(), enc.NewEncoder()), nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// lookupEncoding resolves a WHATWG encoding label. UTF-8 needs no
// transformation and yields nil.
func lookupEncoding(label string) (encoding.Encoding, error) {
	if label == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q", label)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}
