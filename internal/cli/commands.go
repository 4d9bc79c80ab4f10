package cli

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/vertical/internal/pipeline"
	"github.com/dgallion1/vertical/internal/rewrite"
)

// runOp streams --input through op and writes the results to stdout.
func (g *globals) runOp(cmd *cobra.Command, op pipeline.Op, boundary string) (err error) {
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

	st, err := pipeline.Run(cmd.Context(), r, bw, op, log, g.segmentOptions(boundary)...)
	if st.Skipped > 0 {
		log.Warn("malformed structures were skipped", "skipped", st.Skipped, "structures", st.Structures)
	}
	return err
}

// parseMinMax parses "MIN,MAX".
func parseMinMax(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("--minmax %q: want MIN,MAX", s)
	}
	minLen, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("--minmax %q: %w", s, err)
	}
	maxLen, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("--minmax %q: %w", s, err)
	}
	return minLen, maxLen, nil
}

func newChunkCmd(g *globals) *cobra.Command {
	var (
		ancestor string
		child    string
		name     string
		minmax   string
		fallback string
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Bundle child structures into chunks of random length",
		Long: `Split every ancestor structure into chunks made of whole child structures.
Each chunk's target length in tokens is drawn uniformly from MIN..MAX. Chunks
carry the ancestor's attributes plus {ancestor}_id, id and position_in_text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			minLen, maxLen, err := parseMinMax(minmax)
			if err != nil {
				return err
			}
			fb, err := pipeline.ParseFallback(fallback)
			if err != nil {
				return err
			}
			op := pipeline.ChunkOp{
				Options: rewrite.ChunkOptions{
					Child: child,
					Name:  name,
					Min:   minLen,
					Max:   maxLen,
					Rand:  rand.New(rand.NewPCG(seed, 0)),
				},
				Fallback: fb,
			}
			return g.runOp(cmd, op, ancestor)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&ancestor, "ancestor", "a", "doc", "structure to split into chunks")
	f.StringVarP(&child, "child", "c", "s", "structure chunks are made of")
	f.StringVarP(&name, "name", "n", "chunk", "tag of the generated chunks")
	f.StringVarP(&minmax, "minmax", "m", fmt.Sprintf("%d,%d", g.cfg.ChunkMin, g.cfg.ChunkMax), "chunk length range MIN,MAX in tokens")
	f.StringVar(&fallback, "fallback", "", "id strategy for ancestors without an id (index, uuid)")
	f.Uint64Var(&seed, "seed", g.cfg.RandomSeed, "random seed")
	return cmd
}

func newGroupCmd(g *globals) *cobra.Command {
	var (
		parent      string
		target      string
		attrs       []string
		as          string
		fallback    string
		requireKeys bool
	)

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group target structures by attribute values",
		Long: `Within every parent structure, collect the target structures sharing the
same values of the given attributes under one new element. Groups get the
id {parent id}/{comma-joined values}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fb, err := pipeline.ParseFallback(fallback)
			if err != nil {
				return err
			}
			op := pipeline.GroupOp{
				Options: rewrite.GroupOptions{
					Target:      target,
					Keys:        attrs,
					Name:        as,
					RequireKeys: requireKeys,
				},
				Fallback: fb,
			}
			return g.runOp(cmd, op, parent)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&parent, "parent", "p", "", "structure within which to group; empty wraps the whole input")
	f.StringVarP(&target, "target", "t", "sp", "structure to group")
	f.StringArrayVarP(&attrs, "attr", "a", nil, "attribute to group by (repeatable)")
	f.StringVar(&as, "as", "group", "tag of the generated groups")
	f.StringVar(&fallback, "fallback", "", "id strategy for parents without an id (index, uuid)")
	f.BoolVar(&requireKeys, "require-keys", false, "fail when a target lacks a grouping attribute")
	_ = cmd.MarkFlagRequired("attr")
	return cmd
}

func newProjectCmd(g *globals) *cobra.Command {
	var structure, child string

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Copy a structure's attributes onto its child structures",
		Long: `Copy the attributes of every structure onto each child structure inside it,
prefixed with the structure's tag: <doc author="A"> gives <s doc_author="A">.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runOp(cmd, pipeline.ProjectOp{Child: child}, structure)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&structure, "struct", "s", "doc", "structure whose attributes are projected")
	f.StringVarP(&child, "child", "c", "s", "structure receiving the attributes")
	return cmd
}

func newFilterCmd(g *globals) *cobra.Command {
	var (
		structure string
		attrs     []string
		matchAny  bool
		matchAll  bool
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Keep structures whose attributes match",
		Long: `Print, untouched, every structure whose attributes contain all (--all, the
default) or any (--any) of the given key=value pairs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conds := make([]rewrite.Condition, 0, len(attrs))
			for _, a := range attrs {
				c, err := rewrite.ParseCondition(a)
				if err != nil {
					return err
				}
				conds = append(conds, c)
			}
			policy := rewrite.MatchAll
			if matchAny {
				policy = rewrite.MatchAny
			}
			return g.runOp(cmd, pipeline.FilterOp{Conditions: conds, Policy: policy}, structure)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&structure, "struct", "s", "doc", "structure to filter")
	f.StringArrayVarP(&attrs, "attr", "a", nil, "key=value condition (repeatable)")
	f.BoolVar(&matchAny, "any", false, "keep structures matching any condition")
	f.BoolVar(&matchAll, "all", false, "keep structures matching every condition (default)")
	cmd.MarkFlagsMutuallyExclusive("any", "all")
	_ = cmd.MarkFlagRequired("attr")
	return cmd
}
