// Package pipeline streams a vertical through the segmenter and applies one
// rewrite operation to every structure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/vertical/internal/vert"
)

// Stats counts the structures a run has seen.
type Stats struct {
	Structures int `json:"structures"`
	Written    int `json:"written"`
	Skipped    int `json:"skipped"`
}

// Run segments r with opts and applies op to each structure in order,
// writing results to w. Malformed structures are logged and skipped; any
// other error stops the run.
func Run(ctx context.Context, r io.Reader, w io.Writer, op Op, log *slog.Logger, opts ...vert.Option) (Stats, error) {
	var st Stats
	seg := vert.NewSegmenter(r, opts...)
	for seg.Scan() {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		s := seg.Structure()
		index := st.Structures
		st.Structures++

		wrote, err := op.Apply(index, s, w)
		var malformed *vert.MalformedBlockError
		switch {
		case errors.As(err, &malformed):
			st.Skipped++
			log.Warn("skipping malformed structure",
				"op", op.Name(),
				"index", index,
				"structure", s.Name,
				"dump", malformed.Path,
				"error", malformed.Err,
			)
			continue
		case err != nil:
			return st, fmt.Errorf("%s structure %d: %w", op.Name(), index, err)
		}
		if wrote {
			st.Written++
		}
	}
	if err := seg.Err(); err != nil {
		return st, fmt.Errorf("read input: %w", err)
	}

	log.Debug("pipeline finished",
		"op", op.Name(),
		"structures", st.Structures,
		"written", st.Written,
		"skipped", st.Skipped,
	)
	return st, nil
}
