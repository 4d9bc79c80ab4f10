package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/vertical/internal/pipeline"
	"github.com/dgallion1/vertical/internal/rewrite"
	"github.com/dgallion1/vertical/internal/vert"
)

const (
	contentTypeXML  = "application/xml; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minLen, err := queryInt(q, "min", s.cfg.ChunkMin)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxLen, err := queryInt(q, "max", s.cfg.ChunkMax)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	seed := s.cfg.RandomSeed
	if v := q.Get("seed"); v != "" {
		if seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			jsonError(w, fmt.Sprintf("seed: %q is not a number", v), http.StatusBadRequest)
			return
		}
	}
	fb, err := pipeline.ParseFallback(q.Get("fallback"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	op := pipeline.ChunkOp{
		Options: rewrite.ChunkOptions{
			Child: queryOr(q, "child", "s"),
			Name:  queryOr(q, "name", "chunk"),
			Min:   minLen,
			Max:   maxLen,
			Rand:  rand.New(rand.NewPCG(seed, 0)),
		},
		Fallback: fb,
	}
	s.runOp(w, r, op, queryOr(q, "ancestor", "doc"), contentTypeXML)
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fb, err := pipeline.ParseFallback(q.Get("fallback"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	op := pipeline.GroupOp{
		Options: rewrite.GroupOptions{
			Target:      queryOr(q, "target", "sp"),
			Keys:        q["attr"],
			Name:        queryOr(q, "as", "group"),
			RequireKeys: q.Get("require_keys") == "true",
		},
		Fallback: fb,
	}
	s.runOp(w, r, op, q.Get("parent"), contentTypeXML)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	op := pipeline.ProjectOp{Child: queryOr(q, "child", "s")}
	s.runOp(w, r, op, queryOr(q, "struct", "doc"), contentTypeXML)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	policy, err := rewrite.ParseMatchPolicy(q.Get("match"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var conds []rewrite.Condition
	for _, a := range q["attr"] {
		c, err := rewrite.ParseCondition(a)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		conds = append(conds, c)
	}
	op := pipeline.FilterOp{Conditions: conds, Policy: policy}
	s.runOp(w, r, op, queryOr(q, "struct", "doc"), contentTypeText)
}

// runOp streams the request body through op into a buffer, so a failure
// part way through still yields a clean JSON error.
func (s *Server) runOp(w http.ResponseWriter, r *http.Request, op pipeline.Op, boundary, contentType string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	log := s.log.With("request_id", middleware.GetReqID(r.Context()), "op", op.Name())

	var opts []vert.Option
	if boundary != "" {
		opts = append(opts, vert.WithBoundary(boundary))
	}
	if tags := s.validTags(r.URL.Query()); len(tags) > 0 {
		opts = append(opts, vert.WithValidTags(tags))
	}

	var buf bytes.Buffer
	start := time.Now()
	st, err := pipeline.Run(r.Context(), r.Body, &buf, op, log, opts...)
	s.stats.Record(op.Name(), st, time.Since(start), err != nil)
	if err != nil {
		code := errorStatus(err)
		if code == http.StatusInternalServerError {
			log.Error("pipeline failed", "error", err)
		}
		jsonError(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Vrt-Structures", strconv.Itoa(st.Structures))
	w.Header().Set("X-Vrt-Skipped", strconv.Itoa(st.Skipped))
	w.Write(buf.Bytes())
}

func (s *Server) validTags(q url.Values) vert.TagSet {
	if v := q.Get("valid_tags"); v != "" {
		return vert.ParseTagList(v)
	}
	return vert.NewTagSet(s.cfg.ValidTags...)
}

func errorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, rewrite.ErrInvalidOptions),
		errors.Is(err, rewrite.ErrMissingUniqueID),
		errors.Is(err, rewrite.ErrMissingAttribute):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func queryOr(q url.Values, key, fallback string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	return fallback
}

func queryInt(q url.Values, key string, fallback int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, v)
	}
	return n, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
