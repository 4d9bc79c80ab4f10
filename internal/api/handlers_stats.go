package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dgallion1/vertical/internal/pipeline"
)

// Stats accumulates pipeline counters per operation since startup, plus
// request latencies over the last hour.
type Stats struct {
	mu      sync.Mutex
	ops     map[string]*OpStats
	latency map[string]*Latency
}

// OpStats are the totals for one operation.
type OpStats struct {
	Requests int `json:"requests"`
	Failed   int `json:"failed"`
	pipeline.Stats
	Latency LatencySnapshot `json:"latency"`
}

func NewStats() *Stats {
	return &Stats{
		ops:     make(map[string]*OpStats),
		latency: make(map[string]*Latency),
	}
}

// Record adds the outcome of one request.
func (s *Stats) Record(op string, st pipeline.Stats, took time.Duration, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.ops[op]
	if !ok {
		o = &OpStats{}
		s.ops[op] = o
		s.latency[op] = NewLatency(time.Hour)
	}
	s.latency[op].Record(took)
	o.Requests++
	if failed {
		o.Failed++
	}
	o.Structures += st.Structures
	o.Written += st.Written
	o.Skipped += st.Skipped
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() map[string]OpStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]OpStats, len(s.ops))
	for k, v := range s.ops {
		o := *v
		o.Latency = s.latency[k].Snapshot()
		out[k] = o
	}
	return out
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ops": s.stats.Snapshot(),
	})
}
