package serv

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hitsdb/hitsdb/bench"
)

type benchReq struct {
	Queries    []int `json:"queries,omitempty"`
	Iterations int   `json:"iterations,omitempty"`
	Workers    int   `json:"workers,omitempty"`
}

type benchMsg struct {
	Type   string        `json:"type"`
	Event  *bench.Event  `json:"event,omitempty"`
	Report *bench.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	EnableCompression: true,
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	HandshakeTimeout:  10 * time.Second,
	CheckOrigin:       func(r *http.Request) bool { return true },
}

// apiV1BenchWS runs the suite and streams per-iteration progress to
// the client, then the final report.
func (s *Service) apiV1BenchWS(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		s.log.Warnf("bench ws: %s", err)
		return
	}
	defer c.Close()
	c.SetReadLimit(2048)

	var req benchReq

	if err := c.ReadJSON(&req); err != nil {
		s.log.Warnf("bench ws: %s", err)
		return
	}

	queries := bench.Queries
	if len(req.Queries) != 0 {
		if queries, err = bench.QueriesByNumber(req.Queries); err != nil {
			c.WriteJSON(benchMsg{Type: "error", Error: err.Error()}) //nolint: errcheck
			return
		}
	}

	opt := bench.Opts{
		Iterations: req.Iterations,
		Workers:    req.Workers,
		TimeLimit:  s.conf.Bench.TimeLimit,
	}
	if opt.Iterations == 0 {
		opt.Iterations = s.conf.Bench.Iterations
	}
	if opt.Workers == 0 {
		opt.Workers = s.conf.Bench.Workers
	}

	// worker goroutines report progress concurrently and gorilla
	// conns allow only one writer at a time
	var wmu sync.Mutex

	progress := func(ev bench.Event) {
		e := ev
		wmu.Lock()
		c.WriteJSON(benchMsg{Type: "progress", Event: &e}) //nolint: errcheck
		wmu.Unlock()
	}

	rep, err := bench.Run(r.Context(), s.hdb, queries, opt, progress)
	if err != nil {
		c.WriteJSON(benchMsg{Type: "error", Error: err.Error()}) //nolint: errcheck
		return
	}

	if err := c.WriteJSON(benchMsg{Type: "report", Report: rep}); err != nil {
		s.log.Warnf("bench ws: %s", err)
	}
}
