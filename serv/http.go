package serv

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hitsdb/hitsdb/core"
)

const (
	maxReadBytes = 100000 // 100Kb
	maxLoadBytes = 1 << 31
)

type queryReq struct {
	Query string `json:"query"`
}

type errResp struct {
	Error string `json:"error"`
}

type loadResp struct {
	Rows    int   `json:"rows"`
	Total   int   `json:"total"`
	Version int64 `json:"version"`
}

func (s *Service) apiV1Query(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	b, err := io.ReadAll(io.LimitReader(r.Body, maxReadBytes))
	if err != nil {
		renderErr(w, http.StatusBadRequest, err)
		return
	}
	defer r.Body.Close()

	req := queryReq{}

	if err := json.Unmarshal(b, &req); err != nil {
		renderErr(w, http.StatusBadRequest,
			errors.Wrap(err, "failed to decode json request body"))
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		renderErr(w, http.StatusBadRequest, errors.New("query is empty"))
		return
	}

	res, err := s.hdb.Query(r.Context(), req.Query)
	if err != nil {
		s.metrics.queryErrors.Inc()
		renderErr(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.metrics.queries.Inc()
	s.metrics.queryDuration.Observe(time.Since(start).Seconds())

	if s.conf.CacheControl != "" {
		w.Header().Set("Cache-Control", s.conf.CacheControl)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(res.Data)

	s.log.Debugf("query: %d rows in %s", res.RowCount, res.Duration)
}

func (s *Service) apiV1Schema(w http.ResponseWriter, r *http.Request) {
	type col struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		NotNull bool   `json:"not_null"`
	}
	type table struct {
		Name    string `json:"name"`
		Columns []col  `json:"columns"`
	}

	st := s.hdb.Schema()
	t := table{Name: st.Name}

	for _, c := range st.Columns {
		t.Columns = append(t.Columns, col{
			Name:    c.Name,
			Type:    c.Type.String(),
			NotNull: c.NotNull,
		})
	}

	renderJSON(w, t)
}

// apiV1Load appends TSV rows from the request body. A gzip body is
// detected from its magic bytes, same as file loads.
func (s *Service) apiV1Load(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	n, err := s.hdb.Load(r.Context(),
		io.LimitReader(r.Body, maxLoadBytes), core.FormatTSV)
	if err != nil {
		renderErr(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.metrics.rowsLoaded.Add(float64(n))
	s.log.Infof("loaded %d rows over http", n)

	renderJSON(w, loadResp{
		Rows:    n,
		Total:   s.hdb.Rows(),
		Version: s.hdb.Version(),
	})
}

func loadFile(hdb *core.HitsDB, fn string) error {
	f, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = hdb.Load(context.Background(), bufio.NewReaderSize(f, 1<<20), core.FormatTSV)
	return err
}

func restoreFile(hdb *core.HitsDB, fn string) error {
	f, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = hdb.Restore(bufio.NewReaderSize(f, 1<<20))
	return err
}

// apiV1Snapshot streams the whole store as an Arrow IPC snapshot.
func (s *Service) apiV1Snapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.apache.arrow.stream")

	// headers are gone once writing starts, errors can only be logged
	if err := s.hdb.Snapshot(w); err != nil {
		s.log.Errorf("snapshot: %s", err)
	}
}

//nolint:errcheck
func renderJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

//nolint:errcheck
func renderErr(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errResp{Error: err.Error()})
}
