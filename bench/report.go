package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rs/xid"
)

// QueryResult is the timing summary for one query of the suite.
type QueryResult struct {
	Num        int           `json:"num"`
	Name       string        `json:"name"`
	Iterations int           `json:"iterations"`
	Errors     int           `json:"errors"`
	Min        time.Duration `json:"min"`
	Max        time.Duration `json:"max"`
	Avg        time.Duration `json:"avg"`
	Rows       int           `json:"rows"`
}

// Report is a full suite run.
type Report struct {
	ID      string        `json:"id"`
	Target  string        `json:"target"`
	Started time.Time     `json:"started"`
	Elapsed time.Duration `json:"elapsed"`
	Results []QueryResult `json:"results"`
}

func newReport(target string) *Report {
	return &Report{
		ID:      xid.New().String(),
		Target:  target,
		Started: time.Now(),
	}
}

// RenderText writes the timing table.
func (r *Report) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintf(tw, "run %s on %s\n", r.ID, r.Target)
	fmt.Fprintln(tw, "#\tname\titers\terrs\tmin\tavg\tmax\trows")
	for _, q := range r.Results {
		fmt.Fprintf(tw, "Q%d\t%s\t%d\t%d\t%s\t%s\t%s\t%d\n",
			q.Num, q.Name, q.Iterations, q.Errors, q.Min, q.Avg, q.Max, q.Rows)
	}
	fmt.Fprintf(tw, "total\t\t\t\t\t%s\t\t\n", r.Elapsed)

	return tw.Flush()
}

// RenderJSON writes the report as indented JSON.
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// summarize folds raw iteration latencies into a QueryResult.
func summarize(q Query, lats []time.Duration, rows, errs int) QueryResult {
	qr := QueryResult{
		Num:        q.Num,
		Name:       q.Name,
		Iterations: len(lats),
		Errors:     errs,
		Rows:       rows,
	}
	if len(lats) == 0 {
		return qr
	}

	var total time.Duration
	qr.Min, qr.Max = lats[0], lats[0]
	for _, d := range lats {
		total += d
		if d < qr.Min {
			qr.Min = d
		}
		if d > qr.Max {
			qr.Max = d
		}
	}
	qr.Avg = total / time.Duration(len(lats))
	return qr
}
