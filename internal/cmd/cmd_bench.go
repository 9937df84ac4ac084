package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/hitsdb/hitsdb/bench"
)

var (
	benchNums    []int
	benchIters   int
	benchWorkers int
	benchDBType  string
	benchDSN     string
	benchJSON    bool
)

func benchCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "bench",
		Short: "Run the query suite against the embedded engine or an external database",
		Run:   cmdBench,
	}
	c.Flags().StringVar(&dataFile, "file", "", "TSV, TSV.gz or Arrow data file")
	c.Flags().IntVar(&fakeRows, "fake", 0, "load this many synthetic rows instead")
	c.Flags().IntSliceVar(&benchNums, "queries", nil, "query numbers to run (default all)")
	c.Flags().IntVar(&benchIters, "iterations", 3, "iterations per query")
	c.Flags().IntVar(&benchWorkers, "workers", 1, "concurrent iterations")
	c.Flags().StringVar(&benchDBType, "db", "", "external database type: postgres or mysql")
	c.Flags().StringVar(&benchDSN, "dsn", "", "external database dsn")
	c.Flags().BoolVar(&benchJSON, "json", false, "print the report as json")
	return c
}

func cmdBench(cmd *cobra.Command, args []string) {
	queries := bench.Queries

	if len(benchNums) != 0 {
		var err error
		if queries, err = bench.QueriesByNumber(benchNums); err != nil {
			log.Fatal(err)
		}
	}

	opt := bench.Opts{Iterations: benchIters, Workers: benchWorkers}

	progress := func(ev bench.Event) {
		if ev.Err != "" {
			log.Warnf("Q%d %s #%d: %s", ev.Num, ev.Name, ev.Iteration, ev.Err)
			return
		}
		log.Infof("Q%d %s #%d: %d rows in %s", ev.Num, ev.Name, ev.Iteration,
			ev.Rows, ev.Elapsed)
	}

	var rep *bench.Report
	var err error

	if benchDBType != "" {
		// the dsn can live in the config file instead of the flag
		if benchDSN == "" {
			setup(cpath)
			benchDSN = conf.DB.DSN
			if conf.DB.Type != "" {
				benchDBType = conf.DB.Type
			}
		}

		db, err1 := bench.OpenDB(benchDBType, benchDSN)
		if err1 != nil {
			log.Fatal(err1)
		}
		defer db.Close() //nolint: errcheck

		rep, err = bench.RunSQL(context.Background(), db, benchDBType,
			queries, opt, progress)
	} else {
		rep, err = bench.Run(context.Background(), newEngine(),
			queries, opt, progress)
	}

	if err != nil {
		log.Fatal(err)
	}

	if benchJSON {
		if err := rep.RenderJSON(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := rep.RenderText(os.Stdout); err != nil {
		log.Fatal(err)
	}
}
