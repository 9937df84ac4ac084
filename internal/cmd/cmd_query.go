package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hitsdb/hitsdb/core"
)

var (
	dataFile string
	fakeRows int
	jsonOut  bool
)

func queryCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query against a data file",
		Args:  cobra.ExactArgs(1),
		Run:   cmdQuery,
	}
	c.Flags().StringVar(&dataFile, "file", "", "TSV, TSV.gz or Arrow data file")
	c.Flags().IntVar(&fakeRows, "fake", 0, "load this many synthetic rows instead")
	c.Flags().BoolVar(&jsonOut, "json", false, "print the result as json")
	return c
}

func cmdQuery(cmd *cobra.Command, args []string) {
	hdb := newEngine()

	res, err := hdb.Query(context.Background(), args[0])
	if err != nil {
		log.Fatalf("%s", err)
	}

	if jsonOut {
		fmt.Println(string(res.Data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(res.Columns, "\t"))

	for _, row := range res.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				vals[i] = "NULL"
			} else {
				vals[i] = fmt.Sprintf("%v", v)
			}
		}
		fmt.Fprintln(w, strings.Join(vals, "\t"))
	}

	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\n(%d rows in %s)\n", res.RowCount, res.Duration)
}

// newEngine builds an embedded engine loaded from --file or --fake.
func newEngine() *core.HitsDB {
	hdb, err := core.NewHitsDB(nil)
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case dataFile != "":
		if err := loadEngineFile(hdb, dataFile); err != nil {
			log.Fatalf("failed to load %s: %s", dataFile, err)
		}
		log.Infof("loaded %s: %d rows", dataFile, hdb.Rows())

	case fakeRows > 0:
		if _, err := hdb.LoadFake(context.Background(), fakeRows, 1); err != nil {
			log.Fatal(err)
		}
		log.Infof("loaded %d synthetic rows", hdb.Rows())

	default:
		log.Fatal("no data: pass --file or --fake")
	}

	return hdb
}

func loadEngineFile(hdb *core.HitsDB, fn string) error {
	f, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20)

	if strings.HasSuffix(fn, ".arrow") {
		_, err = hdb.Restore(r)
	} else {
		_, err = hdb.Load(context.Background(), r, core.FormatTSV)
	}
	return err
}
