package cmd

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"
)

var snapOut string

func snapshotCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "snapshot",
		Short: "Convert a data file to an Arrow snapshot",
		Run:   cmdSnapshot,
	}
	c.Flags().StringVar(&dataFile, "file", "", "TSV, TSV.gz or Arrow data file")
	c.Flags().IntVar(&fakeRows, "fake", 0, "load this many synthetic rows instead")
	c.Flags().StringVar(&snapOut, "out", "hits.arrow", "output snapshot file")
	return c
}

func cmdSnapshot(cmd *cobra.Command, args []string) {
	hdb := newEngine()

	f, err := os.Create(snapOut)
	if err != nil {
		log.Fatal(err)
	}

	w := bufio.NewWriterSize(f, 1<<20)

	if err := hdb.Snapshot(w); err != nil {
		log.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}

	log.Infof("wrote %d rows to %s", hdb.Rows(), snapOut)
}
