package cmd

import (
	"bufio"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/hitsdb/hitsdb/core"
)

var (
	fakeOut  string
	fakeN    int
	fakeSeed int64
)

func fakeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "fake",
		Short: "Write a synthetic hits TSV file",
		Run:   cmdFake,
	}
	c.Flags().StringVar(&fakeOut, "out", "hits.tsv.gz", "output file, .gz compresses")
	c.Flags().IntVar(&fakeN, "rows", 100000, "rows to generate")
	c.Flags().Int64Var(&fakeSeed, "seed", 1, "generator seed")
	return c
}

func cmdFake(cmd *cobra.Command, args []string) {
	f, err := os.Create(fakeOut)
	if err != nil {
		log.Fatal(err)
	}

	bw := bufio.NewWriterSize(f, 1<<20)

	if strings.HasSuffix(fakeOut, ".gz") {
		gz := gzip.NewWriter(bw)
		err = core.WriteFakeTSV(gz, fakeN, fakeSeed)
		if cerr := gz.Close(); err == nil {
			err = cerr
		}
	} else {
		err = core.WriteFakeTSV(bw, fakeN, fakeSeed)
	}

	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("wrote %d rows to %s", fakeN, fakeOut)
}
