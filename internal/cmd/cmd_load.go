package cmd

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var loadURL string

func loadCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a TSV file into a running HitsDB service",
		Args:  cobra.ExactArgs(1),
		Run:   cmdLoad,
	}
	c.Flags().StringVar(&loadURL, "url", "http://localhost:8080", "service url")
	return c
}

func cmdLoad(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	var lr struct {
		Rows    int   `json:"rows"`
		Total   int   `json:"total"`
		Version int64 `json:"version"`
	}
	var er struct {
		Error string `json:"error"`
	}

	client := resty.New().SetTimeout(10 * time.Minute)

	res, err := client.R().
		SetHeader("Content-Type", "text/tab-separated-values").
		SetBody(bufio.NewReaderSize(f, 1<<20)).
		SetResult(&lr).
		SetError(&er).
		Post(loadURL + "/api/v1/load")

	if err != nil {
		log.Fatal(err)
	}

	if res.StatusCode() != http.StatusOK {
		log.Fatalf("%s", errors.Errorf("load failed (%s): %s", res.Status(), er.Error))
	}

	fmt.Printf("loaded %d rows (%d total, version %d)\n", lr.Rows, lr.Total, lr.Version)
}
