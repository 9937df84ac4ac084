// Main package for the HitsDB service and command line tooling
/*
HitsDB
An embedded analytics engine for the hits dataset

Usage:
  hitsdb [command]

Available Commands:
  bench       Run the query suite against the embedded engine or an external database
  completion  Generate the autocompletion script for the specified shell
  fake        Write a synthetic hits TSV file
  help        Help about any command
  load        Load a TSV file into a running HitsDB service
  query       Run a query against a data file
  serve       Run the HitsDB service
  snapshot    Convert a data file to an Arrow snapshot
  version     Version information

Flags:
  -h, --help          help for hitsdb
      --path string   path to config files (default "./config")

Use "hitsdb [command] --help" for more information about a command.
*/

package main

import "github.com/hitsdb/hitsdb/internal/cmd"

func main() {
	cmd.Cmd()
}
