package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hitsdb/hitsdb/serv"
)

func servCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"serv"},
		Short:   "Run the HitsDB service",
		Run:     cmdServ,
	}
}

func cmdServ(*cobra.Command, []string) {
	setup(cpath)

	hs, err := serv.NewService(conf)
	if err != nil {
		log.Fatalf("%s", err)
	}

	if err := hs.Start(); err != nil {
		log.Fatalf("%s", err)
	}
}
