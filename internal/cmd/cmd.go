package cmd

import (
	"path"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hitsdb/hitsdb/internal/util"
	"github.com/hitsdb/hitsdb/serv"
)

var (
	// These variables are set using -ldflags
	version string
	commit  string
	date    string
)

var (
	log   *zap.SugaredLogger
	conf  *serv.Config
	cpath string
)

func Cmd() {
	log = util.NewLogger(false, "debug").Sugar()

	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:   "hitsdb",
		Short: BuildDetails(),
	}

	rootCmd.PersistentFlags().StringVar(&cpath,
		"path", "./config", "path to config files")

	rootCmd.AddCommand(servCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(benchCmd())
	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(fakeCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%s", err)
	}
}

func setup(cpath string) {
	if conf != nil {
		return
	}

	cp, err := filepath.Abs(cpath)
	if err != nil {
		log.Fatal(err)
	}

	cn := serv.GetConfigName()
	if conf, err = serv.ReadInConfig(path.Join(cp, cn)); err != nil {
		log.Fatal(err)
	}
}
