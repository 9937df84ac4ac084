package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version information",
		Run:   cmdVersion,
	}
}

func cmdVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("%s\n", BuildDetails())
}

func BuildDetails() string {
	if version == "" {
		return `
HitsDB (unknown version)
An embedded analytics engine for the hits dataset

To build with version information please use the Makefile
`
	}

	return fmt.Sprintf(`
HitsDB %v
An embedded analytics engine for the hits dataset

Commit SHA-1          : %v
Commit timestamp      : %v
Go version            : %v
`,
		version,
		commit,
		date,
		runtime.Version())
}
