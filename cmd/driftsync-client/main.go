// ABOUTME: driftsync-client entry point
// ABOUTME: cobra root command wiring the run and version subcommands
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftsync-project/driftsync-go/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "driftsync-client",
	Short:   "DRIFTsync clock-sync client",
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}
