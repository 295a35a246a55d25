// ABOUTME: "version" subcommand for driftsyncd
// ABOUTME: Prints product, version, and manufacturer
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftsync-project/driftsync-go/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s (%s)\n", version.Product, version.Version, version.Manufacturer)
	},
}
