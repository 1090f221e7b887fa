package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avelis/trackwire/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the trackwire version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}
