package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:          "flowboard",
	Short:        "flowboard edits workflow canvases",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		renderCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
