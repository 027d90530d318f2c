// Package cmd provides command-line interface functionality for NRGTools.
// NRGTools is a collection of utilities for ripping audio CD images stored
// in the Nero Burning ROM NRG container format.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the NRGTools application.
var rootCmd = &cobra.Command{
	Use:   "nrgtools",
	Short: "Tools for ripping Nero Burning ROM NRG audio images",
	Long: `NRGTools - A collection of utilities for ripping audio CD images
stored in the Nero Burning ROM NRG container format.

Currently supports:
  - Displaying the image's metadata (chunk stream contents)
  - Extracting a cue sheet from the NRG metadata
  - Extracting the raw audio data, with optional sub-channel handling
  - Wrapping the extracted audio in a WAV container

Examples:
  nrgtools info album.nrg
  nrgtools info --yaml album.yaml album.nrg
  nrgtools cue album.nrg
  nrgtools extract album.nrg
  nrgtools extract --wav album.nrg
  nrgtools rip album.nrg

Use 'nrgtools [command] --help' for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
