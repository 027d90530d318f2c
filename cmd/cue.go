// Package cmd provides command-line interface for cue sheet extraction.
// This file contains the command that reconstructs a cue sheet from the
// CUEX metadata of an NRG image.
package cmd

import (
	"fmt"

	"github.com/hansbonini/nrgtools/pkg"
	"github.com/hansbonini/nrgtools/pkg/common"
	"github.com/spf13/cobra"
)

// cueCmd extracts a cue sheet from an NRG image.
// The cue sheet is written next to the image with a .cue extension.
var cueCmd = &cobra.Command{
	Use:   "cue [image.nrg]",
	Short: "Extract a cue sheet from an NRG image",
	Long: `Extract a cue sheet from the metadata of an NRG image.

This command reconstructs the track layout from the CUEX chunk: one TRACK
entry per audio track, with INDEX 00 pre-gap lines where the image encodes
them and track titles taken from the AFNM chunk when present.

Output:
  - A .cue file next to the input image, referencing the companion .raw
    audio file on its FILE line

Example:
  nrgtools cue album.nrg
  nrgtools cue -v album.nrg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]

		// Enable verbose mode if requested
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		common.SetVerboseMode(verbose)

		metadata, file, err := openAndDecode(imagePath)
		if err != nil {
			return err
		}
		defer file.Close()

		exporter := pkg.NewNRGExporter()
		cueName, err := exporter.WriteCueSheetFile(imagePath, metadata)
		if err != nil {
			return fmt.Errorf("failed to write cue sheet: %w", err)
		}

		fmt.Printf("Cue sheet written to: %s\n", cueName)
		return nil
	},
}

// init initializes the cue command with its flags.
func init() {
	rootCmd.AddCommand(cueCmd)

	cueCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output (show debug messages)")
}
