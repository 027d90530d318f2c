// Package cmd provides command-line interface for audio extraction.
// This file contains the commands that copy the raw audio payload out of an
// NRG image, either alone (extract) or together with the cue sheet (rip).
package cmd

import (
	"fmt"

	"github.com/hansbonini/nrgtools/pkg"
	"github.com/hansbonini/nrgtools/pkg/common"
	"github.com/spf13/cobra"
)

// extractCmd extracts the audio data from an NRG image.
// The audio byte range is resolved from the DAOX chunk boundaries.
var extractCmd = &cobra.Command{
	Use:   "extract [image.nrg]",
	Short: "Extract the audio data from an NRG image",
	Long: `Extract the audio data from an NRG image.

This command copies the audio byte range resolved from the Disc-At-Once
(DAOX) boundaries into a companion file. Images recorded with interleaved
sub-channel data (2448-byte sectors) are truncated to plain 2352-byte audio
sectors unless --subchannel is given.

Output:
  - A .raw file next to the input image (byte-exact audio payload), or
  - A .wav file when --wav is given (44100 Hz, 16-bit, stereo)

Example:
  nrgtools extract album.nrg
  nrgtools extract --subchannel album.nrg
  nrgtools extract --wav album.nrg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]

		// Enable verbose mode if requested
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		common.SetVerboseMode(verbose)

		keepSubchannel, err := cmd.Flags().GetBool("subchannel")
		if err != nil {
			return fmt.Errorf("error getting subchannel flag: %w", err)
		}
		asWav, err := cmd.Flags().GetBool("wav")
		if err != nil {
			return fmt.Errorf("error getting wav flag: %w", err)
		}

		metadata, file, err := openAndDecode(imagePath)
		if err != nil {
			return err
		}
		defer file.Close()

		extractor := pkg.NewAudioExtractor()
		extractor.KeepSubchannel = keepSubchannel

		var outName string
		if asWav {
			outName, err = extractor.ExtractWavFile(imagePath, metadata, file)
		} else {
			outName, err = extractor.ExtractFile(imagePath, metadata, file)
		}
		if err != nil {
			return fmt.Errorf("failed to extract audio: %w", err)
		}

		fmt.Printf("Audio extracted to: %s\n", outName)
		return nil
	},
}

// ripCmd extracts both the cue sheet and the raw audio in one pass.
var ripCmd = &cobra.Command{
	Use:   "rip [image.nrg]",
	Short: "Extract cue sheet and raw audio from an NRG image",
	Long: `Extract both the cue sheet and the raw audio data from an NRG image.

This is equivalent to running 'nrgtools cue' followed by 'nrgtools extract'
with a single parse of the image.

Example:
  nrgtools rip album.nrg
  nrgtools rip --subchannel album.nrg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]

		// Enable verbose mode if requested
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		common.SetVerboseMode(verbose)

		keepSubchannel, err := cmd.Flags().GetBool("subchannel")
		if err != nil {
			return fmt.Errorf("error getting subchannel flag: %w", err)
		}

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

		extractor := pkg.NewAudioExtractor()
		extractor.KeepSubchannel = keepSubchannel
		outName, err := extractor.ExtractFile(imagePath, metadata, file)
		if err != nil {
			return fmt.Errorf("failed to extract audio: %w", err)
		}
		fmt.Printf("Audio extracted to: %s\n", outName)

		return nil
	},
}

// init initializes the extract and rip commands with their flags.
func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(ripCmd)

	extractCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output (show debug messages)")
	extractCmd.Flags().Bool("subchannel", false, "Preserve interleaved sub-channel data in the output")
	extractCmd.Flags().Bool("wav", false, "Write a WAV file instead of a raw audio payload")

	ripCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output (show debug messages)")
	ripCmd.Flags().Bool("subchannel", false, "Preserve interleaved sub-channel data in the output")
}
