// Package cmd provides command-line interface for NRG image inspection.
// This file contains the command that displays the metadata parsed from an
// NRG image and optionally exports it as YAML.
package cmd

import (
	"fmt"
	"os"

	"github.com/hansbonini/nrgtools/pkg"
	"github.com/hansbonini/nrgtools/pkg/common"
	"github.com/spf13/cobra"
)

// infoCmd displays the metadata of an NRG image.
// It parses the chunk stream and prints the image properties, the cue sheet
// track list and the Disc-At-Once boundaries.
var infoCmd = &cobra.Command{
	Use:   "info [image.nrg]",
	Short: "Display the metadata of an NRG image",
	Long: `Display the metadata of an NRG image.

This command parses the NRG chunk stream and prints:
  - Image size, format version and first chunk offset
  - Cue sheet track/index records (CUEX)
  - Disc-At-Once session and per-track byte boundaries (DAOX)
  - Session information, media type and track names when present
  - The list of recognized but unhandled chunks

Output:
  - Human-readable summary on standard output
  - Optionally the same metadata as a YAML document (--yaml)

Example:
  nrgtools info album.nrg
  nrgtools info -v --yaml album.yaml album.nrg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]

		// Enable verbose mode if requested
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		common.SetVerboseMode(verbose)

		yamlPath, err := cmd.Flags().GetString("yaml")
		if err != nil {
			return fmt.Errorf("error getting yaml flag: %w", err)
		}

		metadata, file, err := openAndDecode(imagePath)
		if err != nil {
			return err
		}
		defer file.Close()

		exporter := pkg.NewNRGExporter()
		if err := exporter.ExportInfo(os.Stdout, metadata); err != nil {
			return fmt.Errorf("failed to display metadata: %w", err)
		}

		if yamlPath != "" {
			out, err := os.Create(yamlPath)
			if err != nil {
				return fmt.Errorf("failed to create YAML file: %w", err)
			}
			defer out.Close()
			if err := exporter.ExportYAML(out, metadata); err != nil {
				return fmt.Errorf("failed to export metadata: %w", err)
			}
			common.LogInfo(common.InfoMetadataExported, yamlPath)
		}

		return nil
	},
}

// openAndDecode opens an NRG image and parses its metadata. The returned file
// is positioned after the chunk stream and must be closed by the caller.
func openAndDecode(imagePath string) (*pkg.Metadata, *os.File, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %q: %w", common.ErrFailedToOpenImage, imagePath, err)
	}

	decoder := pkg.NewNRGDecoder()
	metadata, err := decoder.Decode(file)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to parse %q: %w", imagePath, err)
	}

	return metadata, file, nil
}

// init initializes the info command with its flags.
func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output (show debug messages)")
	infoCmd.Flags().String("yaml", "", "Export the parsed metadata to the given YAML file")
}
