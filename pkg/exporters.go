// Package pkg provides functionality for processing NRG disc images.
// This file contains exporters for the parsed metadata: cue sheet generation,
// YAML export and a human-readable summary with track tables.
package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hansbonini/nrgtools/pkg/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// NRGFileExporter implements the NRGExporter interface
type NRGFileExporter struct{}

// NewNRGExporter creates a new NRG exporter instance
func NewNRGExporter() *NRGFileExporter {
	return &NRGFileExporter{}
}

// ExportCueSheet writes the cue sheet reconstructed from the CUEX track list
// to writer. rawName is the companion audio file named on the FILE line.
//
// The generator makes a single forward pass over the CUEX records, carrying
// the position of the last index-0 record seen: that position becomes an
// "INDEX 00" pre-gap line on the following track, but only if it precedes the
// track's own start position.
func (e *NRGFileExporter) ExportCueSheet(writer io.Writer, metadata *Metadata, rawName string) error {
	if metadata.Cuex == nil {
		return ErrNoCueData
	}

	if _, err := fmt.Fprintf(writer, "FILE %q BINARY\n", rawName); err != nil {
		return common.FormatError(common.ErrFailedToWriteCueSheet, err)
	}

	index0Pos := int32(-1) // position of the last index-0 record, -1 for none
	for _, track := range metadata.Cuex.Tracks {
		if err := e.writeCueTrack(writer, metadata, track, &index0Pos); err != nil {
			return common.FormatError(common.ErrFailedToWriteCueSheet, err)
		}
	}

	return nil
}

// writeCueTrack emits the TRACK/TITLE/INDEX lines for one CUEX record
func (e *NRGFileExporter) writeCueTrack(writer io.Writer, metadata *Metadata, track CuexTrack, index0Pos *int32) error {
	// Lead-in and lead-out areas never appear in the cue sheet
	if track.TrackNumber == TrackLeadIn || track.TrackNumber == TrackLeadOut {
		return nil
	}

	// Negative positions only occur on the first lead-in record, which was
	// already excluded above; skip them anyway
	if track.PositionSectors < 0 {
		return nil
	}

	// An index-0 record marks the pre-gap of the next track
	if track.IndexNumber == 0 {
		*index0Pos = track.PositionSectors
		return nil
	}

	if _, err := fmt.Fprintf(writer, "  TRACK %02d AUDIO\n", track.TrackNumber); err != nil {
		return err
	}

	if title := metadata.TrackTitle(track.TrackNumber); title != "" {
		title = strings.TrimSuffix(title, ".wav")
		if _, err := fmt.Fprintf(writer, "    TITLE %q\n", title); err != nil {
			return err
		}
	} else if metadata.Afnm != nil {
		common.LogWarn(common.WarnNoAfnmNameForTrack, track.TrackNumber)
	}

	// A stored pre-gap is only meaningful if it precedes this track's start
	if *index0Pos >= 0 && *index0Pos < track.PositionSectors {
		if err := writeCueIndex(writer, 0, *index0Pos); err != nil {
			return err
		}
	}

	// The pre-gap applies only to the immediately following track
	*index0Pos = -1

	return writeCueIndex(writer, track.IndexNumber, track.PositionSectors)
}

// writeCueIndex emits one INDEX line with an exact mm:ss:ff time-code
func writeCueIndex(writer io.Writer, index uint8, positionSectors int32) error {
	_, err := fmt.Fprintf(writer, "    INDEX %02d %s\n",
		index, common.SectorsToMSF(positionSectors))
	return err
}

// WriteCueSheetFile writes the cue sheet for the image at imagePath into a
// file next to it, named after the image with a ".cue" extension. Returns the
// cue sheet file name.
func (e *NRGFileExporter) WriteCueSheetFile(imagePath string, metadata *Metadata) (string, error) {
	cueName := replaceImageExtension(imagePath, ".cue")
	if cueName == imagePath {
		return "", fmt.Errorf("%w: %s", ErrOutputNameCollision, cueName)
	}
	rawName := replaceImageExtension(imagePath, ".raw")

	// Make sure there is cue data before touching the output file
	if metadata.Cuex == nil {
		return "", ErrNoCueData
	}

	file, err := os.Create(cueName)
	if err != nil {
		return "", common.FormatError(common.ErrFailedToCreateCueSheet, err)
	}
	defer file.Close()

	if err := e.ExportCueSheet(file, metadata, filepath.Base(rawName)); err != nil {
		return "", err
	}

	common.LogInfo(common.InfoCueSheetWritten, cueName)
	return cueName, nil
}

// replaceImageExtension derives an output file name from the image name: a
// ".nrg" extension (case-insensitive) is replaced, any other name gets the
// new extension appended.
func replaceImageExtension(imagePath, newExt string) string {
	if strings.EqualFold(filepath.Ext(imagePath), ".nrg") {
		return imagePath[:len(imagePath)-4] + newExt
	}
	return imagePath + newExt
}

// metadataDocument is the YAML rendering of a parsed image
type metadataDocument struct {
	FileSize      int64         `yaml:"file_size"`
	Version       uint8         `yaml:"nrg_version"`
	ChunkOffset   int64         `yaml:"first_chunk_offset"`
	Session       *sessionEntry `yaml:"session,omitempty"`
	MediaType     *uint32       `yaml:"media_type,omitempty"`
	CueTracks     []cueEntry    `yaml:"cue_tracks,omitempty"`
	DaoTracks     []daoEntry    `yaml:"dao_tracks,omitempty"`
	TrackNames    []string      `yaml:"track_names,omitempty"`
	SkippedChunks []string      `yaml:"skipped_chunks,omitempty"`
}

type sessionEntry struct {
	TrackCount uint32 `yaml:"track_count"`
	UPC        string `yaml:"upc,omitempty"`
	TOCType    uint16 `yaml:"toc_type"`
	FirstTrack uint8  `yaml:"first_track"`
	LastTrack  uint8  `yaml:"last_track"`
}

type cueEntry struct {
	Mode            uint8  `yaml:"mode"`
	TrackNumber     uint8  `yaml:"track"`
	IndexNumber     uint8  `yaml:"index"`
	PositionSectors int32  `yaml:"position_sectors"`
	Position        string `yaml:"position_msf"`
}

type daoEntry struct {
	ISRC       string `yaml:"isrc,omitempty"`
	SectorSize uint16 `yaml:"sector_size"`
	DataMode   uint16 `yaml:"data_mode"`
	Index0     uint64 `yaml:"pregap_offset"`
	Index1     uint64 `yaml:"start_offset"`
	TrackEnd   uint64 `yaml:"end_offset"`
}

// ExportYAML writes the parsed metadata as a YAML document
func (e *NRGFileExporter) ExportYAML(writer io.Writer, metadata *Metadata) error {
	doc := metadataDocument{
		FileSize:      metadata.FileSize,
		Version:       metadata.Version,
		ChunkOffset:   metadata.ChunkOffset,
		SkippedChunks: metadata.SkippedChunks,
	}

	if metadata.Sinf != nil || metadata.Daox != nil {
		session := &sessionEntry{}
		if metadata.Sinf != nil {
			session.TrackCount = metadata.Sinf.TrackCount
		}
		if metadata.Daox != nil {
			session.UPC = metadata.Daox.UPC
			session.TOCType = metadata.Daox.TOCType
			session.FirstTrack = metadata.Daox.FirstTrack
			session.LastTrack = metadata.Daox.LastTrack
		}
		doc.Session = session
	}

	if metadata.Mtyp != nil {
		doc.MediaType = &metadata.Mtyp.Unknown
	}

	if metadata.Cuex != nil {
		for _, track := range metadata.Cuex.Tracks {
			doc.CueTracks = append(doc.CueTracks, cueEntry{
				Mode:            track.Mode,
				TrackNumber:     track.TrackNumber,
				IndexNumber:     track.IndexNumber,
				PositionSectors: track.PositionSectors,
				Position:        formatPosition(track.PositionSectors),
			})
		}
	}

	if metadata.Daox != nil {
		for _, track := range metadata.Daox.Tracks {
			doc.DaoTracks = append(doc.DaoTracks, daoEntry{
				ISRC:       track.ISRC,
				SectorSize: track.SectorSize,
				DataMode:   track.DataMode,
				Index0:     track.Index0,
				Index1:     track.Index1,
				TrackEnd:   track.TrackEnd,
			})
		}
	}

	if metadata.Afnm != nil {
		doc.TrackNames = metadata.Afnm.Names
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return common.FormatError(common.ErrFailedToExportYAML, err)
	}
	return encoder.Close()
}

// ExportInfo writes a human-readable summary of the parsed metadata
func (e *NRGFileExporter) ExportInfo(writer io.Writer, metadata *Metadata) error {
	fmt.Fprintf(writer, "Image size: %d Bytes\n", metadata.FileSize)
	fmt.Fprintf(writer, "NRG format version: %d\n", metadata.Version)
	fmt.Fprintf(writer, "First chunk offset: %d\n", metadata.ChunkOffset)

	if metadata.Sinf != nil {
		fmt.Fprintf(writer, "Tracks in session: %d\n", metadata.Sinf.TrackCount)
	}
	if metadata.Mtyp != nil {
		fmt.Fprintf(writer, "Media type field: 0x%04X\n", metadata.Mtyp.Unknown)
	}

	if metadata.Daox != nil {
		fmt.Fprintf(writer, "UPC: %q\n", metadata.Daox.UPC)
		fmt.Fprintf(writer, "TOC type: 0x%04X\n", metadata.Daox.TOCType)
		fmt.Fprintf(writer, "Session tracks: %d-%d\n",
			metadata.Daox.FirstTrack, metadata.Daox.LastTrack)
	}

	if metadata.Cuex != nil {
		for _, track := range metadata.Cuex.Tracks {
			if track.TrackNumber == TrackLeadOut && track.PositionSectors >= 0 {
				fmt.Fprintf(writer, "Disc length: %s (%.1f seconds)\n",
					common.SectorsToMSF(track.PositionSectors),
					common.SectorsToSeconds(track.PositionSectors))
			}
		}
		fmt.Fprintln(writer, "\nCue sheet (CUEX):")
		renderCuexTable(writer, metadata.Cuex.Tracks)
	}

	if metadata.Daox != nil && len(metadata.Daox.Tracks) > 0 {
		fmt.Fprintln(writer, "\nDisc-At-Once tracks (DAOX):")
		renderDaoxTable(writer, metadata.Daox.Tracks)
	}

	if metadata.Afnm != nil && len(metadata.Afnm.Names) > 0 {
		fmt.Fprintln(writer, "\nTrack names (AFNM):")
		for i, name := range metadata.Afnm.Names {
			fmt.Fprintf(writer, "  %02d: %s\n", i+1, name)
		}
	}

	if len(metadata.SkippedChunks) > 0 {
		fmt.Fprintf(writer, "\nUnhandled chunks present in this image: %s\n",
			strings.Join(metadata.SkippedChunks, " "))
	}

	return nil
}

// renderCuexTable renders the CUEX track list as a table
func renderCuexTable(writer io.Writer, tracks []CuexTrack) {
	tw := table.NewWriter()
	tw.SetOutputMirror(writer)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Mode", "Track", "Index", "Position (sectors)", "MSF"})

	for _, track := range tracks {
		tw.AppendRow(table.Row{
			fmt.Sprintf("0x%02X", track.Mode),
			formatTrackNumber(track.TrackNumber),
			track.IndexNumber,
			track.PositionSectors,
			formatPosition(track.PositionSectors),
		})
	}

	tw.Render()
}

// renderDaoxTable renders the DAOX track list as a table
func renderDaoxTable(writer io.Writer, tracks []DaoxTrack) {
	tw := table.NewWriter()
	tw.SetOutputMirror(writer)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "ISRC", "Sector Size", "Data Mode", "Pre-gap", "Start", "End+1"})

	for i, track := range tracks {
		tw.AppendRow(table.Row{
			i + 1,
			track.ISRC,
			track.SectorSize,
			fmt.Sprintf("0x%04X", track.DataMode),
			track.Index0,
			track.Index1,
			track.TrackEnd,
		})
	}

	tw.Render()
}

// formatPosition renders a sector position as an MSF time-code. Negative
// positions occur on the first lead-in record and have no MSF rendering.
func formatPosition(positionSectors int32) string {
	if positionSectors < 0 {
		return "-"
	}
	return common.SectorsToMSF(positionSectors)
}

// formatTrackNumber renders a CUEX track number, marking the sentinel values
func formatTrackNumber(trackNumber uint8) string {
	switch trackNumber {
	case TrackLeadIn:
		return "0 (lead-in)"
	case TrackLeadOut:
		return "0xAA (lead-out)"
	default:
		return fmt.Sprintf("%d", trackNumber)
	}
}
