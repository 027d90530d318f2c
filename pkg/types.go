// Package pkg provides functionality for processing NRG disc images produced
// by Nero Burning ROM. This file contains the structures populated by the
// chunk decoders and the interfaces implemented by decoder and exporters.
package pkg

import "io"

// Chunk IDs recognized in the NRG metadata stream
const (
	ChunkIDCuex = "CUEX" // Cue sheet track/index positions
	ChunkIDDaox = "DAOX" // Disc-At-Once session and track boundaries
	ChunkIDSinf = "SINF" // Session information
	ChunkIDMtyp = "MTYP" // Media type
	ChunkIDAfnm = "AFNM" // Audio file (track) names
	ChunkIDEnd  = "END!" // Chunk stream terminator
)

// Sentinel track numbers in CUEX records
const (
	TrackLeadIn  = 0x00 // Lead-in area
	TrackLeadOut = 0xAA // Lead-out area
)

// CuexTrack represents one 8-byte track/index record of the CUEX chunk
type CuexTrack struct {
	Mode            uint8 // 0x01 audio, 0x21 non copy-protected audio, 0x41 data
	TrackNumber     uint8 // BCD decoded; 0 lead-in, 0xAA lead-out
	IndexNumber     uint8 // BCD decoded; 0 pre-gap, 1 track start
	Padding         uint8 // Expected to be 0
	PositionSectors int32 // Signed; negative only for the first lead-in record
}

// CuexChunk represents the NRG cue sheet chunk
type CuexChunk struct {
	Size   uint32
	Tracks []CuexTrack
}

// DaoxTrack represents one 42-byte track record of the DAOX chunk.
// Index0, Index1 and TrackEnd are byte offsets into the image file.
type DaoxTrack struct {
	ISRC       string // Fixed 12-byte field, null-truncated
	SectorSize uint16 // Sector size in the image file (bytes)
	DataMode   uint16 // Mode of the data in the image file
	Unknown    uint16 // Always 0x0001 in observed images
	Index0     uint64 // Pre-gap start
	Index1     uint64 // Start of track
	TrackEnd   uint64 // End of track + 1
}

// DaoxChunk represents the NRG Disc-At-Once information chunk
type DaoxChunk struct {
	Size       uint32
	Size2      uint32 // Duplicate size field, endianness unreliable, unused
	UPC        string // Fixed 13-byte field, null-truncated
	Padding    uint8  // Expected to be 0
	TOCType    uint16
	FirstTrack uint8
	LastTrack  uint8
	Tracks     []DaoxTrack
}

// SinfChunk represents the NRG session information chunk
type SinfChunk struct {
	Size       uint32
	TrackCount uint32 // Number of tracks in the session
}

// MtypChunk represents the NRG media type chunk
type MtypChunk struct {
	Size    uint32
	Unknown uint32 // Opaque media type field
}

// AfnmChunk represents the NRG audio file name chunk, a sequence of
// null-terminated track names totaling Size bytes.
type AfnmChunk struct {
	Size  uint32
	Names []string
}

// Metadata is the accumulated result of parsing one NRG image.
// It is created once per parse pass and never mutated afterwards.
type Metadata struct {
	FileSize      int64      // Image file size in bytes
	Version       uint8      // NRG format version (1 or 2; only 2 is supported)
	ChunkOffset   int64      // Offset of the first metadata chunk
	Cuex          *CuexChunk // nil when the chunk is absent, same for the rest
	Daox          *DaoxChunk
	Sinf          *SinfChunk
	Mtyp          *MtypChunk
	Afnm          *AfnmChunk
	SkippedChunks []string // Recognized but undecoded chunk IDs, in stream order
}

// TrackTitle returns the AFNM name for a 1-based track number, or an empty
// string if no name is available.
func (m *Metadata) TrackTitle(trackNumber uint8) string {
	if m.Afnm == nil || trackNumber == 0 {
		return ""
	}
	idx := int(trackNumber) - 1
	if idx >= len(m.Afnm.Names) {
		return ""
	}
	return m.Afnm.Names[idx]
}

// NRGDecoder interface defines methods for decoding NRG images
type NRGDecoder interface {
	Decode(reader io.ReadSeeker) (*Metadata, error)
	DetectVersion(reader io.ReadSeeker, fileSize int64) (uint8, error)
}

// NRGExporter interface defines methods for exporting parsed NRG metadata
type NRGExporter interface {
	ExportInfo(writer io.Writer, metadata *Metadata) error
	ExportYAML(writer io.Writer, metadata *Metadata) error
	ExportCueSheet(writer io.Writer, metadata *Metadata, rawName string) error
	WriteCueSheetFile(imagePath string, metadata *Metadata) (string, error)
}
