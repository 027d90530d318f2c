// Package pkg provides functionality for processing NRG disc images.
// This file contains the footer detector, the chunk dispatcher and the
// per-chunk binary decoders.
package pkg

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/hansbonini/nrgtools/pkg/common"
)

// NRG footer layout constants
const (
	nrgV2FooterTag = "NER5" // v2: last 12 bytes are tag + 64-bit chunk offset
	nrgV1FooterTag = "NERO" // v1: last 8 bytes are tag + 32-bit chunk offset
	nrgFooterSize  = 12
	cuexRecordSize = 8
	daoxHeaderSize = 22 // size2 4 + UPC 13 + pad 1 + TOC type 2 + first/last 2
	daoxRecordSize = 42
	daoxKnownField = 0x0001
)

// chunkDecoders maps chunk IDs to their decoding routines, keeping the
// dispatcher loop free of per-chunk logic. A repeated chunk ID overwrites the
// previous value: only the last occurrence in the stream survives.
var chunkDecoders = map[string]func(io.ReadSeeker, *Metadata) error{
	ChunkIDCuex: func(r io.ReadSeeker, m *Metadata) error {
		if m.Cuex != nil {
			common.LogWarn(common.WarnDuplicateChunk, ChunkIDCuex)
		}
		chunk, err := decodeCuex(r)
		if err != nil {
			return err
		}
		m.Cuex = chunk
		return nil
	},
	ChunkIDDaox: func(r io.ReadSeeker, m *Metadata) error {
		if m.Daox != nil {
			common.LogWarn(common.WarnDuplicateChunk, ChunkIDDaox)
		}
		chunk, err := decodeDaox(r)
		if err != nil {
			return err
		}
		m.Daox = chunk
		return nil
	},
	ChunkIDSinf: func(r io.ReadSeeker, m *Metadata) error {
		if m.Sinf != nil {
			common.LogWarn(common.WarnDuplicateChunk, ChunkIDSinf)
		}
		chunk, err := decodeSinf(r)
		if err != nil {
			return err
		}
		m.Sinf = chunk
		return nil
	},
	ChunkIDMtyp: func(r io.ReadSeeker, m *Metadata) error {
		if m.Mtyp != nil {
			common.LogWarn(common.WarnDuplicateChunk, ChunkIDMtyp)
		}
		chunk, err := decodeMtyp(r)
		if err != nil {
			return err
		}
		m.Mtyp = chunk
		return nil
	},
	ChunkIDAfnm: func(r io.ReadSeeker, m *Metadata) error {
		if m.Afnm != nil {
			common.LogWarn(common.WarnDuplicateChunk, ChunkIDAfnm)
		}
		chunk, err := decodeAfnm(r)
		if err != nil {
			return err
		}
		m.Afnm = chunk
		return nil
	},
}

// skippableChunks are recognized but carry no information this tool uses.
// Their declared size is read and the body skipped.
var skippableChunks = map[string]bool{
	"CDTX": true,
	"ETN2": true,
	"DINF": true,
	"TOCT": true,
	"RELO": true,
	"VOLM": true,
}

// NRGFileDecoder implements the NRGDecoder interface
type NRGFileDecoder struct{}

// NewNRGDecoder creates a new NRG decoder instance
func NewNRGDecoder() *NRGFileDecoder {
	return &NRGFileDecoder{}
}

// Decode reads the metadata chunks from an open NRG image.
//
// The reader's offset can be anywhere when Decode is called. On success the
// offset is left after the "END!" terminator; on failure it is undefined and
// must be repositioned before any further reads.
func (d *NRGFileDecoder) Decode(reader io.ReadSeeker) (*Metadata, error) {
	metadata := &Metadata{}

	// The image size is needed to locate the footer
	fileSize, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadFooter, err)
	}
	metadata.FileSize = fileSize

	version, err := d.DetectVersion(reader, fileSize)
	if err != nil {
		return nil, err
	}
	metadata.Version = version

	if version != 2 {
		// NRG v1 is detected but intentionally not decoded
		return nil, fmt.Errorf("%w (version %d)", ErrLegacyFormat, version)
	}

	// DetectVersion leaves the offset right after the footer tag, so the
	// 64-bit first-chunk offset can be read without seeking
	rawOffset, err := common.ReadUint64BE(reader)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadFooter, err)
	}
	chunkOffset, err := common.SafeUint64ToInt64(rawOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: first chunk offset %d", ErrUnknownFormat, rawOffset)
	}
	metadata.ChunkOffset = chunkOffset

	if _, err := reader.Seek(chunkOffset, io.SeekStart); err != nil {
		return nil, common.FormatError(common.ErrFailedToSeekChunk, err)
	}

	if err := d.decodeChunks(reader, metadata); err != nil {
		return nil, err
	}

	common.LogDebug(common.InfoImageParsed,
		metadata.Version, metadata.FileSize, metadata.ChunkOffset)

	return metadata, nil
}

// DetectVersion determines the NRG format version from the image footer.
//
// The offset is left right after the matched footer tag, so the caller can
// read the first-chunk offset (32 bits for v1, 64 bits for v2) directly.
func (d *NRGFileDecoder) DetectVersion(reader io.ReadSeeker, fileSize int64) (uint8, error) {
	if fileSize < nrgFooterSize {
		return 0, fmt.Errorf("%w (%d bytes)", ErrImageTooSmall, fileSize)
	}

	// In NRG v2 the footer occupies the last 12 bytes
	offset, err := reader.Seek(-nrgFooterSize, io.SeekEnd)
	if err != nil {
		return 0, common.FormatError(common.ErrFailedToReadFooter, err)
	}
	tag, err := readChunkID(reader)
	if err != nil {
		return 0, common.FormatError(common.ErrFailedToReadFooter, err)
	}
	common.LogDebug(common.DebugFooterTag, offset, tag)
	if tag == nrgV2FooterTag {
		return 2, nil
	}

	// In NRG v1 the footer occupies the last 8 bytes; the read above leaves
	// the offset exactly there
	tag, err = readChunkID(reader)
	if err != nil {
		return 0, common.FormatError(common.ErrFailedToReadFooter, err)
	}
	common.LogDebug(common.DebugFooterTag, offset+4, tag)
	if tag == nrgV1FooterTag {
		return 1, nil
	}

	return 0, ErrUnknownFormat
}

// decodeChunks runs the dispatch loop from the current offset until the
// terminator chunk is seen
func (d *NRGFileDecoder) decodeChunks(reader io.ReadSeeker, metadata *Metadata) error {
	for {
		chunkID, err := readChunkID(reader)
		if err != nil {
			return common.FormatError(common.ErrFailedToReadChunkID, err)
		}

		if chunkID == ChunkIDEnd {
			return nil
		}

		if decode, ok := chunkDecoders[chunkID]; ok {
			if err := decode(reader, metadata); err != nil {
				return fmt.Errorf("%s %s: %w", common.ErrFailedToDecodeChunk, chunkID, err)
			}
			continue
		}

		if skippableChunks[chunkID] {
			skipped, err := skipChunk(reader)
			if err != nil {
				return fmt.Errorf("%s %s: %w", common.ErrFailedToSkipChunk, chunkID, err)
			}
			metadata.SkippedChunks = append(metadata.SkippedChunks, chunkID)
			common.LogDebug(common.DebugChunkSkipped, chunkID, skipped)
			continue
		}

		return fmt.Errorf("%w: %q", ErrUnknownChunk, chunkID)
	}
}

// readChunkID reads a 4-byte chunk ID from the stream
func readChunkID(reader io.Reader) (string, error) {
	buf, err := common.ReadBytes(reader, 4)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// skipChunk reads a chunk's declared size and skips its body, returning the
// number of bytes skipped
func skipChunk(reader io.ReadSeeker) (uint32, error) {
	size, err := common.ReadUint32BE(reader)
	if err != nil {
		return 0, err
	}
	if err := common.SkipBytes(reader, int64(size)); err != nil {
		return 0, err
	}
	return size, nil
}

// decodeCuex reads the cue sheet chunk: a 32-bit declared size followed by
// size/8 track records of the form
// {mode:u8}{track:u8 BCD}{index:u8 BCD}{pad:u8}{position:i32 BE}.
func decodeCuex(reader io.ReadSeeker) (*CuexChunk, error) {
	chunk := &CuexChunk{}

	size, err := common.ReadUint32BE(reader)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadChunkSize, err)
	}
	chunk.Size = size

	bytesRead := uint32(0)
	for bytesRead < size {
		track, err := decodeCuexTrack(reader)
		if err != nil {
			return nil, err
		}
		chunk.Tracks = append(chunk.Tracks, track)
		bytesRead += cuexRecordSize
	}

	if bytesRead != size {
		return nil, fmt.Errorf("%w: CUEX consumed %d of %d bytes", ErrChunkSizeMismatch, bytesRead, size)
	}

	common.LogDebug(common.DebugChunkDecoded, ChunkIDCuex, size)
	return chunk, nil
}

// decodeCuexTrack reads one 8-byte CUEX track record
func decodeCuexTrack(reader io.ReadSeeker) (CuexTrack, error) {
	var track CuexTrack
	var err error

	if track.Mode, err = common.ReadUint8(reader); err != nil {
		return track, err
	}
	if track.TrackNumber, err = common.ReadBCDByte(reader); err != nil {
		return track, err
	}
	if track.IndexNumber, err = common.ReadBCDByte(reader); err != nil {
		return track, err
	}
	if track.Padding, err = common.ReadUint8(reader); err != nil {
		return track, err
	}
	if track.Padding != 0 {
		common.LogWarn(common.WarnNonZeroPadding, track.Padding)
	}

	position, err := common.ReadUint32BE(reader)
	if err != nil {
		return track, err
	}
	track.PositionSectors = int32(position)

	common.LogDebug(common.DebugCuexTrack,
		track.Mode, track.TrackNumber, track.IndexNumber, track.PositionSectors)
	return track, nil
}

// decodeDaox reads the Disc-At-Once information chunk: a 22-byte header
// (duplicate size, UPC, padding, TOC type, first/last track) followed by
// (size-22)/42 track records.
func decodeDaox(reader io.ReadSeeker) (*DaoxChunk, error) {
	chunk := &DaoxChunk{}

	size, err := common.ReadUint32BE(reader)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadChunkSize, err)
	}
	chunk.Size = size

	// The duplicate size field's endianness is unreliable; it is kept opaque
	if chunk.Size2, err = common.ReadUint32BE(reader); err != nil {
		return nil, err
	}
	if chunk.UPC, err = common.ReadSizedString(reader, 13); err != nil {
		return nil, err
	}
	if chunk.Padding, err = common.ReadUint8(reader); err != nil {
		return nil, err
	}
	if chunk.Padding != 0 {
		common.LogWarn(common.WarnNonZeroPadding, chunk.Padding)
	}
	if chunk.TOCType, err = common.ReadUint16BE(reader); err != nil {
		return nil, err
	}
	if chunk.FirstTrack, err = common.ReadUint8(reader); err != nil {
		return nil, err
	}
	if chunk.LastTrack, err = common.ReadUint8(reader); err != nil {
		return nil, err
	}

	bytesRead := uint32(daoxHeaderSize)
	for bytesRead < size {
		track, err := decodeDaoxTrack(reader)
		if err != nil {
			return nil, err
		}
		chunk.Tracks = append(chunk.Tracks, track)
		bytesRead += daoxRecordSize
	}

	if bytesRead != size {
		return nil, fmt.Errorf("%w: DAOX consumed %d of %d bytes", ErrChunkSizeMismatch, bytesRead, size)
	}

	common.LogDebug(common.DebugChunkDecoded, ChunkIDDaox, size)
	return chunk, nil
}

// decodeDaoxTrack reads one 42-byte DAOX track record
func decodeDaoxTrack(reader io.ReadSeeker) (DaoxTrack, error) {
	var track DaoxTrack
	var err error

	if track.ISRC, err = common.ReadSizedString(reader, 12); err != nil {
		return track, err
	}
	if track.SectorSize, err = common.ReadUint16BE(reader); err != nil {
		return track, err
	}
	if track.DataMode, err = common.ReadUint16BE(reader); err != nil {
		return track, err
	}
	if track.Unknown, err = common.ReadUint16BE(reader); err != nil {
		return track, err
	}
	if track.Unknown != daoxKnownField {
		common.LogWarn(common.WarnUnexpectedUnknown, track.Unknown)
	}
	if track.Index0, err = common.ReadUint64BE(reader); err != nil {
		return track, err
	}
	if track.Index1, err = common.ReadUint64BE(reader); err != nil {
		return track, err
	}
	if track.TrackEnd, err = common.ReadUint64BE(reader); err != nil {
		return track, err
	}

	common.LogDebug(common.DebugDaoxTrack,
		track.ISRC, track.SectorSize, track.DataMode, track.Index1, track.TrackEnd)
	return track, nil
}

// decodeSinf reads the session information chunk
func decodeSinf(reader io.ReadSeeker) (*SinfChunk, error) {
	chunk := &SinfChunk{}

	size, err := common.ReadUint32BE(reader)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadChunkSize, err)
	}
	chunk.Size = size

	if chunk.TrackCount, err = common.ReadUint32BE(reader); err != nil {
		return nil, err
	}

	if size != 4 {
		return nil, fmt.Errorf("%w: SINF consumed 4 of %d bytes", ErrChunkSizeMismatch, size)
	}

	common.LogDebug(common.DebugChunkDecoded, ChunkIDSinf, size)
	return chunk, nil
}

// decodeMtyp reads the media type chunk
func decodeMtyp(reader io.ReadSeeker) (*MtypChunk, error) {
	chunk := &MtypChunk{}

	size, err := common.ReadUint32BE(reader)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadChunkSize, err)
	}
	chunk.Size = size

	if chunk.Unknown, err = common.ReadUint32BE(reader); err != nil {
		return nil, err
	}

	if size != 4 {
		return nil, fmt.Errorf("%w: MTYP consumed 4 of %d bytes", ErrChunkSizeMismatch, size)
	}

	common.LogDebug(common.DebugChunkDecoded, ChunkIDMtyp, size)
	return chunk, nil
}

// decodeAfnm reads the audio file name chunk: a sequence of null-terminated
// track names whose total length equals the declared size
func decodeAfnm(reader io.ReadSeeker) (*AfnmChunk, error) {
	chunk := &AfnmChunk{}

	size, err := common.ReadUint32BE(reader)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadChunkSize, err)
	}
	chunk.Size = size

	body, err := common.ReadBytes(reader, int(size))
	if err != nil {
		return nil, err
	}

	start := 0
	for i, b := range body {
		if b != 0 {
			continue
		}
		name := body[start:i]
		if !utf8.Valid(name) {
			return nil, fmt.Errorf("%s: %q", common.ErrInvalidStringField, name)
		}
		chunk.Names = append(chunk.Names, string(name))
		start = i + 1
	}

	// A well-formed chunk ends on a null; keep a trailing fragment anyway
	if start < len(body) {
		name := body[start:]
		if !utf8.Valid(name) {
			return nil, fmt.Errorf("%s: %q", common.ErrInvalidStringField, name)
		}
		common.LogWarn(common.WarnUnterminatedName, name)
		chunk.Names = append(chunk.Names, string(name))
	}

	common.LogDebug(common.DebugChunkDecoded, ChunkIDAfnm, size)
	return chunk, nil
}
