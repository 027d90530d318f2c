// Package pkg provides functionality for processing NRG disc images.
// This file contains the raw audio extractor: it copies the audio byte range
// resolved from the DAOX boundaries, optionally stripping interleaved
// sub-channel data, and can wrap the result in a WAV container.
package pkg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hansbonini/nrgtools/pkg/common"
)

// audioBufferSectors sizes the copy buffer as a whole multiple of the sector
// unit
const audioBufferSectors = 64

// CD audio sample parameters used for WAV output
const (
	cdSampleRate  = 44100
	cdBitDepth    = 16
	cdNumChannels = 2
)

// AudioExtractor copies the raw audio byte range out of an NRG image
type AudioExtractor struct {
	// KeepSubchannel preserves the 96 sub-channel bytes of each 2448-byte
	// sector instead of stripping them
	KeepSubchannel bool
}

// NewAudioExtractor creates a new audio extractor instance
func NewAudioExtractor() *AudioExtractor {
	return &AudioExtractor{}
}

// audioRange resolves the audio byte range from the DAOX boundaries. Without
// DAOX tracks the range starts at 0 and ends at the first chunk offset.
func audioRange(metadata *Metadata) (start, end uint64) {
	end = uint64(metadata.ChunkOffset)
	if metadata.Daox == nil || len(metadata.Daox.Tracks) == 0 {
		return 0, end
	}
	tracks := metadata.Daox.Tracks
	return tracks[0].Index1, tracks[len(tracks)-1].TrackEnd
}

// sectorSize returns the declared sector size of the first DAOX track, or the
// plain audio sector size when no DAOX track is available
func sectorSize(metadata *Metadata) int {
	if metadata.Daox == nil || len(metadata.Daox.Tracks) == 0 {
		return common.CD_AUDIO_SECTOR_SIZE
	}
	return int(metadata.Daox.Tracks[0].SectorSize)
}

// Extract copies the audio byte range from reader to writer and returns the
// number of bytes written.
//
// When the image's sector size is 2448 (audio with interleaved sub-channel
// data), each sector is truncated to its leading 2352 audio bytes unless
// KeepSubchannel is set. Any other nonzero sector size is copied byte-exact.
func (x *AudioExtractor) Extract(reader io.ReadSeeker, metadata *Metadata, writer io.Writer) (int64, error) {
	start, end := audioRange(metadata)
	if end < start {
		return 0, fmt.Errorf("%w: audio range [%d, %d)", ErrAudioShortRead, start, end)
	}

	unit := sectorSize(metadata)
	if unit == 0 {
		return 0, ErrInvalidSectorSize
	}
	common.LogDebug(common.DebugAudioBoundaries, start, end, unit)

	if _, err := reader.Seek(int64(start), io.SeekStart); err != nil {
		return 0, common.FormatError(common.ErrFailedToSeekAudio, err)
	}

	total := int64(end - start)
	if unit == common.CD_RAW_SECTOR_SIZE && !x.KeepSubchannel {
		common.LogDebug(common.InfoSubchannelDropped, common.CD_SUBCHANNEL_SIZE)
		return copyStrippingSubchannel(reader, writer, total)
	}

	return copyRange(reader, writer, total, unit)
}

// copyRange performs a byte-exact copy of total bytes through a bounded
// buffer sized as a whole multiple of the sector unit, with a final partial
// flush for any remainder
func copyRange(reader io.Reader, writer io.Writer, total int64, unit int) (int64, error) {
	buffer := make([]byte, unit*audioBufferSectors)
	var written int64

	for written < total {
		chunk := int64(len(buffer))
		if remaining := total - written; remaining < chunk {
			chunk = remaining
		}

		if _, err := io.ReadFull(reader, buffer[:chunk]); err != nil {
			return written, wrapShortRead(err)
		}
		n, err := writer.Write(buffer[:chunk])
		if err != nil {
			return written, common.FormatError(ErrAudioShortWrite.Error(), err)
		}
		if int64(n) != chunk {
			return written, ErrAudioShortWrite
		}
		written += chunk
	}

	return written, nil
}

// copyStrippingSubchannel copies total bytes of 2448-byte sectors, writing
// only the leading 2352 audio bytes of each sector. The range must cover
// whole sectors.
func copyStrippingSubchannel(reader io.Reader, writer io.Writer, total int64) (int64, error) {
	if total%common.CD_RAW_SECTOR_SIZE != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a whole number of %d-byte sectors",
			ErrAudioShortRead, total, common.CD_RAW_SECTOR_SIZE)
	}

	buffer := make([]byte, common.CD_RAW_SECTOR_SIZE*audioBufferSectors)
	var written int64
	var read int64

	for read < total {
		chunk := int64(len(buffer))
		if remaining := total - read; remaining < chunk {
			chunk = remaining
		}

		if _, err := io.ReadFull(reader, buffer[:chunk]); err != nil {
			return written, wrapShortRead(err)
		}
		read += chunk

		for offset := int64(0); offset < chunk; offset += common.CD_RAW_SECTOR_SIZE {
			sector := buffer[offset : offset+common.CD_AUDIO_SECTOR_SIZE]
			n, err := writer.Write(sector)
			if err != nil {
				return written, common.FormatError(ErrAudioShortWrite.Error(), err)
			}
			if n != common.CD_AUDIO_SECTOR_SIZE {
				return written, ErrAudioShortWrite
			}
			written += int64(n)
		}
	}

	return written, nil
}

// wrapShortRead maps end-of-stream conditions to the audio short-read error
func wrapShortRead(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrAudioShortRead
	}
	return common.FormatError(ErrAudioShortRead.Error(), err)
}

// ExtractFile rips the raw audio of the image at imagePath into a companion
// ".raw" file and returns its name
func (x *AudioExtractor) ExtractFile(imagePath string, metadata *Metadata, reader io.ReadSeeker) (string, error) {
	outName := replaceImageExtension(imagePath, ".raw")
	if outName == imagePath {
		return "", fmt.Errorf("%w: %s", ErrOutputNameCollision, outName)
	}

	out, err := os.Create(outName)
	if err != nil {
		return "", common.FormatError(common.ErrFailedToCreateAudio, err)
	}
	defer out.Close()

	written, err := x.Extract(reader, metadata, out)
	if err != nil {
		return "", err
	}

	if x.KeepSubchannel {
		common.LogInfo(common.InfoSubchannelKept)
	}
	common.LogInfo(common.InfoAudioExtracted, outName, written)
	return outName, nil
}

// ExtractWavFile rips the audio of the image at imagePath into a companion
// ".wav" file and returns its name. Sub-channel data is always stripped so
// the payload is plain 44100 Hz / 16-bit / stereo CD audio.
func (x *AudioExtractor) ExtractWavFile(imagePath string, metadata *Metadata, reader io.ReadSeeker) (string, error) {
	outName := replaceImageExtension(imagePath, ".wav")
	if outName == imagePath {
		return "", fmt.Errorf("%w: %s", ErrOutputNameCollision, outName)
	}

	out, err := os.Create(outName)
	if err != nil {
		return "", common.FormatError(common.ErrFailedToCreateAudio, err)
	}
	defer out.Close()

	encoder := wav.NewEncoder(out, cdSampleRate, cdBitDepth, cdNumChannels, 1)
	sink := &wavSampleWriter{encoder: encoder}

	stripped := &AudioExtractor{}
	written, err := stripped.Extract(reader, metadata, sink)
	if err != nil {
		return "", err
	}

	if err := encoder.Close(); err != nil {
		return "", common.FormatError(common.ErrFailedToCreateAudio, err)
	}

	common.LogInfo(common.InfoWavExtracted, outName, written/(cdBitDepth/8*cdNumChannels))
	return outName, nil
}

// wavSampleWriter adapts raw little-endian 16-bit stereo CD audio bytes to
// the WAV encoder's sample buffers
type wavSampleWriter struct {
	encoder *wav.Encoder
	pending []byte // carries a partial sample frame between writes
}

func (w *wavSampleWriter) Write(p []byte) (int, error) {
	data := p
	if len(w.pending) > 0 {
		data = append(w.pending, p...)
		w.pending = nil
	}

	sampleCount := len(data) / 2
	if rest := len(data) % 2; rest > 0 {
		w.pending = append(w.pending, data[len(data)-rest:]...)
		data = data[:len(data)-rest]
	}

	samples := make([]int, sampleCount)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: cdNumChannels,
			SampleRate:  cdSampleRate,
		},
		Data:           samples,
		SourceBitDepth: cdBitDepth,
	}
	if err := w.encoder.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
