// Package pkg provides tests for the raw audio extractor
package pkg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hansbonini/nrgtools/pkg/common"
)

// daoxWith builds a metadata value with a single-session DAOX chunk
func daoxWith(chunkOffset int64, tracks ...DaoxTrack) *Metadata {
	return &Metadata{
		Version:     2,
		ChunkOffset: chunkOffset,
		Daox:        &DaoxChunk{FirstTrack: 1, LastTrack: uint8(len(tracks)), Tracks: tracks},
	}
}

// patternSectors builds sectorCount sectors of sectorSize bytes with a
// recognizable per-byte pattern
func patternSectors(sectorCount, sectorSize int) []byte {
	data := make([]byte, sectorCount*sectorSize)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestNewAudioExtractor(t *testing.T) {
	extractor := NewAudioExtractor()
	if extractor == nil {
		t.Error("NewAudioExtractor() returned nil")
	}
}

func TestExtract_PlainRange(t *testing.T) {
	audio := patternSectors(3, common.CD_AUDIO_SECTOR_SIZE)
	metadata := daoxWith(int64(len(audio)), DaoxTrack{
		SectorSize: common.CD_AUDIO_SECTOR_SIZE,
		Index1:     0,
		TrackEnd:   uint64(len(audio)),
	})

	var out bytes.Buffer
	written, err := NewAudioExtractor().Extract(bytes.NewReader(audio), metadata, &out)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if written != int64(len(audio)) {
		t.Errorf("Extract() wrote %d bytes, want %d", written, len(audio))
	}
	if !bytes.Equal(out.Bytes(), audio) {
		t.Error("Extract() output differs from the audio range")
	}
}

// The audio range starts at the first track's Index1 and ends at the last
// track's TrackEnd
func TestExtract_DaoxBoundaries(t *testing.T) {
	image := patternSectors(5, common.CD_AUDIO_SECTOR_SIZE)
	start := uint64(common.CD_AUDIO_SECTOR_SIZE)
	end := uint64(4 * common.CD_AUDIO_SECTOR_SIZE)
	metadata := daoxWith(int64(len(image)),
		DaoxTrack{SectorSize: common.CD_AUDIO_SECTOR_SIZE, Index1: start, TrackEnd: 3 * 2352},
		DaoxTrack{SectorSize: common.CD_AUDIO_SECTOR_SIZE, Index1: 3 * 2352, TrackEnd: end},
	)

	var out bytes.Buffer
	written, err := NewAudioExtractor().Extract(bytes.NewReader(image), metadata, &out)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if written != int64(end-start) {
		t.Errorf("Extract() wrote %d bytes, want %d", written, end-start)
	}
	if !bytes.Equal(out.Bytes(), image[start:end]) {
		t.Error("Extract() output differs from the DAOX byte range")
	}
}

// Without DAOX data the whole range up to the first chunk offset is copied
func TestExtract_NoDaoxFallback(t *testing.T) {
	audio := patternSectors(2, common.CD_AUDIO_SECTOR_SIZE)
	image := append(append([]byte{}, audio...), make([]byte, 64)...)
	metadata := &Metadata{Version: 2, ChunkOffset: int64(len(audio))}

	var out bytes.Buffer
	written, err := NewAudioExtractor().Extract(bytes.NewReader(image), metadata, &out)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if written != int64(len(audio)) {
		t.Errorf("Extract() wrote %d bytes, want %d", written, len(audio))
	}
	if !bytes.Equal(out.Bytes(), audio) {
		t.Error("Extract() output differs from the pre-chunk range")
	}
}

func TestExtract_StripSubchannel(t *testing.T) {
	const sectorCount = 3
	image := patternSectors(sectorCount, common.CD_RAW_SECTOR_SIZE)
	metadata := daoxWith(int64(len(image)), DaoxTrack{
		SectorSize: common.CD_RAW_SECTOR_SIZE,
		Index1:     0,
		TrackEnd:   uint64(len(image)),
	})

	var out bytes.Buffer
	written, err := NewAudioExtractor().Extract(bytes.NewReader(image), metadata, &out)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	want := int64(sectorCount * common.CD_AUDIO_SECTOR_SIZE)
	if written != want {
		t.Errorf("Extract() wrote %d bytes, want %d", written, want)
	}

	// Each output sector is the leading 2352 bytes of the input sector
	for sector := 0; sector < sectorCount; sector++ {
		in := image[sector*common.CD_RAW_SECTOR_SIZE:]
		got := out.Bytes()[sector*common.CD_AUDIO_SECTOR_SIZE : (sector+1)*common.CD_AUDIO_SECTOR_SIZE]
		if !bytes.Equal(got, in[:common.CD_AUDIO_SECTOR_SIZE]) {
			t.Fatalf("sector %d audio bytes differ", sector)
		}
	}
}

func TestExtract_KeepSubchannel(t *testing.T) {
	image := patternSectors(2, common.CD_RAW_SECTOR_SIZE)
	metadata := daoxWith(int64(len(image)), DaoxTrack{
		SectorSize: common.CD_RAW_SECTOR_SIZE,
		Index1:     0,
		TrackEnd:   uint64(len(image)),
	})

	extractor := NewAudioExtractor()
	extractor.KeepSubchannel = true

	var out bytes.Buffer
	written, err := extractor.Extract(bytes.NewReader(image), metadata, &out)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if written != int64(len(image)) {
		t.Errorf("Extract() wrote %d bytes, want %d", written, len(image))
	}
	if !bytes.Equal(out.Bytes(), image) {
		t.Error("Extract() with KeepSubchannel should copy sectors unchanged")
	}
}

func TestExtract_ZeroSectorSize(t *testing.T) {
	metadata := daoxWith(2352, DaoxTrack{SectorSize: 0, Index1: 0, TrackEnd: 2352})

	var out bytes.Buffer
	_, err := NewAudioExtractor().Extract(bytes.NewReader(make([]byte, 2352)), metadata, &out)
	if !errors.Is(err, ErrInvalidSectorSize) {
		t.Errorf("Extract() error = %v, want ErrInvalidSectorSize", err)
	}
}

func TestExtract_ShortRead(t *testing.T) {
	// DAOX claims more audio than the stream holds
	image := make([]byte, 2352)
	metadata := daoxWith(int64(len(image)), DaoxTrack{
		SectorSize: common.CD_AUDIO_SECTOR_SIZE,
		Index1:     0,
		TrackEnd:   2 * 2352,
	})

	var out bytes.Buffer
	_, err := NewAudioExtractor().Extract(bytes.NewReader(image), metadata, &out)
	if !errors.Is(err, ErrAudioShortRead) {
		t.Errorf("Extract() error = %v, want ErrAudioShortRead", err)
	}
}

// A range that is not a whole number of raw sectors cannot be stripped
func TestExtract_StripPartialSector(t *testing.T) {
	image := make([]byte, common.CD_RAW_SECTOR_SIZE+100)
	metadata := daoxWith(int64(len(image)), DaoxTrack{
		SectorSize: common.CD_RAW_SECTOR_SIZE,
		Index1:     0,
		TrackEnd:   uint64(len(image)),
	})

	var out bytes.Buffer
	_, err := NewAudioExtractor().Extract(bytes.NewReader(image), metadata, &out)
	if !errors.Is(err, ErrAudioShortRead) {
		t.Errorf("Extract() error = %v, want ErrAudioShortRead", err)
	}
}

// A full parse-then-extract pass over a synthetic image
func TestExtract_EndToEnd(t *testing.T) {
	audio := patternSectors(4, common.CD_AUDIO_SECTOR_SIZE)
	image := new(imageBuilder).
		audio(audio).
		chunk(ChunkIDCuex, cuexBody(
			[4]int32{0x01, 1, 1, 0},
			[4]int32{0x01, 0xAA, 1, 4},
		)).
		chunk(ChunkIDDaox, daoxBody("", 1, 1, DaoxTrack{
			SectorSize: common.CD_AUDIO_SECTOR_SIZE,
			Index1:     0,
			TrackEnd:   uint64(len(audio)),
		})).
		buildV2(uint64(len(audio)))

	reader := bytes.NewReader(image)
	metadata, err := NewNRGDecoder().Decode(reader)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	var out bytes.Buffer
	written, err := NewAudioExtractor().Extract(reader, metadata, &out)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if written != int64(len(audio)) {
		t.Errorf("Extract() wrote %d bytes, want %d", written, len(audio))
	}
	if !bytes.Equal(out.Bytes(), audio) {
		t.Error("extracted audio differs from the image payload")
	}
}
