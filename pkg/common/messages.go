package common

import (
	"fmt"
	"log"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToOpenImage      = "failed to open NRG image"
	ErrFailedToReadFooter     = "failed to read NRG footer"
	ErrFailedToReadChunkID    = "failed to read chunk ID"
	ErrFailedToReadChunkSize  = "failed to read chunk size"
	ErrFailedToSeekChunk      = "failed to seek to first chunk"
	ErrFailedToDecodeChunk    = "failed to decode chunk"
	ErrFailedToSkipChunk      = "failed to skip chunk"
	ErrFailedToCreateCueSheet = "failed to create cue sheet file"
	ErrFailedToWriteCueSheet  = "failed to write cue sheet"
	ErrFailedToCreateAudio    = "failed to create audio output file"
	ErrFailedToSeekAudio      = "failed to seek to audio data"
	ErrInvalidStringField     = "string field is not valid text"
	ErrFailedToExportYAML     = "failed to export metadata to YAML"
)

// Info messages
const (
	InfoImageParsed       = "NRG image parsed: version %d, %d bytes, first chunk at offset %d"
	InfoCueSheetWritten   = "Cue sheet written to: %s"
	InfoAudioExtracted    = "Raw audio extracted to: %s (%d bytes)"
	InfoWavExtracted      = "WAV audio extracted to: %s (%d samples)"
	InfoMetadataExported  = "Metadata exported to YAML: %s"
	InfoSubchannelKept    = "Sub-channel data preserved in output"
	InfoSubchannelDropped = "Stripping %d bytes of sub-channel data per sector"
)

// Debug messages
const (
	DebugChunkDecoded    = "Chunk %s decoded: %d bytes"
	DebugChunkSkipped    = "Chunk %s skipped: %d bytes"
	DebugFooterTag       = "Footer tag at offset %d: %q"
	DebugCuexTrack       = "CUEX track: mode=0x%02X number=%d index=%d position=%d"
	DebugDaoxTrack       = "DAOX track: isrc=%q sector_size=%d mode=0x%04X range=[%d,%d)"
	DebugAudioBoundaries = "Audio byte range: [%d, %d), sector size %d"
)

// Warning messages
const (
	WarnInvalidBCDByte     = "Invalid BCD byte 0x%02X, keeping raw value"
	WarnNonZeroPadding     = "Padding byte is %d, expected 0"
	WarnUnexpectedUnknown  = "DAOX unknown field is 0x%04X, expected 0x0001"
	WarnDuplicateChunk     = "Duplicate %s chunk, keeping the last occurrence"
	WarnNoAfnmNameForTrack = "No AFNM track name for track %d"
	WarnUnterminatedName   = "AFNM name %q has no null terminator"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}
