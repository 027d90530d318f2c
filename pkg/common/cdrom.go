// Package common provides common utilities for CD-ROM operations.
// This file contains sector size constants and MSF time-code conversion.
package common

import "fmt"

// Sector size constants for audio CD images
const (
	CD_AUDIO_SECTOR_SIZE = 2352 // Raw audio sector size
	CD_RAW_SECTOR_SIZE   = 2448 // Audio sector with interleaved sub-channel data
	CD_SUBCHANNEL_SIZE   = 96   // Sub-channel portion of a raw sector
	CD_SECTORS_PER_SEC   = 75   // Audio CD playback rate
)

// SectorsToMSF converts a sector position to MSF (Minutes:Seconds:Frames)
// format. Audio CDs are played at 75 sectors per second. The conversion is
// pure integer arithmetic so large offsets never drift.
func SectorsToMSF(positionSectors int32) string {
	seconds := uint32(positionSectors) / CD_SECTORS_PER_SEC
	frames := uint32(positionSectors) % CD_SECTORS_PER_SEC
	minutes := seconds / 60
	seconds %= 60

	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, frames)
}

// MSFToSectors converts an MSF time-code string back to a sector count.
// This is the inverse of SectorsToMSF for non-negative positions.
func MSFToSectors(msf string) (int32, error) {
	var minutes, seconds, frames int32
	if _, err := fmt.Sscanf(msf, "%02d:%02d:%02d", &minutes, &seconds, &frames); err != nil {
		return 0, fmt.Errorf("invalid MSF time-code %q: %w", msf, err)
	}
	if seconds > 59 || frames > 74 || minutes < 0 || seconds < 0 || frames < 0 {
		return 0, fmt.Errorf("invalid MSF time-code %q: field out of range", msf)
	}
	return (minutes*60+seconds)*CD_SECTORS_PER_SEC + frames, nil
}

// SectorsToSeconds returns the position as seconds for display purposes
func SectorsToSeconds(positionSectors int32) float64 {
	return float64(positionSectors) / CD_SECTORS_PER_SEC
}
