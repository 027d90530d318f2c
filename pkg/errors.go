// Package pkg provides functionality for processing NRG disc images.
// This file defines the sentinel errors returned by the decoder and the
// exporters; callers match them with errors.Is.
package pkg

import "errors"

var (
	// ErrImageTooSmall is returned when the image is shorter than the footer
	ErrImageTooSmall = errors.New("nrg: image file too small")

	// ErrUnknownFormat is returned when neither footer sentinel is found
	ErrUnknownFormat = errors.New("nrg: unrecognized image footer")

	// ErrLegacyFormat is returned for NRG v1 images, which are detected but
	// not decoded
	ErrLegacyFormat = errors.New("nrg: legacy v1 format not supported")

	// ErrUnknownChunk is returned when the chunk stream contains an
	// unrecognized chunk ID
	ErrUnknownChunk = errors.New("nrg: unknown chunk ID")

	// ErrChunkSizeMismatch indicates a decoder consumed a number of bytes
	// different from the chunk's declared size
	ErrChunkSizeMismatch = errors.New("nrg: chunk size mismatch")

	// ErrNoCueData is returned when cue sheet generation is requested but the
	// image has no CUEX chunk
	ErrNoCueData = errors.New("nrg: cue sheet chunk absent")

	// ErrOutputNameCollision is returned when a derived output file name is
	// identical to the input file name
	ErrOutputNameCollision = errors.New("nrg: output file name equals input file name")

	// ErrInvalidSectorSize is returned when the DAOX sector size is 0 and the
	// audio framing cannot be determined
	ErrInvalidSectorSize = errors.New("nrg: cannot determine sector framing")

	// ErrAudioShortRead is returned when fewer audio bytes were read than
	// requested
	ErrAudioShortRead = errors.New("nrg: short read in audio data")

	// ErrAudioShortWrite is returned when fewer audio bytes were written than
	// requested
	ErrAudioShortWrite = errors.New("nrg: short write in audio data")
)
