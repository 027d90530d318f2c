// Package common provides shared helpers for NRG image processing.
// This file contains primitive readers for the fixed-size big-endian fields
// used throughout the NRG chunk stream.
package common

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// ReadUint8 reads a single unsigned byte
func ReadUint8(reader io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16BE reads a uint16 in big-endian format
func ReadUint16BE(reader io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadUint32BE reads a uint32 in big-endian format
func ReadUint32BE(reader io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadUint64BE reads a uint64 in big-endian format
func ReadUint64BE(reader io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadBCDByte reads a binary-coded-decimal byte.
// The decoded value is high nibble * 10 + low nibble. Values above 99 are not
// valid BCD; in that case the raw byte is returned unmodified, matching the
// behaviour observed in real NRG images.
func ReadBCDByte(reader io.Reader) (uint8, error) {
	b, err := ReadUint8(reader)
	if err != nil {
		return 0, err
	}
	value := (b>>4)*10 + (b & 0x0F)
	if value > 99 {
		LogWarn(WarnInvalidBCDByte, b)
		return b, nil
	}
	return value, nil
}

// ReadSizedString reads exactly size bytes and truncates the result at the
// first null byte. Trailing bytes after the null are discarded.
func ReadSizedString(reader io.Reader, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		if b == 0 {
			buf = buf[:i]
			break
		}
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%s: %q", ErrInvalidStringField, buf)
	}
	return string(buf), nil
}

// ReadBytes reads a specified number of bytes
func ReadBytes(reader io.Reader, count int) ([]byte, error) {
	buffer := make([]byte, count)
	if _, err := io.ReadFull(reader, buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

// SkipBytes skips a specified number of bytes in the reader
func SkipBytes(reader io.Reader, count int64) error {
	if seeker, ok := reader.(io.Seeker); ok {
		_, err := seeker.Seek(count, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, reader, count)
	return err
}
