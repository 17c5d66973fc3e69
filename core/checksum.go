package core

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ChecksumFromBytes returns the hex BLAKE2b-256 digest of data.
//
// Examples:
//   - ChecksumFromBytes(nil) returns "0e5751c0...f12fe3a8"
//
// This is a pure function with deterministic output for any given input.
func ChecksumFromBytes(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PixelChecksum hashes the visible part of a pixel buffer: rows rows of
// rowBytes bytes, stride bytes apart. Row padding does not affect the result,
// so two renders of the same page into differently padded bitmaps agree.
//
// Parameters:
//   - pix: the bitmap buffer
//   - rowBytes: width times bytes per pixel
//   - stride: distance between row starts, at least rowBytes
//   - rows: bitmap height
//
// Returns an error when the buffer is too short for the geometry.
func PixelChecksum(pix []byte, rowBytes, stride, rows int) (string, error) {
	if rowBytes < 0 || rows < 0 || stride < rowBytes {
		return "", fmt.Errorf("invalid geometry: row %d bytes, stride %d, %d rows", rowBytes, stride, rows)
	}
	if rows > 0 && len(pix) < (rows-1)*stride+rowBytes {
		return "", fmt.Errorf("buffer of %d bytes too short for %d rows of stride %d", len(pix), rows, stride)
	}

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for y := 0; y < rows; y++ {
		hasher.Write(pix[y*stride : y*stride+rowBytes])
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ChecksumFile computes the BLAKE2b-256 digest of a rendered output file.
func ChecksumFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("filepath cannot be empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer file.Close()

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file %q: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyChecksum compares the digest of a file against an expected hex value.
// Comparison is case-insensitive.
func VerifyChecksum(path string, expectedHash string) (bool, error) {
	if len(expectedHash) != 2*blake2b.Size256 {
		return false, fmt.Errorf("invalid checksum length: expected %d characters, got %d", 2*blake2b.Size256, len(expectedHash))
	}
	if _, err := hex.DecodeString(expectedHash); err != nil {
		return false, fmt.Errorf("invalid checksum format: %w", err)
	}

	computed, err := ChecksumFile(path)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(computed, expectedHash), nil
}
