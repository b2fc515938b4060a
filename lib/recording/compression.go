// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recording

import "fmt"

// Compression identifies the compression applied to a recording body.
// The value is stored as one byte in the file header; changing the
// numbering breaks existing recordings.
type Compression uint8

const (
	// CompressionNone stores the stream as is.
	CompressionNone Compression = 0

	// CompressionLZ4 uses the LZ4 frame format. Cheap enough to leave
	// on for long-running captures.
	CompressionLZ4 Compression = 1

	// CompressionZstd uses zstd at the default level. Terminal output
	// is highly repetitive and compresses several times better than
	// with LZ4.
	CompressionZstd Compression = 2
)

// String returns the configuration name of the compression.
func (compression Compression) String() string {
	switch compression {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(compression))
	}
}

// ParseCompression parses a compression from its configuration name.
// The empty string means CompressionZstd.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd", "":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown recording compression %q (want none, lz4, or zstd)", name)
	}
}
