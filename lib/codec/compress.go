// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the stream compression of a columnar file.
// Tags are stored in file headers (1 byte). These values are protocol
// constants: changing them breaks reading of existing partitions.
type Compression uint8

const (
	// CompressionNone stores the CBOR block as-is.
	CompressionNone Compression = 0

	// CompressionLZ4 uses the LZ4 frame format. Cheapest to write;
	// suited to pipelines that flush very often.
	CompressionLZ4 Compression = 1

	// CompressionZstd uses zstd at the default level. Telemetry
	// columns are highly repetitive (agent ids, model ids, version
	// tags), so this is the default.
	CompressionZstd Compression = 2
)

// String returns the configuration name of a compression tag.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as used in configuration
// files. The empty string selects zstd.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	case "none":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown compression %q: must be one of zstd, lz4, none", name)
	}
}

// NewCompressWriter wraps w so that everything written is compressed
// with c. The caller must Close the returned writer to flush the final
// frame; closing does not close w.
func NewCompressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return encoder, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", uint8(c))
	}
}

// NewDecompressReader wraps r so that reads return the data that was
// compressed with c. Closing releases decoder resources; it does not
// close r.
func NewDecompressReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return decoder.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", uint8(c))
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
