// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/resonant-knowledge-lab/rkl/lib/codec"
	"github.com/resonant-knowledge-lab/rkl/lib/partition"
	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

// ErrUnknownFormat is returned for unrecognized format names and file
// extensions.
var ErrUnknownFormat = errors.New("unknown telemetry file format")

// Format names a serialization format.
type Format string

const (
	FormatColumnar Format = "columnar"
	FormatNDJSON   Format = "ndjson"
)

// ParseFormat validates a configured format name. The empty string
// selects the columnar format.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatColumnar:
		return FormatColumnar, nil
	case FormatNDJSON:
		return FormatNDJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (must be columnar or ndjson)", ErrUnknownFormat, name)
	}
}

// Writer encodes one batch of records into a file body.
type Writer interface {
	Format() Format

	// Extension is the file extension without the leading dot.
	Extension() string

	// Encode writes records to w in order. It must not retain
	// records after returning.
	Encode(w io.Writer, records []*record.Record) error
}

// New returns the writer for the named format. compression applies to
// the columnar format only.
func New(format string, compression string) (Writer, error) {
	parsed, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if parsed == FormatNDJSON {
		return NDJSON{}, nil
	}
	tag, err := codec.ParseCompression(compression)
	if err != nil {
		return nil, err
	}
	return Columnar{Compression: tag}, nil
}

// Write creates path exclusively and encodes records into it. The file
// is synced before close. On any failure the partial file is removed.
func Write(w Writer, path string, records []*record.Record) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return finish(w, file, records)
}

// WritePartition encodes records into a new file in the partition for
// (artifactType, at) under base and returns its path. The file name is
// unique within the partition; existing files are never overwritten or
// appended to.
func WritePartition(w Writer, base, artifactType string, at time.Time, records []*record.Record) (string, error) {
	file, err := partition.Create(base, artifactType, at, w.Extension())
	if err != nil {
		return "", err
	}
	path := file.Name()
	if err := finish(w, file, records); err != nil {
		return "", err
	}
	return path, nil
}

func finish(w Writer, file *os.File, records []*record.Record) error {
	path := file.Name()
	if err := w.Encode(file, records); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ForPath returns the format of a partition file from its extension.
func ForPath(path string) (Format, error) {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case ColumnarExtension:
		return FormatColumnar, nil
	case NDJSONExtension:
		return FormatNDJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
	}
}

// Decode reads every record of the given format from r.
func Decode(format Format, r io.Reader) ([]*record.Record, error) {
	switch format {
	case FormatColumnar:
		return decodeColumnar(r)
	case FormatNDJSON:
		return decodeNDJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadFile reads a partition file of either format back into records.
func ReadFile(path string) ([]*record.Record, error) {
	format, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	records, err := Decode(format, file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}
