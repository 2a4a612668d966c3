// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

// NDJSONExtension is the file extension of row-oriented partitions.
const NDJSONExtension = "ndjson"

// maxLineSize bounds a single NDJSON line when reading.
const maxLineSize = 16 << 20

// NDJSON writes one JSON object per line, keys in record order, each
// line terminated by a newline.
type NDJSON struct{}

func (NDJSON) Format() Format    { return FormatNDJSON }
func (NDJSON) Extension() string { return NDJSONExtension }

func (NDJSON) Encode(w io.Writer, records []*record.Record) error {
	buffered := bufio.NewWriter(w)
	for index, rec := range records {
		line, err := rec.MarshalJSON()
		if err != nil {
			return fmt.Errorf("record %d: %w", index, err)
		}
		buffered.Write(line)
		buffered.WriteByte('\n')
	}
	return buffered.Flush()
}

func decodeNDJSON(r io.Reader) ([]*record.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []*record.Record
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := record.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
