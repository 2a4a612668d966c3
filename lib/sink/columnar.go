// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/resonant-knowledge-lab/rkl/lib/codec"
	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

// ColumnarExtension is the file extension of columnar partitions.
const ColumnarExtension = "ccbor"

// columnarMagic opens every columnar file.
var columnarMagic = [4]byte{'R', 'K', 'L', 'C'}

// columnarVersion is the only block layout written and accepted.
const columnarVersion = 1

// columnBlock is the CBOR body of a columnar file.
type columnBlock struct {
	Rows    int      `cbor:"rows"`
	Columns []column `cbor:"columns"`
}

type column struct {
	Name   string `cbor:"name"`
	Values []any  `cbor:"values"`
	Absent []int  `cbor:"absent,omitempty"`
}

// Columnar writes a column-major block (see the package comment).
type Columnar struct {
	Compression codec.Compression
}

func (Columnar) Format() Format    { return FormatColumnar }
func (Columnar) Extension() string { return ColumnarExtension }

func (c Columnar) Encode(w io.Writer, records []*record.Record) error {
	block := buildColumns(records)

	header := append(columnarMagic[:], columnarVersion, byte(c.Compression))
	if _, err := w.Write(header); err != nil {
		return err
	}
	compressor, err := codec.NewCompressWriter(w, c.Compression)
	if err != nil {
		return err
	}
	if err := codec.NewEncoder(compressor).Encode(block); err != nil {
		compressor.Close()
		return fmt.Errorf("encoding column block: %w", err)
	}
	return compressor.Close()
}

// buildColumns pivots rows into columns in first-seen key order.
func buildColumns(records []*record.Record) columnBlock {
	block := columnBlock{Rows: len(records)}
	positions := make(map[string]int)
	for _, rec := range records {
		rec.Range(func(key string, _ record.Value) bool {
			if _, seen := positions[key]; !seen {
				positions[key] = len(block.Columns)
				block.Columns = append(block.Columns, column{
					Name:   key,
					Values: make([]any, len(records)),
				})
			}
			return true
		})
	}
	for row, rec := range records {
		for index := range block.Columns {
			col := &block.Columns[index]
			v, ok := rec.Get(col.Name)
			if !ok {
				col.Absent = append(col.Absent, row)
				continue
			}
			col.Values[row] = v.Interface()
		}
	}
	return block
}

func decodeColumnar(r io.Reader) ([]*record.Record, error) {
	buffered := bufio.NewReader(r)
	var header [6]byte
	if _, err := io.ReadFull(buffered, header[:]); err != nil {
		return nil, fmt.Errorf("reading columnar header: %w", err)
	}
	if !bytes.Equal(header[:4], columnarMagic[:]) {
		return nil, errors.New("not a columnar telemetry file (bad magic)")
	}
	if header[4] != columnarVersion {
		return nil, fmt.Errorf("unsupported columnar version %d", header[4])
	}
	decompressor, err := codec.NewDecompressReader(buffered, codec.Compression(header[5]))
	if err != nil {
		return nil, err
	}
	defer decompressor.Close()

	var block columnBlock
	if err := codec.NewDecoder(decompressor).Decode(&block); err != nil {
		return nil, fmt.Errorf("decoding column block: %w", err)
	}
	return buildRows(block)
}

// buildRows pivots a decoded block back into records, restoring the
// writer's column order as field order.
func buildRows(block columnBlock) ([]*record.Record, error) {
	if block.Rows < 0 {
		return nil, fmt.Errorf("invalid row count %d", block.Rows)
	}
	records := make([]*record.Record, block.Rows)
	for row := range records {
		records[row] = record.New()
	}
	for _, col := range block.Columns {
		if len(col.Values) != block.Rows {
			return nil, fmt.Errorf("column %q has %d values for %d rows", col.Name, len(col.Values), block.Rows)
		}
		absent := make(map[int]bool, len(col.Absent))
		for _, row := range col.Absent {
			absent[row] = true
		}
		for row, raw := range col.Values {
			if absent[row] {
				continue
			}
			if err := records[row].Set(col.Name, raw); err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
		}
	}
	return records, nil
}
