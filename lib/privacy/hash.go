// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

const (
	SHA256Prefix = "sha256:"
	Blake3Prefix = "blake3:"
)

// SHA256Text fingerprints the UTF-8 bytes of text.
func SHA256Text(text string) string {
	sum := sha256.Sum256([]byte(text))
	return SHA256Prefix + hex.EncodeToString(sum[:])
}

// SHA256Record fingerprints rec by its canonical JSON form: keys sorted
// at every level, no insignificant whitespace. Field order therefore
// does not affect the result.
func SHA256Record(rec *record.Record) (string, error) {
	canonical, err := json.Marshal(rec.ToMap())
	if err != nil {
		return "", fmt.Errorf("canonicalizing record: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return SHA256Prefix + hex.EncodeToString(sum[:]), nil
}

// SHA256Dict fingerprints a plain map the same way as SHA256Record.
func SHA256Dict(m map[string]any) (string, error) {
	rec, err := record.FromMap(m)
	if err != nil {
		return "", err
	}
	return SHA256Record(rec)
}

// SHA256File fingerprints the contents of the file at path.
func SHA256File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return SHA256Prefix + hex.EncodeToString(hasher.Sum(nil)), nil
}

// Blake3Text is a faster fingerprint for high-volume join keys. The
// prefix keeps it distinguishable from SHA-256 fingerprints in the same
// column.
func Blake3Text(text string) string {
	sum := blake3.Sum256([]byte(text))
	return Blake3Prefix + hex.EncodeToString(sum[:])
}
