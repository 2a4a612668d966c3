// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/resonant-knowledge-lab/rkl/lib/partition"
)

// ArtifactStats are the cumulative counters of one artifact type.
type ArtifactStats struct {
	Rows          int64  `json:"rows"`
	Writes        int64  `json:"writes"`
	SchemaVersion string `json:"schema_version"`
}

// UnmarshalJSON reads counts written by any producer: a count may be
// an integer, a float (truncated toward zero), or a numeric string.
// A missing or null count is 0.
func (s *ArtifactStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		Rows          json.Number `json:"rows"`
		Writes        json.Number `json:"writes"`
		SchemaVersion string      `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rows, err := parseCount(raw.Rows)
	if err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	writes, err := parseCount(raw.Writes)
	if err != nil {
		return fmt.Errorf("writes: %w", err)
	}
	*s = ArtifactStats{Rows: rows, Writes: writes, SchemaVersion: raw.SchemaVersion}
	return nil
}

func parseCount(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if count, err := n.Int64(); err == nil {
		return count, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("count %s out of range", n)
	}
	return int64(math.Trunc(f)), nil
}

// Daily is the content of one manifest file.
type Daily struct {
	Date       string                   `json:"date"`
	RKLVersion string                   `json:"rkl_version"`
	Artifacts  map[string]ArtifactStats `json:"artifacts"`

	// GeneratedAt is the time of the latest merge, in the enricher's
	// timestamp layout. Empty only in a fresh skeleton.
	GeneratedAt string `json:"generated_at,omitempty"`

	// CorrectedBy names the tool that rebuilt this manifest from
	// partition files. Normal merges leave it untouched.
	CorrectedBy string `json:"corrected_by,omitempty"`
}

// Skeleton returns an empty manifest for date.
func Skeleton(date, version string) *Daily {
	return &Daily{
		Date:       date,
		RKLVersion: version,
		Artifacts:  make(map[string]ArtifactStats),
	}
}

// Types returns the artifact types in the manifest, sorted.
func (d *Daily) Types() []string {
	types := make([]string, 0, len(d.Artifacts))
	for artifactType := range d.Artifacts {
		types = append(types, artifactType)
	}
	sort.Strings(types)
	return types
}

// Load reads and parses the manifest at path. A missing file returns
// an error wrapping fs.ErrNotExist.
func Load(path string) (*Daily, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var daily Daily
	if err := json.Unmarshal(data, &daily); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if daily.Artifacts == nil {
		daily.Artifacts = make(map[string]ArtifactStats)
	}
	return &daily, nil
}

// Read loads the manifest of base for date (YYYY-MM-DD).
func Read(base, date string) (*Daily, error) {
	parsed, err := partition.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return Load(partition.ManifestPath(base, parsed))
}

// List returns the dates that have a manifest under base, oldest
// first. A missing manifest directory yields no dates.
func List(base string) ([]string, error) {
	entries, err := os.ReadDir(partition.ManifestDir(base))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing manifests: %w", err)
	}
	var dates []string
	for _, entry := range entries {
		date, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok || !entry.Type().IsRegular() {
			continue
		}
		if _, err := partition.ParseDate(date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// Latest returns the newest manifest date under base.
func Latest(base string) (string, bool, error) {
	dates, err := List(base)
	if err != nil || len(dates) == 0 {
		return "", false, err
	}
	return dates[len(dates)-1], true, nil
}

// Stage writes daily to a uniquely named temp file in target's
// directory and returns the temp path. The temp file is fully written
// and fsynced; target is not touched.
func Stage(daily *Daily, target string) (string, error) {
	data, err := json.MarshalIndent(daily, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(target)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("creating manifest directory: %w", err)
	}
	file, err := os.CreateTemp(directory, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temporary manifest: %w", err)
	}
	temporaryPath := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return "", fmt.Errorf("writing temporary manifest: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return "", fmt.Errorf("syncing temporary manifest: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return "", fmt.Errorf("closing temporary manifest: %w", err)
	}
	return temporaryPath, nil
}

// Commit renames a staged temp file over target and syncs the parent
// directory so the rename survives a crash.
func Commit(temporaryPath, target string) error {
	if err := os.Chmod(temporaryPath, 0o644); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("setting manifest permissions: %w", err)
	}
	if err := os.Rename(temporaryPath, target); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming manifest into place: %w", err)
	}
	parentDirectory, err := os.Open(filepath.Dir(target))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}

// Write atomically replaces target with daily.
func Write(daily *Daily, target string) error {
	temporaryPath, err := Stage(daily, target)
	if err != nil {
		return err
	}
	return Commit(temporaryPath, target)
}
