// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/resonant-knowledge-lab/rkl/lib/clock"
	"github.com/resonant-knowledge-lab/rkl/lib/enrich"
	"github.com/resonant-knowledge-lab/rkl/lib/manifest"
	"github.com/resonant-knowledge-lab/rkl/lib/partition"
	"github.com/resonant-knowledge-lab/rkl/lib/sink"
)

// ManifestName is the archive path of the export description.
const ManifestName = "manifest.json"

// SinceAll is recorded in Manifest.Since when no cutoff was given.
const SinceAll = "all"

// Options configures a bundle.
type Options struct {
	// BaseDir is the telemetry tree root.
	BaseDir string

	// Since excludes partition files and manifests dated before it.
	// Zero includes everything.
	Since time.Time

	// Clock stamps generated_at. Nil uses the real clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Manifest describes one export. It is written to the archive root.
type Manifest struct {
	GeneratedAt string  `json:"generated_at"`
	Since       string  `json:"since"`
	FileCount   int     `json:"file_count"`
	BaseDir     string  `json:"base_dir"`
	Files       []Entry `json:"files"`

	// Bytes is the uncompressed size of all exported files.
	Bytes int64 `json:"bytes"`
}

// Entry is one exported file.
type Entry struct {
	Path         string `json:"path"`
	ArtifactType string `json:"artifact_type,omitempty"`
	Date         string `json:"date"`
	Size         int64  `json:"size"`
}

// Collect returns the files a bundle of opts would contain, in
// archive order: partition files sorted by type and flush order, then
// manifests oldest first.
func Collect(opts Options) ([]Entry, error) {
	files, err := partition.Scan(opts.BaseDir, partition.Filter{Since: opts.Since})
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(files))
	for _, file := range files {
		relative, err := filepath.Rel(opts.BaseDir, file.Path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Path:         filepath.ToSlash(relative),
			ArtifactType: file.ArtifactType,
			Date:         file.DateString(),
			Size:         file.Size,
		})
	}

	dates, err := manifest.List(opts.BaseDir)
	if err != nil {
		return nil, err
	}
	for _, date := range dates {
		day, err := partition.ParseDate(date)
		if err != nil {
			continue
		}
		if !opts.Since.IsZero() && day.Before(opts.Since) {
			continue
		}
		path := partition.ManifestPath(opts.BaseDir, day)
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Path: filepath.ToSlash(filepath.Join(partition.ManifestDirName, filepath.Base(path))),
			Date: date,
			Size: info.Size(),
		})
	}
	return entries, nil
}

// Bundle writes a zip archive of the telemetry tree to w and returns
// its manifest.
func Bundle(w io.Writer, opts Options) (*Manifest, error) {
	entries, err := Collect(opts)
	if err != nil {
		return nil, fmt.Errorf("collecting files: %w", err)
	}

	now := time.Now
	if opts.Clock != nil {
		now = opts.Clock.Now
	}
	absolute, err := filepath.Abs(opts.BaseDir)
	if err != nil {
		return nil, err
	}
	result := &Manifest{
		GeneratedAt: enrich.FormatTimestamp(now()),
		Since:       SinceAll,
		FileCount:   len(entries),
		BaseDir:     absolute,
		Files:       entries,
	}
	if !opts.Since.IsZero() {
		result.Since = opts.Since.Format(partition.DateLayout)
	}

	archive := zip.NewWriter(w)
	for _, entry := range entries {
		written, err := addFile(archive, opts.BaseDir, entry)
		if err != nil {
			archive.Close()
			return nil, fmt.Errorf("adding %s: %w", entry.Path, err)
		}
		result.Bytes += written
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		archive.Close()
		return nil, err
	}
	header := &zip.FileHeader{Name: ManifestName, Method: zip.Deflate, Modified: now().UTC()}
	manifestWriter, err := archive.CreateHeader(header)
	if err != nil {
		archive.Close()
		return nil, err
	}
	if _, err := manifestWriter.Write(append(data, '\n')); err != nil {
		archive.Close()
		return nil, err
	}
	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("finishing archive: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("telemetry bundle written",
		"files", result.FileCount,
		"since", result.Since,
		"bytes", result.Bytes,
	)
	return result, nil
}

// addFile copies the file at entry.Path under base into archive and
// returns the number of bytes copied.
func addFile(archive *zip.Writer, base string, entry Entry) (int64, error) {
	file, err := os.Open(filepath.Join(base, filepath.FromSlash(entry.Path)))
	if err != nil {
		return 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, err
	}
	header.Name = entry.Path
	header.Method = zip.Deflate
	if filepath.Ext(entry.Path) == "."+sink.ColumnarExtension {
		header.Method = zip.Store
	}
	writer, err := archive.CreateHeader(header)
	if err != nil {
		return 0, err
	}
	return io.Copy(writer, file)
}

// BundleFile writes the bundle to path, replacing it atomically. The
// parent directory is created if missing.
func BundleFile(path string, opts Options) (*Manifest, error) {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	temporary, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	temporaryPath := temporary.Name()

	result, err := Bundle(temporary, opts)
	if err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return nil, err
	}
	if err := temporary.Sync(); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return nil, fmt.Errorf("syncing bundle: %w", err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return nil, fmt.Errorf("closing bundle: %w", err)
	}
	if err := os.Chmod(temporaryPath, 0o644); err != nil {
		os.Remove(temporaryPath)
		return nil, err
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return nil, fmt.Errorf("renaming bundle into place: %w", err)
	}
	return result, nil
}

// DefaultName returns the bundle file name for an export made at t.
func DefaultName(t time.Time) string {
	return "telemetry_" + t.UTC().Format("20060102_150405") + ".zip"
}
