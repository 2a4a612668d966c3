// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"log/slog"

	"github.com/resonant-knowledge-lab/rkl/lib/batch"
	"github.com/resonant-knowledge-lab/rkl/lib/partition"
	"github.com/resonant-knowledge-lab/rkl/lib/sink"
)

// RebuildTool is recorded in corrected_by by Rebuild.
const RebuildTool = "rkl manifest fix"

// Rebuild recomputes the manifest for date from the partition files
// under the reconciler's base directory. Every readable file counts as
// one write and contributes its record count to rows; unreadable files
// are logged and skipped. The existing manifest's rkl_version is kept
// when one exists. The result is returned, not written; pass it to
// Write to replace the manifest.
func (r *Reconciler) Rebuild(date string) (*Daily, error) {
	day, err := partition.ParseDate(date)
	if err != nil {
		return nil, err
	}
	files, err := partition.Scan(r.BaseDir, partition.OnDate(day))
	if err != nil {
		return nil, err
	}

	stats := make(map[string]batch.Counts)
	for _, file := range files {
		records, err := sink.ReadFile(file.Path)
		if err != nil {
			r.logger().Warn("skipping unreadable partition file",
				"path", file.Path,
				"error", err,
			)
			continue
		}
		counts := stats[file.ArtifactType]
		counts.Rows += int64(len(records))
		counts.Writes++
		stats[file.ArtifactType] = counts
	}

	path := partition.ManifestPath(r.BaseDir, day)
	version := r.Version
	if existing, err := Load(path); err == nil && existing.RKLVersion != "" {
		version = existing.RKLVersion
	}

	rebuilt := Skeleton(date, version)
	r.Apply(rebuilt, stats, r.now())
	rebuilt.RKLVersion = version
	rebuilt.CorrectedBy = RebuildTool
	r.logger().Info("manifest rebuilt from partitions",
		slog.String("date", date),
		slog.Int("files", len(files)),
		slog.Int("artifact_types", len(stats)),
	)
	return rebuilt, nil
}

// Fix rebuilds the manifest for date and replaces it atomically,
// returning the written manifest and its path.
func (r *Reconciler) Fix(date string) (*Daily, string, error) {
	rebuilt, err := r.Rebuild(date)
	if err != nil {
		return nil, "", err
	}
	day, err := partition.ParseDate(date)
	if err != nil {
		return nil, "", err
	}
	path := partition.ManifestPath(r.BaseDir, day)
	if err := Write(rebuilt, path); err != nil {
		return nil, "", fmt.Errorf("writing rebuilt manifest: %w", err)
	}
	return rebuilt, path, nil
}
