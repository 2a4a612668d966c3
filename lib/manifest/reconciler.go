// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/resonant-knowledge-lab/rkl/lib/batch"
	"github.com/resonant-knowledge-lab/rkl/lib/clock"
	"github.com/resonant-knowledge-lab/rkl/lib/enrich"
	"github.com/resonant-knowledge-lab/rkl/lib/partition"
	"github.com/resonant-knowledge-lab/rkl/lib/schema"
)

var errLockUnsupported = errors.New("file locking unsupported")

// VersionSource reports the schema version of an artifact type.
// *schema.Catalog implements it.
type VersionSource interface {
	SchemaVersion(artifactType string) string
}

// Reconciler merges one process's counters into the daily manifest.
type Reconciler struct {
	BaseDir string

	// Version is written as the manifest's rkl_version.
	Version string

	// Schemas supplies schema_version per type. Nil reports
	// schema.DefaultVersion for every type.
	Schemas VersionSource

	// Clock picks the manifest date and generated_at. Nil uses the
	// real clock.
	Clock clock.Clock

	Logger *slog.Logger

	// Lock serializes read-merge-replace across processes with an
	// exclusive advisory lock on {date}.json.lock. Without it,
	// concurrent merges can lose counts.
	Lock bool
}

func (r *Reconciler) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Reconciler) schemaVersion(artifactType string) string {
	if r.Schemas == nil {
		return schema.DefaultVersion
	}
	return r.Schemas.SchemaVersion(artifactType)
}

// Path returns the manifest path for the current UTC date.
func (r *Reconciler) Path() string {
	return partition.ManifestPath(r.BaseDir, r.now())
}

// LoadOrSkeleton reads the manifest at path for date. A missing file
// yields a skeleton silently; an unreadable or corrupt file yields a
// skeleton and a warning.
func (r *Reconciler) LoadOrSkeleton(path, date string) *Daily {
	daily, err := Load(path)
	if err == nil {
		return daily
	}
	if !errors.Is(err, fs.ErrNotExist) {
		r.logger().Warn("manifest unreadable, starting from empty skeleton",
			"path", path,
			"error", err,
		)
	}
	return Skeleton(date, r.Version)
}

// Apply adds stats to daily for every type present in stats and
// refreshes the manifest metadata.
func (r *Reconciler) Apply(daily *Daily, stats map[string]batch.Counts, now time.Time) {
	if daily.Artifacts == nil {
		daily.Artifacts = make(map[string]ArtifactStats)
	}
	for artifactType, counts := range stats {
		entry := daily.Artifacts[artifactType]
		entry.Rows += counts.Rows
		entry.Writes += counts.Writes
		entry.SchemaVersion = r.schemaVersion(artifactType)
		daily.Artifacts[artifactType] = entry
	}
	daily.GeneratedAt = enrich.FormatTimestamp(now)
	daily.RKLVersion = r.Version
}

// Prepare reads the current manifest for today and returns it with
// stats merged in, plus its path. Nothing is written.
func (r *Reconciler) Prepare(stats map[string]batch.Counts) (*Daily, string) {
	return r.prepareAt(stats, r.now())
}

func (r *Reconciler) prepareAt(stats map[string]batch.Counts, now time.Time) (*Daily, string) {
	path := partition.ManifestPath(r.BaseDir, now)
	daily := r.LoadOrSkeleton(path, now.Format(partition.DateLayout))
	r.Apply(daily, stats, now)
	return daily, path
}

// Merge folds stats into today's manifest and atomically replaces it.
// Returns the manifest path.
func (r *Reconciler) Merge(stats map[string]batch.Counts) (string, error) {
	now := r.now()
	path := partition.ManifestPath(r.BaseDir, now)
	if r.Lock {
		release, err := acquireLock(path + ".lock")
		switch {
		case errors.Is(err, errLockUnsupported):
			r.logger().Warn("manifest locking not supported on this platform, merging without lock",
				"path", path,
			)
		case err != nil:
			return "", err
		default:
			defer release()
		}
	}

	daily, _ := r.prepareAt(stats, now)
	if err := Write(daily, path); err != nil {
		return "", err
	}
	r.logger().Debug("manifest merged",
		"path", path,
		"artifact_types", len(stats),
	)
	return path, nil
}
