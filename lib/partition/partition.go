// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package partition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// ManifestDirName is the directory under the base directory holding
// daily manifests. It is not a valid partition and Scan skips it.
const ManifestDirName = "manifests"

// DateLayout is the layout of manifest file names and --since filters.
const DateLayout = "2006-01-02"

// maxSequence bounds the collision suffix search. Reaching it means
// something other than flush timing is creating files.
const maxSequence = 10000

// artifactTypePattern restricts artifact types to one safe path
// segment.
var artifactTypePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidArtifactType reports whether artifactType can name a partition
// directory. It must be non-empty, consist of ASCII letters, digits,
// underscores, or hyphens, and must not be the manifest directory.
func ValidArtifactType(artifactType string) bool {
	return artifactTypePattern.MatchString(artifactType) && artifactType != ManifestDirName
}

// Dir returns the partition directory for artifactType on the UTC date
// of t.
func Dir(base, artifactType string, t time.Time) string {
	t = t.UTC()
	return filepath.Join(base, artifactType,
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", int(t.Month())),
		fmt.Sprintf("%02d", t.Day()))
}

// ManifestDir returns the directory holding daily manifests.
func ManifestDir(base string) string {
	return filepath.Join(base, ManifestDirName)
}

// ManifestPath returns the manifest path for the UTC date of t.
func ManifestPath(base string, t time.Time) string {
	return filepath.Join(ManifestDir(base), t.UTC().Format(DateLayout)+".json")
}

// FileName returns the partition file name for the given collision
// sequence. Sequence 0 is the plain name.
func FileName(artifactType string, t time.Time, sequence int, extension string) string {
	stem := artifactType + "_" + t.UTC().Format("150405")
	if sequence > 0 {
		stem = fmt.Sprintf("%s_%d", stem, sequence)
	}
	return stem + "." + extension
}

// Create makes the partition directory for (artifactType, t) if needed
// and exclusively creates a new partition file in it. When the plain
// name is taken, the smallest free sequence suffix is used. The caller
// owns the returned file and must close it; on a failed write the
// caller should remove it.
func Create(base, artifactType string, t time.Time, extension string) (*os.File, error) {
	if !ValidArtifactType(artifactType) {
		return nil, fmt.Errorf("invalid artifact type %q", artifactType)
	}
	directory := Dir(base, artifactType, t)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating partition directory: %w", err)
	}

	for sequence := 0; sequence < maxSequence; sequence++ {
		path := filepath.Join(directory, FileName(artifactType, t, sequence, extension))
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("creating partition file: %w", err)
		}
	}
	return nil, fmt.Errorf("no free partition file name for %s in %s", artifactType, directory)
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return date, nil
}
