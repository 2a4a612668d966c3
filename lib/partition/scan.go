// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package partition

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// File is one partition file found by Scan.
type File struct {
	Path         string
	ArtifactType string

	// Date is the partition date (UTC midnight).
	Date time.Time

	// Clock is the HHMMSS part of the file name and Sequence its
	// collision suffix (0 for the plain name). Together with Date they
	// order files of one type by flush time.
	Clock    string
	Sequence int

	Extension string
	Size      int64
}

// DateString returns the partition date as YYYY-MM-DD.
func (f File) DateString() string {
	return f.Date.Format(DateLayout)
}

// Compare orders files by artifact type, then flush order.
func Compare(a, b File) int {
	return cmp.Or(
		cmp.Compare(a.ArtifactType, b.ArtifactType),
		a.Date.Compare(b.Date),
		cmp.Compare(a.Clock, b.Clock),
		cmp.Compare(a.Sequence, b.Sequence),
		cmp.Compare(a.Path, b.Path),
	)
}

// Filter selects files during a scan. A zero Filter matches every
// partition file.
type Filter struct {
	// ArtifactTypes limits the scan to these types when non-empty.
	ArtifactTypes []string

	// Since and Until bound the partition date, inclusive. Zero
	// values leave that side open.
	Since time.Time
	Until time.Time
}

func (f Filter) matchesType(artifactType string) bool {
	return len(f.ArtifactTypes) == 0 || slices.Contains(f.ArtifactTypes, artifactType)
}

func (f Filter) matchesDate(date time.Time) bool {
	if !f.Since.IsZero() && date.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && date.After(f.Until) {
		return false
	}
	return true
}

// OnDate returns a filter for a single partition date.
func OnDate(date time.Time) Filter {
	day := date.UTC().Truncate(24 * time.Hour)
	return Filter{Since: day, Until: day}
}

// Scan returns the partition files under base matching filter, sorted
// with Compare. Entries that do not fit the layout (stray files,
// non-numeric date directories, temp files) are ignored. A missing
// base directory yields no files and no error.
func Scan(base string, filter Filter) ([]File, error) {
	typeEntries, err := os.ReadDir(base)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading base directory: %w", err)
	}

	var files []File
	for _, typeEntry := range typeEntries {
		artifactType := typeEntry.Name()
		if !typeEntry.IsDir() || !ValidArtifactType(artifactType) || !filter.matchesType(artifactType) {
			continue
		}
		found, err := scanType(base, artifactType, filter)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	slices.SortFunc(files, Compare)
	return files, nil
}

func scanType(base, artifactType string, filter Filter) ([]File, error) {
	var files []File
	typeDirectory := filepath.Join(base, artifactType)
	for _, year := range numericSubdirectories(typeDirectory, 4) {
		yearDirectory := filepath.Join(typeDirectory, year)
		for _, month := range numericSubdirectories(yearDirectory, 2) {
			monthDirectory := filepath.Join(yearDirectory, month)
			for _, day := range numericSubdirectories(monthDirectory, 2) {
				date, err := ParseDate(year + "-" + month + "-" + day)
				if err != nil || !filter.matchesDate(date) {
					continue
				}
				dayDirectory := filepath.Join(monthDirectory, day)
				entries, err := os.ReadDir(dayDirectory)
				if err != nil {
					return nil, fmt.Errorf("reading partition %s: %w", dayDirectory, err)
				}
				for _, entry := range entries {
					if !entry.Type().IsRegular() {
						continue
					}
					file, ok := parseFileName(artifactType, entry.Name())
					if !ok {
						continue
					}
					file.Path = filepath.Join(dayDirectory, entry.Name())
					file.Date = date
					if info, err := entry.Info(); err == nil {
						file.Size = info.Size()
					}
					files = append(files, file)
				}
			}
		}
	}
	return files, nil
}

// numericSubdirectories lists subdirectories of directory whose names
// are exactly width decimal digits. Unreadable directories yield none.
func numericSubdirectories(directory string, width int) []string {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || len(name) != width {
			continue
		}
		if _, err := strconv.Atoi(name); err != nil {
			continue
		}
		names = append(names, name)
	}
	return names
}

// parseFileName splits "{type}_{HHMMSS}[_{n}].{ext}".
func parseFileName(artifactType, name string) (File, bool) {
	rest, ok := strings.CutPrefix(name, artifactType+"_")
	if !ok {
		return File{}, false
	}
	stem, extension, ok := strings.Cut(rest, ".")
	if !ok || extension == "" || strings.Contains(extension, ".") {
		return File{}, false
	}
	clock, suffix, hasSuffix := strings.Cut(stem, "_")
	if len(clock) != 6 {
		return File{}, false
	}
	if _, err := strconv.Atoi(clock); err != nil {
		return File{}, false
	}
	sequence := 0
	if hasSuffix {
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			return File{}, false
		}
		sequence = n
	}
	return File{
		ArtifactType: artifactType,
		Clock:        clock,
		Sequence:     sequence,
		Extension:    extension,
	}, true
}

// Latest returns the most recently flushed file of artifactType in
// files, which must be sorted with Compare.
func Latest(files []File, artifactType string) (File, bool) {
	for index := len(files) - 1; index >= 0; index-- {
		if files[index].ArtifactType == artifactType {
			return files[index], true
		}
	}
	return File{}, false
}
