// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package partition

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDirAndManifestPathUseUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	local := time.Date(2025, 11, 10, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*60*60))
	if got, want := Dir("/data", "execution_context", local), filepath.Join("/data", "execution_context", "2025", "11", "11"); got != want {
		t.Errorf("Dir = %q, want %q", got, want)
	}
	if got, want := ManifestPath("/data", local), filepath.Join("/data", "manifests", "2025-11-11.json"); got != want {
		t.Errorf("ManifestPath = %q, want %q", got, want)
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2025, 11, 11, 9, 5, 7, 0, time.UTC)
	if got := FileName("agent_graph", at, 0, "ndjson"); got != "agent_graph_090507.ndjson" {
		t.Errorf("FileName seq 0 = %q", got)
	}
	if got := FileName("agent_graph", at, 3, "ccbor"); got != "agent_graph_090507_3.ccbor" {
		t.Errorf("FileName seq 3 = %q", got)
	}
}

func TestValidArtifactType(t *testing.T) {
	for _, valid := range []string{"execution_context", "a-b", "X9"} {
		if !ValidArtifactType(valid) {
			t.Errorf("ValidArtifactType(%q) = false", valid)
		}
	}
	for _, invalid := range []string{"", "a/b", "..", "a b", "manifests", "é"} {
		if ValidArtifactType(invalid) {
			t.Errorf("ValidArtifactType(%q) = true", invalid)
		}
	}
}

func TestCreateAvoidsCollisions(t *testing.T) {
	base := t.TempDir()
	at := time.Date(2025, 11, 11, 9, 0, 0, 0, time.UTC)

	var names []string
	for range 3 {
		file, err := Create(base, "execution_context", at, "ndjson")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		names = append(names, filepath.Base(file.Name()))
		file.Close()
	}
	want := []string{
		"execution_context_090000.ndjson",
		"execution_context_090000_1.ndjson",
		"execution_context_090000_2.ndjson",
	}
	for index := range want {
		if names[index] != want[index] {
			t.Errorf("file %d = %q, want %q", index, names[index], want[index])
		}
	}

	// Removing the first frees the plain name again.
	os.Remove(filepath.Join(Dir(base, "execution_context", at), want[0]))
	file, err := Create(base, "execution_context", at, "ndjson")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer file.Close()
	if filepath.Base(file.Name()) != want[0] {
		t.Errorf("reused name = %q, want %q", filepath.Base(file.Name()), want[0])
	}
}

func TestCreateRejectsUnsafeType(t *testing.T) {
	if _, err := Create(t.TempDir(), "../escape", time.Now(), "ndjson"); err == nil {
		t.Fatal("Create accepted a path-traversing artifact type")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "alpha", "2025", "11", "11", "alpha_090000_1.ndjson"))
	touch(t, filepath.Join(base, "alpha", "2025", "11", "11", "alpha_090000.ndjson"))
	touch(t, filepath.Join(base, "alpha", "2025", "11", "10", "alpha_235959.ccbor"))
	touch(t, filepath.Join(base, "alpha", "2025", "11", "11", "stray.txt"))
	touch(t, filepath.Join(base, "alpha", "2025", "11", "xx", "alpha_090000.ndjson"))
	touch(t, filepath.Join(base, "beta", "2025", "11", "12", "beta_120000.ndjson"))
	touch(t, filepath.Join(base, "manifests", "2025-11-11.json"))

	files, err := Scan(base, Filter{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{
		"alpha_235959.ccbor",
		"alpha_090000.ndjson",
		"alpha_090000_1.ndjson",
		"beta_120000.ndjson",
	}
	if len(files) != len(want) {
		t.Fatalf("Scan found %d files, want %d: %+v", len(files), len(want), files)
	}
	for index, name := range want {
		if filepath.Base(files[index].Path) != name {
			t.Errorf("files[%d] = %q, want %q", index, filepath.Base(files[index].Path), name)
		}
	}
	if files[2].Sequence != 1 || files[2].Clock != "090000" || files[2].Extension != "ndjson" {
		t.Errorf("parsed file = %+v", files[2])
	}
	if files[0].DateString() != "2025-11-10" {
		t.Errorf("DateString = %q", files[0].DateString())
	}

	latest, ok := Latest(files, "alpha")
	if !ok || filepath.Base(latest.Path) != "alpha_090000_1.ndjson" {
		t.Errorf("Latest(alpha) = %+v, %v", latest, ok)
	}
	if _, ok := Latest(files, "gamma"); ok {
		t.Error("Latest(gamma) found a file")
	}

	day, _ := ParseDate("2025-11-11")
	onDay, err := Scan(base, OnDate(day))
	if err != nil {
		t.Fatalf("Scan OnDate: %v", err)
	}
	if len(onDay) != 2 {
		t.Errorf("OnDate found %d files, want 2", len(onDay))
	}

	since, _ := ParseDate("2025-11-11")
	recent, err := Scan(base, Filter{Since: since, ArtifactTypes: []string{"beta"}})
	if err != nil {
		t.Fatalf("Scan since: %v", err)
	}
	if len(recent) != 1 || recent[0].ArtifactType != "beta" {
		t.Errorf("filtered scan = %+v", recent)
	}
}

func TestScanMissingBase(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "absent"), Filter{})
	if err != nil || files != nil {
		t.Fatalf("Scan(missing) = %v, %v; want nil, nil", files, err)
	}
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2025-11-11")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if date.Location() != time.UTC || date.Hour() != 0 {
		t.Errorf("date = %v, want UTC midnight", date)
	}
	if _, err := ParseDate("11/11/2025"); err == nil {
		t.Error("ParseDate accepted a malformed date")
	}
}
