package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_OpenInitializesSchemaAndSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	first := Run{
		Timestamp:     base,
		PackageCount:  12,
		EdgeCount:     30,
		CycleCount:    1,
		ConflictCount: 2,
		FilesAnalyzed: 40,
	}
	second := Run{
		Timestamp:        base.Add(2 * time.Hour),
		PackageCount:     13,
		EdgeCount:        33,
		FilesAnalyzed:    42,
		ParseErrors:      1,
		TotalBundleSize:  512000,
		EstimatedSavings: 97000,
		AvgUtilization:   42.5,
	}

	firstID, err := store.SaveRun(first)
	if err != nil {
		t.Fatalf("save first run: %v", err)
	}
	if firstID == "" {
		t.Fatal("expected generated run id")
	}
	secondID, err := store.SaveRun(second)
	if err != nil {
		t.Fatalf("save second run: %v", err)
	}
	if secondID == firstID {
		t.Fatal("expected distinct run ids")
	}

	runs, err := store.RecentRuns(0)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].RunID != secondID {
		t.Fatalf("expected newest run first, got %s", runs[0].RunID)
	}
	if runs[0].TotalBundleSize != 512000 || runs[0].EstimatedSavings != 97000 {
		t.Fatalf("expected bundle metrics to roundtrip, got %+v", runs[0])
	}
	if runs[0].AvgUtilization != 42.5 {
		t.Fatalf("expected avg utilization to roundtrip, got %v", runs[0].AvgUtilization)
	}
	if !runs[0].Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("unexpected timestamp %v", runs[0].Timestamp)
	}
}

func TestStore_SaveRunUpserts(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	run := Run{RunID: "fixed-id", PackageCount: 5}
	if _, err := store.SaveRun(run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	run.PackageCount = 7
	if _, err := store.SaveRun(run); err != nil {
		t.Fatalf("save run again: %v", err)
	}

	runs, err := store.RecentRuns(0)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected upserted single run, got %d", len(runs))
	}
	if runs[0].PackageCount != 7 {
		t.Fatalf("expected updated package_count=7, got %d", runs[0].PackageCount)
	}
}

func TestStore_RecentRunsLimit(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := store.SaveRun(Run{Timestamp: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}

	runs, err := store.RecentRuns(2)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs with limit, got %d", len(runs))
	}
	if !runs[0].Timestamp.After(runs[1].Timestamp) {
		t.Fatalf("expected descending order, got %v then %v", runs[0].Timestamp, runs[1].Timestamp)
	}
}

func TestStore_OpenRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestStore_OpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file to exist: %v", err)
	}
}
