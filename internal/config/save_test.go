package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveCreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := DefaultConfig()
	cfg.Site.Supplier = "hilltop-lumber"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}

	var loaded ContractorConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("saved config is not valid JSON: %v", err)
	}
	if loaded.Site.Supplier != "hilltop-lumber" {
		t.Errorf("supplier = %q, want hilltop-lumber", loaded.Site.Supplier)
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "deep", "config.json")

	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("config file was not created: %s", path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := DefaultConfig()
	cfg.Engine.Concurrency = 6
	cfg.Crew.FailFirst = map[string]int{"roofing": 1}
	cfg.Crew.Breakdowns = []string{"excavation"}
	cfg.Archive.Path = filepath.Join(tmpDir, "runs.db")

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Engine.Concurrency != 6 {
		t.Errorf("concurrency = %d, want 6", loaded.Engine.Concurrency)
	}
	if loaded.Crew.FailFirst["roofing"] != 1 {
		t.Errorf("fail_first[roofing] = %d, want 1", loaded.Crew.FailFirst["roofing"])
	}
	if len(loaded.Crew.Breakdowns) != 1 || loaded.Crew.Breakdowns[0] != "excavation" {
		t.Errorf("breakdowns = %v, want [excavation]", loaded.Crew.Breakdowns)
	}
	if loaded.Archive.Path != cfg.Archive.Path {
		t.Errorf("archive path = %q, want %q", loaded.Archive.Path, cfg.Archive.Path)
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	first := DefaultConfig()
	first.Site.Jurisdiction = "first-town"
	if err := Save(first, path); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	second := DefaultConfig()
	second.Site.Jurisdiction = "second-town"
	if err := Save(second, path); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Site.Jurisdiction != "second-town" {
		t.Errorf("jurisdiction = %q, want second-town", loaded.Site.Jurisdiction)
	}
}
