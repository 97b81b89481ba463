package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		global      string // File contents; empty means no file
		project     string
		check       func(t *testing.T, cfg *ContractorConfig)
		errContains string
	}{
		{
			name: "no config files returns defaults",
			check: func(t *testing.T, cfg *ContractorConfig) {
				if cfg.Engine.Concurrency != 4 {
					t.Errorf("concurrency = %d, want default 4", cfg.Engine.Concurrency)
				}
				if !cfg.Archive.Enabled {
					t.Error("archive disabled, want default enabled")
				}
			},
		},
		{
			name:   "global overrides one field, keeps the rest",
			global: `{"engine": {"concurrency": 8}}`,
			check: func(t *testing.T, cfg *ContractorConfig) {
				if cfg.Engine.Concurrency != 8 {
					t.Errorf("concurrency = %d, want 8", cfg.Engine.Concurrency)
				}
				if cfg.Engine.MaxRetries != 2 {
					t.Errorf("max_retries = %d, want default 2 preserved", cfg.Engine.MaxRetries)
				}
			},
		},
		{
			name:    "project wins over global",
			global:  `{"engine": {"concurrency": 8}, "site": {"supplier": "global-supply"}}`,
			project: `{"engine": {"concurrency": 2}}`,
			check: func(t *testing.T, cfg *ContractorConfig) {
				if cfg.Engine.Concurrency != 2 {
					t.Errorf("concurrency = %d, want project's 2", cfg.Engine.Concurrency)
				}
				if cfg.Site.Supplier != "global-supply" {
					t.Errorf("supplier = %q, want global's value preserved", cfg.Site.Supplier)
				}
			},
		},
		{
			name:    "crew failure script merges in",
			project: `{"crew": {"fail_first": {"roofing": 2}, "breakdowns": ["excavation"]}}`,
			check: func(t *testing.T, cfg *ContractorConfig) {
				if cfg.Crew.FailFirst["roofing"] != 2 {
					t.Errorf("fail_first[roofing] = %d, want 2", cfg.Crew.FailFirst["roofing"])
				}
				if len(cfg.Crew.Breakdowns) != 1 || cfg.Crew.Breakdowns[0] != "excavation" {
					t.Errorf("breakdowns = %v, want [excavation]", cfg.Crew.Breakdowns)
				}
				// Default selections survive an unrelated crew override.
				if cfg.Crew.Selections["paint"] == "" {
					t.Error("default paint selection lost in merge")
				}
			},
		},
		{
			name:        "invalid values rejected",
			project:     `{"engine": {"concurrency": -1}}`,
			errContains: "concurrency",
		},
		{
			name:        "archive without a path rejected",
			project:     `{"archive": {"enabled": true, "path": ""}}`,
			errContains: "archive.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()

			globalPath := ""
			if tt.global != "" {
				globalPath = writeConfig(t, tmpDir, "global.json", tt.global)
			}
			projectPath := ""
			if tt.project != "" {
				projectPath = writeConfig(t, tmpDir, "project.json", tt.project)
			}

			cfg, err := Load(globalPath, projectPath)
			if tt.errContains != "" {
				if err == nil {
					t.Fatal("Load() error = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Load() error = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()
	globalPath := writeConfig(t, tmpDir, "global.json", "{invalid json")

	if _, err := Load(globalPath, ""); err == nil {
		t.Fatal("Load() error = nil for malformed JSON, want error")
	}
}

func TestLoadMissingFilesNotError(t *testing.T) {
	cfg, err := Load("/nonexistent/global.json", "/nonexistent/project.json")
	if err != nil {
		t.Fatalf("Load() error = %v, want missing files skipped", err)
	}

	if cfg.Engine.Concurrency != DefaultConfig().Engine.Concurrency {
		t.Errorf("concurrency = %d, want default", cfg.Engine.Concurrency)
	}
}

func TestValidateDefaults(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}
