package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
profile_path: profile.json
source:
  type: file
  path: jobs_latest.csv
audit:
  retention_days: 7
  min_score: 55
  cooldown: 2s
notification:
  type: log
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audit.Retention != 7*24*time.Hour {
		t.Errorf("Retention = %v, want 168h", cfg.Audit.Retention)
	}
	if cfg.Audit.MinScore != 55 {
		t.Errorf("MinScore = %d, want 55", cfg.Audit.MinScore)
	}
	if cfg.Audit.Cooldown != 2*time.Second {
		t.Errorf("Cooldown = %v, want 2s", cfg.Audit.Cooldown)
	}
	if cfg.Source.Path != "jobs_latest.csv" {
		t.Errorf("Source.Path = %q", cfg.Source.Path)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Storage.Backend = %q, want sqlite default", cfg.Storage.Backend)
	}
	if cfg.Audit.Scorer.Mode != "local" {
		t.Errorf("Scorer.Mode = %q, want local default", cfg.Audit.Scorer.Mode)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
source:
  type: file
  path: batch.json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audit.Retention != defaultRetention {
		t.Errorf("Retention = %v, want default %v", cfg.Audit.Retention, defaultRetention)
	}
	if cfg.Audit.MinScore != defaultMinScore {
		t.Errorf("MinScore = %d, want default %d", cfg.Audit.MinScore, defaultMinScore)
	}
	if cfg.ProfilePath != defaultProfilePath {
		t.Errorf("ProfilePath = %q, want default %q", cfg.ProfilePath, defaultProfilePath)
	}
	if cfg.Storage.SQLitePath != defaultSQLitePath {
		t.Errorf("SQLitePath = %q, want default %q", cfg.Storage.SQLitePath, defaultSQLitePath)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("JOBSNIPER_TEST_KEY", "sk-secret")
	path := writeConfig(t, `
source:
  type: file
  path: batch.json
audit:
  scorer:
    mode: llm
    model: gpt-4o-mini
    api_key: ${JOBSNIPER_TEST_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audit.Scorer.APIKey != "sk-secret" {
		t.Errorf("APIKey = %q, want expanded env var", cfg.Audit.Scorer.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "source: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "llm scorer without api key",
			content: `
source: {type: file, path: b.json}
audit:
  scorer: {mode: llm, model: gpt-4o-mini}
`,
		},
		{
			name: "slack without webhook",
			content: `
source: {type: file, path: b.json}
notification: {type: slack}
`,
		},
		{
			name: "telegram without chat id",
			content: `
source: {type: file, path: b.json}
notification:
  type: telegram
  telegram: {token: abc}
`,
		},
		{
			name: "postgres without url",
			content: `
source: {type: file, path: b.json}
storage: {backend: postgres}
`,
		},
		{
			name: "file source without path",
			content: `
source: {type: file}
`,
		},
		{
			name: "min_score out of range",
			content: `
source: {type: file, path: b.json}
audit: {min_score: 150}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load: expected validation error")
			}
		})
	}
}
