package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prajyotrote/coaching-os-sub000/internal/config"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadMissingFilesUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "none.yaml"), filepath.Join(dir, "none.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Redis.Channel != "coach:changes" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadLayersFileEnvFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	envPath := filepath.Join(dir, ".env")
	writeFile(t, yamlPath, "db_path: /tmp/from-yaml.db\ntimezone: UTC\nlog:\n  level: info\nredis:\n  addr: localhost:6379\n")
	writeFile(t, envPath, "COACH_LOG_LEVEL=debug\nCOACH_REDIS_DB=2\n")
	t.Setenv("COACH_DB_PATH", "/tmp/from-env.db")

	cfg, err := config.Load(yamlPath, envPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/from-env.db" {
		t.Fatalf("expected env var to win, got %s", cfg.DBPath)
	}
	if cfg.Log.Level != "debug" || cfg.Redis.DB != 2 {
		t.Fatalf("expected .env values applied, got %+v", cfg)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Timezone != "UTC" {
		t.Fatalf("expected yaml values kept, got %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	writeFile(t, yamlPath, "timezone: Mars/Olympus\n")
	if _, err := config.Load(yamlPath, ""); err == nil {
		t.Fatalf("expected invalid timezone to fail")
	}
	writeFile(t, yamlPath, "db_path: [\n")
	if _, err := config.Load(yamlPath, ""); err == nil {
		t.Fatalf("expected malformed yaml to fail")
	}
	t.Setenv("COACH_REDIS_DB", "two")
	if _, err := config.Load("", ""); err == nil {
		t.Fatalf("expected non-integer redis db to fail")
	}
}
