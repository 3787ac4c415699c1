package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TASKS_CONFIG", "TASKS_ADDR", "TASKS_STORAGE_DRIVER", "TASKS_FILE", "LOG_LEVEL", "LOG_FORMAT", "TELEGRAM_TOKEN"} {
		t.Setenv(key, "")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":3000" || cfg.Storage.Driver != "json" || cfg.Storage.Path != "tasks.json" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[server]
addr = ":8080"

[storage]
driver = "sqlite"
path = "data/tasks.db"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Storage.Driver != "sqlite" || cfg.Storage.Path != "data/tasks.db" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[storage]\npath = \"from-file.json\"\n")
	t.Setenv("TASKS_CONFIG", path)
	t.Setenv("TASKS_FILE", "from-env.json")
	t.Setenv("TELEGRAM_TOKEN", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Path != "from-env.json" {
		t.Errorf("path = %q, want from-env.json", cfg.Storage.Path)
	}
	if cfg.Telegram.Token != "secret" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("explicit missing file must fail")
	}
	if _, err := Load(writeConfig(t, "[server\n")); err == nil {
		t.Error("malformed file must fail")
	}
	if _, err := Load(writeConfig(t, "[storage]\ndriver = \"redis\"\n")); err == nil {
		t.Error("unknown driver must fail")
	}
	if _, err := Load(writeConfig(t, "[storage]\ndriver = \"json\"\npath = \"\"\n")); err == nil {
		t.Error("empty path must fail")
	}
}
