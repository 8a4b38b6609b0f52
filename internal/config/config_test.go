package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdir changes the working directory for the duration of the test,
// matching the behavior of (*testing.T).Chdir from Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			APIKey:   "test-key",
			Model:    "text-embedding-3-small",
		},
		Systems: map[string]SystemConfig{
			"siddha": {IndexPath: "data/siddha.json"},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
	if !strings.Contains(err.Error(), "database.addrs") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestValidate_NoSystems(t *testing.T) {
	cfg := validConfig()
	cfg.Systems = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no terminology systems are configured")
	}
}

func TestValidate_MissingIndexPath(t *testing.T) {
	cfg := validConfig()
	cfg.Systems["siddha"] = SystemConfig{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing index_path")
	}
	if !strings.Contains(err.Error(), "systems.siddha.index_path") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestValidate_MissingEmbeddingModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}
}

func TestValidate_RefineEnabledWithoutModel(t *testing.T) {
	cfg := validConfig()
	cfg.Refine.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled refine without model")
	}

	cfg.Refine.Model = "llama-3.3-70b"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with refine model set: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("ReadTimeoutSec = %d, want 10", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("WriteTimeoutSec = %d, want 30", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Storage.KeyPrefix != "codemap:" {
		t.Errorf("KeyPrefix = %q, want codemap:", cfg.Storage.KeyPrefix)
	}
	if cfg.WebSearch.TimeoutSec != 5 {
		t.Errorf("WebSearch.TimeoutSec = %d, want 5", cfg.WebSearch.TimeoutSec)
	}
	if got := cfg.Systems["siddha"].TopK; got != 10 {
		t.Errorf("TopK = %d, want 10", got)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Systems["siddha"] = SystemConfig{IndexPath: "data/siddha.json", TopK: 5}
	cfg.Storage.KeyPrefix = "custom:"
	cfg.ApplyDefaults()

	if got := cfg.Systems["siddha"].TopK; got != 5 {
		t.Errorf("TopK = %d, want 5", got)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("KeyPrefix = %q, want custom:", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CODEMAP_TEST_KEY", "secret")

	in := []byte("api_key: ${CODEMAP_TEST_KEY}\nmodel: ${CODEMAP_TEST_MODEL:-fallback-model}\n")
	got := string(expandEnvVars(in))

	want := "api_key: secret\nmodel: fallback-model\n"
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}

	yamlBody := `
http:
  port: 9090
database:
  addrs:
    - "localhost:6379"
embedding:
  provider: openai
  api_key: ${CODEMAP_TEST_API_KEY:-dummy}
  model: text-embedding-3-small
systems:
  siddha:
    index_path: data/siddha.json
`
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(yamlBody), 0o600); err != nil {
		t.Fatal(err)
	}

	chdir(t, dir)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "dummy" {
		t.Errorf("APIKey = %q, want dummy", cfg.Embedding.APIKey)
	}
	if got := cfg.Systems["siddha"].TopK; got != 10 {
		t.Errorf("TopK default = %d, want 10", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load("nope"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv = %q, want local", got)
	}

	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv = %q, want prod", got)
	}
}
