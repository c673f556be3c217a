package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Transport.Mode != "http" || cfg.Storage.Driver != "file" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Storage.Key != "projectRiskHistory" || cfg.Transport.Endpoint != "http://127.0.0.1:5000/predict-risk" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
transport:
  mode: static
storage:
  driver: sqlite
  database:
    host: db
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Transport.Mode != "static" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Storage.Path != "data/riskscope.db" {
		t.Fatalf("sqlite default path = %q", cfg.Storage.Path)
	}
	if cfg.Transport.Timeout().Seconds() != 60 {
		t.Fatalf("timeout = %v", cfg.Transport.Timeout())
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("server: [unclosed"), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad mode", func(c *Config) { c.Transport.Mode = "grpc" }, "transport.mode"},
		{"bad endpoint", func(c *Config) { c.Transport.Endpoint = "ftp://x" }, "transport.endpoint"},
		{"openai without key", func(c *Config) {
			c.Transport.Mode = "openai"
			c.Transport.OpenAI.APIKeyEnv = "RISKSCOPE_TEST_UNSET_KEY"
		}, "transport.openai.apiKey"},
		{"bad driver", func(c *Config) { c.Storage.Driver = "redis" }, "storage.driver"},
		{"mysql without host", func(c *Config) { c.Storage.Driver = "mysql" }, "storage.database.host"},
		{"minio without endpoint", func(c *Config) { c.Storage.Driver = "minio" }, "storage.minio.endpoint"},
		{"file without path", func(c *Config) { c.Storage.Path = " " }, "storage.path"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestDSNs(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Storage.Database.Host = "db"
	cfg.Storage.Database.Port = 3306
	cfg.Storage.Database.User = "risk"
	cfg.Storage.Database.Password = "secret"
	cfg.Storage.Database.Name = "riskscope"

	if got := cfg.Storage.MySQLDSN(); got != "risk:secret@tcp(db:3306)/riskscope?parseTime=true&charset=utf8mb4&loc=UTC" {
		t.Fatalf("mysql dsn = %q", got)
	}
	if got := cfg.Storage.PostgresDSN(); !strings.Contains(got, "dbname=riskscope") || !strings.Contains(got, "sslmode=disable") {
		t.Fatalf("postgres dsn = %q", got)
	}
}
