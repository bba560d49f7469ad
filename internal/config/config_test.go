package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "APP_ENV", "DATABASE_URL", "JWT_SECRET", "CLIENTS",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
server:
  port: 9000
  env: production
database:
  url: "postgres://u:p@db/leads"
auth:
  jwt_secret: "s3cret"
  token_ttl_hours: 24
cors:
  clients: ["https://app.example.com"]
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production env")
	}
	if cfg.TokenTTL() != 24*time.Hour {
		t.Errorf("ttl = %s", cfg.TokenTTL())
	}
	if cfg.Auth.CookieName != "jwt" {
		t.Errorf("cookie name default = %q", cfg.Auth.CookieName)
	}
	if len(cfg.CORS.Clients) != 1 || cfg.CORS.Clients[0] != "https://app.example.com" {
		t.Errorf("clients = %v", cfg.CORS.Clients)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("CLIENTS", "http://a.test, http://b.test ,")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" || cfg.IsProduction() {
		t.Errorf("env = %q", cfg.Server.Env)
	}
	if cfg.Database.DSN != "postgres://env/db" || cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("unexpected db/secret: %+v", cfg)
	}
	if got := cfg.CORS.Clients; len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("clients = %v", got)
	}
	if cfg.TokenTTL() != 7*24*time.Hour {
		t.Errorf("default ttl = %s", cfg.TokenTTL())
	}
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := LoadConfig(missing); err == nil {
		t.Fatal("expected error without database url")
	}

	t.Setenv("DATABASE_URL", "postgres://env/db")
	if _, err := LoadConfig(missing); err == nil {
		t.Fatal("expected error without jwt secret")
	}
}

func TestLoadConfigBadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_SECRET", "x")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}
