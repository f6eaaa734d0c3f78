package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-magic-lair/internal/config"
)

func TestConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(config.EnvSourceURL, "")
	c, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Source.Type != "csv" || c.Source.Schema != "extended" || c.Source.GID != "0" {
		t.Fatalf("source defaults not applied: %+v", c.Source)
	}
	if c.Output != config.DefaultOutput || c.Site.ImageWait != 5*time.Second || c.Fetch.Wait != 25*time.Second {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if c.Fetch.Retry != 0 {
		t.Fatalf("retry default = %d, want 0", c.Fetch.Retry)
	}
}

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "c.yaml")
	_ = os.WriteFile(f, []byte("SOURCE:\n  schema: weird\n"), 0644)
	if _, err := config.Load(f); err == nil {
		t.Fatalf("expect error for unknown schema")
	}
	_ = os.WriteFile(f, []byte("FETCH:\n  retry: -1\n"), 0644)
	if _, err := config.Load(f); err == nil {
		t.Fatalf("expect error for negative retry")
	}
	_ = os.WriteFile(f, []byte("IMAGE_URL_TEMPLATE: https://x/img.jpg\n"), 0644)
	if _, err := config.Load(f); err == nil {
		t.Fatalf("expect error for template without {id}")
	}
	_ = os.WriteFile(f, []byte("SOURCE:\n  schema: minimal\nIMAGE_URL_TEMPLATE: https://x/img.jpg\nSITE:\n  image_timeout: 2s\n"), 0644)
	c, err := config.Load(f)
	if err != nil {
		t.Fatalf("minimal schema does not need {id}: %v", err)
	}
	if c.Site.ImageWait != 2*time.Second {
		t.Fatalf("image wait = %v", c.Site.ImageWait)
	}
}

func TestConfig_BasePath(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "c.yaml")
	_ = os.WriteFile(f, []byte("SITE:\n  base_path: /decks/\n"), 0644)
	unsetBasePath(t)

	c, err := config.Load(f)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.BasePath(); got != "/decks" {
		t.Fatalf("base path = %q, want /decks", got)
	}

	// 已设置但为空：站点根
	t.Setenv(config.EnvBasePath, "")
	c, err = config.Load(f)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.BasePath(); got != "" {
		t.Fatalf("base path = %q, want empty", got)
	}
}

func TestConfig_DefaultBasePath(t *testing.T) {
	unsetBasePath(t)
	c, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.BasePath(); got != "/lair" {
		t.Fatalf("base path = %q, want /lair", got)
	}
}

func unsetBasePath(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvBasePath, config.EnvBasePathLegacy} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	_ = os.WriteFile(env, []byte(config.EnvSourceURL+"=https://example.test/sheet.csv\n"), 0644)
	t.Setenv(config.EnvSourceURL, "")
	// godotenv 不覆盖已存在的变量，先清空
	os.Unsetenv(config.EnvSourceURL)

	c, err := config.Load("", env, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Source.URL != "https://example.test/sheet.csv" {
		t.Fatalf("source url = %q", c.Source.URL)
	}
}
