package config

import (
	"os"
	"path/filepath"
	"testing"

	"gitplanet/internal/platform/testkit"
)

func TestLoadDotenv(t *testing.T) {
	testkit.Serial(t)

	dir := t.TempDir()
	f := filepath.Join(dir, "planet.env")
	body := "PLANET_DOTENV_FRESH=from-file\nPLANET_DOTENV_SET=from-file\n"
	if err := os.WriteFile(f, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PLANET_DOTENV_SET", "from-env")
	t.Setenv("PLANET_DOTENV_FRESH", "")
	_ = os.Unsetenv("PLANET_DOTENV_FRESH")

	if err := LoadDotenv(filepath.Join(dir, "missing.env"), f); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	c := New().Prefix("PLANET_DOTENV_")
	if got := c.MayString("FRESH", ""); got != "from-file" {
		t.Fatalf("FRESH = %q", got)
	}
	if got := c.MayString("SET", ""); got != "from-env" {
		t.Fatalf("SET = %q, env must win", got)
	}
}
