package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "QBANK_WORKERS", "QBANK_DEFAULT_DIFFICULTY", "CORS_ORIGINS_OFFLINE"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.Mode != ModeOffline || cfg.HTTPAddr != ":8080" || cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Workers != 4 || cfg.DefaultDifficulty != 2 || cfg.MaxUploadMB != 20 {
		t.Fatalf("unexpected importer defaults %+v", cfg)
	}
	if got := cfg.CORSOrigins(); len(got) != 2 || got[0] != "http://localhost:3000" {
		t.Fatalf("offline origins = %v", got)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("QBANK_WORKERS", "12")
	t.Setenv("QBANK_DEFAULT_DIFFICULTY", "not-a-number")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")
	t.Setenv("ENABLE_LOCAL_AUTH", "no")
	cfg := FromEnv()
	if cfg.Workers != 12 || cfg.DefaultDifficulty != 2 || cfg.EnableLocalAuth {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if got := cfg.CORSOrigins(); len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("online origins = %v", got)
	}
}

func TestParseTaxonomy(t *testing.T) {
	data := []byte(`
canonical: [Anatomy, Pharmacology]
aliases:
  - key: drugs
    subject: Pharmacology
default: Anatomy
`)
	tax, err := ParseTaxonomy(data)
	if err != nil {
		t.Fatalf("ParseTaxonomy: %v", err)
	}
	if s, ok := tax.Resolve("Drugs and dosing"); !ok || s != "Pharmacology" {
		t.Fatalf("Resolve = %q,%v", s, ok)
	}
}

func TestParseTaxonomyStrict(t *testing.T) {
	cases := map[string]string{
		"unknown field":   "canonical: [A]\nextra: 1\n",
		"two documents":   "canonical: [A]\n---\ncanonical: [B]\n",
		"invalid alias":   "canonical: [A]\naliases:\n  - key: x\n    subject: B\n",
		"empty canonical": "aliases: []\n",
	}
	for name, data := range cases {
		if _, err := ParseTaxonomy([]byte(data)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParserOptionsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, []byte("canonical: [Anatomy]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := Config{TaxonomyFile: path, DefaultDifficulty: 3, Workers: 2}
	opts, err := cfg.ParserOptions()
	if err != nil {
		t.Fatalf("ParserOptions: %v", err)
	}
	if opts.Taxonomy.Canonical[0] != "Anatomy" || opts.DefaultDifficulty != 3 || opts.Workers != 2 {
		t.Fatalf("opts = %+v", opts)
	}

	cfg.TaxonomyFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.ParserOptions(); err == nil || !strings.Contains(err.Error(), "read taxonomy") {
		t.Fatalf("expected read error, got %v", err)
	}
}
