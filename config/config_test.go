package config

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(zap.NewNop())

	if cfg.NERBackend != "prose" {
		t.Errorf("NERBackend = %q, want prose", cfg.NERBackend)
	}
	if cfg.TextColumn != "texto" {
		t.Errorf("TextColumn = %q, want texto", cfg.TextColumn)
	}
	if cfg.WordJoiner != "_" {
		t.Errorf("WordJoiner = %q, want _", cfg.WordJoiner)
	}
	if !cfg.ConvertNumbers {
		t.Error("ConvertNumbers should default to true")
	}
	if cfg.RunRetentionDays != 90 {
		t.Errorf("RunRetentionDays = %d, want 90", cfg.RunRetentionDays)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NER_BACKEND", "RULES")
	t.Setenv("METADATA_COLUMNS", "sexo, idade ,,regiao")
	t.Setenv("WORKERS", "0")

	cfg := Load(zap.NewNop())

	if cfg.NERBackend != "rules" {
		t.Errorf("NERBackend = %q, want rules", cfg.NERBackend)
	}
	want := []string{"sexo", "idade", "regiao"}
	if len(cfg.MetadataColumns) != len(want) {
		t.Fatalf("MetadataColumns = %v, want %v", cfg.MetadataColumns, want)
	}
	for i := range want {
		if cfg.MetadataColumns[i] != want[i] {
			t.Errorf("MetadataColumns[%d] = %q, want %q", i, cfg.MetadataColumns[i], want[i])
		}
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want clamp to 1", cfg.Workers)
	}
}

func TestLoadShutdownTimeoutFromEnv(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "30")

	cfg := Load(zap.NewNop())

	if cfg.ShutdownTimeoutSeconds != 30 {
		t.Errorf("ShutdownTimeoutSeconds = %d, want 30", cfg.ShutdownTimeoutSeconds)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{NERBackend: "prose", ContractionMode: "join", WordJoiner: "_", TextColumn: "texto"}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown_backend", mutate: func(c *Config) { c.NERBackend = "spacy" }, wantErr: true},
		{name: "unknown_contraction_mode", mutate: func(c *Config) { c.ContractionMode = "merge" }, wantErr: true},
		{name: "blank_joiner", mutate: func(c *Config) { c.WordJoiner = " " }, wantErr: true},
		{name: "asterisk_joiner", mutate: func(c *Config) { c.WordJoiner = "*" }, wantErr: true},
		{name: "empty_text_column", mutate: func(c *Config) { c.TextColumn = "" }, wantErr: true},
		{name: "negative_shutdown_timeout", mutate: func(c *Config) { c.ShutdownTimeoutSeconds = -5 }, wantErr: true},
		{name: "negative_retention", mutate: func(c *Config) { c.RunRetentionDays = -1 }, wantErr: true},
		{name: "unicode_joiner", mutate: func(c *Config) { c.WordJoiner = "ç" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zap.DebugLevel,
		"WARNING": zap.WarnLevel,
		"error":   zap.ErrorLevel,
		"":        zap.InfoLevel,
		"verbose": zap.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
