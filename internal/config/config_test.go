package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/blockpack"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blockpack.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want %+v", cfg, Default())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
block_size: 4MB
codec: zstd
level: 9
verify_header_checksum: true
metrics_file: /tmp/blockpack.prom
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		BlockSize:            "4MB",
		Codec:                "zstd",
		Level:                9,
		VerifyHeaderChecksum: true,
		MetricsFile:          "/tmp/blockpack.prom",
	}
	if cfg != want {
		t.Errorf("Load = %+v, want %+v", cfg, want)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "content_checksum: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BlockSize != "64KB" || cfg.Codec != "lz4" || !cfg.ContentChecksum {
		t.Errorf("Load = %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(EnvVar, writeConfig(t, "codec: snappy\n"))
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Codec != "snappy" {
		t.Errorf("codec = %q, want snappy", cfg.Codec)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"block size", "block_size: 128KB\n", "invalid block size"},
		{"codec", "codec: lzma\n", "unknown codec"},
		{"level", "level: -1\n", "negative level"},
		{"syntax", "codec: [\n", "parsing config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateBlockSizeError(t *testing.T) {
	cfg := Default()
	cfg.BlockSize = "3MB"
	if err := cfg.Validate(); !errors.Is(err, blockpack.ErrInvalidBlockSize) {
		t.Fatalf("Validate = %v, want ErrInvalidBlockSize", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load error = %v, want ErrNotExist", err)
	}
}
