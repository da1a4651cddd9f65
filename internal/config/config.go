// Package config loads blockpack command-line defaults from a YAML file.
//
// The file is only read when named explicitly, with --config or the
// BLOCKPACK_CONFIG environment variable. Flags given on the command line
// override values from the file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andybalholm/blockpack"
)

// EnvVar names the environment variable consulted when --config is unset.
const EnvVar = "BLOCKPACK_CONFIG"

// Config holds the settings a config file may provide.
type Config struct {
	// BlockSize is a block size class name such as "64KB" or "4MB".
	BlockSize string `yaml:"block_size"`

	// Codec names the block codec: lz4, lz4-native, snappy, s2, zstd,
	// brotli or flate.
	Codec string `yaml:"codec"`

	// Level is the codec's compression level; 0 is the codec default.
	Level int `yaml:"level"`

	// ContentChecksum appends an xxHash32 of the content to new containers.
	ContentChecksum bool `yaml:"content_checksum"`

	// VerifyHeaderChecksum rejects containers with a bad header checksum.
	VerifyHeaderChecksum bool `yaml:"verify_header_checksum"`

	// MetricsFile, if set, receives Prometheus text-format block metrics
	// when a command finishes.
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		BlockSize: "64KB",
		Codec:     "lz4",
	}
}

// Load reads the config file at path, layered over Default. An empty path
// falls back to $BLOCKPACK_CONFIG; if that is unset too, Default is
// returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the block size and codec are recognised.
func (c Config) Validate() error {
	var errs []error
	if _, err := blockpack.ParseBlockSizeClass(c.BlockSize); err != nil {
		errs = append(errs, err)
	}
	if !KnownCodec(c.Codec) {
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Codec))
	}
	if c.Level < 0 {
		errs = append(errs, fmt.Errorf("negative level %d", c.Level))
	}
	return errors.Join(errs...)
}

// Codecs lists the codec names a config may use.
var Codecs = []string{"lz4", "lz4-native", "snappy", "s2", "zstd", "brotli", "flate"}

// KnownCodec reports whether name is in Codecs.
func KnownCodec(name string) bool {
	for _, c := range Codecs {
		if c == name {
			return true
		}
	}
	return false
}
