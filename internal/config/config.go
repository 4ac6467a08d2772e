package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional zerocopy configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Serve    ServeConfig    `toml:"serve"`
}

// DefaultsConfig holds persistent flag defaults shared by all commands.
type DefaultsConfig struct {
	Verify  *bool   `toml:"verify"`
	BWLimit *string `toml:"bwlimit"`
	Chunk   *string `toml:"chunk"`
	Log     *string `toml:"log"`
}

// ServeConfig holds defaults for `zerocopy serve`.
type ServeConfig struct {
	Listen  *string `toml:"listen"`
	Header  *string `toml:"header"`
	Trailer *string `toml:"trailer"`
}

// Path returns the resolved path to the config file.
func Path() string {
	if p := os.Getenv("ZEROCOPY_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "zerocopy", "config.toml")
}

// Load reads the config file from Path. Returns a zero Config (no error)
// if the file does not exist. Config is always optional.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config file at path.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
