// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analyze AnalyzeConfig      `toml:"analyze"`
	Log     LogConfig          `toml:"log"`
	Prices  map[string]float64 `toml:"prices"`
	Aliases map[string]string  `toml:"aliases"`
}

// AnalyzeConfig maps analysis and report settings.
type AnalyzeConfig struct {
	Workers   *int     `toml:"workers"`
	Width     *int     `toml:"width"`
	Currency  *string  `toml:"currency"`
	NoColor   *bool    `toml:"no-color"`
	CatalogDB *string  `toml:"catalog-db"`
	Verbs     []string `toml:"verbs"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// PriceFile is the layout of a catalog import file.
type PriceFile struct {
	Prices map[string]float64 `toml:"prices"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return cfg, nil
}

// LoadPriceFile reads the [prices] table of a TOML file.
func LoadPriceFile(path string) (map[string]float64, error) {
	var pf PriceFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return nil, fmt.Errorf("failed to decode price file: %w", err)
	}
	if len(pf.Prices) == 0 {
		return nil, fmt.Errorf("price file has no [prices] entries")
	}
	return pf.Prices, nil
}
