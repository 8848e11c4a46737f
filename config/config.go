// Package config loads the editor's own configuration file: where patch
// documents live and where item thumbnails are searched for.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the editor configuration.
type Config struct {
	PatchDir  string   `yaml:"patch_dir"`
	AssetDirs []string `yaml:"asset_dirs"`
}

// Default returns the stock layout: patches under config/patch and
// thumbnails under the two asset directories the game ships with.
func Default() Config {
	return Config{
		PatchDir: "config/patch",
		AssetDirs: []string{
			"assets/buildingthumbs",
			"assets/thumbs",
		},
	}
}

// Load reads a YAML config file. A missing file is not an error: the
// defaults apply. Fields absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.PatchDir == "" {
		cfg.PatchDir = Default().PatchDir
	}
	return cfg, nil
}
