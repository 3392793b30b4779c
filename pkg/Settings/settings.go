package Settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var config = Default()

func GetConfig() Config {
	return config
}

// Default returns a Config with every field at its default value.
func Default() Config {
	var c Config
	c.Logger.Development = true
	c.fixme()
	return c
}

// ReadConfig loads configPath into the global config. An empty path keeps the
// defaults. Files ending in .yaml or .yml are decoded as YAML, anything else
// as TOML.
func ReadConfig(configPath string) error {
	c, err := Load(configPath)
	if err != nil {
		return err
	}
	config = c
	return nil
}

func Load(configPath string) (Config, error) {
	if configPath == "" {
		return Default(), nil
	}
	var c Config
	c.Logger.Development = true
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, errors.Wrapf(err, "decode yaml config %s", configPath)
		}
	default:
		if _, err := toml.DecodeFile(configPath, &c); err != nil {
			return Config{}, errors.Wrapf(err, "decode toml config %s", configPath)
		}
	}
	c.fixme()
	return c, nil
}
