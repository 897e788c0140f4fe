package resolver

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// configDirs are searched relative to the network root, in order.
var configDirs = []string{"", ".github", "dev"}

// configNames are the recognized config filenames, in order.
var configNames = []string{"codecov.yml", "codecov.yaml", ".codecov.yml", ".codecov.yaml"}

// recognizedKeys are the top-level config keys the CLI understands.
var recognizedKeys = map[string]bool{"codecov": true, "cli": true}

// Config is the parsed codecov YAML file.
type Config struct {
	values map[string]any
}

// DiscoverConfig finds the first recognized config file under root.
// It returns "" when none exists.
func DiscoverConfig(root string) string {
	for _, dir := range configDirs {
		for _, name := range configNames {
			path := filepath.Join(root, dir, name)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path
			}
		}
	}
	return ""
}

// LoadConfig parses the YAML file at path. Unknown top-level keys are
// warned about and ignored. A missing or unreadable file is a warning
// for the caller, not an error here: pass only paths that exist.
func LoadConfig(path string, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	for key := range values {
		if !recognizedKeys[key] {
			logger.Warn("ignoring unknown config key", zap.String("key", key))
		}
	}
	logger.Debug("loaded config", zap.String("path", path))
	return &Config{values: values}, nil
}

func (c *Config) section(name string) map[string]any {
	if c == nil || c.values == nil {
		return nil
	}
	sec, _ := c.values[name].(map[string]any)
	return sec
}

// Token returns the codecov.token config value, or "".
func (c *Config) Token() string {
	v, _ := c.section("codecov")["token"].(string)
	return v
}

// Runner returns the cli.runners.<name> config map, or nil.
func (c *Config) Runner(name string) map[string]any {
	cli := c.section("cli")
	runners, _ := cli["runners"].(map[string]any)
	cfg, _ := runners[name].(map[string]any)
	return cfg
}

// Get answers resolver fields from the codecov section, making the
// config file the last fallback layer.
func (c *Config) Get(field Field) string {
	v, _ := c.section("codecov")[string(field)].(string)
	return v
}
