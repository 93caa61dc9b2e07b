package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"modeleval/logger"
)

type ModelConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

type Config struct {
	TestSet struct {
		Path   string `yaml:"path"`
		Target string `yaml:"target"`
	} `yaml:"test_set"`
	Models     []ModelConfig `yaml:"models"`
	Evaluation struct {
		Concurrency int `yaml:"concurrency"`
		CacheSize   int `yaml:"cache_size"`
	} `yaml:"evaluation"`
	Log logger.Config `yaml:"log"`
}

// Load reads a YAML config file. Relative paths inside it are resolved
// against the directory of the file.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	config.applyDefaults()
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	config.resolvePaths(dir)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.TestSet.Target == "" {
		c.TestSet.Target = "target"
	}
	if c.Evaluation.Concurrency <= 0 {
		c.Evaluation.Concurrency = 1
	}
	if c.Evaluation.CacheSize <= 0 {
		c.Evaluation.CacheSize = 64
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File != "" {
		if c.Log.MaxSizeMB <= 0 {
			c.Log.MaxSizeMB = 10
		}
		if c.Log.MaxBackups <= 0 {
			c.Log.MaxBackups = 3
		}
		if c.Log.MaxAgeDays <= 0 {
			c.Log.MaxAgeDays = 7
		}
	}
}

func (c *Config) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.TestSet.Path = resolve(c.TestSet.Path)
	for i := range c.Models {
		c.Models[i].Path = resolve(c.Models[i].Path)
	}
	c.Log.File = resolve(c.Log.File)
}

func (c *Config) Validate() error {
	if c.TestSet.Path == "" {
		return errors.New("test_set.path is required")
	}
	if len(c.Models) == 0 {
		return errors.New("at least one model is required")
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("models[%d]: name is required", i)
		}
		if m.Type == "" || m.Path == "" {
			return fmt.Errorf("model %s: type and path are required", m.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("model %s: duplicate name", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// WatchPaths lists the files whose changes should trigger re-evaluation.
func (c *Config) WatchPaths() []string {
	paths := []string{c.TestSet.Path}
	for _, m := range c.Models {
		paths = append(paths, m.Path)
	}
	return paths
}
