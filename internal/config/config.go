package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from throwgen.yml.
type ProjectConfig struct {
	OutputDir   string   `yaml:"outputDir,omitempty"`
	Languages   []string `yaml:"languages,omitempty"`
	ExcludeDirs []string `yaml:"excludeDirs,omitempty"`
	Persist     bool     `yaml:"persist,omitempty"`
	Verbose     bool     `yaml:"verbose,omitempty"`
}

// Load attempts to read throwgen.yml or throwgen.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"throwgen.yml", "throwgen.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
