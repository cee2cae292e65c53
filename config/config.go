// Package config loads the glane configuration file and maps it onto
// the component configs. Credentials never live in the file; they come
// from the environment (see cmd for the dotenv hookup).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/glane/classify"
	"github.com/hazyhaar/glane/collect"
	"github.com/hazyhaar/glane/harvest"
)

// File is the top-level glane configuration.
type File struct {
	// DataDir receives result set JSON files. Default: "data".
	DataDir string `yaml:"data_dir"`
	// DBPath is the dedup store location. Default: "db/glane.db".
	DBPath string `yaml:"db_path"`

	Harvest    HarvestConfig       `yaml:"harvest"`
	Collect    collect.Config      `yaml:"collect"`
	Classify   classify.Config     `yaml:"classify"`
	Categories map[string][]string `yaml:"categories"`
}

// HarvestConfig mirrors harvest.Config in file-friendly units.
type HarvestConfig struct {
	StagnationLimit int      `yaml:"stagnation_limit"`
	RoundCap        int      `yaml:"round_cap"`
	DetailWorkers   int      `yaml:"detail_workers"`
	MaxAgeHours     float64  `yaml:"max_age_hours"`
	Boilerplate     []string `yaml:"boilerplate"`
}

// Load reads a YAML configuration file and applies defaults. An empty
// path yields the defaults alone.
func Load(path string) (*File, error) {
	var f File
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	f.applyDefaults()
	return &f, nil
}

func (f *File) applyDefaults() {
	if f.DataDir == "" {
		f.DataDir = "data"
	}
	if f.DBPath == "" {
		f.DBPath = "db/glane.db"
	}
}

// HarvestService converts the file section to a harvest.Config.
func (f *File) HarvestService() harvest.Config {
	return harvest.Config{
		StagnationLimit: f.Harvest.StagnationLimit,
		RoundCap:        f.Harvest.RoundCap,
		DetailWorkers:   f.Harvest.DetailWorkers,
		MaxAge:          time.Duration(f.Harvest.MaxAgeHours * float64(time.Hour)),
		Boilerplate:     f.Harvest.Boilerplate,
		Categories:      f.Categories,
	}
}
