// Package config holds the run configuration for the fault splitter. There is
// no process-wide state: the resolved Config value is passed into the pipeline.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Defaults mirror the dataset layout the tool was originally run against:
// GEM active faults GeoJSON next to a Natural Earth admin-0 shapefile.
const (
	DefaultFaultsPath   = "geojsons/gem_active_faults_harmonized.geojson"
	DefaultRegionsPath  = "shapefiles/ne_10m_admin_0_countries.shp"
	DefaultOutputDir    = "output/faults_by_country"
	DefaultNameField    = "NAME_EN"
	DefaultCRS          = "EPSG:4326"
	DefaultOutputFormat = "geojson"
)

// Config is the full configuration surface consumed by the pipeline.
type Config struct {
	FaultsPath   string `yaml:"faults"`
	RegionsPath  string `yaml:"regions"`
	OutputDir    string `yaml:"output_dir"`
	NameField    string `yaml:"name_field"`
	DefaultCRS   string `yaml:"default_crs"`
	OutputFormat string `yaml:"output_format"`
	Workers      int    `yaml:"workers"`
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		FaultsPath:   DefaultFaultsPath,
		RegionsPath:  DefaultRegionsPath,
		OutputDir:    DefaultOutputDir,
		NameField:    DefaultNameField,
		DefaultCRS:   DefaultCRS,
		OutputFormat: DefaultOutputFormat,
		Workers:      1,
	}
}

// FromEnv overlays FAULTSPLIT_* environment variables onto c. Unset variables
// leave the existing value alone, so precedence stacks naturally:
// defaults, then file, then env, then flags.
func (c *Config) FromEnv() {
	if v := os.Getenv("FAULTSPLIT_FAULTS"); v != "" {
		c.FaultsPath = v
	}
	if v := os.Getenv("FAULTSPLIT_REGIONS"); v != "" {
		c.RegionsPath = v
	}
	if v := os.Getenv("FAULTSPLIT_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("FAULTSPLIT_NAME_FIELD"); v != "" {
		c.NameField = v
	}
	if v := os.Getenv("FAULTSPLIT_DEFAULT_CRS"); v != "" {
		c.DefaultCRS = v
	}
	if v := os.Getenv("FAULTSPLIT_OUTPUT_FORMAT"); v != "" {
		c.OutputFormat = v
	}
	if v := os.Getenv("FAULTSPLIT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

// FromFile overlays a YAML config file onto c. A missing file is only an
// error when the path was explicitly requested.
func (c *Config) FromFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the parts of the configuration that can be verified before
// any data is loaded. Field-name validation against the region schema happens
// in the pipeline once the regions are in memory.
func (c Config) Validate() error {
	if c.FaultsPath == "" {
		return fmt.Errorf("faults path is required")
	}
	if c.RegionsPath == "" {
		return fmt.Errorf("regions path is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.NameField == "" {
		return fmt.Errorf("region name field is required")
	}
	if c.OutputFormat != "geojson" && c.OutputFormat != "shapefile" {
		return fmt.Errorf("output format %q not supported (geojson, shapefile)", c.OutputFormat)
	}
	return nil
}
