// Package simconfig loads and validates the YAML run configuration shared by
// the command line tools: which ontology to load, the relation weights, and
// the parameter blocks of the scoring engines.
package simconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gaston-software-dev/post-analysis-tools/internal/entitysim"
	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
	"github.com/gaston-software-dev/post-analysis-tools/internal/termsim"
)

// Ontology selects the term source and the edge weighting.
type Ontology struct {
	// File is the JSONL term record file.
	File string `yaml:"file"`
	// Namespace restricts loading to one sub-ontology when set.
	Namespace string `yaml:"namespace"`
	Weights   ontology.Weights `yaml:"weights"`
}

// Entity carries the entity-layer tunables.
type Entity struct {
	AlnAlpha float64 `yaml:"aln_alpha"`
	Workers  int     `yaml:"workers"`
}

// Output controls where results go beyond stdout.
type Output struct {
	// Format is "json" or "table".
	Format string `yaml:"format"`
	// Database, when set, is a SQLite file scores are also written to.
	Database string `yaml:"database"`
}

// Config is the full run configuration.
type Config struct {
	Ontology Ontology       `yaml:"ontology"`
	Concept  termsim.Params `yaml:"concept"`
	Entity   Entity         `yaml:"entity"`
	Output   Output         `yaml:"output"`
}

// Default returns a configuration with every engine default filled in.
func Default() *Config {
	return &Config{
		Ontology: Ontology{Weights: ontology.DefaultWeights()},
		Concept:  termsim.DefaultParams(),
		Entity:   Entity{AlnAlpha: 1.0},
		Output:   Output{Format: "table"},
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every parameter block.
func (c *Config) Validate() error {
	if err := c.Ontology.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Concept.Validate(); err != nil {
		return err
	}
	if err := c.EntityParams().Validate(); err != nil {
		return err
	}
	if c.Output.Format != "" && c.Output.Format != "json" && c.Output.Format != "table" {
		return fmt.Errorf("unknown output format: %q", c.Output.Format)
	}
	return nil
}

// EntityParams assembles the entity engine parameters from the concept and
// entity blocks.
func (c *Config) EntityParams() entitysim.Params {
	p := entitysim.Params{
		Concept:  c.Concept,
		AlnAlpha: c.Entity.AlnAlpha,
		Workers:  c.Entity.Workers,
	}
	if p.AlnAlpha == 0 {
		p.AlnAlpha = 1.0
	}
	return p
}

// LoadDAG builds the ontology DAG named by the configuration.
func (c *Config) LoadDAG() (*ontology.DAG, error) {
	terms, err := ontology.ReadTermRecordsFile(c.Ontology.File)
	if err != nil {
		return nil, err
	}
	return ontology.Build(terms, c.Ontology.Namespace, c.Ontology.Weights)
}
