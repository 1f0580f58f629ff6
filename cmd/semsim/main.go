// Package main provides the semsim CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
	"github.com/gaston-software-dev/post-analysis-tools/internal/simconfig"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath is the optional YAML configuration file
var configPath string

// Ontology source flags, overriding the configuration file.
var (
	ontologyFile string
	namespace    string
	isAWeight    float64
	partOfWeight float64
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "semsim",
	Short: "Ontology-based semantic similarity scoring",
	Long: `semsim scores semantic similarity over an ontology DAG.

It computes per-term information content under several statistical
approaches, term-to-term similarity under node- and edge-based models,
and entity-to-entity similarity by aggregating term scores over
annotation sets. All commands output JSON by default for easy
integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&ontologyFile, "ontology", "f", "", "Ontology term records (JSONL)")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "Restrict loading to one sub-ontology namespace")
	rootCmd.PersistentFlags().Float64Var(&isAWeight, "is-a", 0, "is_a relation weight (default from config)")
	rootCmd.PersistentFlags().Float64Var(&partOfWeight, "part-of", 0, "part_of relation weight (default from config)")
	rootCmd.Version = Version
}

// loadConfig assembles the run configuration from the config file, the
// environment and the command line, in increasing precedence.
func loadConfig() (*simconfig.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("SEMSIM_CONFIG")
	}
	var cfg *simconfig.Config
	if path != "" {
		loaded, err := simconfig.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = simconfig.Default()
	}
	if env := os.Getenv("SEMSIM_ONTOLOGY"); env != "" && cfg.Ontology.File == "" {
		cfg.Ontology.File = env
	}
	if ontologyFile != "" {
		cfg.Ontology.File = ontologyFile
	}
	if namespace != "" {
		cfg.Ontology.Namespace = namespace
	}
	if isAWeight != 0 {
		cfg.Ontology.Weights.IsA = isAWeight
	}
	if partOfWeight != 0 {
		cfg.Ontology.Weights.PartOf = partOfWeight
	}
	return cfg, nil
}

// loadDAG loads the ontology named by the configuration.
func loadDAG(cfg *simconfig.Config) (*ontology.DAG, error) {
	if cfg.Ontology.File == "" {
		return nil, errNoOntology
	}
	return cfg.LoadDAG()
}
