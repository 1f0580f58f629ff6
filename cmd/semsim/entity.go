package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaston-software-dev/post-analysis-tools/internal/entitysim"
	"github.com/gaston-software-dev/post-analysis-tools/internal/ic"
	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
	"github.com/gaston-software-dev/post-analysis-tools/internal/scorestore"
	"github.com/gaston-software-dev/post-analysis-tools/internal/termsim"
)

var (
	entityMeasures  []string
	entityAnnotFile string
	entityPairsFile string
	entityDBPath    string
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Compute entity-to-entity similarity scores",
	Long: `Compute entity similarity scores from an annotation file mapping each
entity to its ontology terms. Measures are given as colon-separated
combinations, e.g. "bma:nunivers:universal", "avg:wu", "simgic:seco" or
plain "ui"; with none given the best-match average under the nunivers
model and universal approach runs.`,
	RunE: runEntity,
}

func init() {
	entityCmd.Flags().StringSliceVarP(&entityMeasures, "measure", "m", nil, "Entity measure (family[:model][:approach]), repeatable")
	entityCmd.Flags().StringVarP(&entityAnnotFile, "annotations", "A", "", "Entity annotation file (entity followed by its terms per line)")
	entityCmd.Flags().StringVar(&entityPairsFile, "pairs-file", "", "File of entity identifier pairs, one per line")
	entityCmd.Flags().StringVar(&entityDBPath, "db", "", "SQLite file to persist scores to")
	entityCmd.MarkFlagRequired("annotations")
	rootCmd.AddCommand(entityCmd)
}

func runEntity(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	measures, err := parseMeasures(entityMeasures)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	dag, err := loadDAG(cfg)
	if err != nil {
		exitWithError(ExitDataError, "loading ontology: %v", err)
	}
	annots, err := ontology.ReadAnnotationsFile(entityAnnotFile)
	if err != nil {
		exitWithError(ExitDataError, "reading annotations: %v", err)
	}

	var pairs []entitysim.Pair
	if entityPairsFile != "" {
		idPairs, err := ontology.ReadPairsFile(entityPairsFile)
		if err != nil {
			exitWithError(ExitDataError, "reading pairs: %v", err)
		}
		for _, ip := range idPairs {
			pairs = append(pairs, entitysim.Pair{E1: ip.A, E2: ip.B})
		}
	}

	engine := entitysim.New(termsim.New(ic.New(dag)))
	res, err := engine.Similarity(context.Background(), measures, annots, pairs, cfg.EntityParams())
	if err != nil {
		exitWithError(ExitConfigError, "computing entity scores: %v", err)
	}

	var results []EntityMeasureResult
	for m, scores := range res.Scores {
		rows := make([]PairScoreRow, 0, len(scores))
		for pr, v := range scores {
			rows = append(rows, PairScoreRow{A: pr.E1, B: pr.E2, Score: v})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].A != rows[j].A {
				return rows[i].A < rows[j].A
			}
			return rows[i].B < rows[j].B
		})
		results = append(results, EntityMeasureResult{
			Measure:  string(m.Family),
			Model:    string(m.Model),
			Approach: string(m.Approach),
			Scores:   rows,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return measureKey(results[i]) < measureKey(results[j])
	})

	if db := dbPath(cfg, entityDBPath); db != "" {
		if err := persistEntity(db, results); err != nil {
			exitWithError(ExitError, "saving scores: %v", err)
		}
	}

	if humanOutput {
		for _, mr := range results {
			outputHuman("# %s\n", measureKey(mr))
			for _, r := range mr.Scores {
				outputHuman("%s\t%s\t%.5f\n", r.A, r.B, r.Score)
			}
		}
		for ent, miss := range res.Missing {
			outputHuman("missing %s: %s\n", ent, strings.Join(miss, ", "))
		}
		return nil
	}
	return outputJSON(EntityResponse{Measures: results, Missing: res.Missing})
}

// parseMeasures parses colon-separated measure specifications.
func parseMeasures(specs []string) ([]entitysim.Measure, error) {
	var measures []entitysim.Measure
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		m := entitysim.Measure{Family: entitysim.Family(parts[0])}
		switch len(parts) {
		case 1:
		case 2:
			// The second token is a concept model for best-match families
			// and an IC approach for the groupwise IC family.
			if termsim.Known(parts[1]) {
				m.Model = termsim.Model(parts[1])
			} else if ic.Known(parts[1]) {
				m.Approach = ic.Approach(parts[1])
			} else {
				return nil, fmt.Errorf("unknown model or approach: %q", parts[1])
			}
		case 3:
			m.Model = termsim.Model(parts[1])
			m.Approach = ic.Approach(parts[2])
		default:
			return nil, fmt.Errorf("malformed measure: %q", spec)
		}
		measures = append(measures, m)
	}
	return measures, nil
}

// measureKey is the stable string form of a measure used for ordering and
// persistence.
func measureKey(mr EntityMeasureResult) string {
	parts := []string{mr.Measure}
	if mr.Model != "" {
		parts = append(parts, mr.Model)
	}
	if mr.Approach != "" {
		parts = append(parts, mr.Approach)
	}
	return strings.Join(parts, ":")
}

func persistEntity(path string, results []EntityMeasureResult) error {
	db, err := scorestore.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	var scores []scorestore.EntityScore
	for _, mr := range results {
		for _, r := range mr.Scores {
			scores = append(scores, scorestore.EntityScore{
				Measure: measureKey(mr),
				Entity1: r.A,
				Entity2: r.B,
				Score:   r.Score,
			})
		}
	}
	return db.SaveEntityScores(scores)
}
