package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ic"
	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
	"github.com/gaston-software-dev/post-analysis-tools/internal/scorestore"
	"github.com/gaston-software-dev/post-analysis-tools/internal/simconfig"
)

var (
	icApproach   string
	icTermsFile  string
	icCountsFile string
	icScoresFile string
	icDBPath     string
)

var icCmd = &cobra.Command{
	Use:   "ic [term-id...]",
	Short: "Compute per-term information content scores",
	Long: `Compute information content scores for ontology terms under one of
the supported approaches (universal, wang, zhang, seco, zho, seddiqui,
zanchez, meng, stats, ic, assdd). With no terms given, every term in the
ontology is scored.`,
	RunE: runIC,
}

func init() {
	icCmd.Flags().StringVarP(&icApproach, "approach", "a", string(ic.Universal), "IC approach")
	icCmd.Flags().StringVar(&icTermsFile, "terms-file", "", "File listing the terms to score")
	icCmd.Flags().StringVar(&icCountsFile, "counts-file", "", "Two-column term count file for the stats approach")
	icCmd.Flags().StringVar(&icScoresFile, "scores-file", "", "Two-column term score file for the external ic approach")
	icCmd.Flags().StringVar(&icDBPath, "db", "", "SQLite file to persist scores to")
	rootCmd.AddCommand(icCmd)
}

func runIC(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if !ic.Known(icApproach) {
		exitWithError(ExitConfigError, "unknown IC approach: %q", icApproach)
	}

	dag, err := loadDAG(cfg)
	if err != nil {
		exitWithError(ExitDataError, "loading ontology: %v", err)
	}

	params := cfg.Concept.IC
	if icCountsFile != "" {
		counts, err := readScoreTable(icCountsFile)
		if err != nil {
			exitWithError(ExitDataError, "reading counts: %v", err)
		}
		params.TermCounts = counts
	}
	if icScoresFile != "" {
		scores, err := readScoreTable(icScoresFile)
		if err != nil {
			exitWithError(ExitDataError, "reading scores: %v", err)
		}
		params.TermIC = scores
	}

	engine := ic.New(dag)
	scores, err := engine.Scores(ic.Approach(icApproach), params)
	if err != nil {
		exitWithError(ExitConfigError, "computing %s scores: %v", icApproach, err)
	}

	// Restrict reporting when a target term list was given.
	var missing []string
	keep := map[int]bool(nil)
	ids := args
	if icTermsFile != "" {
		fromFile, err := readTermList(icTermsFile)
		if err != nil {
			exitWithError(ExitDataError, "reading terms: %v", err)
		}
		ids = append(ids, fromFile...)
	}
	if len(ids) > 0 {
		found, miss := dag.Resolve(ids)
		missing = miss
		keep = make(map[int]bool, len(found))
		for _, t := range found {
			keep[t] = true
		}
	}

	rows := make([]ScoreRow, 0, len(scores))
	for t, v := range scores {
		if keep != nil && !keep[t] {
			continue
		}
		rows = append(rows, ScoreRow{ID: dag.TermID(t), Score: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	if db := dbPath(cfg, icDBPath); db != "" {
		byID := make(map[string]float64, len(rows))
		for _, r := range rows {
			byID[r.ID] = r.Score
		}
		if err := persistIC(db, icApproach, byID); err != nil {
			exitWithError(ExitError, "saving scores: %v", err)
		}
	}

	if humanOutput {
		for _, r := range rows {
			outputHuman("%s\t%.5f\n", r.ID, r.Score)
		}
		if len(missing) > 0 {
			outputHuman("missing: %s\n", strings.Join(missing, ", "))
		}
		return nil
	}
	return outputJSON(ICResponse{
		Approach: icApproach,
		Count:    len(rows),
		Scores:   rows,
		Missing:  missing,
	})
}

// dbPath resolves the score database path from the flag or configuration.
func dbPath(cfg *simconfig.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Output.Database
}

func persistIC(path, approach string, scores map[string]float64) error {
	db, err := scorestore.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveIC(approach, scores)
}

// readScoreTable reads a two-column identifier/number table.
func readScoreTable(path string) (map[string]float64, error) {
	pairs, err := ontology.ReadPairsFile(path)
	if err != nil {
		return nil, err
	}
	table := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		v, err := strconv.ParseFloat(p.B, 64)
		if err != nil {
			return nil, fmt.Errorf("value for %s: %w", p.A, err)
		}
		table[p.A] = v
	}
	return table, nil
}

func readTermList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ontology.ReadTermList(f)
}
