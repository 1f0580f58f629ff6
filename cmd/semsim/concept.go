package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ic"
	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
	"github.com/gaston-software-dev/post-analysis-tools/internal/scorestore"
	"github.com/gaston-software-dev/post-analysis-tools/internal/termsim"
)

var (
	conceptModel     string
	conceptApproach  string
	conceptPairsFile string
	conceptTermsFile string
	conceptDBPath    string
)

var conceptCmd = &cobra.Command{
	Use:   "concept [term-id...]",
	Short: "Compute term-to-term similarity scores",
	Long: `Compute pairwise concept similarity scores under one of the node- or
edge-based models. Pairs come from --pairs-file, or from all pairs of
the terms given as arguments or via --terms-file.`,
	RunE: runConcept,
}

func init() {
	conceptCmd.Flags().StringVarP(&conceptModel, "model", "m", string(termsim.Nunivers), "Concept similarity model")
	conceptCmd.Flags().StringVarP(&conceptApproach, "approach", "a", "", "IC approach for node-based models")
	conceptCmd.Flags().StringVar(&conceptPairsFile, "pairs-file", "", "File of term identifier pairs, one per line")
	conceptCmd.Flags().StringVar(&conceptTermsFile, "terms-file", "", "File listing terms to score all pairs of")
	conceptCmd.Flags().StringVar(&conceptDBPath, "db", "", "SQLite file to persist scores to")
	rootCmd.AddCommand(conceptCmd)
}

func runConcept(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if !termsim.Known(conceptModel) {
		exitWithError(ExitConfigError, "unknown concept model: %q", conceptModel)
	}

	dag, err := loadDAG(cfg)
	if err != nil {
		exitWithError(ExitDataError, "loading ontology: %v", err)
	}

	params := cfg.Concept
	if conceptApproach != "" {
		params.Approach = ic.Approach(conceptApproach)
	}

	pairs, missing, err := conceptPairs(dag, args)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if len(pairs) == 0 {
		exitWithError(ExitDataError, "no resolvable term pairs to score")
	}

	engine := termsim.New(ic.New(dag))
	scores, err := engine.Similarity(termsim.Model(conceptModel), pairs, params)
	if err != nil {
		exitWithError(ExitConfigError, "computing %s scores: %v", conceptModel, err)
	}

	rows := make([]PairScoreRow, 0, len(scores))
	for pr, v := range scores {
		rows = append(rows, PairScoreRow{A: dag.TermID(pr.P), B: dag.TermID(pr.Q), Score: v})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].A != rows[j].A {
			return rows[i].A < rows[j].A
		}
		return rows[i].B < rows[j].B
	})

	approach := string(params.Approach)
	if !termsim.NodeBased[termsim.Model(conceptModel)] {
		approach = ""
	}
	if db := dbPath(cfg, conceptDBPath); db != "" {
		if err := persistConcept(db, conceptModel, approach, rows); err != nil {
			exitWithError(ExitError, "saving scores: %v", err)
		}
	}

	if humanOutput {
		for _, r := range rows {
			outputHuman("%s\t%s\t%.5f\n", r.A, r.B, r.Score)
		}
		if len(missing) > 0 {
			outputHuman("missing: %s\n", strings.Join(missing, ", "))
		}
		return nil
	}
	return outputJSON(ConceptResponse{
		Model:    conceptModel,
		Approach: approach,
		Count:    len(rows),
		Scores:   rows,
		Missing:  missing,
	})
}

// conceptPairs assembles the term pair batch from the pairs file or the
// all-pairs expansion of a term list. Unresolvable identifiers are collected
// and their pairs skipped.
func conceptPairs(dag *ontology.DAG, args []string) ([]termsim.Pair, []string, error) {
	if conceptPairsFile != "" {
		idPairs, err := ontology.ReadPairsFile(conceptPairsFile)
		if err != nil {
			return nil, nil, err
		}
		var pairs []termsim.Pair
		var missing []string
		seenMiss := make(map[string]bool)
		for _, ip := range idPairs {
			p, okP := dag.Index(ip.A)
			q, okQ := dag.Index(ip.B)
			for id, ok := range map[string]bool{ip.A: okP, ip.B: okQ} {
				if !ok && !seenMiss[id] {
					seenMiss[id] = true
					missing = append(missing, id)
				}
			}
			if okP && okQ {
				pairs = append(pairs, termsim.Pair{P: p, Q: q})
			}
		}
		sort.Strings(missing)
		return pairs, missing, nil
	}

	ids := args
	if conceptTermsFile != "" {
		fromFile, err := readTermList(conceptTermsFile)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, fromFile...)
	}
	found, missing := dag.Resolve(ids)
	return termsim.AllPairs(found), missing, nil
}

func persistConcept(path, model, approach string, rows []PairScoreRow) error {
	db, err := scorestore.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	scores := make([]scorestore.TermScore, len(rows))
	for i, r := range rows {
		scores[i] = scorestore.TermScore{
			Model:    model,
			Approach: approach,
			Term1:    r.A,
			Term2:    r.B,
			Score:    r.Score,
		}
	}
	return db.SaveTermScores(scores)
}
