package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var errNoOntology = errors.New("no ontology file: set ontology.file in the config, --ontology, or SEMSIM_ONTOLOGY")

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ScoreRow is one identifier-scored row in JSON output.
type ScoreRow struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// PairScoreRow is one pair-scored row in JSON output.
type PairScoreRow struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// ICResponse is the ic command response.
type ICResponse struct {
	Approach string     `json:"approach"`
	Count    int        `json:"count"`
	Scores   []ScoreRow `json:"scores"`
	Missing  []string   `json:"missing,omitempty"`
}

// ConceptResponse is the concept command response.
type ConceptResponse struct {
	Model    string         `json:"model"`
	Approach string         `json:"approach,omitempty"`
	Count    int            `json:"count"`
	Scores   []PairScoreRow `json:"scores"`
	Missing  []string       `json:"missing,omitempty"`
}

// EntityMeasureResult is one measure's scores in the entity response.
type EntityMeasureResult struct {
	Measure  string         `json:"measure"`
	Model    string         `json:"model,omitempty"`
	Approach string         `json:"approach,omitempty"`
	Scores   []PairScoreRow `json:"scores"`
}

// EntityResponse is the entity command response.
type EntityResponse struct {
	Measures []EntityMeasureResult `json:"measures"`
	Missing  map[string][]string   `json:"missing,omitempty"`
}
