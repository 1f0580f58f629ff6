// Package ontology builds the immutable term DAG that every scoring engine
// shares: term indexing, ancestor/descendant closures, the level index
// (longest path from the root) and the all-pairs shortest path index.
package ontology

import "errors"

// Relation is the kind of parent link carried by a term record.
type Relation string

// Relations that contribute edges to the DAG. Any other relation kind on a
// term record is ignored during construction.
const (
	RelationIsA    Relation = "is_a"
	RelationPartOf Relation = "part_of"
)

// ParentRef is one parent link of a term record.
type ParentRef struct {
	Relation Relation `json:"relation"`
	ParentID string   `json:"parent"`
}

// TermRecord is an ontology term as delivered by the loading collaborator.
// The engine never reads ontology files itself; it consumes these records.
type TermRecord struct {
	ID        string      `json:"id"`
	Namespace string      `json:"namespace,omitempty"`
	Obsolete  bool        `json:"obsolete,omitempty"`
	AltIDs    []string    `json:"alt_ids,omitempty"`
	Parents   []ParentRef `json:"parents,omitempty"`
}

// Weights are the semantic edge weights used by the Wang contribution model.
// Every other consumer treats edges as unit cost.
type Weights struct {
	IsA    float64 `yaml:"is_a"`
	PartOf float64 `yaml:"part_of"`
}

// DefaultWeights returns the conventional is_a/part_of semantic values.
func DefaultWeights() Weights {
	return Weights{IsA: 0.8, PartOf: 0.6}
}

// Construction errors.
var (
	ErrNoTerms         = errors.New("no terms after namespace filtering")
	ErrNoRoot          = errors.New("ontology has no root term")
	ErrMultipleRoots   = errors.New("ontology has more than one root term")
	ErrUnknownRelation = errors.New("relation kind missing from weight table")
	ErrWeightRange     = errors.New("edge weight must be in (0, 1]")
)

// Validate checks that both weights fall in (0, 1].
func (w Weights) Validate() error {
	if w.IsA <= 0 || w.IsA > 1 || w.PartOf <= 0 || w.PartOf > 1 {
		return ErrWeightRange
	}
	return nil
}

// table maps relation kinds to their configured weights.
func (w Weights) table() map[Relation]float64 {
	return map[Relation]float64{
		RelationIsA:    w.IsA,
		RelationPartOf: w.PartOf,
	}
}
