package ontology

import (
	"errors"
	"testing"
)

// diamondTerms builds the five-term diamond: root R with children A and B,
// C below both, leaf D below C.
func diamondTerms() []TermRecord {
	return []TermRecord{
		{ID: "R"},
		{ID: "A", Parents: []ParentRef{{Relation: RelationIsA, ParentID: "R"}}},
		{ID: "B", Parents: []ParentRef{{Relation: RelationIsA, ParentID: "R"}}},
		{ID: "C", Parents: []ParentRef{
			{Relation: RelationIsA, ParentID: "A"},
			{Relation: RelationIsA, ParentID: "B"},
		}},
		{ID: "D", Parents: []ParentRef{{Relation: RelationIsA, ParentID: "C"}}},
	}
}

func buildDiamond(t *testing.T) *DAG {
	t.Helper()
	dag, err := Build(diamondTerms(), "", DefaultWeights())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return dag
}

func index(t *testing.T, dag *DAG, id string) int {
	t.Helper()
	idx, ok := dag.Index(id)
	if !ok {
		t.Fatalf("Index(%q) not found", id)
	}
	return idx
}

func TestBuildRootDetection(t *testing.T) {
	dag := buildDiamond(t)
	if got := dag.TermID(dag.Root()); got != "R" {
		t.Errorf("root = %q, want R", got)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		terms   []TermRecord
		ns      string
		weights Weights
		wantErr error
	}{
		{
			name:    "no terms after filtering",
			terms:   diamondTerms(),
			ns:      "unknown_namespace",
			weights: DefaultWeights(),
			wantErr: ErrNoTerms,
		},
		{
			name: "multiple roots",
			terms: []TermRecord{
				{ID: "R1"},
				{ID: "R2"},
				{ID: "A", Parents: []ParentRef{{Relation: RelationIsA, ParentID: "R1"}}},
			},
			weights: Weights{IsA: 0.8, PartOf: 0.6},
			wantErr: ErrMultipleRoots,
		},
		{
			name: "no root",
			terms: []TermRecord{
				{ID: "A", Obsolete: true},
			},
			weights: Weights{IsA: 0.8, PartOf: 0.6},
			wantErr: ErrNoRoot,
		},
		{
			name:    "weight out of range",
			terms:   diamondTerms(),
			weights: Weights{IsA: 1.5, PartOf: 0.6},
			wantErr: ErrWeightRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.terms, tt.ns, tt.weights)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNamespaceFilter(t *testing.T) {
	terms := []TermRecord{
		{ID: "R", Namespace: "bp"},
		{ID: "A", Namespace: "bp", Parents: []ParentRef{{Relation: RelationIsA, ParentID: "R"}}},
		{ID: "X", Namespace: "mf"},
	}
	dag, err := Build(terms, "bp", DefaultWeights())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := dag.Index("X"); ok {
		t.Error("term from other namespace resolved")
	}
	if _, ok := dag.Index("A"); !ok {
		t.Error("in-namespace term did not resolve")
	}
}

func TestAltIDResolution(t *testing.T) {
	terms := diamondTerms()
	terms[3].AltIDs = []string{"C_old"}
	dag, err := Build(terms, "", DefaultWeights())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	c, ok := dag.Index("C_old")
	if !ok {
		t.Fatal("alt id did not resolve")
	}
	if dag.TermID(c) != "C" {
		t.Errorf("alt id resolved to %q, want C", dag.TermID(c))
	}
}

func TestObsoleteExcluded(t *testing.T) {
	terms := append(diamondTerms(), TermRecord{ID: "OBS", Obsolete: true})
	dag, err := Build(terms, "", DefaultWeights())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := dag.Index("OBS"); ok {
		t.Error("obsolete disconnected term resolved")
	}
}

func TestDuplicateParentRelations(t *testing.T) {
	// The same parent under both relations must collapse to one edge.
	terms := []TermRecord{
		{ID: "R"},
		{ID: "A", Parents: []ParentRef{
			{Relation: RelationIsA, ParentID: "R"},
			{Relation: RelationPartOf, ParentID: "R"},
		}},
	}
	dag, err := Build(terms, "", DefaultWeights())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := dag.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got)
	}
}

func TestLevels(t *testing.T) {
	dag := buildDiamond(t)
	want := map[string]int{"R": 0, "A": -1, "B": -1, "C": -2, "D": -3}
	for id, lv := range want {
		got, ok := dag.Level(index(t, dag, id))
		if !ok {
			t.Fatalf("Level(%s) not found", id)
		}
		if got != lv {
			t.Errorf("Level(%s) = %d, want %d", id, got, lv)
		}
	}
	if got := dag.Depth(); got != 3 {
		t.Errorf("Depth() = %d, want 3", got)
	}
}

func TestAncestorsDescendants(t *testing.T) {
	dag := buildDiamond(t)
	c := index(t, dag, "C")

	anc := dag.Ancestors(c, true)
	for _, id := range []string{"C", "A", "B", "R"} {
		if !anc[index(t, dag, id)] {
			t.Errorf("Ancestors(C) missing %s", id)
		}
	}
	if len(anc) != 4 {
		t.Errorf("len(Ancestors(C)) = %d, want 4", len(anc))
	}

	desc := dag.Descendants(index(t, dag, "A"))
	if len(desc) != 2 {
		t.Errorf("len(Descendants(A)) = %d, want 2", len(desc))
	}
}

func TestDist(t *testing.T) {
	dag := buildDiamond(t)
	tests := []struct {
		from, to string
		want     int
		ok       bool
	}{
		{"R", "D", 3, true},
		{"R", "C", 2, true},
		{"A", "A", 0, true},
		{"A", "B", 0, false},
		{"D", "R", 0, false},
	}
	for _, tt := range tests {
		got, ok := dag.Dist(index(t, dag, tt.from), index(t, dag, tt.to))
		if ok != tt.ok || got != tt.want {
			t.Errorf("Dist(%s,%s) = %d,%v, want %d,%v", tt.from, tt.to, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSimplePaths(t *testing.T) {
	dag := buildDiamond(t)
	r, c := index(t, dag, "R"), index(t, dag, "C")

	paths := dag.SimplePaths(r, c)
	if len(paths) != 2 {
		t.Fatalf("SimplePaths(R,C) returned %d paths, want 2", len(paths))
	}
	for _, p := range paths {
		if len(p) != 3 || p[0] != r || p[2] != c {
			t.Errorf("unexpected path %v", p)
		}
	}

	// Trivial path when endpoints coincide.
	if got := dag.SimplePaths(c, c); len(got) != 1 || len(got[0]) != 1 {
		t.Errorf("SimplePaths(C,C) = %v, want single trivial path", got)
	}
}

func TestShortestPathNodes(t *testing.T) {
	dag := buildDiamond(t)
	r, d := index(t, dag, "R"), index(t, dag, "D")

	paths := dag.ShortestPathNodes(r, d)
	if len(paths) != 2 {
		t.Fatalf("ShortestPathNodes(R,D) returned %d paths, want 2", len(paths))
	}
	for _, p := range paths {
		if len(p) != 4 {
			t.Errorf("shortest path %v has %d nodes, want 4", p, len(p))
		}
	}

	if got := dag.ShortestPathNodes(d, r); got != nil {
		t.Errorf("ShortestPathNodes(D,R) = %v, want nil", got)
	}
}

func TestResolve(t *testing.T) {
	dag := buildDiamond(t)
	found, missing := dag.Resolve([]string{"A", "C", "A", "nope"})
	if len(found) != 2 {
		t.Errorf("Resolve found %d terms, want 2 (deduplicated)", len(found))
	}
	if len(missing) != 1 || missing[0] != "nope" {
		t.Errorf("Resolve missing = %v, want [nope]", missing)
	}
}

func TestLeaves(t *testing.T) {
	dag := buildDiamond(t)
	leaves := dag.Leaves()
	if len(leaves) != 1 || !leaves[index(t, dag, "D")] {
		t.Errorf("Leaves() = %v, want {D}", leaves)
	}
}
