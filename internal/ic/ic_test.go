package ic

import (
	"errors"
	"math"
	"testing"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
)

// diamondEngine builds an engine over the five-term diamond: root R with
// children A and B, C below both, leaf D below C.
func diamondEngine(t *testing.T) *Engine {
	t.Helper()
	terms := []ontology.TermRecord{
		{ID: "R"},
		{ID: "A", Parents: []ontology.ParentRef{{Relation: ontology.RelationIsA, ParentID: "R"}}},
		{ID: "B", Parents: []ontology.ParentRef{{Relation: ontology.RelationIsA, ParentID: "R"}}},
		{ID: "C", Parents: []ontology.ParentRef{
			{Relation: ontology.RelationIsA, ParentID: "A"},
			{Relation: ontology.RelationIsA, ParentID: "B"},
		}},
		{ID: "D", Parents: []ontology.ParentRef{{Relation: ontology.RelationIsA, ParentID: "C"}}},
	}
	dag, err := ontology.Build(terms, "", ontology.DefaultWeights())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return New(dag)
}

func index(t *testing.T, e *Engine, id string) int {
	t.Helper()
	idx, ok := e.DAG().Index(id)
	if !ok {
		t.Fatalf("Index(%q) not found", id)
	}
	return idx
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestUniversal(t *testing.T) {
	e := diamondEngine(t)
	scores, err := e.Scores(Universal, DefaultParams())
	if err != nil {
		t.Fatalf("Scores(universal) error = %v", err)
	}
	// R keeps all the mass, A and B split it, C multiplies its two parent
	// shares, D inherits C's mass through its single edge.
	want := map[string]float64{
		"R": 0,
		"A": math.Log(2),
		"B": math.Log(2),
		"C": math.Log(4),
		"D": math.Log(4),
	}
	for id, v := range want {
		if got := scores[index(t, e, id)]; !almost(got, v) {
			t.Errorf("universal IC(%s) = %v, want %v", id, got, v)
		}
	}
}

func TestZhang(t *testing.T) {
	e := diamondEngine(t)
	scores, err := e.Scores(Zhang, DefaultParams())
	if err != nil {
		t.Fatalf("Scores(zhang) error = %v", err)
	}
	// The single leaf D propagates a count of 1 everywhere below the root,
	// and the root collects 2 through its two children.
	for _, id := range []string{"A", "B", "C", "D"} {
		if got := scores[index(t, e, id)]; !almost(got, math.Log(2)) {
			t.Errorf("zhang IC(%s) = %v, want ln 2", id, got)
		}
	}
	if got := scores[index(t, e, "R")]; !almost(got, 0) {
		t.Errorf("zhang IC(R) = %v, want 0", got)
	}
}

func TestSeco(t *testing.T) {
	e := diamondEngine(t)
	scores, err := e.Scores(Seco, DefaultParams())
	if err != nil {
		t.Fatalf("Scores(seco) error = %v", err)
	}
	// Inclusive counts are D=1, C=2, A=B=3, R=7, normalized by ln 6.
	want := map[string]float64{
		"R": 0,
		"A": 1 - math.Log(3)/math.Log(6),
		"C": 1 - math.Log(2)/math.Log(6),
		"D": 1,
	}
	for id, v := range want {
		if got := scores[index(t, e, id)]; !almost(got, v) {
			t.Errorf("seco IC(%s) = %v, want %v", id, got, v)
		}
	}
}

func TestRootScoresZero(t *testing.T) {
	e := diamondEngine(t)
	root := e.DAG().Root()
	for _, app := range []Approach{Universal, Zhang, Seco, Zhou, Seddiqui, Zanchez, Meng} {
		t.Run(string(app), func(t *testing.T) {
			scores, err := e.Scores(app, DefaultParams())
			if err != nil {
				t.Fatalf("Scores(%s) error = %v", app, err)
			}
			if got := scores[root]; !almost(got, 0) {
				t.Errorf("%s IC(root) = %v, want 0", app, got)
			}
		})
	}
}

func TestWangContributions(t *testing.T) {
	e := diamondEngine(t)
	contrib := e.Contributions()
	c := index(t, e, "C")

	want := map[string]float64{"C": 1.0, "A": 0.8, "B": 0.8, "R": 0.64}
	m := contrib[c]
	if len(m) != len(want) {
		t.Fatalf("contributions of C cover %d terms, want %d", len(m), len(want))
	}
	for id, v := range want {
		if got := m[index(t, e, id)]; !almost(got, v) {
			t.Errorf("contribution of %s to C = %v, want %v", id, got, v)
		}
	}

	// The scalar wang score of a term is the sum of its contributions.
	scores, err := e.Scores(Wang, DefaultParams())
	if err != nil {
		t.Fatalf("Scores(wang) error = %v", err)
	}
	if got := scores[c]; !almost(got, 1.0+0.8+0.8+0.64) {
		t.Errorf("wang IC(C) = %v, want 3.24", got)
	}
}

func TestStatsCounts(t *testing.T) {
	e := diamondEngine(t)
	p := DefaultParams()
	p.TermCounts = map[string]float64{"R": 10, "A": 5, "C": 2}
	scores, err := e.Scores(Stats, p)
	if err != nil {
		t.Fatalf("Scores(stats) error = %v", err)
	}
	want := map[string]float64{"R": 0, "A": math.Log(2), "C": math.Log(5)}
	for id, v := range want {
		got, ok := scores[index(t, e, id)]
		if !ok || !almost(got, v) {
			t.Errorf("stats IC(%s) = %v,%v, want %v", id, got, ok, v)
		}
	}
	// Zero-count terms drop out rather than scoring.
	if _, ok := scores[index(t, e, "D")]; ok {
		t.Error("stats scored a term with no count")
	}
}

func TestStatsSets(t *testing.T) {
	e := diamondEngine(t)
	p := DefaultParams()
	p.TermSets = map[string][]string{"D": {"e1"}, "A": {"e2"}}
	scores, err := e.Scores(Stats, p)
	if err != nil {
		t.Fatalf("Scores(stats) error = %v", err)
	}
	// Entity sets union upward: A ends with {e1,e2}, the root with both.
	want := map[string]float64{"R": 0, "A": 0, "D": math.Log(2), "C": math.Log(2)}
	for id, v := range want {
		if got := scores[index(t, e, id)]; !almost(got, v) {
			t.Errorf("stats IC(%s) = %v, want %v", id, got, v)
		}
	}
}

func TestExternal(t *testing.T) {
	e := diamondEngine(t)
	p := DefaultParams()
	p.TermIC = map[string]float64{"A": 1.5, "nope": 2.0}
	scores, err := e.Scores(External, p)
	if err != nil {
		t.Fatalf("Scores(ic) error = %v", err)
	}
	if len(scores) != 1 {
		t.Errorf("external mapped %d terms, want 1", len(scores))
	}
	if got := scores[index(t, e, "A")]; !almost(got, 1.5) {
		t.Errorf("external IC(A) = %v, want 1.5", got)
	}
}

func TestSSDD(t *testing.T) {
	e := diamondEngine(t)
	scores, err := e.Scores(SSDD, DefaultParams())
	if err != nil {
		t.Fatalf("Scores(assdd) error = %v", err)
	}
	want := map[string]float64{"R": 1.0, "A": 0.6, "B": 0.6, "C": 0.4, "D": 0.2}
	for id, v := range want {
		if got := scores[index(t, e, id)]; !almost(got, v) {
			t.Errorf("ssdd T(%s) = %v, want %v", id, got, v)
		}
	}
}

func TestScoresErrors(t *testing.T) {
	tests := []struct {
		name    string
		app     Approach
		params  func() Params
		wantErr error
	}{
		{
			name:    "unknown approach",
			app:     Approach("bogus"),
			params:  DefaultParams,
			wantErr: ErrUnknownApproach,
		},
		{
			name: "sigma out of range",
			app:  Zhou,
			params: func() Params {
				p := DefaultParams()
				p.Sigma = 1.5
				return p
			},
			wantErr: ErrSigmaRange,
		},
		{
			name:    "stats without inputs",
			app:     Stats,
			params:  DefaultParams,
			wantErr: ErrNoStats,
		},
		{
			name: "stats counts map nothing",
			app:  Stats,
			params: func() Params {
				p := DefaultParams()
				p.TermCounts = map[string]float64{"nope": 3}
				return p
			},
			wantErr: ErrNoMappedTerms,
		},
		{
			name:    "external without scores",
			app:     External,
			params:  DefaultParams,
			wantErr: ErrNoExternalIC,
		},
		{
			name: "external maps nothing",
			app:  External,
			params: func() Params {
				p := DefaultParams()
				p.TermIC = map[string]float64{"nope": 3}
				return p
			},
			wantErr: ErrNoMappedTerms,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := diamondEngine(t)
			if _, err := e.Scores(tt.app, tt.params()); !errors.Is(err, tt.wantErr) {
				t.Errorf("Scores() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestScoresCached(t *testing.T) {
	e := diamondEngine(t)
	first, err := e.Scores(Universal, DefaultParams())
	if err != nil {
		t.Fatalf("Scores() error = %v", err)
	}
	second, err := e.Scores(Universal, DefaultParams())
	if err != nil {
		t.Fatalf("Scores() error = %v", err)
	}
	// The cached map is shared, not recomputed.
	first[-1] = 42
	if second[-1] != 42 {
		t.Error("second Scores() call did not return the cached map")
	}
}
