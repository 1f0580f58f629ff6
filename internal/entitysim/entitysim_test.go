package entitysim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ic"
	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
	"github.com/gaston-software-dev/post-analysis-tools/internal/termsim"
)

// newDiamond builds an engine over the five-term diamond: root R with
// children A and B, C below both, leaf D below C.
func newDiamond(t *testing.T) *Engine {
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
	return New(termsim.New(ic.New(dag)))
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// one runs a single measure on a single pair and returns its score.
func one(t *testing.T, e *Engine, m Measure, annots map[string][]string, pr Pair) float64 {
	t.Helper()
	res, err := e.Similarity(context.Background(), []Measure{m}, annots, []Pair{pr}, DefaultParams())
	if err != nil {
		t.Fatalf("Similarity(%s) error = %v", m.Family, err)
	}
	scores := res.Scores[m.normalize()]
	v, ok := scores[pr]
	if !ok {
		t.Fatalf("no score for %v under %s: %v", pr, m.Family, scores)
	}
	return v
}

func TestGroupwiseMeasures(t *testing.T) {
	annots := map[string][]string{
		"P1": {"A", "C"},
		"P2": {"B", "C"},
		"P3": {"D"},
	}
	// The ancestor closures of P1 and P2 coincide on {R,A,B,C}; P3 covers
	// {R,A,B,C,D}. Against P3 the intersection is all of P1's closure, with
	// universal IC sums 4*ln2 (intersection) and 6*ln2 (union).
	tests := []struct {
		family Family
		pair   Pair
		want   float64
	}{
		{SimUI, Pair{E1: "P1", E2: "P2"}, 1.0},
		{SimNTO, Pair{E1: "P1", E2: "P2"}, 1.0},
		{SimGIC, Pair{E1: "P1", E2: "P3"}, 0.66667},
		{SimDIC, Pair{E1: "P1", E2: "P3"}, 0.8},     // 2*4ln2/(4ln2+6ln2)
		{SimUIC, Pair{E1: "P1", E2: "P3"}, 0.66667}, // 4ln2/6ln2
		{SimCOU, Pair{E1: "P1", E2: "P3"}, 0.7746},  // 6/sqrt(6*10)
		{SimCOT, Pair{E1: "P1", E2: "P3"}, 0.6},     // 6/(6+10-6)
		{SimUB, Pair{E1: "P1", E2: "P3"}, 0.8},      // 4/max(4,5)
		{SimDB, Pair{E1: "P1", E2: "P3"}, 0.88889},  // 2*4/(4+5)
		{SimCUB, Pair{E1: "P1", E2: "P3"}, 0.89443}, // 4/sqrt(4*5)
		{SimCTB, Pair{E1: "P1", E2: "P3"}, 0.8},     // 4/(4+5-4)
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			e := newDiamond(t)
			got := one(t, e, Measure{Family: tt.family}, annots, tt.pair)
			if !almost(got, tt.want) {
				t.Errorf("%s%v = %v, want %v", tt.family, tt.pair, got, tt.want)
			}
		})
	}
}

func TestIndependentMeasures(t *testing.T) {
	annots := map[string][]string{
		"P1": {"A", "C"},
		"P2": {"B", "C"},
	}
	// Raw working sets {A,C} and {B,C} share one term.
	pr := Pair{E1: "P1", E2: "P2"}
	tests := []struct {
		family Family
		want   float64
	}{
		{UI, 1.0 / 3.0},
		{NTO, 0.5},
		{UB, 0.5},
		{DB, 0.5},
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			e := newDiamond(t)
			got := one(t, e, Measure{Family: tt.family}, annots, pr)
			if !almost(got, tt.want) {
				t.Errorf("%s%v = %v, want %v", tt.family, pr, got, tt.want)
			}
		})
	}
}

func TestBestMatchAverage(t *testing.T) {
	annots := map[string][]string{
		"P1": {"A", "C"},
		"P2": {"B", "C"},
	}
	e := newDiamond(t)
	m := DefaultMeasure()

	// Under universal nunivers the cross scores are (A,B)=0, (A,C)=0.5,
	// (C,B)=0.5 and (C,C)=1, giving 0.75 row averages on both sides.
	if got := one(t, e, m, annots, Pair{E1: "P1", E2: "P2"}); !almost(got, 0.75) {
		t.Errorf("bma(P1,P2) = %v, want 0.75", got)
	}
	if got := one(t, e, m, annots, Pair{E1: "P1", E2: "P1"}); got != 1.0 {
		t.Errorf("bma(P1,P1) = %v, want 1", got)
	}
}

func TestBestMatchVariants(t *testing.T) {
	annots := map[string][]string{
		"P1": {"A", "C"},
		"P2": {"B", "C"},
	}
	pr := Pair{E1: "P1", E2: "P2"}
	tests := []struct {
		family Family
		want   float64
	}{
		{Avg, 0.42857}, // mean over the mirrored score map, (C,C) counted once
		{Max, 1.0},     // the (C,C) pair dominates
		{BMM, 0.75},    // both row means agree
		{ABM, 0.75},
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			e := newDiamond(t)
			got := one(t, e, Measure{Family: tt.family, Model: termsim.Nunivers}, annots, pr)
			if !almost(got, tt.want) {
				t.Errorf("%s%v = %v, want %v", tt.family, pr, got, tt.want)
			}
		})
	}
}

func TestReversedPairCollapses(t *testing.T) {
	annots := map[string][]string{
		"P1": {"A"},
		"P2": {"B"},
	}
	e := newDiamond(t)
	pairs := []Pair{{E1: "P1", E2: "P2"}, {E1: "P2", E2: "P1"}}
	res, err := e.Similarity(context.Background(), nil, annots, pairs, DefaultParams())
	if err != nil {
		t.Fatalf("Similarity() error = %v", err)
	}
	if got := len(res.Scores[DefaultMeasure()]); got != 1 {
		t.Errorf("scored %d pairs, want 1 after reversed duplicate collapse", got)
	}
}

func TestMissingAnnotations(t *testing.T) {
	annots := map[string][]string{
		"P1": {"A", "C"},
		"P4": {"C", "nope"},
	}
	e := newDiamond(t)
	pr := Pair{E1: "P1", E2: "P4"}
	res, err := e.Similarity(context.Background(), nil, annots, []Pair{pr}, DefaultParams())
	if err != nil {
		t.Fatalf("Similarity() error = %v", err)
	}
	if miss := res.Missing["P4"]; len(miss) != 1 || miss[0] != "nope" {
		t.Errorf("Missing[P4] = %v, want [nope]", miss)
	}
	if _, ok := res.Missing["P1"]; ok {
		t.Error("fully mapped entity reported as missing")
	}
	// P4 still scores through its resolvable term.
	if got := res.Scores[DefaultMeasure()][pr]; !almost(got, 0.875) {
		t.Errorf("bma(P1,P4) = %v, want 0.875", got)
	}
}

func TestEmptyWorkingSet(t *testing.T) {
	// An entity annotated only with the root has nothing to compare.
	annots := map[string][]string{
		"P1": {"A", "C"},
		"P5": {"R"},
	}
	e := newDiamond(t)
	got := one(t, e, DefaultMeasure(), annots, Pair{E1: "P1", E2: "P5"})
	if got != 0.0 {
		t.Errorf("bma against a rootless entity = %v, want 0", got)
	}
}

func TestAllPairsExpansion(t *testing.T) {
	annots := map[string][]string{
		"P1": {"A"},
		"P2": {"B"},
		"P3": {"C"},
	}
	e := newDiamond(t)
	p := DefaultParams()
	p.Workers = 4
	res, err := e.Similarity(context.Background(), nil, annots, nil, p)
	if err != nil {
		t.Fatalf("Similarity() error = %v", err)
	}
	// Three entities expand into six unordered pairs, diagonal included.
	if got := len(res.Scores[DefaultMeasure()]); got != 6 {
		t.Errorf("scored %d pairs, want 6", got)
	}
}

func TestMeasureNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Measure
		want Measure
	}{
		{
			name: "best-match defaults",
			in:   Measure{Family: BMA},
			want: Measure{Family: BMA, Model: termsim.Nunivers, Approach: ic.Universal},
		},
		{
			name: "edge model drops the approach",
			in:   Measure{Family: Avg, Model: termsim.Rada, Approach: ic.Seco},
			want: Measure{Family: Avg, Model: termsim.Rada},
		},
		{
			name: "groupwise IC default approach",
			in:   Measure{Family: SimGIC},
			want: Measure{Family: SimGIC, Approach: ic.Universal},
		},
		{
			name: "set measure carries nothing",
			in:   Measure{Family: SimUI, Model: termsim.Lin, Approach: ic.Seco},
			want: Measure{Family: SimUI},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalize(); got != tt.want {
				t.Errorf("normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMeasureValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Measure
		wantErr error
	}{
		{"unknown family", Measure{Family: "bogus"}, ErrUnknownFamily},
		{"set measure with model", Measure{Family: UI, Model: termsim.Resnik}, ErrMeasureCombo},
		{"groupwise IC with model", Measure{Family: SimGIC, Model: termsim.Lin}, ErrMeasureCombo},
		{"best-match bad approach", Measure{Family: BMA, Model: termsim.Resnik, Approach: "bogus"}, ic.ErrUnknownApproach},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.m.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := DefaultMeasure().Validate(); err != nil {
		t.Errorf("default measure rejected: %v", err)
	}
}

func TestSimilarityErrors(t *testing.T) {
	e := newDiamond(t)
	ctx := context.Background()

	if _, err := e.Similarity(ctx, nil, nil, nil, DefaultParams()); !errors.Is(err, ErrNoAnnotations) {
		t.Errorf("no annotations error = %v, want %v", err, ErrNoAnnotations)
	}

	annots := map[string][]string{"P1": {"A"}}
	pairs := []Pair{{E1: "ghost", E2: "P1"}}
	if _, err := e.Similarity(ctx, nil, annots, pairs, DefaultParams()); !errors.Is(err, ErrNoEntityPairs) {
		t.Errorf("unmapped pair error = %v, want %v", err, ErrNoEntityPairs)
	}

	p := DefaultParams()
	p.AlnAlpha = 0
	if _, err := e.Similarity(ctx, nil, annots, nil, p); !errors.Is(err, ErrAlnAlphaRange) {
		t.Errorf("alpha range error = %v, want %v", err, ErrAlnAlphaRange)
	}
}
