// Package ic computes per-term information content scores over an ontology
// DAG under the supported statistical approaches.
package ic

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
)

// Approach identifies an information content model.
type Approach string

// Supported approaches. External passes through caller-supplied scores;
// SSDD produces the T-values consumed by the SSDD similarity model rather
// than an information content proper.
const (
	Universal Approach = "universal"
	Wang      Approach = "wang"
	Zhang     Approach = "zhang"
	Seco      Approach = "seco"
	Zhou      Approach = "zhou"
	Seddiqui  Approach = "seddiqui"
	Zanchez   Approach = "zanchez"
	Meng      Approach = "meng"
	Stats     Approach = "stats"
	External  Approach = "ic"
	SSDD      Approach = "assdd"
)

var approaches = map[Approach]bool{
	Universal: true, Wang: true, Zhang: true, Seco: true, Zhou: true,
	Seddiqui: true, Zanchez: true, Meng: true, Stats: true,
	External: true, SSDD: true,
}

// Errors reported by the engine. All are configuration errors: the batch is
// rejected before any computation starts.
var (
	ErrUnknownApproach = errors.New("unknown information content approach")
	ErrSigmaRange      = errors.New("sigma must be in [0, 1]")
	ErrNoStats         = errors.New("stats approach needs term counts or term sets")
	ErrNoExternalIC    = errors.New("external approach needs a term score map")
	ErrNoMappedTerms   = errors.New("no supplied term maps onto the current ontology")
)

// Known reports whether name identifies a supported approach.
func Known(name string) bool { return approaches[Approach(name)] }

// Params carries the optional inputs an approach may need.
type Params struct {
	// Sigma blends the Zhou structural and level components. Default 0.5.
	Sigma float64 `yaml:"sigma"`
	// TermCounts are caller statistics per term identifier (stats approach).
	TermCounts map[string]float64 `yaml:"term_counts,omitempty"`
	// TermSets are caller entity sets per term identifier (stats approach).
	TermSets map[string][]string `yaml:"term_sets,omitempty"`
	// TermIC are externally computed scores per term identifier.
	TermIC map[string]float64 `yaml:"term_ic,omitempty"`
}

// DefaultParams returns the conventional parameter values.
func DefaultParams() Params { return Params{Sigma: 0.5} }

// Validate range-checks the parameters.
func (p Params) Validate() error {
	if p.Sigma < 0 || p.Sigma > 1 {
		return fmt.Errorf("%w: got %v", ErrSigmaRange, p.Sigma)
	}
	return nil
}

// Engine memoizes information content score maps per approach for one DAG.
// The first request for an approach builds its map under the engine lock;
// later requests, including concurrent ones, share the cached copy.
type Engine struct {
	dag *ontology.DAG

	mu      sync.Mutex
	scores  map[Approach]map[int]float64
	contrib map[int]map[int]float64
}

// New creates an engine bound to an immutable DAG.
func New(dag *ontology.DAG) *Engine {
	return &Engine{
		dag:    dag,
		scores: make(map[Approach]map[int]float64),
	}
}

// DAG returns the ontology the engine scores against.
func (e *Engine) DAG() *ontology.DAG { return e.dag }

// Scores returns the term to score map for an approach, computing and
// caching it on first use. For the Wang approach the scalar score of a term
// is the sum of its per-ancestor contributions.
func (e *Engine) Scores(app Approach, p Params) (map[int]float64, error) {
	if !approaches[app] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownApproach, app)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.scores[app]; ok {
		return s, nil
	}

	var s map[int]float64
	var err error
	switch app {
	case Universal:
		s = e.universal()
	case Wang:
		s = sumContributions(e.wangLocked())
	case Zhang:
		s = e.zhang()
	case Seco:
		s = e.seco()
	case Zhou:
		s = e.zhou(p.Sigma)
	case Seddiqui:
		s = e.seddiqui()
	case Zanchez:
		s = e.zanchez()
	case Meng:
		s = e.meng()
	case Stats:
		s, err = e.stats(p)
	case External:
		s, err = e.external(p)
	case SSDD:
		s = e.ssdd()
	}
	if err != nil {
		return nil, err
	}
	e.scores[app] = s
	return s, nil
}

// Contributions returns the Wang per-term ancestor contribution maps,
// computing and caching them on first use.
func (e *Engine) Contributions() map[int]map[int]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wangLocked()
}

func (e *Engine) wangLocked() map[int]map[int]float64 {
	if e.contrib == nil {
		e.contrib = e.wang()
	}
	return e.contrib
}

func sumContributions(contrib map[int]map[int]float64) map[int]float64 {
	s := make(map[int]float64, len(contrib))
	for t, m := range contrib {
		total := 0.0
		for _, v := range m {
			total += v
		}
		s[t] = total
	}
	return s
}

// graphTerms returns the indices participating in the DAG, sorted.
func (e *Engine) graphTerms() []int {
	terms := make([]int, 0, e.dag.NodeCount())
	for t := 0; t < e.dag.Len(); t++ {
		if e.dag.InGraph(t) {
			terms = append(terms, t)
		}
	}
	return terms
}

// byLevel groups graph terms by level. Levels come back sorted ascending
// (deepest first); reverse for a root-first sweep.
func (e *Engine) byLevel() (levels []int, groups map[int][]int) {
	groups = make(map[int][]int)
	for _, t := range e.graphTerms() {
		if lv, ok := e.dag.Level(t); ok {
			groups[lv] = append(groups[lv], t)
		}
	}
	for lv := range groups {
		levels = append(levels, lv)
	}
	sort.Ints(levels)
	return levels, groups
}
