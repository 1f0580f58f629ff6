// Package termsim computes pairwise concept similarity scores over an
// ontology DAG. Node-based models consume information content scores;
// edge-based models consume the level and shortest-path indices. Models are
// registered under stable names and validated before any computation runs.
package termsim

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ic"
	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
)

// Model identifies a concept similarity model.
type Model string

// Supported models. The _edge suffixed names are the topological variants
// of models that also exist in node-based form.
const (
	Resnik     Model = "resnik"
	Lin        Model = "lin"
	Nunivers   Model = "nunivers"
	Wang       Model = "wang"
	Jiang      Model = "jiang"
	FaiTH      Model = "faith"
	PS         Model = "ps"
	AIC        Model = "aic"
	Rada       Model = "rada"
	ResnikEdge Model = "resnik_edge"
	Leacock    Model = "leacock"
	WuPalmer   Model = "wu"
	Pekar      Model = "pekar"
	LiEdge     Model = "li_edge"
	Slimani    Model = "slimani"
	Shenoy     Model = "shenoy"
	WangEdge   Model = "wang_edge"
	Zhong      Model = "zhong"
	AlMubaid   Model = "almubaid"
	RSS        Model = "rss"
	SSDD       Model = "ssdd"
	Shen       Model = "shen"
	HRSS       Model = "hrss"
)

type modelFunc func(*Engine, []Pair, Params) (map[Pair]float64, error)

// models is the dispatch registry; membership doubles as name validation.
var models = map[Model]modelFunc{
	Resnik:     (*Engine).resnik,
	Lin:        (*Engine).lin,
	Nunivers:   (*Engine).nunivers,
	Wang:       (*Engine).wang,
	Jiang:      (*Engine).jiang,
	FaiTH:      (*Engine).faith,
	PS:         (*Engine).ps,
	AIC:        (*Engine).aic,
	Rada:       (*Engine).rada,
	ResnikEdge: (*Engine).resnikEdge,
	Leacock:    (*Engine).leacock,
	WuPalmer:   (*Engine).wuPalmer,
	Pekar:      (*Engine).pekar,
	LiEdge:     (*Engine).liEdge,
	Slimani:    (*Engine).slimani,
	Shenoy:     (*Engine).shenoy,
	WangEdge:   (*Engine).wangEdge,
	Zhong:      (*Engine).zhong,
	AlMubaid:   (*Engine).alMubaid,
	RSS:        (*Engine).rss,
	SSDD:       (*Engine).ssdd,
	Shen:       (*Engine).shen,
	HRSS:       (*Engine).hrss,
}

// NodeBased lists the models that consume information content scores and
// therefore accept an IC approach. Used by the entity layer to validate
// measure combinations.
var NodeBased = map[Model]bool{
	Resnik: true, Lin: true, Nunivers: true, Wang: true, Jiang: true,
	FaiTH: true, AIC: true, HRSS: true, PS: true, Shen: true,
}

// EdgeBased lists the models driven purely by the level and shortest-path
// indices.
var EdgeBased = map[Model]bool{
	Rada: true, ResnikEdge: true, Leacock: true, WuPalmer: true,
	Pekar: true, LiEdge: true, Slimani: true, Shenoy: true, WangEdge: true,
	Zhong: true, AlMubaid: true, RSS: true, SSDD: true,
}

// Known reports whether name identifies a supported model.
func Known(name string) bool {
	_, ok := models[Model(name)]
	return ok
}

// Pair is an ordered term index pair as submitted by the caller.
type Pair struct {
	P, Q int
}

// Configuration errors.
var (
	ErrUnknownModel = errors.New("unknown concept similarity model")
	ErrNoPairs      = errors.New("no term pairs to score")
	ErrCFRange      = errors.New("correction factor must be 0, 1, 2 or 3")
	ErrJiangRange   = errors.New("jiang normalization must be between 0 and 5")
	ErrAlphaRange   = errors.New("alpha must be non-negative")
	ErrBetaRange    = errors.New("beta must be strictly positive")
	ErrZhongKRange  = errors.New("zhong k must be strictly greater than 1")
	ErrAlMubaidArgs = errors.New("almubaid parameters must be positive, k at least 1")
)

// Params is the explicit configuration surface of the similarity models.
// Zero values are filled in by DefaultParams; Validate range-checks every
// field regardless of which model consumes it.
type Params struct {
	// Approach selects the IC approach feeding node-based models.
	Approach ic.Approach `yaml:"approach"`
	// IC carries the nested information content parameters.
	IC ic.Params `yaml:"ic"`
	// CF is the correction factor applied to the most informative common
	// ancestor: 0 none, 1 graph-based mean/max, 2 relevance, 3 simIC.
	CF int `yaml:"correction_factor"`
	// GraphCorrection restricts common ancestors to informative ones
	// (the XGraSM/EICA filter).
	GraphCorrection bool `yaml:"graph_correction"`
	// JiangNorm selects the Jiang&Conrath normalization: 0 Resnik,
	// 1 Couto, 2 Leacock&Chodorow, 3 Garla&Brandt, 4 Rada, 5 canonical.
	JiangNorm int `yaml:"jiang_normalization"`
	// Alpha and Beta drive the Li edge model.
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	// ZhongK is the Zhong depth base.
	ZhongK float64 `yaml:"zhong_k"`
	// AlMubaid parameters.
	AlMubaidK     float64 `yaml:"almubaid_k"`
	AlMubaidAlpha float64 `yaml:"almubaid_alpha"`
	AlMubaidBeta  float64 `yaml:"almubaid_beta"`
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		Approach:      ic.Universal,
		IC:            ic.DefaultParams(),
		Alpha:         0.2,
		Beta:          0.6,
		ZhongK:        2,
		AlMubaidK:     1,
		AlMubaidAlpha: 1,
		AlMubaidBeta:  1,
	}
}

// Validate range-checks the parameters.
func (p Params) Validate() error {
	if p.Approach != "" && !ic.Known(string(p.Approach)) {
		return fmt.Errorf("%w: %q", ic.ErrUnknownApproach, p.Approach)
	}
	if err := p.IC.Validate(); err != nil {
		return err
	}
	if p.CF < 0 || p.CF > 3 {
		return fmt.Errorf("%w: got %d", ErrCFRange, p.CF)
	}
	if p.JiangNorm < 0 || p.JiangNorm > 5 {
		return fmt.Errorf("%w: got %d", ErrJiangRange, p.JiangNorm)
	}
	if p.Alpha < 0 {
		return fmt.Errorf("%w: got %v", ErrAlphaRange, p.Alpha)
	}
	if p.Beta <= 0 {
		return fmt.Errorf("%w: got %v", ErrBetaRange, p.Beta)
	}
	if p.ZhongK <= 1 {
		return fmt.Errorf("%w: got %v", ErrZhongKRange, p.ZhongK)
	}
	if p.AlMubaidK < 1 || p.AlMubaidAlpha <= 0 || p.AlMubaidBeta <= 0 {
		return ErrAlMubaidArgs
	}
	return nil
}

// approach returns the effective IC approach for node-based models.
func (p Params) approach() ic.Approach {
	if p.Approach == "" {
		return ic.Universal
	}
	return p.Approach
}

// simKey identifies one memoized score map.
type simKey struct {
	model    Model
	approach ic.Approach
}

// Engine computes and memoizes concept similarity scores for one DAG.
// Score maps are cached per model and IC approach; pairs already scored are
// served from the cache, new pairs extend it under the engine lock.
type Engine struct {
	dag *ontology.DAG
	ic  *ic.Engine

	mu    sync.Mutex
	cache map[simKey]map[Pair]float64
}

// New creates an engine sharing the information content engine's DAG.
func New(scores *ic.Engine) *Engine {
	return &Engine{
		dag:   scores.DAG(),
		ic:    scores,
		cache: make(map[simKey]map[Pair]float64),
	}
}

// DAG returns the ontology the engine scores against.
func (e *Engine) DAG() *ontology.DAG { return e.dag }

// IC returns the underlying information content engine.
func (e *Engine) IC() *ic.Engine { return e.ic }

// Similarity scores the given term pairs under a model. Identical pairs
// score 1.0 for every model. The result maps exactly the requested pairs.
func (e *Engine) Similarity(model Model, pairs []Pair, p Params) (map[Pair]float64, error) {
	fn, ok := models[model]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, ErrNoPairs
	}

	key := simKey{model: model, approach: p.approach()}
	e.mu.Lock()
	cached := e.cache[key]
	var todo []Pair
	for _, pr := range pairs {
		if _, ok := cached[pr]; !ok {
			todo = append(todo, pr)
		}
	}
	e.mu.Unlock()

	if len(todo) > 0 {
		scored, err := fn(e, todo, p)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		if e.cache[key] == nil {
			e.cache[key] = make(map[Pair]float64)
		}
		for pr, v := range scored {
			e.cache[key][pr] = v
		}
		e.mu.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		out[pr] = e.cache[key][pr]
	}
	return out, nil
}

// AllPairs expands a sorted term list into the unordered pair list the
// engine scores, diagonal included.
func AllPairs(terms []int) []Pair {
	sorted := append([]int(nil), terms...)
	sort.Ints(sorted)
	var pairs []Pair
	for i := 0; i < len(sorted); i++ {
		for j := i; j < len(sorted); j++ {
			pairs = append(pairs, Pair{P: sorted[i], Q: sorted[j]})
		}
	}
	return pairs
}

// commonAncestors returns the sorted intersection of the inclusive ancestor
// closures of p and q. The root is discarded when discardRoot is set (the
// convention for IC-consuming models). With the graph correction, only
// informative common ancestors survive: those with at least one child
// inside the union of the two closures but outside the intersection.
func (e *Engine) commonAncestors(p, q int, discardRoot, graphCorrection bool) []int {
	panc := e.dag.Ancestors(p, true)
	qanc := e.dag.Ancestors(q, true)

	canc := make(map[int]bool)
	for a := range panc {
		if qanc[a] {
			canc[a] = true
		}
	}
	if discardRoot {
		delete(canc, e.dag.Root())
	}

	out := make([]int, 0, len(canc))
	for a := range canc {
		if graphCorrection && !e.informative(a, panc, qanc, canc) {
			continue
		}
		out = append(out, a)
	}
	sort.Ints(out)
	return out
}

func (e *Engine) informative(a int, panc, qanc, canc map[int]bool) bool {
	for _, ce := range e.dag.Children(a) {
		c := ce.To
		if (panc[c] || qanc[c]) && !canc[c] {
			return true
		}
	}
	return false
}

// correction scales the most informative ancestor value: cf 0 is the
// identity, 1 the graph-based mean over max ratio, 2 the relevance factor,
// 3 the simIC factor. The slice must be non-empty.
func correction(values []float64, cf int) float64 {
	switch cf {
	case 1:
		sum, max := 0.0, values[0]
		for _, v := range values {
			sum += v
			if v > max {
				max = v
			}
		}
		return sum / (float64(len(values)) * max)
	case 2:
		return 1.0 - math.Exp(-maxOf(values))
	case 3:
		return 1.0 - 1.0/(1.0+maxOf(values))
	}
	return 1.0
}

func maxOf(values []float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// deepestCommonAncestors returns the common ancestors tied at the minimum
// level (the deepest ones), sorted, together with that level.
func (e *Engine) deepestCommonAncestors(canc []int) ([]int, int) {
	minLevel := 0
	first := true
	for _, a := range canc {
		lv, _ := e.dag.Level(a)
		if first || lv < minLevel {
			minLevel = lv
			first = false
		}
	}
	var slca []int
	for _, a := range canc {
		if lv, _ := e.dag.Level(a); lv == minLevel {
			slca = append(slca, a)
		}
	}
	return slca, minLevel
}

// minDistTo returns the smallest downward distance from any of the given
// ancestors to the target term.
func (e *Engine) minDistTo(ancestors []int, target int) int {
	best, ok := 0, false
	for _, a := range ancestors {
		if d, has := e.dag.Dist(a, target); has && (!ok || d < best) {
			best, ok = d, true
		}
	}
	return best
}
