package entitysim

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ontology"
	"github.com/gaston-software-dev/post-analysis-tools/internal/termsim"
)

// Pair is an ordered entity identifier pair.
type Pair struct {
	E1, E2 string
}

// Result carries the score map per measure plus the per-entity identifiers
// that could not be mapped onto the ontology.
type Result struct {
	Scores  map[Measure]map[Pair]float64
	Missing map[string][]string
}

// Engine aggregates concept similarity into entity similarity over one DAG.
type Engine struct {
	dag *ontology.DAG
	ts  *termsim.Engine
}

// New creates an engine on top of a concept similarity engine.
func New(ts *termsim.Engine) *Engine {
	return &Engine{dag: ts.DAG(), ts: ts}
}

// DAG returns the ontology the engine scores against.
func (e *Engine) DAG() *ontology.DAG { return e.dag }

// entity is one mapped entity: its working annotation set with the root
// discarded, and the raw identifiers that did not resolve.
type entity struct {
	terms   map[int]bool
	missing []string
}

// mapAnnotations resolves raw annotation identifiers into working term sets.
// Unresolvable identifiers land in the per-entity missing set; the root is
// discarded from every working set. Mapping failures never abort the batch.
func (e *Engine) mapAnnotations(annots map[string][]string) map[string]entity {
	out := make(map[string]entity, len(annots))
	for name, ids := range annots {
		found, missing := e.dag.Resolve(ids)
		terms := make(map[int]bool, len(found))
		for _, t := range found {
			if t != e.dag.Root() {
				terms[t] = true
			}
		}
		out[name] = entity{terms: terms, missing: missing}
	}
	return out
}

// expandPairs returns the requested entity pairs restricted to mapped
// entities, or every unordered pair of mapped entities, diagonal included,
// when none are requested. Reversed duplicates collapse to their first
// occurrence.
func expandPairs(entities map[string]entity, requested []Pair) []Pair {
	var pairs []Pair
	if len(requested) > 0 {
		seen := make(map[Pair]bool)
		for _, pr := range requested {
			if _, ok := entities[pr.E1]; !ok {
				continue
			}
			if _, ok := entities[pr.E2]; !ok {
				continue
			}
			if seen[pr] || seen[Pair{E1: pr.E2, E2: pr.E1}] {
				continue
			}
			seen[pr] = true
			pairs = append(pairs, pr)
		}
		return pairs
	}
	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)
	for i := 0; i < len(names); i++ {
		for j := i; j < len(names); j++ {
			pairs = append(pairs, Pair{E1: names[i], E2: names[j]})
		}
	}
	return pairs
}

// Similarity scores entity pairs under the given measures. With no measures
// the default best-match-average measure runs; with no pairs every pair of
// annotated entities is scored. Scoring runs in parallel across entity pairs
// once the shared caches are warm.
func (e *Engine) Similarity(ctx context.Context, measures []Measure, annots map[string][]string, pairs []Pair, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(annots) == 0 {
		return nil, ErrNoAnnotations
	}
	if len(measures) == 0 {
		measures = []Measure{DefaultMeasure()}
	}
	norm := make([]Measure, len(measures))
	for i, m := range measures {
		norm[i] = m.normalize()
		if err := norm[i].Validate(); err != nil {
			return nil, err
		}
	}

	entities := e.mapAnnotations(annots)
	batch := expandPairs(entities, pairs)
	if len(batch) == 0 {
		return nil, ErrNoEntityPairs
	}

	if err := e.warm(norm, entities, batch, p); err != nil {
		return nil, err
	}

	// Shared caches are populated; the per-pair work is now read-only
	// against them.
	slots := make(map[Measure][]float64, len(norm))
	for _, m := range norm {
		slots[m] = make([]float64, len(batch))
	}
	corpus := corpusCounts(entities)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pr := range batch {
		i, pr := i, pr
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, m := range norm {
				v, err := e.score(m, entities, pr, corpus, p)
				if err != nil {
					return err
				}
				slots[m][i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Scores:  make(map[Measure]map[Pair]float64, len(norm)),
		Missing: make(map[string][]string),
	}
	for _, m := range norm {
		scores := make(map[Pair]float64, len(batch))
		for i, pr := range batch {
			scores[pr] = slots[m][i]
		}
		res.Scores[m] = scores
	}
	for name, ent := range entities {
		if len(ent.missing) > 0 {
			missing := append([]string(nil), ent.missing...)
			sort.Strings(missing)
			res.Missing[name] = missing
		}
	}
	return res, nil
}

// warm populates every lazily built shared cache the batch will touch, so
// the parallel phase only reads: the level and path indices, the concept
// score cache for best-match measures, and the IC maps for the groupwise
// IC measures.
func (e *Engine) warm(measures []Measure, entities map[string]entity, batch []Pair, p Params) error {
	e.dag.Levels()
	e.dag.ShortestPaths()
	e.dag.Leaves()

	var termPairs []termsim.Pair
	seen := make(map[termsim.Pair]bool)
	for _, pr := range batch {
		for s := range entities[pr.E1].terms {
			for t := range entities[pr.E2].terms {
				k := termsim.Pair{P: s, Q: t}
				if !seen[k] && !seen[termsim.Pair{P: t, Q: s}] {
					seen[k] = true
					termPairs = append(termPairs, k)
				}
			}
		}
	}

	for _, m := range measures {
		switch {
		case bestMatch[m.Family]:
			if len(termPairs) == 0 {
				continue
			}
			if _, err := e.ts.Similarity(m.Model, termPairs, e.conceptParams(m, p)); err != nil {
				return err
			}
		case groupIC[m.Family]:
			if _, err := e.ts.IC().Scores(m.Approach, p.Concept.IC); err != nil {
				return err
			}
		case m.Family == Intel:
			// IntelliGO additionally needs within-entity Wu&Palmer scores.
			var intra []termsim.Pair
			for _, pr := range batch {
				for _, name := range []string{pr.E1, pr.E2} {
					terms := entities[name].terms
					for s := range terms {
						for t := range terms {
							k := termsim.Pair{P: s, Q: t}
							if !seen[k] {
								seen[k] = true
								intra = append(intra, k)
							}
						}
					}
				}
			}
			all := append(append([]termsim.Pair(nil), termPairs...), intra...)
			for i := range all {
				if r := (termsim.Pair{P: all[i].Q, Q: all[i].P}); !seen[r] {
					seen[r] = true
					all = append(all, r)
				}
			}
			if len(all) == 0 {
				continue
			}
			if _, err := e.ts.Similarity(termsim.WuPalmer, all, p.Concept); err != nil {
				return err
			}
		}
	}
	return nil
}

// conceptParams threads the measure's IC approach into the concept
// similarity parameters.
func (e *Engine) conceptParams(m Measure, p Params) termsim.Params {
	cp := p.Concept
	if m.Approach != "" {
		cp.Approach = m.Approach
	}
	return cp
}

// score dispatches one measure for one entity pair.
func (e *Engine) score(m Measure, entities map[string]entity, pr Pair, corpus map[int]int, p Params) (float64, error) {
	a, b := entities[pr.E1].terms, entities[pr.E2].terms
	switch {
	case bestMatch[m.Family]:
		return e.bestMatchScore(m, pr, a, b, p)
	case edgeEntity[m.Family]:
		return e.edgeEntityScore(m.Family, pr, a, b, p)
	case groupIC[m.Family], groupSet[m.Family]:
		return e.groupwiseScore(m, pr, a, b, p)
	default:
		return indepScore(m.Family, pr, a, b, entities, corpus), nil
	}
}

// closure returns the union of the inclusive ancestor sets of the terms.
// The root re-enters here even though working sets exclude it.
func (e *Engine) closure(terms map[int]bool) map[int]bool {
	set := make(map[int]bool)
	for t := range terms {
		for a := range e.dag.Ancestors(t, true) {
			set[a] = true
		}
	}
	return set
}

// corpusCounts returns, per term, the number of entities annotated with it.
func corpusCounts(entities map[string]entity) map[int]int {
	counts := make(map[int]int)
	for _, ent := range entities {
		for t := range ent.terms {
			counts[t]++
		}
	}
	return counts
}

// round5 rounds entity scores to five decimals, the reporting precision.
func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
