package ic

import (
	"math"
	"sort"
)

var log10 = math.Log(10)

// universal distributes a probability mass of 1.0 from the root down the
// DAG, dividing a parent's mass equally among its children and multiplying
// across parents. Factors are rescaled into [0.1, 1) with an exponent-of-ten
// correction so the running product never underflows to zero; the correction
// is folded back in as k*ln(10), guaranteeing the log never sees zero.
func (e *Engine) universal() map[int]float64 {
	type mass struct {
		prod float64
		exp  float64
	}
	root := e.dag.Root()
	tinfo := map[int]mass{root: {prod: 1.0}}
	infoc := map[int]float64{root: 0.0}

	levels, groups := e.byLevel()
	for i := len(levels) - 2; i >= 0; i-- {
		terms := groups[levels[i]]
		sort.Ints(terms)
		for _, j := range terms {
			prod, k := 1.0, 0.0
			for _, pe := range e.dag.Parents(j) {
				pm := tinfo[pe.To]
				cc := pm.prod / float64(e.dag.ChildCount(pe.To))
				k += pm.exp
				for cc < 0.1 {
					cc *= 10
					k++
				}
				prod *= cc
			}
			tinfo[j] = mass{prod: prod, exp: k}
			infoc[j] = -math.Log(prod) + k*log10
		}
	}
	return infoc
}

// wang computes, per term, the semantic contribution of each of its
// ancestors: the term contributes 1.0 to itself, and an ancestor's
// contribution is the best child contribution on a path to the term scaled
// by the edge weight. Ancestors are processed deepest first so every child
// contribution on a path is final before its parent is visited.
func (e *Engine) wang() map[int]map[int]float64 {
	contrib := make(map[int]map[int]float64)
	for _, t := range e.graphTerms() {
		m := map[int]float64{t: 1.0}
		closure := e.dag.Ancestors(t, true)

		ancs := make([]int, 0, len(closure)-1)
		for a := range closure {
			if a != t {
				ancs = append(ancs, a)
			}
		}
		sort.Slice(ancs, func(i, j int) bool {
			li, _ := e.dag.Level(ancs[i])
			lj, _ := e.dag.Level(ancs[j])
			if li != lj {
				return li < lj
			}
			return ancs[i] < ancs[j]
		})

		for _, anc := range ancs {
			best := 0.0
			for _, ce := range e.dag.Children(anc) {
				if !closure[ce.To] {
					continue
				}
				if v := m[ce.To] * ce.Weight; v > best {
					best = v
				}
			}
			m[anc] = best
		}
		contrib[t] = m
	}
	return contrib
}

// zhang counts 1 per leaf and propagates child counts bottom-up, a term's
// count replacing its initial 1 by the sum over its children; the score is
// the negated log of the count normalized by the root count.
func (e *Engine) zhang() map[int]float64 {
	counts := e.bottomUpCounts(false)
	root := float64(counts[e.dag.Root()])
	s := make(map[int]float64, len(counts))
	for t, c := range counts {
		s[t] = -math.Log(float64(c) / root)
	}
	return s
}

// seco accumulates child counts bottom-up including a +1 self term and
// normalizes in log space against the root count minus one; the root is
// forced to zero.
func (e *Engine) seco() map[int]float64 {
	counts := e.bottomUpCounts(true)
	root := e.dag.Root()
	logRoot := math.Log(float64(counts[root] - 1))
	s := make(map[int]float64, len(counts))
	for t, c := range counts {
		s[t] = 1.0 - math.Log(float64(c))/logRoot
	}
	s[root] = 0.0
	return s
}

// zhou blends the seco structural score with a normalized log-depth term.
func (e *Engine) zhou(sigma float64) map[int]float64 {
	base := e.seco()
	root := e.dag.Root()
	logDeep := math.Log(float64(e.dag.Depth()))

	s := map[int]float64{root: 0.0}
	for t, v := range base {
		if t == root {
			continue
		}
		lv, _ := e.dag.Level(t)
		s[t] = sigma*v + (1-sigma)*math.Log(float64(-lv))/logDeep
	}
	return s
}

// seddiqui blends the seco structural score with an edge density term; the
// blend weight derives from the graph's edge and node counts.
func (e *Engine) seddiqui() map[int]float64 {
	base := e.seco()
	root := e.dag.Root()
	nedge := float64(e.dag.EdgeCount())
	nnode := float64(e.dag.NodeCount())
	sigma := math.Log(nedge+1) / (math.Log(nedge) + math.Log(nnode))

	s := map[int]float64{root: 0.0}
	for t, v := range base {
		if t == root {
			continue
		}
		s[t] = (1-sigma)*v + sigma*math.Log(float64(e.dag.ChildCount(t))+1.0)/math.Log(nedge)
	}
	return s
}

// zanchez scores a term by its share of descendant leaves relative to the
// size of its inclusive ancestor set.
func (e *Engine) zanchez() map[int]float64 {
	leaves := e.dag.Leaves()
	total := float64(len(leaves)) + 1.0
	s := make(map[int]float64)
	for _, t := range e.graphTerms() {
		nleaves := 0
		for d := range e.dag.Descendants(t) {
			if leaves[d] {
				nleaves++
			}
		}
		nanc := float64(len(e.dag.Ancestors(t, true)))
		s[t] = -math.Log((float64(nleaves)/nanc + 1.0) / total)
	}
	return s
}

// meng combines normalized log-depth with a penalty over the inverse depths
// of a term's descendants.
func (e *Engine) meng() map[int]float64 {
	root := e.dag.Root()
	logDeep := math.Log(float64(e.dag.Depth()))
	logN := math.Log(float64(e.dag.NodeCount()))

	s := map[int]float64{root: 0.0}
	for _, t := range e.graphTerms() {
		if t == root {
			continue
		}
		lv, _ := e.dag.Level(t)
		sum := 0.0
		for d := range e.dag.Descendants(t) {
			dl, _ := e.dag.Level(d)
			sum += -1.0 / float64(dl)
		}
		s[t] = (math.Log(float64(-lv)) / logDeep) * (1.0 - math.Log(sum+1.0)/logN)
	}
	return s
}

// stats scores terms from caller-supplied statistics: either scalar counts,
// used as-is, or per-term entity sets unioned bottom-up, both normalized by
// the root in log space. Terms with a zero count fall out of the map rather
// than producing a log-domain error.
func (e *Engine) stats(p Params) (map[int]float64, error) {
	switch {
	case len(p.TermCounts) > 0:
		counts := make(map[int]float64)
		mapped := false
		for _, t := range e.graphTerms() {
			if c, ok := p.TermCounts[e.dag.TermID(t)]; ok {
				counts[t] = c
				mapped = true
			} else {
				counts[t] = 0
			}
		}
		if !mapped {
			return nil, ErrNoMappedTerms
		}
		root := counts[e.dag.Root()]
		s := make(map[int]float64)
		for t, c := range counts {
			if c > 0 && root > 0 {
				s[t] = -math.Log(c / root)
			}
		}
		return s, nil

	case len(p.TermSets) > 0:
		sets := make(map[int]map[string]bool)
		mapped := false
		for _, t := range e.graphTerms() {
			set := make(map[string]bool)
			if entities, ok := p.TermSets[e.dag.TermID(t)]; ok {
				mapped = true
				for _, ent := range entities {
					set[ent] = true
				}
			}
			sets[t] = set
		}
		if !mapped {
			return nil, ErrNoMappedTerms
		}
		levels, groups := e.byLevel()
		for _, lv := range levels {
			terms := groups[lv]
			sort.Ints(terms)
			for _, j := range terms {
				for _, ce := range e.dag.Children(j) {
					for ent := range sets[ce.To] {
						sets[j][ent] = true
					}
				}
			}
		}
		root := float64(len(sets[e.dag.Root()]))
		s := make(map[int]float64)
		for t, set := range sets {
			if len(set) > 0 && root > 0 {
				s[t] = -math.Log(float64(len(set)) / root)
			}
		}
		return s, nil
	}
	return nil, ErrNoStats
}

// external maps caller-supplied identifier scores onto term indices.
func (e *Engine) external(p Params) (map[int]float64, error) {
	if len(p.TermIC) == 0 {
		return nil, ErrNoExternalIC
	}
	s := make(map[int]float64)
	for id, v := range p.TermIC {
		if t, ok := e.dag.Index(id); ok {
			s[t] = v
		}
	}
	if len(s) == 0 {
		return nil, ErrNoMappedTerms
	}
	return s, nil
}

// ssdd computes the T-values of the semantic differentiation distance model:
// the root carries 1.0 and each term averages, over its parents, the parent
// T-value scaled by the ratio of inclusive descendant counts.
func (e *Engine) ssdd() map[int]float64 {
	root := e.dag.Root()
	tinfo := map[int]float64{root: 1.0}

	descCount := func(t int) float64 {
		return 1.0 + float64(len(e.dag.Descendants(t)))
	}

	levels, groups := e.byLevel()
	for i := len(levels) - 2; i >= 0; i-- {
		terms := groups[levels[i]]
		sort.Ints(terms)
		for _, j := range terms {
			parents := e.dag.Parents(j)
			w := descCount(j)
			ss := 0.0
			for _, pe := range parents {
				ss += w * tinfo[pe.To] / descCount(pe.To)
			}
			tinfo[j] = ss / float64(len(parents))
		}
	}
	return tinfo
}

// bottomUpCounts seeds every graph term with 1 and sweeps deepest-level
// first. With additive set, child counts add to the seed (seco family);
// otherwise they replace it for any term with children (zhang).
func (e *Engine) bottomUpCounts(additive bool) map[int]int {
	counts := make(map[int]int)
	for _, t := range e.graphTerms() {
		counts[t] = 1
	}
	levels, groups := e.byLevel()
	for _, lv := range levels {
		terms := groups[lv]
		sort.Ints(terms)
		for _, j := range terms {
			if e.dag.ChildCount(j) == 0 {
				continue
			}
			sum := 0
			for _, ce := range e.dag.Children(j) {
				sum += counts[ce.To]
			}
			if additive {
				counts[j] = 1 + sum
			} else {
				counts[j] = sum
			}
		}
	}
	return counts
}
