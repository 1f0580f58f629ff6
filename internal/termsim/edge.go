package termsim

import (
	"math"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ic"
)

// pairDist returns the sum of the shortest distances from the common
// ancestor set down to each term, each side minimized independently.
func (e *Engine) pairDist(canc []int, p, q int) int {
	return e.minDistTo(canc, p) + e.minDistTo(canc, q)
}

// rada converts the pairwise shortest-path distance through the common
// ancestors into a similarity.
func (e *Engine) rada(pairs []Pair, _ Params) (map[Pair]float64, error) {
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		data[pr] = 1.0 / (1.0 + float64(e.pairDist(canc, pr.P, pr.Q)))
	}
	return data, nil
}

// resnikEdge rescales the pairwise distance against twice the ontology depth.
func (e *Engine) resnikEdge(pairs []Pair, _ Params) (map[Pair]float64, error) {
	deep := float64(e.dag.Depth())
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		data[pr] = 1.0 - float64(e.pairDist(canc, pr.P, pr.Q))/(2.0*deep)
	}
	return data, nil
}

// leacock applies the log-scaled variant of the distance rescaling.
func (e *Engine) leacock(pairs []Pair, _ Params) (map[Pair]float64, error) {
	deep := float64(e.dag.Depth())
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		spl := float64(e.pairDist(canc, pr.P, pr.Q))
		data[pr] = 1.0 - math.Log(spl)/math.Log(2.0*deep)
	}
	return data, nil
}

// minLevel returns the minimum (deepest) level among the given terms.
func (e *Engine) minLevel(terms []int) int {
	min, first := 0, true
	for _, t := range terms {
		if lv, ok := e.dag.Level(t); ok && (first || lv < min) {
			min, first = lv, false
		}
	}
	return min
}

// wuPalmer relates the deepest common ancestor level to the levels of the
// pair. Levels are non-positive, so two terms whose only shared ancestor is
// the root score zero regardless of their own depth.
func (e *Engine) wuPalmer(pairs []Pair, _ Params) (map[Pair]float64, error) {
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		if v, ok := data[Pair{P: pr.Q, Q: pr.P}]; ok {
			data[pr] = v
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		spl := float64(e.minLevel(canc))
		lp, _ := e.dag.Level(pr.P)
		lq, _ := e.dag.Level(pr.Q)
		data[pr] = 2 * spl / float64(lp+lq)
	}
	return data, nil
}

// pekar uses the deepest common ancestor level with a subtractive
// denominator.
func (e *Engine) pekar(pairs []Pair, _ Params) (map[Pair]float64, error) {
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		spl := float64(e.minLevel(canc))
		lp, _ := e.dag.Level(pr.P)
		lq, _ := e.dag.Level(pr.Q)
		data[pr] = spl / (float64(lp+lq) - spl)
	}
	return data, nil
}

// liEdge combines an exponential distance decay with a depth saturation.
func (e *Engine) liEdge(pairs []Pair, p Params) (map[Pair]float64, error) {
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		spl := float64(e.pairDist(canc, pr.P, pr.Q))
		deepc := float64(-e.minLevel(canc))
		data[pr] = math.Exp(-p.Alpha*spl) * math.Tanh(p.Beta*deepc)
	}
	return data, nil
}

// sharedParent reports whether the two terms have a direct parent in common.
func (e *Engine) sharedParent(p, q int) bool {
	pp := e.dag.ParentSet(p)
	for _, qe := range e.dag.Parents(q) {
		if pp[qe.To] {
			return true
		}
	}
	return false
}

// slimani weights the Wu&Palmer ratio with a penalty that distinguishes
// sibling pairs from ancestor-descendant pairs.
func (e *Engine) slimani(pairs []Pair, _ Params) (map[Pair]float64, error) {
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		dpl := float64(-e.minLevel(canc))
		lp, _ := e.dag.Level(pr.P)
		lq, _ := e.dag.Level(pr.Q)
		dp, dq := float64(-lp), float64(-lq)
		lda := 0.0
		if e.sharedParent(pr.P, pr.Q) {
			lda = 1.0
		}
		cf := (1-lda)/(math.Min(dp, dq)-dpl+1) + lda/(math.Abs(dp-dq)+1)
		data[pr] = 2 * cf * dpl / (dp + dq)
	}
	return data, nil
}

// shenoy weights the Wu&Palmer ratio with an exponential distance decay
// active only for sibling pairs.
func (e *Engine) shenoy(pairs []Pair, _ Params) (map[Pair]float64, error) {
	deep := float64(e.dag.Depth())
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		dpl := float64(-e.minLevel(canc))
		lp, _ := e.dag.Level(pr.P)
		lq, _ := e.dag.Level(pr.Q)
		dp, dq := float64(-lp), float64(-lq)
		lda := 0.0
		if e.sharedParent(pr.P, pr.Q) {
			lda = 1.0
		}
		spl := float64(e.pairDist(canc, pr.P, pr.Q))
		cf := math.Exp(-lda * spl / deep)
		data[pr] = 2 * cf * dpl / (dp + dq)
	}
	return data, nil
}

// meanPathLen averages the node counts of the given paths.
func meanPathLen(paths [][]int) float64 {
	sum := 0
	for _, pth := range paths {
		sum += len(pth)
	}
	return float64(sum) / float64(len(paths))
}

// pathsThrough keeps the paths that visit the given term.
func pathsThrough(paths [][]int, via int) [][]int {
	var kept [][]int
	for _, pth := range paths {
		for _, t := range pth {
			if t == via {
				kept = append(kept, pth)
				break
			}
		}
	}
	return kept
}

// wangEdge scores a pair from the average lengths of the simple root paths
// reaching each term through the deepest common ancestors.
func (e *Engine) wangEdge(pairs []Pair, _ Params) (map[Pair]float64, error) {
	root := e.dag.Root()
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		slca, _ := e.deepestCommonAncestors(canc)
		pPaths := e.dag.SimplePaths(root, pr.P)
		qPaths := e.dag.SimplePaths(root, pr.Q)
		ss := 0.0
		for _, c := range slca {
			numer := meanPathLen(e.dag.SimplePaths(root, c))
			deno1 := meanPathLen(pathsThrough(pPaths, c))
			deno2 := meanPathLen(pathsThrough(qPaths, c))
			ss += numer * numer / (deno1 * deno2)
		}
		data[pr] = ss / float64(len(slca))
	}
	return data, nil
}

// zhong scores a pair from exponentially decaying depth milestones.
func (e *Engine) zhong(pairs []Pair, p Params) (map[Pair]float64, error) {
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		dpl := float64(-e.minLevel(canc))
		lp, _ := e.dag.Level(pr.P)
		lq, _ := e.dag.Level(pr.Q)
		dp, dq := float64(-lp), float64(-lq)
		k := p.ZhongK
		data[pr] = 1.0 - (1.0/math.Pow(k, dpl) - 0.5/math.Pow(k, dp) - 0.5/math.Pow(k, dq))
	}
	return data, nil
}

// alMubaid combines path length and common ancestor depth into a log-scaled
// distance, normalized the Rada way.
func (e *Engine) alMubaid(pairs []Pair, p Params) (map[Pair]float64, error) {
	deep := float64(e.dag.Depth())
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		dpl := float64(-e.minLevel(canc))
		spl := float64(e.pairDist(canc, pr.P, pr.Q))
		ds := math.Log(p.AlMubaidK + math.Pow(spl-1, p.AlMubaidAlpha)*math.Pow(deep-dpl, p.AlMubaidBeta))
		data[pr] = 1.0 / (1.0 + ds)
	}
	return data, nil
}

// leafDist returns the shortest distance from a term down to one of its
// descendant leaves; terms without descendant leaves get the documented
// 0.01 floor.
func (e *Engine) leafDist(t int) float64 {
	leaves := e.dag.Leaves()
	best, found := 0, false
	for d := range e.dag.Descendants(t) {
		if !leaves[d] {
			continue
		}
		if dist, ok := e.dag.Dist(t, d); ok && (!found || dist < best) {
			best, found = dist, true
		}
	}
	if !found {
		return 0.01
	}
	return float64(best)
}

// rss balances the depth of the deepest common ancestor against the pair
// distance and the remaining distance to the leaf layer.
func (e *Engine) rss(pairs []Pair, _ Params) (map[Pair]float64, error) {
	deep := float64(e.dag.Depth())
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		dpl := float64(-e.minLevel(canc))
		spl := float64(e.pairDist(canc, pr.P, pr.Q))
		b := math.Min(e.leafDist(pr.P), e.leafDist(pr.Q))
		data[pr] = (deep / (deep + spl)) * (dpl / (dpl + b))
	}
	return data, nil
}

// ssdd transforms the minimum topological T-value sum over the shortest
// paths joining the pair through its deepest common ancestors. Paths from
// different ancestors compete in the same pool.
func (e *Engine) ssdd(pairs []Pair, p Params) (map[Pair]float64, error) {
	tinfo, err := e.ic.Scores(ic.SSDD, p.IC)
	if err != nil {
		return nil, err
	}
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		slca, _ := e.deepestCommonAncestors(canc)
		var pPaths, qPaths [][]int
		for _, c := range slca {
			pPaths = append(pPaths, e.dag.ShortestPathNodes(c, pr.P)...)
			qPaths = append(qPaths, e.dag.ShortestPathNodes(c, pr.Q)...)
		}
		best, found := 0.0, false
		for _, pp := range pPaths {
			for _, qq := range qPaths {
				nodes := make(map[int]bool, len(pp)+len(qq))
				for _, t := range pp {
					nodes[t] = true
				}
				for _, t := range qq {
					nodes[t] = true
				}
				sum := 0.0
				for t := range nodes {
					sum += tinfo[t]
				}
				if !found || sum < best {
					best, found = sum, true
				}
			}
		}
		if !found {
			data[pr] = 0.0
			continue
		}
		data[pr] = 1.0 - math.Atan(best)/(math.Pi/2)
	}
	return data, nil
}
