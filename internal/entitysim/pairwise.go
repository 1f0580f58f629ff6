package entitysim

import (
	"math"

	"github.com/gaston-software-dev/post-analysis-tools/internal/termsim"
)

// crossPairs builds the deduplicated term pair list between two annotation
// sets, treating (s,t) and (t,s) as one pair.
func crossPairs(a, b map[int]bool) []termsim.Pair {
	var pairs []termsim.Pair
	seen := make(map[termsim.Pair]bool)
	for s := range a {
		for t := range b {
			k := termsim.Pair{P: s, Q: t}
			if seen[k] || seen[termsim.Pair{P: t, Q: s}] {
				continue
			}
			seen[k] = true
			pairs = append(pairs, k)
		}
	}
	return pairs
}

// symmetrize mirrors a score map so both orientations of every pair resolve.
func symmetrize(scores map[termsim.Pair]float64) map[termsim.Pair]float64 {
	au := make(map[termsim.Pair]float64, 2*len(scores))
	for k, v := range scores {
		au[k] = v
		au[termsim.Pair{P: k.Q, Q: k.P}] = v
	}
	return au
}

// bestRow returns, for a fixed term, the best score against every term of
// the other entity.
func bestRow(au map[termsim.Pair]float64, s int, other map[int]bool) float64 {
	best, first := 0.0, true
	for t := range other {
		if v := au[termsim.Pair{P: s, Q: t}]; first || v > best {
			best, first = v, false
		}
	}
	return best
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// bestMatchScore combines the concept scores of every cross-annotation term
// pair into one entity score. An entity with an empty working set scores
// zero against everything but itself.
func (e *Engine) bestMatchScore(m Measure, pr Pair, a, b map[int]bool, p Params) (float64, error) {
	if pr.E1 == pr.E2 {
		return 1.0, nil
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0, nil
	}
	scored, err := e.ts.Similarity(m.Model, crossPairs(a, b), e.conceptParams(m, p))
	if err != nil {
		return 0, err
	}
	au := symmetrize(scored)

	rows := func(from, against map[int]bool) []float64 {
		out := make([]float64, 0, len(from))
		for s := range from {
			out = append(out, bestRow(au, s, against))
		}
		return out
	}

	switch m.Family {
	case Avg:
		values := make([]float64, 0, len(au))
		for _, v := range au {
			values = append(values, v)
		}
		return round5(mean(values)), nil
	case BMA:
		return round5((mean(rows(a, b)) + mean(rows(b, a))) / 2), nil
	case ABM:
		aut := append(rows(a, b), rows(b, a)...)
		return round5(mean(aut)), nil
	case BMM:
		return round5(math.Max(mean(rows(a, b)), mean(rows(b, a)))), nil
	case HDF:
		ss := 1.0 - math.Max(1.0-minOf(rows(a, b)), 1.0-minOf(rows(b, a)))
		return round5(ss), nil
	case VHDF:
		sq := func(vals []float64) float64 {
			out := make([]float64, len(vals))
			for i, v := range vals {
				out[i] = (1 - v) * (1 - v)
			}
			return math.Sqrt(mean(out))
		}
		ss := 1.0 - (sq(rows(a, b))+sq(rows(b, a)))/2
		return round5(ss), nil
	default: // Max
		best, first := 0.0, true
		for _, v := range au {
			if first || v > best {
				best, first = v, false
			}
		}
		return round5(best), nil
	}
}

// commonAnc returns the intersection of the inclusive ancestor closures of
// two terms.
func (e *Engine) commonAnc(s, t int) []int {
	sa := e.dag.Ancestors(s, true)
	ta := e.dag.Ancestors(t, true)
	var canc []int
	for x := range sa {
		if ta[x] {
			canc = append(canc, x)
		}
	}
	return canc
}

// deepest returns the common ancestors tied at the deepest level.
func (e *Engine) deepest(canc []int) []int {
	min, first := 0, true
	for _, x := range canc {
		if lv, ok := e.dag.Level(x); ok && (first || lv < min) {
			min, first = lv, false
		}
	}
	var slca []int
	for _, x := range canc {
		if lv, _ := e.dag.Level(x); lv == min {
			slca = append(slca, x)
		}
	}
	return slca
}

// edgeEntityScore runs the entity measures that read the topology directly
// instead of combining a concept model.
func (e *Engine) edgeEntityScore(f Family, pr Pair, a, b map[int]bool, p Params) (float64, error) {
	deep := float64(e.dag.Depth())

	switch f {
	case ALN:
		if pr.E1 == pr.E2 {
			return 1.0, nil
		}
		if len(a) == 0 || len(b) == 0 {
			return 0.0, nil
		}
		au := make(map[termsim.Pair]float64)
		for _, k := range crossPairs(a, b) {
			slca := e.deepest(e.commonAnc(k.P, k.Q))
			vdist, first := 0, true
			for _, c := range slca {
				dp, _ := e.dag.Dist(c, k.P)
				dq, _ := e.dag.Dist(c, k.Q)
				if first || dp+dq < vdist {
					vdist, first = dp+dq, false
				}
			}
			au[k] = float64(vdist)
			au[termsim.Pair{P: k.Q, Q: k.P}] = float64(vdist)
		}
		sum := 0.0
		for _, v := range au {
			sum += v
		}
		return math.Exp(-p.AlnAlpha * sum / float64(len(au))), nil

	case SPGK:
		if pr.E1 == pr.E2 {
			return 2 * deep * (deep + 1), nil
		}
		if len(a) == 0 || len(b) == 0 {
			return 0.0, nil
		}
		ss := 0.0
		for _, k := range crossPairs(a, b) {
			for _, c := range e.deepest(e.commonAnc(k.P, k.Q)) {
				lv, _ := e.dag.Level(c)
				d := float64(-lv)
				ss += d * (d + 1)
			}
		}
		return ss, nil

	case Intel:
		if pr.E1 == pr.E2 {
			return 1.0, nil
		}
		if len(a) == 0 || len(b) == 0 {
			return 0.0, nil
		}
		cross, err := e.ts.Similarity(termsim.WuPalmer, crossPairs(a, b), p.Concept)
		if err != nil {
			return 0, err
		}
		ss := 0.0
		for _, v := range cross {
			ss += v
		}
		self := func(terms map[int]bool) (float64, error) {
			var pairs []termsim.Pair
			for s := range terms {
				for t := range terms {
					pairs = append(pairs, termsim.Pair{P: s, Q: t})
				}
			}
			scored, err := e.ts.Similarity(termsim.WuPalmer, pairs, p.Concept)
			if err != nil {
				return 0, err
			}
			sum := 0.0
			for _, v := range scored {
				sum += v
			}
			return sum, nil
		}
		ss1, err := self(a)
		if err != nil {
			return 0, err
		}
		ss2, err := self(b)
		if err != nil {
			return 0, err
		}
		return ss / (math.Sqrt(ss1) * math.Sqrt(ss2)), nil

	case LP:
		// No identity shortcut: an entity against itself still scores the
		// depth of its deepest shared ancestor.
		inter := e.closureIntersection(a, b)
		if len(inter) == 0 {
			return 0.0, nil
		}
		best := 0
		for _, x := range inter {
			if lv, _ := e.dag.Level(x); -lv > best {
				best = -lv
			}
		}
		return float64(best), nil

	default: // Ye
		if pr.E1 == pr.E2 {
			return 1.0, nil
		}
		inter := e.closureIntersection(a, b)
		if len(inter) == 0 {
			return 0.0, nil
		}
		dmin, dmax := math.MaxInt, 0
		for _, x := range inter {
			lv, _ := e.dag.Level(x)
			if -lv < dmin {
				dmin = -lv
			}
			if -lv > dmax {
				dmax = -lv
			}
		}
		if dmin == dmax {
			return 0.0, nil
		}
		best, first := 0.0, true
		for _, x := range inter {
			lv, _ := e.dag.Level(x)
			v := float64(-lv-dmin) / float64(dmax-dmin)
			if first || v < best {
				best, first = v, false
			}
		}
		return best, nil
	}
}

// closureIntersection intersects the ancestor closures of two working sets.
func (e *Engine) closureIntersection(a, b map[int]bool) []int {
	pt := e.closure(a)
	qt := e.closure(b)
	var inter []int
	for x := range pt {
		if qt[x] {
			inter = append(inter, x)
		}
	}
	return inter
}
