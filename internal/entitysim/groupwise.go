package entitysim

import "math"

// groupwiseScore compares the ancestor-closed annotation sets of the two
// entities, IC-weighted for the simgic family, set-cardinality based for the
// rest.
func (e *Engine) groupwiseScore(m Measure, pr Pair, a, b map[int]bool, p Params) (float64, error) {
	if pr.E1 == pr.E2 {
		return 1.0, nil
	}
	pt := e.closure(a)
	qt := e.closure(b)
	if len(pt) == 0 || len(qt) == 0 {
		return 0.0, nil
	}

	var ics map[int]float64
	if groupIC[m.Family] {
		var err error
		ics, err = e.ts.IC().Scores(m.Approach, p.Concept.IC)
		if err != nil {
			return 0, err
		}
	}
	sumOver := func(set map[int]bool) float64 {
		sum := 0.0
		for t := range set {
			sum += ics[t]
		}
		return sum
	}
	var inter, union []int
	for t := range pt {
		if qt[t] {
			inter = append(inter, t)
		}
		union = append(union, t)
	}
	for t := range qt {
		if !pt[t] {
			union = append(union, t)
		}
	}
	interSet := make(map[int]bool, len(inter))
	for _, t := range inter {
		interSet[t] = true
	}

	switch m.Family {
	case SimGIC:
		denom := 0.0
		for _, t := range union {
			denom += ics[t]
		}
		if denom == 0 {
			return 0.0, nil
		}
		return round5(sumOver(interSet) / denom), nil
	case SimDIC:
		denom := sumOver(pt) + sumOver(qt)
		if denom == 0 {
			return 0.0, nil
		}
		return round5(2.0 * sumOver(interSet) / denom), nil
	case SimUIC:
		denom := math.Max(sumOver(pt), sumOver(qt))
		if denom == 0 {
			return 0.0, nil
		}
		return round5(sumOver(interSet) / denom), nil
	case SimCOU, SimCOT:
		dot, pp, qq := 0.0, 0.0, 0.0
		for _, t := range union {
			var x, y float64
			if pt[t] {
				x = ics[t]
			}
			if qt[t] {
				y = ics[t]
			}
			dot += x * y
			pp += x * x
			qq += y * y
		}
		if m.Family == SimCOU {
			denom := math.Sqrt(pp) * math.Sqrt(qq)
			if denom == 0 {
				return 0.0, nil
			}
			return round5(dot / denom), nil
		}
		denom := pp + qq - dot
		if denom == 0 {
			return 0.0, nil
		}
		return round5(dot / denom), nil
	case SimUI:
		return round5(float64(len(inter)) / float64(len(union))), nil
	case SimUB:
		return round5(float64(len(inter)) / math.Max(float64(len(pt)), float64(len(qt)))), nil
	case SimDB:
		return round5(2.0 * float64(len(inter)) / float64(len(pt)+len(qt))), nil
	case SimNTO:
		return round5(float64(len(inter)) / math.Min(float64(len(pt)), float64(len(qt)))), nil
	case SimCUB:
		// Binary cosine over the union reduces to |inter|/sqrt(|pt|*|qt|).
		return round5(float64(len(inter)) / (math.Sqrt(float64(len(pt))) * math.Sqrt(float64(len(qt))))), nil
	default: // SimCTB
		// Binary Tanimoto over the union: |inter|/(|pt|+|qt|-|inter|).
		return round5(float64(len(inter)) / float64(len(pt)+len(qt)-len(inter))), nil
	}
}
