package termsim

import (
	"math"
)

// scores returns the scalar IC map for the configured approach.
func (e *Engine) scores(p Params) (map[int]float64, error) {
	return e.ic.Scores(p.approach(), p.IC)
}

// ancestorIC collects the IC values of the common ancestors.
func ancestorIC(ics map[int]float64, canc []int) []float64 {
	values := make([]float64, len(canc))
	for i, a := range canc {
		values[i] = ics[a]
	}
	return values
}

// resnik scores a pair by the corrected IC of the most informative common
// ancestor, normalized by the largest IC in the ontology.
func (e *Engine) resnik(pairs []Pair, p Params) (map[Pair]float64, error) {
	ics, err := e.scores(p)
	if err != nil {
		return nil, err
	}
	maxValue := 0.0
	for _, v := range ics {
		if v > maxValue {
			maxValue = v
		}
	}
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, true, p.GraphCorrection)
		if len(canc) == 0 {
			data[pr] = 0.0
			continue
		}
		icanc := ancestorIC(ics, canc)
		vic := correction(icanc, p.CF) * math.Abs(maxOf(icanc))
		if vic == 0 {
			data[pr] = 0.0
			continue
		}
		data[pr] = vic / maxValue
	}
	return data, nil
}

// lin normalizes the corrected MICA value by the average IC of the pair.
func (e *Engine) lin(pairs []Pair, p Params) (map[Pair]float64, error) {
	ics, err := e.scores(p)
	if err != nil {
		return nil, err
	}
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, true, p.GraphCorrection)
		if len(canc) == 0 {
			data[pr] = 0.0
			continue
		}
		icanc := ancestorIC(ics, canc)
		vic := correction(icanc, p.CF) * math.Abs(maxOf(icanc))
		if vic == 0 || ics[pr.P]+ics[pr.Q] == 0 {
			data[pr] = 0.0
			continue
		}
		data[pr] = 2 * vic / (ics[pr.P] + ics[pr.Q])
	}
	return data, nil
}

// nunivers normalizes the corrected MICA value by the larger pair IC.
func (e *Engine) nunivers(pairs []Pair, p Params) (map[Pair]float64, error) {
	ics, err := e.scores(p)
	if err != nil {
		return nil, err
	}
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, true, p.GraphCorrection)
		if len(canc) == 0 {
			data[pr] = 0.0
			continue
		}
		icanc := ancestorIC(ics, canc)
		vic := correction(icanc, p.CF) * math.Abs(maxOf(icanc))
		denom := math.Max(ics[pr.P], ics[pr.Q])
		if vic == 0 || denom == 0 {
			data[pr] = 0.0
			continue
		}
		data[pr] = vic / denom
	}
	return data, nil
}

// wang scores the overlap of the two terms' ancestor contribution maps:
// the contributions of shared ancestors summed on both sides over the total
// contribution mass of the pair. Always runs on the wang contribution
// approach regardless of the configured one.
func (e *Engine) wang(pairs []Pair, p Params) (map[Pair]float64, error) {
	contrib := e.ic.Contributions()
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, p.GraphCorrection)
		cic := 0.0
		if len(canc) > 0 {
			sums := make([]float64, len(canc))
			for i, a := range canc {
				for _, v := range contrib[a] {
					sums[i] += v
				}
			}
			cic = correction(sums, p.CF)
		}
		pc, qc := contrib[pr.P], contrib[pr.Q]
		shared, total := 0.0, 0.0
		for a, v := range pc {
			if qv, ok := qc[a]; ok {
				shared += v + qv
			}
			total += v
		}
		for _, v := range qc {
			total += v
		}
		data[pr] = cic * math.Abs(shared/total)
	}
	return data, nil
}

// jiang turns the semantic distance IC(p)+IC(q)-2*MICA into a similarity
// under one of six normalizations. The Leacock&Chodorow variant divides by
// ln of the ontology's largest IC with no epsilon guard; a degenerate
// single-level ontology with icmax == 1 divides by zero. That mirrors the
// documented behavior and is deliberately not patched here.
func (e *Engine) jiang(pairs []Pair, p Params) (map[Pair]float64, error) {
	ics, err := e.scores(p)
	if err != nil {
		return nil, err
	}
	icmax := 0.0
	for _, v := range ics {
		if v > icmax {
			icmax = v
		}
	}
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, true, p.GraphCorrection)
		vic, jcnn := 0.0, 1.0
		if len(canc) > 0 {
			icanc := ancestorIC(ics, canc)
			vic = correction(icanc, p.CF)
			jcnn = ics[pr.P] + ics[pr.Q] - 2*math.Abs(maxOf(icanc))
		}
		switch p.JiangNorm {
		case 0:
			if jcnn == 1.0 {
				data[pr] = 0.0
			} else {
				data[pr] = vic * (1.0 - jcnn/(2*icmax))
			}
		case 1:
			if jcnn == 1.0 {
				data[pr] = 0.0
			} else {
				data[pr] = vic * (1.0 - math.Min(1, jcnn/icmax))
			}
		case 2:
			data[pr] = vic * (1.0 - math.Log(jcnn+1)/math.Log(icmax))
		case 3:
			data[pr] = vic * (1.0 - math.Log(jcnn+1)/math.Log(icmax+1))
		case 4:
			data[pr] = vic / (1.0 + jcnn)
		default:
			data[pr] = vic * (1.0 - math.Log(jcnn+1)/math.Log(ics[pr.P]+ics[pr.Q]+1))
		}
	}
	return data, nil
}

// faith normalizes the corrected MICA value by the total pair IC minus the
// shared part. The informative-ancestor filter does not apply to this model:
// its ancestor values are fixed before any filtering.
func (e *Engine) faith(pairs []Pair, p Params) (map[Pair]float64, error) {
	ics, err := e.scores(p)
	if err != nil {
		return nil, err
	}
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, true, false)
		if len(canc) == 0 {
			data[pr] = 0.0
			continue
		}
		icanc := ancestorIC(ics, canc)
		mica := math.Abs(maxOf(icanc))
		vic := correction(icanc, p.CF) * mica
		denom := ics[pr.P] + ics[pr.Q] - mica
		if vic == 0 || denom == 0 {
			data[pr] = 0.0
			continue
		}
		data[pr] = vic / denom
	}
	return data, nil
}

// ps keeps the non-negative excess of three times the MICA value over the
// pair's total IC.
func (e *Engine) ps(pairs []Pair, p Params) (map[Pair]float64, error) {
	ics, err := e.scores(p)
	if err != nil {
		return nil, err
	}
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, true, p.GraphCorrection)
		if len(canc) == 0 {
			data[pr] = 0.0
			continue
		}
		icanc := ancestorIC(ics, canc)
		vic := correction(icanc, p.CF)
		if vic == 0 {
			data[pr] = 0.0
			continue
		}
		data[pr] = vic * math.Max(0, 3*math.Abs(maxOf(icanc))-ics[pr.P]-ics[pr.Q])
	}
	return data, nil
}

// logistic is the AIC knowledge transform; terms with zero IC contribute a
// full unit.
func logistic(icValue float64) float64 {
	if icValue == 0 {
		return 1.0
	}
	return 1.0 / (1.0 + math.Exp(-1.0/icValue))
}

// aic aggregates logistic-transformed IC over inclusive ancestor closures
// and scores a pair by the shared aggregate relative to the pair total.
func (e *Engine) aic(pairs []Pair, p Params) (map[Pair]float64, error) {
	ics, err := e.scores(p)
	if err != nil {
		return nil, err
	}
	aggregate := func(t int) float64 {
		sum := 0.0
		for a := range e.dag.Ancestors(t, true) {
			sum += logistic(ics[a])
		}
		return sum
	}
	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, true, p.GraphCorrection)
		vic := 0.0
		shared := 0.0
		if len(canc) > 0 {
			tanc := make([]float64, len(canc))
			for i, a := range canc {
				inner := 0.0
				for b := range e.dag.Ancestors(a, true) {
					inner += logistic(ics[b])
				}
				tanc[i] = inner
				shared += logistic(ics[a])
			}
			vic = correction(tanc, p.CF)
		}
		data[pr] = vic * 2.0 * shared / (aggregate(pr.P) + aggregate(pr.Q))
	}
	return data, nil
}

// shen transforms the inverse-IC distance along the shortest paths through
// the most informative common ancestor. Ties on the maximum IC break to the
// lowest term index so results stay deterministic.
func (e *Engine) shen(pairs []Pair, p Params) (map[Pair]float64, error) {
	ics, err := e.scores(p)
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
		mica, c := math.Inf(-1), -1
		for _, a := range canc {
			if ics[a] > mica {
				mica, c = ics[a], a
			}
		}
		dist, ok := e.minJointPathSum(c, pr.P, pr.Q, func(t int) float64 {
			if ics[t] > 0 {
				return 1.0 / ics[t]
			}
			return 0.0
		})
		if !ok {
			data[pr] = 0.0
			continue
		}
		data[pr] = 1.0 - math.Atan(dist)/(math.Pi/2)
	}
	return data, nil
}

// hrss combines the normalized MICA specificity with penalties for the
// distance of each term to the MICA and to its most specific leaves.
func (e *Engine) hrss(pairs []Pair, p Params) (map[Pair]float64, error) {
	raw, err := e.scores(p)
	if err != nil {
		return nil, err
	}
	maxValue := 0.0
	for _, v := range raw {
		if v > maxValue {
			maxValue = v
		}
	}
	ics := make(map[int]float64, len(raw))
	for t, v := range raw {
		ics[t] = v / maxValue
	}
	leaves := e.dag.Leaves()

	// A term with no descendant leaves is itself a leaf; its own score
	// stands in, zeroing that side of the bic penalty.
	leafMax := func(t int) float64 {
		best, found := 0.0, false
		for d := range e.dag.Descendants(t) {
			if leaves[d] && (!found || ics[d] > best) {
				best, found = ics[d], true
			}
		}
		if !found {
			return ics[t]
		}
		return best
	}

	data := make(map[Pair]float64, len(pairs))
	for _, pr := range pairs {
		if pr.P == pr.Q {
			data[pr] = 1.0
			continue
		}
		canc := e.commonAncestors(pr.P, pr.Q, false, false)
		mica := maxOf(ancestorIC(ics, canc))
		dic := math.Abs(ics[pr.P]-mica) + math.Abs(ics[pr.Q]-mica)
		bic := (math.Abs(leafMax(pr.P)-ics[pr.P]) + math.Abs(leafMax(pr.Q)-ics[pr.Q])) / 2
		if mica+bic == 0 {
			data[pr] = 0.0
			continue
		}
		data[pr] = (1 / (1 + dic)) * (mica / (mica + bic))
	}
	return data, nil
}

// minJointPathSum enumerates every shortest path from the ancestor c down
// to p and down to q, and returns the minimum over all pairings of the
// value summed across the union of the two node sets.
func (e *Engine) minJointPathSum(c, p, q int, value func(int) float64) (float64, bool) {
	pPaths := e.dag.ShortestPathNodes(c, p)
	qPaths := e.dag.ShortestPathNodes(c, q)
	if len(pPaths) == 0 || len(qPaths) == 0 {
		return 0, false
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
				sum += value(t)
			}
			if !found || sum < best {
				best, found = sum, true
			}
		}
	}
	return best, found
}
