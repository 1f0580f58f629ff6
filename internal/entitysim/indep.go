package entitysim

import "math"

// indepScore compares the raw working annotation sets without touching the
// ontology structure. The cho and ald measures additionally weight shared
// terms by how common they are across the whole annotated corpus.
func indepScore(f Family, pr Pair, a, b map[int]bool, entities map[string]entity, corpus map[int]int) float64 {
	if pr.E1 == pr.E2 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	var inter []int
	for t := range a {
		if b[t] {
			inter = append(inter, t)
		}
	}

	switch f {
	case Cho:
		if len(inter) == 0 {
			return 0.0
		}
		cpq, first := 0, true
		for _, t := range inter {
			if c := corpus[t]; first || c < cpq {
				cpq, first = c, false
			}
		}
		cmin, cmax := 0, 0
		first = true
		for _, c := range corpus {
			if first {
				cmin, cmax, first = c, c, false
				continue
			}
			if c < cmin {
				cmin = c
			}
			if c > cmax {
				cmax = c
			}
		}
		if cmin == cmax {
			// Uniform corpus: the log ratio degenerates, the rarest shared
			// term carries no signal.
			return 0.0
		}
		return math.Log(float64(cpq)/float64(cmax)) / math.Log(float64(cmin)/float64(cmax))
	case ALD:
		if len(inter) == 0 {
			return 0.0
		}
		total := 0
		for _, c := range corpus {
			total += c
		}
		best := 0.0
		for _, t := range inter {
			if v := 1.0 - float64(corpus[t])/float64(total); v > best {
				best = v
			}
		}
		return best
	case KStats:
		n := len(a)
		for t := range b {
			if !a[t] {
				n++
			}
		}
		fn := float64(n)
		rho := float64(len(inter)) / fn
		na, nb := float64(len(a)), float64(len(b))
		alpha := ((fn-na)*(fn-nb) + na*nb) / (fn * fn)
		if alpha == 1 {
			// Both sets cover the whole union, i.e. they are identical.
			return 1.0
		}
		return (rho - alpha) / (1 - alpha)
	case NTO:
		return float64(len(inter)) / math.Min(float64(len(a)), float64(len(b)))
	case UB:
		return float64(len(inter)) / math.Max(float64(len(a)), float64(len(b)))
	case DB:
		return 2.0 * float64(len(inter)) / float64(len(a)+len(b))
	default: // UI
		union := len(a)
		for t := range b {
			if !a[t] {
				union++
			}
		}
		return float64(len(inter)) / float64(union)
	}
}
