package ontology

// Levels returns the level of every term reachable from the root: 0 for the
// root and, for every other term, the negated length of the longest path
// from the root. The sign convention matters: similarity formulas use
// -level as a positive depth and compare levels directly, deeper terms
// having the more negative value.
//
// The index is computed once on first use. Relaxing edges in topological
// order over unit costs negated to -1 is Bellman-Ford shortest path on the
// negated DAG, which is the longest path in the original weights.
func (d *DAG) Levels() []int {
	d.levelsOnce.Do(d.buildLevels)
	return d.levels
}

// Level returns the level of a term and whether the term is reachable from
// the root.
func (d *DAG) Level(t int) (int, bool) {
	d.levelsOnce.Do(d.buildLevels)
	return d.levels[t], d.hasLevel[t]
}

// Depth returns the magnitude of the deepest level in the DAG.
func (d *DAG) Depth() int {
	d.levelsOnce.Do(d.buildLevels)
	return d.depth
}

func (d *DAG) buildLevels() {
	n := len(d.ids)
	d.levels = make([]int, n)
	d.hasLevel = make([]bool, n)
	d.hasLevel[d.root] = true

	for _, t := range d.topoOrder() {
		if !d.hasLevel[t] {
			continue
		}
		for _, e := range d.children[t] {
			lv := d.levels[t] - 1
			if !d.hasLevel[e.To] || lv < d.levels[e.To] {
				d.levels[e.To] = lv
				d.hasLevel[e.To] = true
			}
		}
	}
	for t := range d.levels {
		if d.hasLevel[t] && -d.levels[t] > d.depth {
			d.depth = -d.levels[t]
		}
	}
}

// topoOrder returns the graph terms parent-before-child (Kahn's algorithm).
func (d *DAG) topoOrder() []int {
	n := len(d.ids)
	indeg := make([]int, n)
	for t := 0; t < n; t++ {
		if !d.inGraph[t] {
			continue
		}
		for _, e := range d.children[t] {
			indeg[e.To]++
		}
	}
	order := make([]int, 0, n)
	queue := make([]int, 0, n)
	for t := 0; t < n; t++ {
		if d.inGraph[t] && indeg[t] == 0 {
			queue = append(queue, t)
		}
	}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		order = append(order, t)
		for _, e := range d.children[t] {
			indeg[e.To]--
			if indeg[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}
	return order
}
