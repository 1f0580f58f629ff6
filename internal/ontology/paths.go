package ontology

// ShortestPaths returns, for every graph term, the unit-cost shortest
// distances to every term reachable from it along parent-to-child edges.
// The table is computed once, and only when a path-consuming model first
// asks for it, to avoid the O(V*E) cost when unused.
func (d *DAG) ShortestPaths() []map[int]int {
	d.pathsOnce.Do(d.buildPaths)
	return d.paths
}

// Dist returns the shortest downward distance from an ancestor to a
// descendant. The boolean is false when no downward path exists.
func (d *DAG) Dist(from, to int) (int, bool) {
	d.pathsOnce.Do(d.buildPaths)
	if d.paths[from] == nil {
		return 0, false
	}
	dist, ok := d.paths[from][to]
	return dist, ok
}

func (d *DAG) buildPaths() {
	d.paths = make([]map[int]int, len(d.ids))
	for t := range d.ids {
		if d.inGraph[t] {
			d.paths[t] = d.bfsDown(t)
		}
	}
}

// bfsDown computes unit-cost distances from src following child edges.
func (d *DAG) bfsDown(src int) map[int]int {
	dist := map[int]int{src: 0}
	queue := []int{src}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for _, e := range d.children[t] {
			if _, seen := dist[e.To]; !seen {
				dist[e.To] = dist[t] + 1
				queue = append(queue, e.To)
			}
		}
	}
	return dist
}

// SimplePaths returns every simple downward path between two terms as node
// index slices, endpoints included. When from == to the single trivial path
// [from] is returned. Used by the path-counting Wang edge model; nil means
// no path exists.
func (d *DAG) SimplePaths(from, to int) [][]int {
	var paths [][]int
	var dfs func(t int, acc []int)
	dfs = func(t int, acc []int) {
		acc = append(acc, t)
		if t == to {
			paths = append(paths, append([]int(nil), acc...))
			return
		}
		for _, e := range d.children[t] {
			dfs(e.To, acc)
		}
	}
	dfs(from, nil)
	return paths
}

// ShortestPathNodes returns every shortest downward path between two terms
// as node index slices, from included, to included. Returns nil when no
// path exists. Used by the SSDD and Shen distance models, which sum scores
// along path node sets.
func (d *DAG) ShortestPathNodes(from, to int) [][]int {
	d.pathsOnce.Do(d.buildPaths)
	fromDist := d.paths[from]
	if fromDist == nil {
		return nil
	}
	target, ok := fromDist[to]
	if !ok {
		return nil
	}

	// Walk forward along edges that stay on a shortest path: a child c of t
	// is on one iff dist(from,c) == dist(from,t)+1 and c still reaches to.
	var paths [][]int
	var dfs func(t int, acc []int)
	dfs = func(t int, acc []int) {
		acc = append(acc, t)
		if t == to {
			paths = append(paths, append([]int(nil), acc...))
			return
		}
		for _, e := range d.children[t] {
			dc, ok := fromDist[e.To]
			if !ok || dc != fromDist[t]+1 || dc > target {
				continue
			}
			if rem, ok := d.paths[e.To][to]; ok && dc+rem == target {
				dfs(e.To, acc)
			}
		}
	}
	dfs(from, make([]int, 0, target+1))
	return paths
}
