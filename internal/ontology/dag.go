package ontology

import (
	"fmt"
	"sync"
)

// Edge is a weighted link to another term index.
type Edge struct {
	To     int
	Weight float64
}

// DAG is the immutable term graph. Terms are addressed by dense integer
// indices that are stable for the lifetime of one DAG instance. Derived
// indices (levels, shortest paths, leaves) are built lazily on first use and
// cached; sync.Once keeps each build single-writer under concurrent readers.
type DAG struct {
	ids      []string
	index    map[string]int
	altID    map[string]int
	parents  [][]Edge // child -> parents
	children [][]Edge // parent -> children
	inGraph  []bool   // incident to at least one edge, or the root
	root     int

	levelsOnce sync.Once
	levels     []int
	hasLevel   []bool
	depth      int

	pathsOnce sync.Once
	paths     []map[int]int // downward unit-cost distances per source

	leavesOnce sync.Once
	leaves     map[int]bool
}

// Build constructs the DAG from term records, keeping only records in the
// given namespace when one is provided. Exactly one non-obsolete term without
// an is_a/part_of parent must survive filtering; it becomes the root.
func Build(terms []TermRecord, namespace string, w Weights) (*DAG, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	weights := w.table()

	var kept []TermRecord
	for _, t := range terms {
		if namespace != "" && t.Namespace != namespace {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return nil, ErrNoTerms
	}

	d := &DAG{
		ids:      make([]string, len(kept)),
		index:    make(map[string]int, len(kept)),
		altID:    make(map[string]int),
		parents:  make([][]Edge, len(kept)),
		children: make([][]Edge, len(kept)),
		inGraph:  make([]bool, len(kept)),
		root:     -1,
	}
	for i, t := range kept {
		d.ids[i] = t.ID
		d.index[t.ID] = i
	}
	for i, t := range kept {
		for _, alt := range t.AltIDs {
			d.altID[alt] = i
		}
	}

	rootCandidates := 0
	for i, t := range kept {
		linked := false
		for _, ref := range t.Parents {
			if ref.Relation != RelationIsA && ref.Relation != RelationPartOf {
				continue
			}
			weight, ok := weights[ref.Relation]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownRelation, ref.Relation)
			}
			p, ok := d.index[ref.ParentID]
			if !ok {
				// Parent filtered out (other namespace); the link is void.
				continue
			}
			upsertEdge(&d.parents[i], p, weight)
			upsertEdge(&d.children[p], i, weight)
			d.inGraph[i] = true
			d.inGraph[p] = true
			linked = true
		}
		if !linked && !t.Obsolete {
			rootCandidates++
			d.root = i
		}
	}
	switch {
	case rootCandidates == 0:
		return nil, ErrNoRoot
	case rootCandidates > 1:
		return nil, fmt.Errorf("%w: %d candidates", ErrMultipleRoots, rootCandidates)
	}
	d.inGraph[d.root] = true
	return d, nil
}

// upsertEdge appends an edge, or overwrites its weight when a term lists
// the same parent under both relation kinds.
func upsertEdge(edges *[]Edge, to int, weight float64) {
	for i := range *edges {
		if (*edges)[i].To == to {
			(*edges)[i].Weight = weight
			return
		}
	}
	*edges = append(*edges, Edge{To: to, Weight: weight})
}

// Len returns the number of indexed terms, including obsolete ones.
func (d *DAG) Len() int { return len(d.ids) }

// Root returns the root term index.
func (d *DAG) Root() int { return d.root }

// TermID returns the external identifier of a term index.
func (d *DAG) TermID(t int) string { return d.ids[t] }

// Index resolves an external identifier, trying alternate identifiers first,
// to the index of a term present in the graph. The boolean is false for
// obsolete, unknown or disconnected identifiers.
func (d *DAG) Index(id string) (int, bool) {
	if t, ok := d.altID[id]; ok && d.inGraph[t] {
		return t, true
	}
	if t, ok := d.index[id]; ok && d.inGraph[t] {
		return t, true
	}
	return 0, false
}

// Resolve maps external identifiers onto graph term indices, separating the
// identifiers that are obsolete, unknown or disconnected. Duplicates resolve
// to one index.
func (d *DAG) Resolve(ids []string) ([]int, []string) {
	var found []int
	var missing []string
	seen := make(map[int]bool)
	for _, id := range ids {
		t, ok := d.Index(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		if !seen[t] {
			seen[t] = true
			found = append(found, t)
		}
	}
	return found, missing
}

// InGraph reports whether a term index participates in the DAG.
func (d *DAG) InGraph(t int) bool { return d.inGraph[t] }

// Parents returns the parent edges of a term.
func (d *DAG) Parents(t int) []Edge { return d.parents[t] }

// Children returns the child edges of a term.
func (d *DAG) Children(t int) []Edge { return d.children[t] }

// ChildCount returns the number of direct children of a term.
func (d *DAG) ChildCount(t int) int { return len(d.children[t]) }

// ParentSet returns the direct parent indices of a term as a set.
func (d *DAG) ParentSet(t int) map[int]bool {
	set := make(map[int]bool, len(d.parents[t]))
	for _, e := range d.parents[t] {
		set[e.To] = true
	}
	return set
}

// Ancestors returns the transitive parent closure of a term, including the
// term itself when includeSelf is set.
func (d *DAG) Ancestors(t int, includeSelf bool) map[int]bool {
	set := make(map[int]bool)
	if includeSelf {
		set[t] = true
	}
	d.walk(t, d.parents, set, includeSelf)
	return set
}

// Descendants returns the transitive child closure of a term, excluding the
// term itself.
func (d *DAG) Descendants(t int) map[int]bool {
	set := make(map[int]bool)
	d.walk(t, d.children, set, false)
	return set
}

func (d *DAG) walk(t int, adj [][]Edge, set map[int]bool, selfIncluded bool) {
	stack := make([]int, 0, len(adj[t]))
	for _, e := range adj[t] {
		stack = append(stack, e.To)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if set[n] {
			continue
		}
		if n == t && !selfIncluded {
			continue
		}
		set[n] = true
		for _, e := range adj[n] {
			if !set[e.To] {
				stack = append(stack, e.To)
			}
		}
	}
}

// Leaves returns the set of terms with no children, computed once.
func (d *DAG) Leaves() map[int]bool {
	d.leavesOnce.Do(func() {
		d.leaves = make(map[int]bool)
		for t := range d.ids {
			if d.inGraph[t] && len(d.children[t]) == 0 {
				d.leaves[t] = true
			}
		}
	})
	return d.leaves
}

// EdgeCount returns the number of edges in the DAG.
func (d *DAG) EdgeCount() int {
	n := 0
	for _, es := range d.children {
		n += len(es)
	}
	return n
}

// NodeCount returns the number of terms participating in the graph.
func (d *DAG) NodeCount() int {
	n := 0
	for t := range d.ids {
		if d.inGraph[t] {
			n++
		}
	}
	return n
}
