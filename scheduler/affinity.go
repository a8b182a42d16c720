package scheduler

import "sync"

// AffinityThreshold is the co-run score at or above which two operators are
// placed in the same affinity group, per section 4.6.
const AffinityThreshold = 0.7

// pairKey canonicalizes an unordered operator pair so (a,b) and (b,a) map
// to the same map entry.
type pairKey struct {
	a, b OperatorID
}

func makePairKey(a, b OperatorID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// AffinityGraph tracks how often operators run within a short window of
// each other (co-run frequency) and derives affinity groups from it.
type AffinityGraph struct {
	mu sync.Mutex

	runs  map[OperatorID]uint64
	corun map[pairKey]uint64
}

// NewAffinityGraph creates an empty affinity graph.
func NewAffinityGraph() *AffinityGraph {
	return &AffinityGraph{
		runs:  make(map[OperatorID]uint64),
		corun: make(map[pairKey]uint64),
	}
}

// RecordRun records one run of op, independent of any co-run observation.
func (g *AffinityGraph) RecordRun(op OperatorID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.runs[op]++
}

// RecordCoRun records that a and b ran within the same short window,
// incrementing both individual run counts and their shared co-run count.
func (g *AffinityGraph) RecordCoRun(a, b OperatorID) {
	if a == b {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.runs[a]++
	g.runs[b]++
	g.corun[makePairKey(a, b)]++
}

// Score returns the co-run score between a and b: the fraction of the
// less-frequently-run operator's executions that co-occurred with the
// other, in [0, 1].
func (g *AffinityGraph) Score(a, b OperatorID) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scoreLocked(a, b)
}

func (g *AffinityGraph) scoreLocked(a, b OperatorID) float64 {
	if a == b {
		return 1
	}

	co := g.corun[makePairKey(a, b)]
	if co == 0 {
		return 0
	}

	runsA, runsB := g.runs[a], g.runs[b]
	denom := runsA
	if runsB < denom {
		denom = runsB
	}
	if denom == 0 {
		return 0
	}

	score := float64(co) / float64(denom)
	if score > 1 {
		score = 1
	}
	return score
}

// Groups partitions every operator with at least one recorded run into
// connected components under the AffinityThreshold relation: a and b land
// in the same group if Score(a,b) >= AffinityThreshold, transitively.
// Singletons (no edge clears the threshold) are omitted.
func (g *AffinityGraph) Groups() [][]OperatorID {
	g.mu.Lock()
	defer g.mu.Unlock()

	parent := make(map[OperatorID]OperatorID, len(g.runs))
	for op := range g.runs {
		parent[op] = op
	}

	var find func(OperatorID) OperatorID
	find = func(x OperatorID) OperatorID {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(x, y OperatorID) {
		rx, ry := find(x), find(y)
		if rx != ry {
			parent[rx] = ry
		}
	}

	for pk := range g.corun {
		if g.scoreLocked(pk.a, pk.b) >= AffinityThreshold {
			union(pk.a, pk.b)
		}
	}

	members := make(map[OperatorID][]OperatorID)
	for op := range g.runs {
		root := find(op)
		members[root] = append(members[root], op)
	}

	var groups [][]OperatorID
	for _, ops := range members {
		if len(ops) > 1 {
			groups = append(groups, ops)
		}
	}
	return groups
}

// Reset discards all recorded run and co-run counts.
func (g *AffinityGraph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.runs = make(map[OperatorID]uint64)
	g.corun = make(map[pairKey]uint64)
}
