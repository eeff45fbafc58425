package architecture

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is the local dependency graph keyed by module stem. Vertices keep
// their first-seen order; only modules with at least one local dependency
// have an adjacency entry.
type Graph struct {
	order []string
	adj   map[string][]string
}

// BuildGraph links each module to the imports that name another module in
// the same run. Neighbor lists are sorted.
func BuildGraph(modules []Module) *Graph {
	local := make(map[string]bool, len(modules))
	for _, m := range modules {
		local[m.Key] = true
	}

	g := &Graph{adj: make(map[string][]string)}
	for _, m := range modules {
		var deps []string
		for _, imported := range m.Imports {
			if local[imported] && imported != m.Key {
				deps = append(deps, imported)
			}
		}
		if len(deps) == 0 {
			continue
		}
		slices.Sort(deps)
		g.order = append(g.order, m.Key)
		g.adj[m.Key] = deps
	}
	return g
}

// Empty reports whether no module depends on another.
func (g *Graph) Empty() bool {
	return len(g.order) == 0
}

// Dependencies returns the adjacency list sorted by module.
func (g *Graph) Dependencies() []Dependency {
	deps := make([]Dependency, 0, len(g.order))
	for _, key := range g.order {
		deps = append(deps, Dependency{Module: key, DependsOn: g.adj[key]})
	}
	slices.SortFunc(deps, func(a, b Dependency) int {
		switch {
		case a.Module < b.Module:
			return -1
		case a.Module > b.Module:
			return 1
		}
		return 0
	})
	return deps
}

// FindCycles runs a depth-first search from every unvisited vertex and
// reports each back edge as the path from the revisited vertex to the
// current one, closed by repeating the revisited vertex. The same loop may
// be reported more than once; see DistinctCycles.
func (g *Graph) FindCycles() [][]string {
	var (
		cycles  [][]string
		path    []string
		visited = make(map[string]bool)
		onStack = make(map[string]bool)
		dfs     func(node string)
	)

	dfs = func(node string) {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, next := range g.adj[node] {
			if !visited[next] {
				dfs(next)
			} else if onStack[next] {
				start := slices.Index(path, next)
				cycle := append(slices.Clone(path[start:]), next)
				cycles = append(cycles, cycle)
			}
		}

		path = path[:len(path)-1]
		onStack[node] = false
	}

	for _, node := range g.order {
		if !visited[node] {
			dfs(node)
		}
	}
	return cycles
}

// DistinctCycles drops cycles whose vertex set, without the closing repeat,
// was already seen, and cycles with fewer than two distinct vertices.
func DistinctCycles(cycles [][]string) [][]string {
	var distinct [][]string
	var seen []map[string]bool
	for _, cycle := range cycles {
		set := make(map[string]bool, len(cycle))
		for _, v := range cycle[:len(cycle)-1] {
			set[v] = true
		}
		if len(set) < 2 || slices.ContainsFunc(seen, func(s map[string]bool) bool { return sameSet(s, set) }) {
			continue
		}
		seen = append(seen, set)
		distinct = append(distinct, cycle)
	}
	return distinct
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// gonumGraph is the graph in gonum form with the ID mapping back to keys.
type gonumGraph struct {
	directed *simple.DirectedGraph
	keys     []string
}

func (g *Graph) toGonum() *gonumGraph {
	gg := &gonumGraph{directed: simple.NewDirectedGraph()}
	ids := make(map[string]int64)
	node := func(key string) int64 {
		if id, ok := ids[key]; ok {
			return id
		}
		id := int64(len(gg.keys))
		ids[key] = id
		gg.keys = append(gg.keys, key)
		gg.directed.AddNode(simple.Node(id))
		return id
	}

	for _, from := range g.order {
		fromID := node(from)
		for _, to := range g.adj[from] {
			gg.directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(node(to))})
		}
	}
	return gg
}

// StronglyConnected returns every strongly connected component with more
// than one module, each sorted, ordered by their first member.
func (g *Graph) StronglyConnected() [][]string {
	gg := g.toGonum()
	var components [][]string
	for _, scc := range topo.TarjanSCC(gg.directed) {
		if len(scc) < 2 {
			continue
		}
		members := make([]string, 0, len(scc))
		for _, n := range scc {
			members = append(members, gg.keys[n.ID()])
		}
		slices.Sort(members)
		components = append(components, members)
	}
	slices.SortFunc(components, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return components
}

// Centrality ranks the modules in the graph by PageRank, highest first, so
// heavily depended-upon modules surface in structured output.
func (g *Graph) Centrality() []Rank {
	if g.Empty() {
		return nil
	}
	gg := g.toGonum()
	scores := network.PageRank(gg.directed, 0.85, 1e-6)

	ranks := make([]Rank, 0, len(scores))
	for id, score := range scores {
		// Rounded so summation-order noise cannot reorder equal ranks.
		ranks = append(ranks, Rank{Module: gg.keys[id], PageRank: math.Round(score*1e6) / 1e6})
	}
	slices.SortFunc(ranks, func(a, b Rank) int {
		switch {
		case a.PageRank > b.PageRank:
			return -1
		case a.PageRank < b.PageRank:
			return 1
		case a.Module < b.Module:
			return -1
		case a.Module > b.Module:
			return 1
		}
		return 0
	})
	return ranks
}
