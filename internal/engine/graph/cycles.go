// # internal/engine/graph/cycles.go
package graph

import (
	"sort"
	"strings"
)

// CycleInfo holds one strongly connected component of size > 1, or a
// single node with a self-loop.
type CycleInfo struct {
	Packages []string
}

// CyclePath renders the component as "a -> b -> c -> a". The order is
// component membership order, not a verified edge walk; for components
// denser than a simple ring the rendered chain may not follow real
// edges. Report consumers depend on this exact rendering.
func (c CycleInfo) CyclePath() string {
	if len(c.Packages) == 0 {
		return ""
	}
	return strings.Join(c.Packages, " -> ") + " -> " + c.Packages[0]
}

func (g *Graph) HasCycles() bool {
	return len(g.DetectCycles()) > 0
}

// DetectCycles computes strongly connected components via Tarjan's
// algorithm. Components of size > 1 are cycles; a size-1 component is
// reported only when it carries a self-loop edge.
func (g *Graph) DetectCycles() [][]string {
	components := g.stronglyConnectedComponents()

	var cycles [][]string
	for _, component := range components {
		if len(component) > 1 {
			cycles = append(cycles, component)
			continue
		}
		if g.hasSelfLoop(component[0]) {
			cycles = append(cycles, component)
		}
	}
	return cycles
}

func (g *Graph) NodesInCycles() []string {
	seen := make(map[string]bool)
	for _, cycle := range g.DetectCycles() {
		for _, name := range cycle {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Graph) CycleDetails() []CycleInfo {
	cycles := g.DetectCycles()
	details := make([]CycleInfo, 0, len(cycles))
	for _, cycle := range cycles {
		details = append(details, CycleInfo{Packages: cycle})
	}
	return details
}

func (g *Graph) hasSelfLoop(name string) bool {
	i, ok := g.index[name]
	if !ok {
		return false
	}
	for _, edgeID := range g.outgoing[i] {
		if g.edges[edgeID].To == i {
			return true
		}
	}
	return false
}

func (g *Graph) stronglyConnectedComponents() [][]string {
	nodeNames := make([]string, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodeNames = append(nodeNames, node.Name)
	}
	sort.Strings(nodeNames)

	adjacency := make(map[string][]string, len(nodeNames))
	for _, name := range nodeNames {
		i := g.index[name]
		targetSet := make(map[string]bool, len(g.outgoing[i]))
		for _, edgeID := range g.outgoing[i] {
			targetSet[g.nodes[g.edges[edgeID].To].Name] = true
		}
		targets := make([]string, 0, len(targetSet))
		for to := range targetSet {
			targets = append(targets, to)
		}
		sort.Strings(targets)
		adjacency[name] = targets
	}

	index := 0
	stack := make([]string, 0, len(nodeNames))
	onStack := make(map[string]bool, len(nodeNames))
	indexByNode := make(map[string]int, len(nodeNames))
	lowLink := make(map[string]int, len(nodeNames))
	components := make([][]string, 0)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indexByNode[v] = index
		lowLink[v] = index
		index++

		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adjacency[v] {
			if _, seen := indexByNode[w]; !seen {
				strongConnect(w)
				if lowLink[w] < lowLink[v] {
					lowLink[v] = lowLink[w]
				}
			} else if onStack[w] && indexByNode[w] < lowLink[v] {
				lowLink[v] = indexByNode[w]
			}
		}

		if lowLink[v] != indexByNode[v] {
			return
		}

		component := make([]string, 0)
		for {
			last := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[last] = false
			component = append(component, last)
			if last == v {
				break
			}
		}
		sort.Strings(component)
		components = append(components, component)
	}

	for _, node := range nodeNames {
		if _, seen := indexByNode[node]; !seen {
			strongConnect(node)
		}
	}

	return components
}
