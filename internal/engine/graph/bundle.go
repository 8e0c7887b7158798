package graph

import "sort"

// BundleInfo is the per-package size record produced by the bundler
// stats collaborator.
type BundleInfo struct {
	Size        int64
	ModuleCount int
}

// ApplyBundleSizes annotates matching nodes and returns how many were
// updated. Names present on only one side are ignored.
func (g *Graph) ApplyBundleSizes(sizes map[string]BundleInfo) int {
	updated := 0
	for name, info := range sizes {
		i, ok := g.index[name]
		if !ok {
			continue
		}
		node := g.nodes[i]
		node.BundleSize = info.Size
		node.ModuleCount = info.ModuleCount
		node.HasBundleSize = true
		updated++
	}
	return updated
}

func (g *Graph) NodesWithSizes() []*DependencyNode {
	var nodes []*DependencyNode
	for _, node := range g.nodes {
		if node.HasBundleSize {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(a, b int) bool {
		return nodes[a].Name < nodes[b].Name
	})
	return nodes
}

// NodesByBundleSize returns annotated nodes sorted descending by size.
// Ties break by name so output stays stable.
func (g *Graph) NodesByBundleSize() []*DependencyNode {
	nodes := g.NodesWithSizes()
	sort.Slice(nodes, func(a, b int) bool {
		if nodes[a].BundleSize != nodes[b].BundleSize {
			return nodes[a].BundleSize > nodes[b].BundleSize
		}
		return nodes[a].Name < nodes[b].Name
	})
	return nodes
}

func (g *Graph) TotalBundleSize() int64 {
	var total int64
	for _, node := range g.nodes {
		if node.HasBundleSize {
			total += node.BundleSize
		}
	}
	return total
}
