// # internal/engine/graph/graph.go
package graph

import (
	"sort"

	"github.com/zach-fau/codescope/internal/shared/observability"
)

type DependencyType string

const (
	TypeProduction  DependencyType = "production"
	TypeDevelopment DependencyType = "development"
	TypePeer        DependencyType = "peer"
	TypeOptional    DependencyType = "optional"
)

// Dependency is the normalized triple produced by manifest parsing.
type Dependency struct {
	Name    string
	Version string
	Type    DependencyType
}

type DependencyNode struct {
	Name    string
	Version string
	Type    DependencyType
	Depth   int // distance from root, 0 = direct

	// Populated by ApplyBundleSizes, unknown until then.
	BundleSize    int64
	ModuleCount   int
	HasBundleSize bool
}

type Edge struct {
	From     int
	To       int
	Optional bool
	Metadata map[string]string
}

type VersionRequirement struct {
	Version    string
	RequiredBy string
}

// Graph models as-declared dependency relationships. Nodes live in an
// arena indexed by name; edges reference arena indices, so cyclic
// structures need no pointer back-links. Not safe for concurrent
// mutation; callers synchronize externally if they need to.
type Graph struct {
	nodes []*DependencyNode
	index map[string]int

	edges    []Edge
	outgoing map[int][]int // node index -> edge indices
	incoming map[int][]int

	requirements map[string][]VersionRequirement
}

func NewGraph() *Graph {
	return &Graph{
		index:        make(map[string]int),
		outgoing:     make(map[int][]int),
		incoming:     make(map[int][]int),
		requirements: make(map[string][]VersionRequirement),
	}
}

// FromDependencies builds a graph with one node per dependency and a
// tracked version requirement attributed to the manifest itself.
func FromDependencies(deps []Dependency, requiredBy string) *Graph {
	g := NewGraph()
	for _, dep := range deps {
		g.AddDependency(dep.Name, dep.Version, dep.Type)
		g.TrackVersionRequirement(dep.Name, dep.Version, requiredBy)
	}
	return g
}

// AddDependency is idempotent by name: re-adding a known name returns
// the existing node untouched.
func (g *Graph) AddDependency(name, version string, depType DependencyType) *DependencyNode {
	return g.AddDependencyWithDepth(name, version, depType, 0)
}

func (g *Graph) AddDependencyWithDepth(name, version string, depType DependencyType, depth int) *DependencyNode {
	if i, ok := g.index[name]; ok {
		return g.nodes[i]
	}

	node := &DependencyNode{
		Name:    name,
		Version: version,
		Type:    depType,
		Depth:   depth,
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, node)

	observability.GraphNodes.Set(float64(len(g.nodes)))
	return node
}

// AddEdge creates a directed edge dependent -> dependency. It returns
// false without mutation when either endpoint is unknown, an expected
// state while a graph is still being built. Repeated calls for the
// same pair add parallel edges.
func (g *Graph) AddEdge(from, to string) bool {
	return g.addEdge(from, to, false, nil)
}

func (g *Graph) AddOptionalEdge(from, to string) bool {
	return g.addEdge(from, to, true, nil)
}

func (g *Graph) AddEdgeWithMetadata(from, to string, metadata map[string]string) bool {
	return g.addEdge(from, to, false, metadata)
}

func (g *Graph) addEdge(from, to string, optional bool, metadata map[string]string) bool {
	fi, ok := g.index[from]
	if !ok {
		return false
	}
	ti, ok := g.index[to]
	if !ok {
		return false
	}

	edgeID := len(g.edges)
	g.edges = append(g.edges, Edge{From: fi, To: ti, Optional: optional, Metadata: metadata})
	g.outgoing[fi] = append(g.outgoing[fi], edgeID)
	g.incoming[ti] = append(g.incoming[ti], edgeID)

	observability.GraphEdges.Set(float64(len(g.edges)))
	return true
}

func (g *Graph) GetNode(name string) (*DependencyNode, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

func (g *Graph) Contains(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Dependencies returns the targets of all outgoing edges, one entry
// per edge. Unknown names yield an empty slice.
func (g *Graph) Dependencies(name string) []*DependencyNode {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	deps := make([]*DependencyNode, 0, len(g.outgoing[i]))
	for _, edgeID := range g.outgoing[i] {
		deps = append(deps, g.nodes[g.edges[edgeID].To])
	}
	return deps
}

func (g *Graph) Dependents(name string) []*DependencyNode {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	deps := make([]*DependencyNode, 0, len(g.incoming[i]))
	for _, edgeID := range g.incoming[i] {
		deps = append(deps, g.nodes[g.edges[edgeID].From])
	}
	return deps
}

// AllNodes returns the nodes sorted by name for deterministic output.
func (g *Graph) AllNodes() []*DependencyNode {
	nodes := make([]*DependencyNode, len(g.nodes))
	copy(nodes, g.nodes)
	sort.Slice(nodes, func(a, b int) bool {
		return nodes[a].Name < nodes[b].Name
	})
	return nodes
}

func (g *Graph) NodesByType(depType DependencyType) []*DependencyNode {
	var nodes []*DependencyNode
	for _, node := range g.nodes {
		if node.Type == depType {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(a, b int) bool {
		return nodes[a].Name < nodes[b].Name
	})
	return nodes
}

func (g *Graph) NodesAtDepth(depth int) []*DependencyNode {
	var nodes []*DependencyNode
	for _, node := range g.nodes {
		if node.Depth == depth {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(a, b int) bool {
		return nodes[a].Name < nodes[b].Name
	})
	return nodes
}

func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

func (g *Graph) IsEmpty() bool {
	return len(g.nodes) == 0
}

// EdgeView is an edge with arena indices resolved to names.
type EdgeView struct {
	From     string
	To       string
	Optional bool
	Metadata map[string]string
}

func (g *Graph) Edges() []EdgeView {
	out := make([]EdgeView, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, EdgeView{
			From:     g.nodes[e.From].Name,
			To:       g.nodes[e.To].Name,
			Optional: e.Optional,
			Metadata: e.Metadata,
		})
	}
	return out
}
