package graph

import "workflow-codegen/api/pkg/n8n"

// Edge is one data-flow ("main") connection in the execution graph.
type Edge struct {
	From        string `json:"from"`
	To          string `json:"to"`
	OutputIndex int    `json:"outputIndex"`
	InputIndex  int    `json:"inputIndex"`
}

// GraphNode carries the per-node analysis results: display depth and
// the structural role flags downstream emitters dispatch on.
type GraphNode struct {
	Name          string `json:"name"`
	Depth         int    `json:"depth"`
	IsConditional bool   `json:"isConditional,omitempty"`
	IsMergePoint  bool   `json:"isMergePoint,omitempty"`
	IsLoopStart   bool   `json:"isLoopStart,omitempty"`
	IsLoopEnd     bool   `json:"isLoopEnd,omitempty"`
}

// ExecutionGraph is the analyzed shape of one workflow: every declared
// node, the data-flow edges between them, entry and exit points, and
// the detected branch and loop structure. Read-only once built.
type ExecutionGraph struct {
	Nodes       map[string]*GraphNode `json:"nodes"`
	Edges       []Edge                `json:"edges"`
	EntryPoints []string              `json:"entryPoints"`
	ExitPoints  []string              `json:"exitPoints"`
	Branches    []BranchInfo          `json:"branches,omitempty"`
	Loops       []LoopInfo            `json:"loops,omitempty"`

	// order keeps declaration order for deterministic traversal;
	// position holds each node's execution-order index for
	// "earliest node" picks.
	order    []string
	position map[string]int
	incoming map[string][]Edge
	outgoing map[string][]Edge
}

// buildGraph assembles the execution graph from the parsed node set.
// Only "main" connections become dependency edges; auxiliary
// categories stay on the ParsedNode lists.
func buildGraph(m *Model, p *parser) *ExecutionGraph {
	g := &ExecutionGraph{
		Nodes:    make(map[string]*GraphNode, len(m.Order)),
		order:    m.Order,
		incoming: make(map[string][]Edge),
		outgoing: make(map[string][]Edge),
	}

	for _, name := range m.Order {
		pn := m.Nodes[name]
		g.Nodes[name] = &GraphNode{
			Name:          name,
			IsConditional: n8n.IsConditional(pn.Node.Type),
			IsLoopStart:   n8n.IsLoop(pn.Node.Type),
		}
	}

	for _, name := range m.Order {
		for _, conn := range m.Nodes[name].Outgoing {
			if conn.Type != n8n.ConnectionMain {
				continue
			}
			e := Edge{From: name, To: conn.Name, OutputIndex: conn.OutputIndex, InputIndex: conn.InputIndex}
			g.Edges = append(g.Edges, e)
			g.outgoing[name] = append(g.outgoing[name], e)
			g.incoming[conn.Name] = append(g.incoming[conn.Name], e)
		}
	}

	for _, name := range m.Order {
		pn := m.Nodes[name]
		if n8n.IsTrigger(pn.Node.Type) || len(g.incoming[name]) == 0 {
			g.EntryPoints = append(g.EntryPoints, name)
		}
		if len(g.outgoing[name]) == 0 {
			g.ExitPoints = append(g.ExitPoints, name)
		}
	}

	// Execution-order positions feed the merge-point pick, so compute
	// them (and depths) before pattern detection.
	g.computeDepths()
	detectBranches(g, m, p)
	detectLoops(g, m, p)
	return g
}

// computeDepths assigns each node the maximum forward distance from
// any entry point. Edges that point backwards in execution order (loop
// back-edges) are skipped, which keeps the relaxation linear and
// terminating on cyclic graphs. Depth is a display/tie-break aid only.
func (g *ExecutionGraph) computeDepths() {
	order := g.ExecutionOrder()
	g.position = make(map[string]int, len(order))
	for i, name := range order {
		g.position[name] = i
	}
	for _, name := range order {
		node := g.Nodes[name]
		for _, e := range g.outgoing[name] {
			if g.position[e.To] <= g.position[name] {
				continue
			}
			if target := g.Nodes[e.To]; target.Depth < node.Depth+1 {
				target.Depth = node.Depth + 1
			}
		}
	}
}
