package graph

import (
	"sort"

	"workflow-codegen/api/pkg/n8n"
)

// Branch is the node set reachable from one output port of a
// conditional, up to (but excluding) the merge point when one exists.
type Branch struct {
	OutputIndex int      `json:"outputIndex"`
	Label       string   `json:"label"`
	Nodes       []string `json:"nodes"`
}

// BranchInfo groups the branches of one conditional node. MergePoint
// is empty when the branches never reconverge; that ambiguity is
// surfaced to the caller rather than resolved by inventing a merge.
type BranchInfo struct {
	Node       string   `json:"node"`
	Branches   []Branch `json:"branches"`
	MergePoint string   `json:"mergePoint,omitempty"`
}

// LoopInfo describes one bounded-iteration region: the loop start, the
// body reachable from its continue output, and the body node whose
// edge re-enters the start (the implicit continue point).
type LoopInfo struct {
	Node      string   `json:"node"`
	LoopNodes []string `json:"loopNodes"`
	LoopEnd   string   `json:"loopEnd,omitempty"`
}

// detectBranches finds, for every conditional node, the member set of
// each used output port and the earliest node all ports eventually
// reach. Best-effort: a conditional whose branches never meet is
// recorded without a merge point plus a warning.
func detectBranches(g *ExecutionGraph, m *Model, p *parser) {
	for _, name := range m.Order {
		node := g.Nodes[name]
		if !node.IsConditional {
			continue
		}

		ports := usedOutputPorts(g, name)
		if len(ports) == 0 {
			continue
		}

		info := BranchInfo{Node: name}
		reachable := make(map[int]map[string]bool, len(ports))
		for _, port := range ports {
			reachable[port] = reachableFrom(g, name, port, "")
		}

		if len(ports) > 1 {
			info.MergePoint = findMergePoint(g, m, reachable)
		}
		if info.MergePoint == "" && len(ports) > 1 {
			p.warn(warnf(WarnNoMergePoint, name,
				"branches of %q never reconverge; no merge point detected", name))
		}
		if info.MergePoint != "" {
			g.Nodes[info.MergePoint].IsMergePoint = true
		}

		typeTag := m.Nodes[name].Node.Type
		for _, port := range ports {
			members := reachable[port]
			if info.MergePoint != "" {
				// Recollect, stopping at the merge point, so members
				// cover only the branch body itself.
				members = reachableFrom(g, name, port, info.MergePoint)
			}
			info.Branches = append(info.Branches, Branch{
				OutputIndex: port,
				Label:       n8n.BranchLabel(typeTag, port),
				Nodes:       orderedNames(m, members),
			})
		}
		g.Branches = append(g.Branches, info)
	}
}

// usedOutputPorts returns the distinct output ports with at least one
// outgoing data edge, ascending.
func usedOutputPorts(g *ExecutionGraph, name string) []int {
	seen := make(map[int]bool)
	for _, e := range g.outgoing[name] {
		seen[e.OutputIndex] = true
	}
	ports := make([]int, 0, len(seen))
	for port := range seen {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	return ports
}

// reachableFrom collects every node reachable from one output port of
// source via forward breadth-first traversal. The source itself is
// never a member, and expansion stops at stopAt when non-empty. The
// visited set makes the walk safe on cyclic graphs.
func reachableFrom(g *ExecutionGraph, source string, port int, stopAt string) map[string]bool {
	visited := map[string]bool{source: true}
	members := make(map[string]bool)
	var queue []string

	for _, e := range g.outgoing[source] {
		if e.OutputIndex == port {
			queue = append(queue, e.To)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true
		if name == stopAt {
			continue
		}
		members[name] = true
		for _, e := range g.outgoing[name] {
			queue = append(queue, e.To)
		}
	}
	return members
}

// findMergePoint returns the node present in every port's reachable
// set that comes earliest in execution order. Everything downstream of
// the true merge is also in every set, so the earliest common node is
// the reconvergence point. Execution-order position, not depth, is the
// metric: loop-body nodes carry degenerate depths but still order
// correctly.
func findMergePoint(g *ExecutionGraph, m *Model, reachable map[int]map[string]bool) string {
	best := ""
	for _, name := range m.Order {
		inAll := true
		for _, members := range reachable {
			if !members[name] {
				inAll = false
				break
			}
		}
		if !inAll {
			continue
		}
		if best == "" || g.position[name] < g.position[best] {
			best = name
		}
	}
	return best
}

// detectLoops finds, for every bounded-iteration node, the body
// reachable from its continue output and the member that closes the
// cycle. Zero back-edges and multiple back-edges are both surfaced as
// warnings with the partial structure still recorded.
func detectLoops(g *ExecutionGraph, m *Model, p *parser) {
	for _, name := range m.Order {
		if !g.Nodes[name].IsLoopStart {
			continue
		}

		members := reachableFrom(g, name, n8n.LoopContinuePort, name)
		info := LoopInfo{Node: name, LoopNodes: orderedNames(m, members)}

		for _, member := range info.LoopNodes {
			closesLoop := false
			for _, e := range g.outgoing[member] {
				if e.To == name {
					closesLoop = true
					break
				}
			}
			if !closesLoop {
				continue
			}
			if info.LoopEnd == "" {
				info.LoopEnd = member
				g.Nodes[member].IsLoopEnd = true
			} else {
				p.warn(warnf(WarnMultipleLoopEnds, name,
					"loop %q has more than one re-entry edge; using %q, ignoring %q",
					name, info.LoopEnd, member))
			}
		}
		if len(info.LoopNodes) > 0 && info.LoopEnd == "" {
			p.warn(warnf(WarnNoLoopEnd, name,
				"loop %q has a body but no edge returns to it", name))
		}
		g.Loops = append(g.Loops, info)
	}
}

// orderedNames converts a member set to a slice in declaration order.
func orderedNames(m *Model, members map[string]bool) []string {
	var names []string
	for _, name := range m.Order {
		if members[name] {
			names = append(names, name)
		}
	}
	return names
}
