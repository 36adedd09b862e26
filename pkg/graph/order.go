package graph

// Visit states for the order traversal. A transient in-progress mark,
// distinct from done, is what lets the sort short-circuit when a loop
// re-enters a node instead of recursing forever.
type visitState uint8

const (
	stateUnvisited visitState = iota
	stateInProgress
	stateDone
)

// ExecutionOrder returns every declared node exactly once, ordered so
// that for any non-loop edge A -> B, A precedes B. The traversal is a
// reverse topological sort: starting from each exit point it recurses
// into incoming edges before emitting the node itself. Incoming lists
// are already in source declaration order, so ties between independent
// branches resolve by declaration order and the result is identical
// across runs on unchanged input.
func (g *ExecutionGraph) ExecutionOrder() []string {
	state := make(map[string]visitState, len(g.order))
	order := make([]string, 0, len(g.order))

	var visit func(name string)
	visit = func(name string) {
		if state[name] != stateUnvisited {
			return
		}
		state[name] = stateInProgress
		for _, e := range g.incoming[name] {
			visit(e.From)
		}
		state[name] = stateDone
		order = append(order, name)
	}

	for _, name := range g.ExitPoints {
		visit(name)
	}
	// Nodes unreachable from any exit point (fully disconnected, or
	// members of a cycle with no outgoing path) still must appear.
	for _, name := range g.order {
		if state[name] != stateDone {
			visit(name)
		}
	}
	return order
}
