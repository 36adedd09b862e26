package graph

import "fmt"

// WarningKind classifies a conversion warning.
type WarningKind string

const (
	WarnDanglingConnection WarningKind = "dangling-connection"
	WarnDuplicateNodeName  WarningKind = "duplicate-node-name"
	WarnNoMergePoint       WarningKind = "no-merge-point"
	WarnNoLoopEnd          WarningKind = "no-loop-end"
	WarnMultipleLoopEnds   WarningKind = "multiple-loop-ends"
)

// Warning records a structural defect or pattern-detection gap. The
// parser accumulates warnings instead of failing: a workflow with a
// dangling reference should still convert as much as possible.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Node   string      `json:"node,omitempty"`
	Detail string      `json:"detail"`
}

func warnf(kind WarningKind, node, format string, args ...any) Warning {
	return Warning{Kind: kind, Node: node, Detail: fmt.Sprintf(format, args...)}
}
