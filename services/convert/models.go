package convert

import (
	"time"

	"workflow-codegen/api/pkg/graph"
	"workflow-codegen/api/pkg/n8n"
)

// WorkflowRecord is a stored source workflow: the raw n8n document
// plus our own identity and timestamps.
type WorkflowRecord struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Definition *n8n.Workflow `json:"definition"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// StepRole flags the structural roles a step plays in the graph.
type StepRole struct {
	Trigger     bool `json:"trigger,omitempty"`
	Conditional bool `json:"conditional,omitempty"`
	MergePoint  bool `json:"mergePoint,omitempty"`
	LoopStart   bool `json:"loopStart,omitempty"`
	LoopEnd     bool `json:"loopEnd,omitempty"`
}

// StepPlan is the per-node conversion output: the variable name the
// emitted step will bind, its structural role, and every string
// parameter translated to a JavaScript fragment.
type StepPlan struct {
	Name        string   `json:"name"`
	Variable    string   `json:"variable"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Depth       int      `json:"depth"`
	Role        StepRole `json:"role"`
	Disabled    bool     `json:"disabled,omitempty"`
	Credentials []string `json:"credentials,omitempty"`
	// Condition is the compiled boolean expression for if/filter
	// nodes; empty for everything else.
	Condition string            `json:"condition,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	// Flagged lists parameter paths whose value could not be fully
	// translated and needs manual review.
	Flagged []string `json:"flagged,omitempty"`
}

// ConversionResult is the response of a conversion run and the row
// persisted for it.
type ConversionResult struct {
	ConversionID   string             `json:"conversionId"`
	WorkflowID     string             `json:"workflowId,omitempty"`
	WorkflowName   string             `json:"workflowName"`
	ExecutionOrder []string           `json:"executionOrder"`
	Steps          []StepPlan         `json:"steps"`
	Branches       []graph.BranchInfo `json:"branches,omitempty"`
	Loops          []graph.LoopInfo   `json:"loops,omitempty"`
	Warnings       []graph.Warning    `json:"warnings,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}
