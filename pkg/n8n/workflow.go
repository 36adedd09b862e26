// Package n8n models the raw n8n workflow export format: a node array
// plus a connection map keyed by source node name, connection category,
// and output port index.
package n8n

import (
	"encoding/json"
	"fmt"
)

// ConnectionMain is the default data-flow connection category. Every
// other category ("ai_tool", "ai_languageModel", ...) is an auxiliary
// attachment used by composite nodes.
const ConnectionMain = "main"

// Workflow is a full n8n workflow document as exported by the editor.
type Workflow struct {
	ID          string                 `json:"id,omitempty"`
	Name        string                 `json:"name"`
	Active      bool                   `json:"active,omitempty"`
	Nodes       []Node                 `json:"nodes"`
	Connections map[string]Connections `json:"connections"`
	Settings    map[string]any         `json:"settings,omitempty"`
	PinData     map[string]any         `json:"pinData,omitempty"`
}

// Node is a single workflow step. Connections and expressions address
// nodes by display name, not by id; NodeByName is the one place that
// lookup happens.
type Node struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	Position    []float64      `json:"position,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Credentials map[string]any `json:"credentials,omitempty"`
}

// Connections holds one source node's outgoing edges, keyed by
// category. The outer slice is indexed by output port; each port may
// fan out to any number of targets.
type Connections map[string][][]Connection

// Connection is one directed edge endpoint on the target side.
type Connection struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Decode parses a raw workflow document. Structurally invalid JSON is
// the only hard failure; every other defect is left for the graph
// parser to report as a warning.
func Decode(data []byte) (*Workflow, error) {
	var wf Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("decode workflow: %w", err)
	}
	return &wf, nil
}

// NodeByName returns the node with the given display name, or nil.
// When a name is declared more than once the last declaration wins,
// matching how the editor resolves the collision.
func (w *Workflow) NodeByName(name string) *Node {
	for i := len(w.Nodes) - 1; i >= 0; i-- {
		if w.Nodes[i].Name == name {
			return &w.Nodes[i]
		}
	}
	return nil
}
