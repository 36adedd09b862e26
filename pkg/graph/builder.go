// Package graph turns a raw n8n workflow document into a validated
// directed multigraph: typed nodes with resolved neighbor lists, a
// deterministic execution order, and detected branch/loop structure.
package graph

import (
	"sort"

	"workflow-codegen/api/pkg/n8n"
)

// ConnectionInfo is one resolved edge endpoint as seen from a node:
// the neighbor's name, the port indices on both sides, and the
// connection category ("main" for data flow, "ai_tool" etc. for
// auxiliary attachments).
type ConnectionInfo struct {
	Name        string `json:"name"`
	OutputIndex int    `json:"outputIndex"`
	InputIndex  int    `json:"inputIndex"`
	Type        string `json:"type"`
}

// ParsedNode is a raw node enriched with its category and resolved
// incoming/outgoing connection lists. Built once per conversion run,
// immutable afterward.
type ParsedNode struct {
	Node     n8n.Node         `json:"node"`
	Category n8n.Category     `json:"category"`
	Incoming []ConnectionInfo `json:"incoming,omitempty"`
	Outgoing []ConnectionInfo `json:"outgoing,omitempty"`
}

// Model is the full derived representation of one workflow: the single
// output of Parse and the only input downstream emitters consume.
type Model struct {
	Name     string
	Nodes    map[string]*ParsedNode
	Order    []string // node names in declaration order
	Triggers []string
	Graph    *ExecutionGraph
	// Credentials maps credential type to the nodes referencing it.
	Credentials map[string][]string
	Settings    map[string]any
	Warnings    []Warning
}

// Parse builds the derived model from a raw workflow. Structural
// defects (dangling connections, duplicate names) become warnings on
// the model, never errors; the caller decides whether to surface them.
func Parse(wf *n8n.Workflow) *Model {
	p := &parser{wf: wf}
	return p.run()
}

type parser struct {
	wf       *n8n.Workflow
	warnings []Warning
}

func (p *parser) warn(w Warning) { p.warnings = append(p.warnings, w) }

func (p *parser) run() *Model {
	m := &Model{
		Name:        p.wf.Name,
		Nodes:       make(map[string]*ParsedNode, len(p.wf.Nodes)),
		Credentials: make(map[string][]string),
		Settings:    p.wf.Settings,
	}

	for _, node := range p.wf.Nodes {
		if _, seen := m.Nodes[node.Name]; seen {
			p.warn(warnf(WarnDuplicateNodeName, node.Name,
				"node name %q is declared more than once; the last declaration wins", node.Name))
		} else {
			m.Order = append(m.Order, node.Name)
		}
		m.Nodes[node.Name] = &ParsedNode{Node: node, Category: n8n.Classify(node.Type)}

		if n8n.IsTrigger(node.Type) {
			m.Triggers = append(m.Triggers, node.Name)
		}
		for credType := range node.Credentials {
			m.Credentials[credType] = append(m.Credentials[credType], node.Name)
		}
	}
	for _, nodes := range m.Credentials {
		sort.Strings(nodes)
	}

	p.resolveConnections(m)
	m.Graph = buildGraph(m, p)
	m.Warnings = p.warnings
	return m
}

// resolveConnections inverts the raw connection map into per-node
// incoming and outgoing lists. Sources are visited in declaration
// order so that every derived list is deterministic for identical
// input; connections whose source or target does not resolve to a
// declared node are skipped with a warning.
func (p *parser) resolveConnections(m *Model) {
	for _, source := range connectionSources(p.wf, m) {
		conns, ok := p.wf.Connections[source]
		if !ok {
			continue
		}
		if _, exists := m.Nodes[source]; !exists {
			p.warn(warnf(WarnDanglingConnection, source,
				"connections declared for unknown node %q", source))
			continue
		}
		for _, category := range connectionCategories(conns) {
			for outputIdx, targets := range conns[category] {
				for _, conn := range targets {
					target, exists := m.Nodes[conn.Node]
					if !exists {
						p.warn(warnf(WarnDanglingConnection, source,
							"connection from %q targets unknown node %q", source, conn.Node))
						continue
					}
					m.Nodes[source].Outgoing = append(m.Nodes[source].Outgoing, ConnectionInfo{
						Name:        conn.Node,
						OutputIndex: outputIdx,
						InputIndex:  conn.Index,
						Type:        category,
					})
					target.Incoming = append(target.Incoming, ConnectionInfo{
						Name:        source,
						OutputIndex: outputIdx,
						InputIndex:  conn.Index,
						Type:        category,
					})
				}
			}
		}
	}
}

// connectionSources yields connection-map keys in a stable order:
// declared nodes first (declaration order), then unknown sources
// sorted by name so their warnings are stable too.
func connectionSources(wf *n8n.Workflow, m *Model) []string {
	sources := make([]string, 0, len(wf.Connections))
	for _, name := range m.Order {
		if _, ok := wf.Connections[name]; ok {
			sources = append(sources, name)
		}
	}
	var unknown []string
	for name := range wf.Connections {
		if _, ok := m.Nodes[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return append(sources, unknown...)
}

// connectionCategories yields a source's categories with "main" first
// and auxiliary categories sorted after it.
func connectionCategories(conns n8n.Connections) []string {
	var categories []string
	for category := range conns {
		if category != n8n.ConnectionMain {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	if _, ok := conns[n8n.ConnectionMain]; ok {
		return append([]string{n8n.ConnectionMain}, categories...)
	}
	return categories
}
