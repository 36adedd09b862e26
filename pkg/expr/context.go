// Package expr rewrites the n8n reference-expression mini-language
// ({{ $json.x }}, {{ $('Node').json.y }}, $env, $now, ...) into
// JavaScript fragments for the generated step code.
package expr

import "strings"

// Result is one translated fragment. Flagged marks an unrecognized
// form passed through verbatim for manual review; translation never
// fails outright.
type Result struct {
	Code    string `json:"code"`
	Flagged bool   `json:"flagged,omitempty"`
}

// Context carries the per-run table mapping source node names to the
// variable names the emitter assigned them. Callers populate it in
// execution order, so references to nodes not yet emitted fall back to
// the deterministic slug the node will receive when it is.
type Context struct {
	vars map[string]string
}

// NewContext returns an empty translation context.
func NewContext() *Context {
	return &Context{vars: make(map[string]string)}
}

// Bind records the variable name assigned to a node.
func (c *Context) Bind(node, variable string) {
	c.vars[node] = variable
}

// Var resolves a node name to its variable, falling back to SlugVar
// for names not bound yet so forward references never crash.
func (c *Context) Var(node string) string {
	if c != nil {
		if v, ok := c.vars[node]; ok {
			return v
		}
	}
	return SlugVar(node)
}

// SlugVar derives a variable name from a node display name: lowercase,
// runs of non-alphanumerics collapsed to underscores. The same rule is
// applied when a node is emitted and when a forward reference to it is
// translated, so the two always agree.
func SlugVar(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
		default:
			pendingSep = true
		}
	}
	s := b.String()
	if s == "" {
		return "step"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "n" + s
	}
	return s
}
