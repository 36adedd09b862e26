package convert

import (
	"encoding/json"
	"sort"
	"strconv"

	"workflow-codegen/api/pkg/expr"
	"workflow-codegen/api/pkg/graph"
	"workflow-codegen/api/pkg/n8n"
)

// Convert runs the whole pipeline over one raw workflow: parse the
// graph, compute the execution order, then walk the nodes in that
// order assigning variable names and translating every parameter.
// Warnings ride along on the result; conversion itself never fails.
func Convert(wf *n8n.Workflow) *ConversionResult {
	model := graph.Parse(wf)
	order := model.Graph.ExecutionOrder()

	// The variable table must grow in execution order so forward
	// references resolve to the same slug the node receives here.
	ctx := expr.NewContext()
	taken := make(map[string]bool, len(order))

	steps := make([]StepPlan, 0, len(order))
	for _, name := range order {
		pn := model.Nodes[name]
		gn := model.Graph.Nodes[name]

		variable := uniqueVar(expr.SlugVar(name), taken)
		ctx.Bind(name, variable)

		step := StepPlan{
			Name:     name,
			Variable: variable,
			Type:     pn.Node.Type,
			Category: string(pn.Category),
			Depth:    gn.Depth,
			Disabled: pn.Node.Disabled,
			Role: StepRole{
				Trigger:     n8n.IsTrigger(pn.Node.Type),
				Conditional: gn.IsConditional,
				MergePoint:  gn.IsMergePoint,
				LoopStart:   gn.IsLoopStart,
				LoopEnd:     gn.IsLoopEnd,
			},
		}
		for credType := range pn.Node.Credentials {
			step.Credentials = append(step.Credentials, credType)
		}
		sort.Strings(step.Credentials)

		translateParams(&step, pn.Node.Parameters, ctx)
		steps = append(steps, step)
	}

	return &ConversionResult{
		WorkflowName:   model.Name,
		ExecutionOrder: order,
		Steps:          steps,
		Branches:       model.Graph.Branches,
		Loops:          model.Graph.Loops,
		Warnings:       model.Warnings,
	}
}

// uniqueVar disambiguates slug collisions ("Set" and "Set!" both slug
// to "set") by appending a counter to later occurrences.
func uniqueVar(slug string, taken map[string]bool) string {
	v := slug
	for i := 2; taken[v]; i++ {
		v = slug + "_" + strconv.Itoa(i)
	}
	taken[v] = true
	return v
}

// translateParams fills a step's translated parameter map. For
// conditional nodes the structured condition block is compiled into a
// single boolean expression instead of being walked leaf by leaf.
func translateParams(step *StepPlan, params map[string]any, ctx *expr.Context) {
	if len(params) == 0 {
		return
	}

	remaining := params
	if step.Role.Conditional {
		if code, flagged, ok := compileCondition(params["conditions"], ctx); ok {
			step.Condition = code
			if flagged {
				step.Flagged = append(step.Flagged, "conditions")
			}
			remaining = make(map[string]any, len(params))
			for k, v := range params {
				if k != "conditions" {
					remaining[k] = v
				}
			}
		}
	}

	out := make(map[string]string)
	walkParams("", remaining, func(path string, value any) {
		r := expr.Translate(value, ctx)
		out[path] = r.Code
		if r.Flagged {
			step.Flagged = append(step.Flagged, path)
		}
	})
	if len(out) > 0 {
		step.Params = out
	}
	sort.Strings(step.Flagged)
}

// conditionBlock mirrors the n8n if/filter parameter shape.
type conditionBlock struct {
	Conditions []expr.Rule `json:"conditions"`
	Combinator string      `json:"combinator"`
}

// compileCondition decodes the raw conditions parameter and compiles
// it. Older single-rule shapes that do not round-trip are left for the
// generic parameter walk.
func compileCondition(raw any, ctx *expr.Context) (code string, flagged, ok bool) {
	if raw == nil {
		return "", false, false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", false, false
	}
	var block conditionBlock
	if err := json.Unmarshal(data, &block); err != nil || len(block.Conditions) == 0 {
		return "", false, false
	}
	r := expr.TranslateCondition(block.Conditions, block.Combinator, ctx)
	return r.Code, r.Flagged, true
}

// walkParams visits every scalar leaf of a parameter bag with its
// dotted path, descending maps in sorted-key order so output is
// deterministic.
func walkParams(prefix string, value any, visit func(path string, value any)) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			walkParams(path, v[k], visit)
		}
	case []any:
		for i, elem := range v {
			walkParams(prefix+"["+strconv.Itoa(i)+"]", elem, visit)
		}
	default:
		if prefix == "" {
			return
		}
		visit(prefix, value)
	}
}
