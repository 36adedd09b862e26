package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-codegen/api/pkg/n8n"
)

func TestConvert_SampleWorkflow(t *testing.T) {
	result := Convert(&sampleWorkflow)

	assert.Equal(t, "Order Processing", result.WorkflowName)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, []string{
		"Webhook", "Check Status", "Format Order", "Notify Rejection",
		"Merge Paths", "Process Item", "Loop Items", "Done",
	}, result.ExecutionOrder)

	require.Len(t, result.Steps, 8)
	byName := make(map[string]StepPlan, len(result.Steps))
	for _, step := range result.Steps {
		byName[step.Name] = step
	}

	assert.Equal(t, "webhook", byName["Webhook"].Variable)
	assert.True(t, byName["Webhook"].Role.Trigger)
	assert.Equal(t, "trigger", byName["Webhook"].Category)

	check := byName["Check Status"]
	assert.Equal(t, "check_status", check.Variable)
	assert.True(t, check.Role.Conditional)
	assert.Equal(t, `item.status === "active"`, check.Condition)
	assert.Empty(t, check.Params)

	format := byName["Format Order"]
	assert.Equal(t,
		"`Order ${item.id} for ${webhook.body.customer}`",
		format.Params["assignments.assignments[0].value"])
	assert.Equal(t, `"summary"`, format.Params["assignments.assignments[0].name"])

	notify := byName["Notify Rejection"]
	assert.Equal(t, "process.env.NOTIFY_URL", notify.Params["url"])
	assert.Equal(t, []string{"httpHeaderAuth"}, notify.Credentials)
	assert.Equal(t, "integration", notify.Category)

	assert.True(t, byName["Merge Paths"].Role.MergePoint)
	assert.True(t, byName["Loop Items"].Role.LoopStart)
	assert.True(t, byName["Process Item"].Role.LoopEnd)
}

func TestConvert_SampleWorkflowPatterns(t *testing.T) {
	result := Convert(&sampleWorkflow)

	require.Len(t, result.Branches, 1)
	branch := result.Branches[0]
	assert.Equal(t, "Check Status", branch.Node)
	assert.Equal(t, "Merge Paths", branch.MergePoint)
	require.Len(t, branch.Branches, 2)
	assert.Equal(t, []string{"Format Order"}, branch.Branches[0].Nodes)
	assert.Equal(t, []string{"Notify Rejection"}, branch.Branches[1].Nodes)

	require.Len(t, result.Loops, 1)
	loop := result.Loops[0]
	assert.Equal(t, "Loop Items", loop.Node)
	assert.Equal(t, []string{"Process Item"}, loop.LoopNodes)
	assert.Equal(t, "Process Item", loop.LoopEnd)
}

func TestConvert_VariableCollisions(t *testing.T) {
	wf := &n8n.Workflow{
		Name: "Collisions",
		Nodes: []n8n.Node{
			{Name: "Set Value", Type: "n8n-nodes-base.set"},
			{Name: "Set Value!", Type: "n8n-nodes-base.set"},
			{Name: "set value", Type: "n8n-nodes-base.set"},
		},
	}

	result := Convert(wf)

	vars := make(map[string]bool)
	for _, step := range result.Steps {
		assert.False(t, vars[step.Variable], "duplicate variable %q", step.Variable)
		vars[step.Variable] = true
	}
	assert.True(t, vars["set_value"])
	assert.True(t, vars["set_value_2"])
	assert.True(t, vars["set_value_3"])
}

func TestConvert_ForwardReferenceUsesSlug(t *testing.T) {
	// "First" references "Second", which is emitted after it.
	wf := &n8n.Workflow{
		Name: "Forward",
		Nodes: []n8n.Node{
			{Name: "Trigger", Type: "n8n-nodes-base.manualTrigger"},
			{
				Name: "First", Type: "n8n-nodes-base.set",
				Parameters: map[string]any{"note": "={{ $('Second').json.value }}"},
			},
			{Name: "Second", Type: "n8n-nodes-base.set"},
		},
		Connections: map[string]n8n.Connections{
			"Trigger": {"main": [][]n8n.Connection{{{Node: "First", Type: "main", Index: 0}}}},
			"First":   {"main": [][]n8n.Connection{{{Node: "Second", Type: "main", Index: 0}}}},
		},
	}

	result := Convert(wf)

	byName := make(map[string]StepPlan)
	for _, step := range result.Steps {
		byName[step.Name] = step
	}
	assert.Equal(t, "second.value", byName["First"].Params["note"])
	assert.Equal(t, "second", byName["Second"].Variable)
}

func TestConvert_FlaggedParameterSurfaces(t *testing.T) {
	wf := &n8n.Workflow{
		Name: "Flagged",
		Nodes: []n8n.Node{
			{
				Name: "Trigger", Type: "n8n-nodes-base.manualTrigger",
				Parameters: map[string]any{"due": "={{ $now.plus({days: 1}) }}"},
			},
		},
	}

	result := Convert(wf)

	require.Len(t, result.Steps, 1)
	assert.Equal(t, []string{"due"}, result.Steps[0].Flagged)
}

func TestConvert_DanglingConnectionStillConverts(t *testing.T) {
	wf := &n8n.Workflow{
		Name: "Partial",
		Nodes: []n8n.Node{
			{Name: "Trigger", Type: "n8n-nodes-base.manualTrigger"},
			{Name: "Work", Type: "n8n-nodes-base.set"},
		},
		Connections: map[string]n8n.Connections{
			"Trigger": {"main": [][]n8n.Connection{{
				{Node: "Work", Type: "main", Index: 0},
				{Node: "Ghost", Type: "main", Index: 0},
			}}},
		},
	}

	result := Convert(wf)

	require.Len(t, result.Warnings, 1)
	assert.Len(t, result.Steps, 2)
	assert.Equal(t, []string{"Trigger", "Work"}, result.ExecutionOrder)
}
