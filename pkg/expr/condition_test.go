package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rule(left, right any, operation string) Rule {
	return Rule{LeftValue: left, RightValue: right, Operator: Operator{Operation: operation}}
}

func TestTranslateCondition_SingleRule(t *testing.T) {
	got := TranslateCondition(
		[]Rule{rule("{{$json.status}}", "active", "equals")},
		"and", testContext())

	assert.Equal(t, `item.status === "active"`, got.Code)
	assert.False(t, got.Flagged)
}

func TestTranslateCondition_Operators(t *testing.T) {
	ctx := testContext()
	left := "={{ $json.count }}"

	tests := []struct {
		operation string
		right     any
		want      string
	}{
		{"equals", "25", "item.count === 25"},
		{"notEquals", "25", "item.count !== 25"},
		{"gt", "25", "item.count > 25"},
		{"gte", "25", "item.count >= 25"},
		{"lt", "25", "item.count < 25"},
		{"lte", "25", "item.count <= 25"},
		// Legacy v1 operation names share the table.
		{"larger", "25", "item.count > 25"},
		{"smallerEqual", "25", "item.count <= 25"},
		{"contains", "urgent", `String(item.count).includes("urgent")`},
		{"notContains", "urgent", `!String(item.count).includes("urgent")`},
		{"startsWith", "ORD-", `String(item.count).startsWith("ORD-")`},
		{"endsWith", "-EU", `String(item.count).endsWith("-EU")`},
		{"regex", "^\\d+$", `new RegExp("^\\d+$").test(String(item.count))`},
		{"exists", nil, "item.count !== undefined && item.count !== null"},
		{"notExists", nil, "item.count === undefined || item.count === null"},
		{"empty", nil, "!item.count"},
		{"notEmpty", nil, "!!item.count"},
		{"true", nil, "item.count === true"},
		{"false", nil, "item.count === false"},
	}
	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			got := TranslateCondition([]Rule{rule(left, tt.right, tt.operation)}, "and", ctx)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestTranslateCondition_Combinators(t *testing.T) {
	ctx := testContext()
	rules := []Rule{
		rule("={{ $json.status }}", "active", "equals"),
		rule("={{ $json.total }}", "100", "gt"),
	}

	and := TranslateCondition(rules, "and", ctx)
	assert.Equal(t, `(item.status === "active") && (item.total > 100)`, and.Code)

	or := TranslateCondition(rules, "or", ctx)
	assert.Equal(t, `(item.status === "active") || (item.total > 100)`, or.Code)
}

func TestTranslateCondition_EmptyRulesIsTrue(t *testing.T) {
	got := TranslateCondition(nil, "and", testContext())
	assert.Equal(t, "true", got.Code)
}

func TestTranslateCondition_UnknownOperatorDefaultsToEquals(t *testing.T) {
	got := TranslateCondition(
		[]Rule{rule("={{ $json.status }}", "active", "someFutureOp")},
		"and", testContext())
	assert.Equal(t, `item.status === "active"`, got.Code)
}

func TestTranslateCondition_NodeReferenceOperand(t *testing.T) {
	got := TranslateCondition(
		[]Rule{rule("={{ $('Fetch Data').json.id }}", "={{ $json.id }}", "notEquals")},
		"and", testContext())
	assert.Equal(t, "fetch_data.id !== item.id", got.Code)
}

func TestTranslateCondition_NumericRightOperand(t *testing.T) {
	// A non-string right side arrives as a JSON number.
	got := TranslateCondition(
		[]Rule{rule("={{ $json.total }}", float64(100), "gte")},
		"and", testContext())
	assert.Equal(t, "item.total >= 100", got.Code)
}
