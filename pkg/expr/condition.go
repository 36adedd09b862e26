package expr

import "strings"

// Operator identifies one comparison operation as stored in an n8n
// if/filter node ({"type": "string", "operation": "equals"}).
type Operator struct {
	Type      string `json:"type,omitempty"`
	Operation string `json:"operation"`
}

// Rule is one structured comparison: left and right operands plus the
// operator joining them.
type Rule struct {
	LeftValue  any      `json:"leftValue"`
	RightValue any      `json:"rightValue"`
	Operator   Operator `json:"operator"`
}

// canonicalOps folds the legacy v1 operation names onto the current
// ones so both condition formats share one table.
var canonicalOps = map[string]string{
	"equal":              "equals",
	"notEqual":           "notEquals",
	"larger":             "gt",
	"largerEqual":        "gte",
	"smaller":            "lt",
	"smallerEqual":       "lte",
	"greaterThan":        "gt",
	"greaterThanOrEqual": "gte",
	"lessThan":           "lt",
	"lessThanOrEqual":    "lte",
	"isEmpty":            "empty",
	"isNotEmpty":         "notEmpty",
}

// symbolOps are the operations with a single-token JavaScript
// equivalent.
var symbolOps = map[string]string{
	"equals":    "===",
	"notEquals": "!==",
	"gt":        ">",
	"gte":       ">=",
	"lt":        "<",
	"lte":       "<=",
}

// TranslateCondition compiles an ordered rule list and a combinator
// ("and"/"or") into one boolean expression. Operands go through the
// plain-expression translation mode; an empty rule list is the
// literal true.
func TranslateCondition(rules []Rule, combinator string, ctx *Context) Result {
	if len(rules) == 0 {
		return Result{Code: "true"}
	}

	join := " && "
	if combinator == "or" {
		join = " || "
	}

	parts := make([]string, len(rules))
	flagged := false
	for i, rule := range rules {
		code, f := translateRule(rule, ctx)
		flagged = flagged || f
		if len(rules) > 1 {
			code = "(" + code + ")"
		}
		parts[i] = code
	}
	return Result{Code: strings.Join(parts, join), Flagged: flagged}
}

func translateRule(rule Rule, ctx *Context) (string, bool) {
	left := translateOperand(rule.LeftValue, ctx)
	right := translateOperand(rule.RightValue, ctx)

	op := rule.Operator.Operation
	if canonical, ok := canonicalOps[op]; ok {
		op = canonical
	}

	if symbol, ok := symbolOps[op]; ok {
		return left.Code + " " + symbol + " " + right.Code, left.Flagged || right.Flagged
	}

	// Textual and existence operations have no single-token JavaScript
	// operator; they become method calls with a String() coercion on
	// the left so a non-string value cannot blow up the check.
	switch op {
	case "contains":
		return "String(" + left.Code + ").includes(" + right.Code + ")", left.Flagged || right.Flagged
	case "notContains":
		return "!String(" + left.Code + ").includes(" + right.Code + ")", left.Flagged || right.Flagged
	case "startsWith":
		return "String(" + left.Code + ").startsWith(" + right.Code + ")", left.Flagged || right.Flagged
	case "endsWith":
		return "String(" + left.Code + ").endsWith(" + right.Code + ")", left.Flagged || right.Flagged
	case "regex":
		return "new RegExp(" + right.Code + ").test(String(" + left.Code + "))", left.Flagged || right.Flagged
	case "notRegex":
		return "!new RegExp(" + right.Code + ").test(String(" + left.Code + "))", left.Flagged || right.Flagged
	case "exists":
		return left.Code + " !== undefined && " + left.Code + " !== null", left.Flagged
	case "notExists":
		return left.Code + " === undefined || " + left.Code + " === null", left.Flagged
	case "empty":
		return "!" + left.Code, left.Flagged
	case "notEmpty":
		return "!!" + left.Code, left.Flagged
	case "true":
		return left.Code + " === true", left.Flagged
	case "false":
		return left.Code + " === false", left.Flagged
	}

	// Unrecognized operations fall back to strict equality.
	return left.Code + " === " + right.Code, left.Flagged || right.Flagged
}

func translateOperand(raw any, ctx *Context) Result {
	if s, ok := raw.(string); ok {
		return TranslatePlain(s, ctx)
	}
	return Translate(raw, ctx)
}
