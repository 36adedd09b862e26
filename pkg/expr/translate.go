package expr

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type mode int

const (
	// modeValue produces something assignable: plain text becomes a
	// quoted string, mixed text becomes a template literal.
	modeValue mode = iota
	// modePlain produces a bare expression for condition operands;
	// numeric and boolean literals stay unquoted.
	modePlain
)

// Translate rewrites one raw parameter value into a JavaScript
// fragment. Strings go through the reference-expression rules;
// numbers, booleans and nil become literals; maps and slices become
// object/array literals with their nested strings translated.
func Translate(raw any, ctx *Context) Result {
	return translateAny(raw, ctx, modeValue)
}

// TranslatePlain rewrites a raw string into a bare expression, for
// positions (condition operands, ternary arguments) where a template
// wrapper would be wrong.
func TranslatePlain(raw string, ctx *Context) Result {
	return translateString(raw, ctx, modePlain)
}

func translateAny(raw any, ctx *Context, m mode) Result {
	switch v := raw.(type) {
	case nil:
		return Result{Code: "null"}
	case string:
		return translateString(v, ctx, m)
	case bool:
		return Result{Code: strconv.FormatBool(v)}
	case float64:
		return Result{Code: strconv.FormatFloat(v, 'f', -1, 64)}
	case int:
		return Result{Code: strconv.Itoa(v)}
	case int64:
		return Result{Code: strconv.FormatInt(v, 10)}
	case []any:
		parts := make([]string, len(v))
		flagged := false
		for i, elem := range v {
			r := translateAny(elem, ctx, modeValue)
			parts[i] = r.Code
			flagged = flagged || r.Flagged
		}
		return Result{Code: "[" + strings.Join(parts, ", ") + "]", Flagged: flagged}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		flagged := false
		for _, k := range keys {
			r := translateAny(v[k], ctx, modeValue)
			parts = append(parts, strconv.Quote(k)+": "+r.Code)
			flagged = flagged || r.Flagged
		}
		return Result{Code: "{ " + strings.Join(parts, ", ") + " }", Flagged: flagged}
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Result{Code: "null", Flagged: true}
		}
		return Result{Code: string(b)}
	}
}

func translateString(s string, ctx *Context, m mode) Result {
	if text, marked := strings.CutPrefix(s, "="); marked {
		s = text
	}
	if !strings.Contains(s, "{{") {
		return literalResult(s, m)
	}

	segments := splitTemplate(s)
	if len(segments) == 0 {
		return literalResult("", m)
	}

	// A value that is exactly one reference stays an unwrapped
	// expression so the generated code reads naturally.
	if ref, ok := soleReference(segments); ok {
		code, flagged := translateRef(ref, ctx)
		return Result{Code: code, Flagged: flagged}
	}

	var b strings.Builder
	b.WriteByte('`')
	flagged := false
	for _, seg := range segments {
		if seg.literal {
			b.WriteString(escapeTemplate(seg.text))
			continue
		}
		code, f := translateRef(seg.text, ctx)
		flagged = flagged || f
		b.WriteString("${")
		b.WriteString(code)
		b.WriteString("}")
	}
	b.WriteByte('`')
	return Result{Code: b.String(), Flagged: flagged}
}

func literalResult(s string, m mode) Result {
	if m == modePlain {
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return Result{Code: s}
		}
		if s == "true" || s == "false" || s == "null" {
			return Result{Code: s}
		}
	}
	return Result{Code: strconv.Quote(s)}
}

type segment struct {
	literal bool
	text    string
}

// splitTemplate cuts a string into literal runs and {{ ... }}
// reference bodies. An unterminated {{ is kept as literal text.
func splitTemplate(s string) []segment {
	var segments []segment
	for {
		open := strings.Index(s, "{{")
		if open < 0 {
			break
		}
		end := strings.Index(s[open+2:], "}}")
		if end < 0 {
			break
		}
		if open > 0 {
			segments = append(segments, segment{literal: true, text: s[:open]})
		}
		segments = append(segments, segment{text: strings.TrimSpace(s[open+2 : open+2+end])})
		s = s[open+2+end+2:]
	}
	if s != "" {
		segments = append(segments, segment{literal: true, text: s})
	}
	return segments
}

func soleReference(segments []segment) (string, bool) {
	ref := ""
	for _, seg := range segments {
		if seg.literal {
			if seg.text != "" {
				return "", false
			}
			continue
		}
		if ref != "" {
			return "", false
		}
		ref = seg.text
	}
	return ref, ref != ""
}

func escapeTemplate(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	s = strings.ReplaceAll(s, "${", "\\${")
	return s
}

// Recognized reference forms. Each rule is matched independently so
// new forms can be added without reordering the existing ones.
var (
	rePath    = `(?:\.[A-Za-z_$][\w$]*|\[[^\]]+\])*`
	reJSON    = regexp.MustCompile(`^\$json(` + rePath + `)$`)
	reNodeRef = regexp.MustCompile(`^\$\(\s*'([^']+)'\s*\)(.*)$`)
	reNodeIdx = regexp.MustCompile(`^\$node\[["']([^"']+)["']\](.*)$`)
	reInput   = regexp.MustCompile(`^\$input\.(all\(\)|first\(\)|last\(\)|item)(.*)$`)
	reEnvDot  = regexp.MustCompile(`^\$env\.([A-Za-z_]\w*)$`)
	reEnvIdx  = regexp.MustCompile(`^\$env\[["']([^"']+)["']\]$`)
	reIfCall  = regexp.MustCompile(`^\$if\s*\(`)
	reNumber  = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	reString  = regexp.MustCompile(`^'(?:[^'\\]|\\.)*'$`)
	rePathRE  = regexp.MustCompile(`^` + rePath + `$`)

	metadata = map[string]string{
		"$execution.id":        "context.executionId",
		"$execution.mode":      "context.executionMode",
		"$execution.resumeUrl": "context.resumeUrl",
		"$workflow.id":         "context.workflowId",
		"$workflow.name":       "context.workflowName",
		"$workflow.active":     "context.workflowActive",
		"$itemIndex":           "index",
		"$runIndex":            "context.runIndex",
	}

	// reToken finds reference tokens embedded in larger arithmetic
	// expressions.
	reToken = regexp.MustCompile(
		`\$\(\s*'[^']+'\s*\)(?:\.[A-Za-z_$][\w$]*|\[[^\]]+\]|\(\))*` +
			`|\$node\[["'][^"']+["']\](?:\.[A-Za-z_$][\w$]*|\[[^\]]+\])*` +
			`|\$json(?:\.[A-Za-z_$][\w$]*|\[[^\]]+\])*` +
			`|\$env\.[A-Za-z_]\w*` +
			`|\$now\b|\$today\b`)

	// reResidue accepts what may surround tokens in an arithmetic
	// expression: numbers, operators, grouping, string literals and
	// plain identifiers (Math.round, toFixed, ...).
	reResidue = regexp.MustCompile(`^[\s\w+\-*/%().,<>=!&|?:'"\x60\[\]]*$`)
)

// translateRef rewrites one brace-body (or bare marked expression)
// into JavaScript. The bool result reports whether the form was
// unrecognized and passed through for review.
func translateRef(src string, ctx *Context) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return `""`, false
	}

	switch src {
	case "$json":
		return "item", false
	case "$now":
		return "new Date().toISOString()", false
	case "$today":
		return "new Date().toISOString().slice(0, 10)", false
	case "$input.all()":
		return "items", false
	}
	if code, ok := metadata[src]; ok {
		return code, false
	}

	if m := reJSON.FindStringSubmatch(src); m != nil {
		return "item" + m[1], false
	}
	if m := reNodeRef.FindStringSubmatch(src); m != nil {
		if code, ok := nodeRefCode(ctx.Var(m[1]), m[2]); ok {
			return code, false
		}
	}
	if m := reNodeIdx.FindStringSubmatch(src); m != nil {
		if code, ok := nodeRefCode(ctx.Var(m[1]), m[2]); ok {
			return code, false
		}
	}
	if m := reInput.FindStringSubmatch(src); m != nil {
		if code, ok := inputCode(m[1], m[2]); ok {
			return code, false
		}
	}
	if m := reEnvDot.FindStringSubmatch(src); m != nil {
		return "process.env." + m[1], false
	}
	if m := reEnvIdx.FindStringSubmatch(src); m != nil {
		if reEnvDot.MatchString("$env." + m[1]) {
			return "process.env." + m[1], false
		}
		return "process.env[" + strconv.Quote(m[1]) + "]", false
	}
	if reIfCall.MatchString(src) {
		if code, ok := ternaryCode(src, ctx); ok {
			return code, false
		}
	}

	// Literals appear as ternary arguments and survive as-is.
	if reNumber.MatchString(src) || reString.MatchString(src) ||
		src == "true" || src == "false" || src == "null" {
		return src, false
	}

	if code, ok := arithmeticCode(src, ctx); ok {
		return code, false
	}

	return src, true
}

// nodeRefCode maps an upstream-node reference tail (.item.json.x,
// .first().json.x, .all(), .json["x"]) onto the node's variable.
func nodeRefCode(variable, tail string) (string, bool) {
	for _, prefix := range []string{".first()", ".last()", ".all()", ".item"} {
		rest, ok := strings.CutPrefix(tail, prefix)
		if !ok {
			continue
		}
		// ".item" must be a whole segment, not a prefix of another
		// accessor like ".itemMatching(...)".
		if rest != "" && rest[0] != '.' && rest[0] != '[' {
			continue
		}
		tail = rest
		break
	}
	tail = strings.TrimPrefix(tail, ".json")
	if !rePathRE.MatchString(tail) {
		return "", false
	}
	return variable + tail, true
}

// inputCode maps the current step's input-collection accessors.
func inputCode(accessor, tail string) (string, bool) {
	tail = strings.TrimPrefix(tail, ".json")
	if !rePathRE.MatchString(tail) {
		return "", false
	}
	switch accessor {
	case "all()":
		return "items" + tail, true
	case "first()":
		return "items[0]" + tail, true
	case "last()":
		return "items[items.length - 1]" + tail, true
	case "item":
		return "item" + tail, true
	}
	return "", false
}

// ternaryCode rewrites $if(cond, then, else) as a JavaScript ternary,
// translating each argument recursively.
func ternaryCode(src string, ctx *Context) (string, bool) {
	open := strings.Index(src, "(")
	if open < 0 || !strings.HasSuffix(src, ")") {
		return "", false
	}
	args := splitArgs(src[open+1 : len(src)-1])
	if len(args) != 3 {
		return "", false
	}
	parts := make([]string, 3)
	for i, arg := range args {
		code, flagged := translateRef(arg, ctx)
		if flagged {
			return "", false
		}
		parts[i] = code
	}
	return "(" + parts[0] + " ? " + parts[1] + " : " + parts[2] + ")", true
}

// splitArgs splits on top-level commas, respecting nesting and quotes.
func splitArgs(s string) []string {
	var args []string
	depth := 0
	quote := byte(0)
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	args = append(args, strings.TrimSpace(s[start:]))
	return args
}

// arithmeticCode handles expressions that mix reference tokens with
// numeric operators ({{ $json.price * 1.1 }}): each token is
// substituted in place and everything around them passes through
// unchanged, provided the residue looks like expression text.
func arithmeticCode(src string, ctx *Context) (string, bool) {
	locations := reToken.FindAllStringIndex(src, -1)
	if len(locations) == 0 {
		return "", false
	}
	residue := reToken.ReplaceAllString(src, "")
	if !reResidue.MatchString(residue) {
		return "", false
	}
	var b strings.Builder
	prev := 0
	for _, loc := range locations {
		b.WriteString(src[prev:loc[0]])
		code, flagged := translateRef(src[loc[0]:loc[1]], ctx)
		if flagged {
			return "", false
		}
		b.WriteString(code)
		prev = loc[1]
	}
	b.WriteString(src[prev:])
	return b.String(), true
}
