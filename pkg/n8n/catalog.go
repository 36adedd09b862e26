package n8n

import (
	"strconv"
	"strings"
)

// Category is the coarse classification of a node type used by the
// graph analyzer and downstream code emitters.
type Category string

const (
	CategoryTrigger     Category = "trigger"
	CategoryFlowControl Category = "flow-control"
	CategoryTransform   Category = "transform"
	CategoryIntegration Category = "integration"
	CategoryAI          Category = "ai"
	// CategoryAction is the fallback for unrecognized type tags. Such
	// nodes still participate fully in graph and expression logic.
	CategoryAction Category = "action"
)

const langchainPrefix = "@n8n/n8n-nodes-langchain."

// LoopContinuePort is the output port of a splitInBatches node that
// feeds the loop body; port 0 carries the "done" output.
const LoopContinuePort = 1

// categories maps the short type name (the part after the package
// prefix) to its classification. Closed table: new node types land in
// CategoryAction until added here.
var categories = map[string]Category{
	"manualTrigger":          CategoryTrigger,
	"scheduleTrigger":        CategoryTrigger,
	"cron":                   CategoryTrigger,
	"webhook":                CategoryTrigger,
	"errorTrigger":           CategoryTrigger,
	"formTrigger":            CategoryTrigger,
	"emailReadImap":          CategoryTrigger,
	"executeWorkflowTrigger": CategoryTrigger,

	"if":             CategoryFlowControl,
	"switch":         CategoryFlowControl,
	"merge":          CategoryFlowControl,
	"filter":         CategoryFlowControl,
	"splitInBatches": CategoryFlowControl,
	"wait":           CategoryFlowControl,
	"noOp":           CategoryFlowControl,
	"stopAndError":   CategoryFlowControl,

	"set":          CategoryTransform,
	"code":         CategoryTransform,
	"function":     CategoryTransform,
	"functionItem": CategoryTransform,
	"itemLists":    CategoryTransform,
	"splitOut":     CategoryTransform,
	"aggregate":    CategoryTransform,
	"renameKeys":   CategoryTransform,
	"sort":         CategoryTransform,
	"limit":        CategoryTransform,
	"dateTime":     CategoryTransform,
	"crypto":       CategoryTransform,
	"html":         CategoryTransform,
	"markdown":     CategoryTransform,

	"httpRequest":      CategoryIntegration,
	"postgres":         CategoryIntegration,
	"mysql":            CategoryIntegration,
	"redis":            CategoryIntegration,
	"mongoDb":          CategoryIntegration,
	"graphql":          CategoryIntegration,
	"emailSend":        CategoryIntegration,
	"gmail":            CategoryIntegration,
	"slack":            CategoryIntegration,
	"telegram":         CategoryIntegration,
	"discord":          CategoryIntegration,
	"googleSheets":     CategoryIntegration,
	"googleDrive":      CategoryIntegration,
	"airtable":         CategoryIntegration,
	"notion":           CategoryIntegration,
	"github":           CategoryIntegration,
	"s3":               CategoryIntegration,
	"awsS3":            CategoryIntegration,
	"ftp":              CategoryIntegration,
	"ssh":              CategoryIntegration,
	"executeWorkflow":  CategoryIntegration,
	"respondToWebhook": CategoryIntegration,
}

// shortType strips the package prefix from a full node type tag, e.g.
// "n8n-nodes-base.httpRequest" -> "httpRequest".
func shortType(typeTag string) string {
	if i := strings.LastIndex(typeTag, "."); i >= 0 {
		return typeTag[i+1:]
	}
	return typeTag
}

// Classify maps a node type tag to its category.
func Classify(typeTag string) Category {
	if strings.HasPrefix(typeTag, langchainPrefix) {
		return CategoryAI
	}
	if c, ok := categories[shortType(typeTag)]; ok {
		return c
	}
	return CategoryAction
}

// IsTrigger reports whether the type tag is a workflow entry point.
func IsTrigger(typeTag string) bool {
	if Classify(typeTag) == CategoryTrigger {
		return true
	}
	return strings.HasSuffix(shortType(typeTag), "Trigger")
}

// IsConditional reports whether the node fans out over labeled output
// ports (if/switch), the shape branch detection looks for.
func IsConditional(typeTag string) bool {
	switch shortType(typeTag) {
	case "if", "switch":
		return true
	}
	return false
}

// IsLoop reports whether the node is a bounded-iteration construct
// with a loop-continue output port.
func IsLoop(typeTag string) bool {
	return shortType(typeTag) == "splitInBatches"
}

// IsMerge reports whether the node joins multiple inputs.
func IsMerge(typeTag string) bool {
	return shortType(typeTag) == "merge"
}

// BranchLabel names one output port of a conditional node for display
// and for condition labels on BranchInfo.
func BranchLabel(typeTag string, outputIndex int) string {
	if shortType(typeTag) == "if" {
		switch outputIndex {
		case 0:
			return "true"
		case 1:
			return "false"
		}
	}
	return "output " + strconv.Itoa(outputIndex)
}
