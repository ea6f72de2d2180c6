package score

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/audit.md
var auditPromptRaw string

// AuditPromptTemplate is the parsed prompt template for the LLM scorer.
// Parsed once at package init; reused on every Score call.
var AuditPromptTemplate = template.Must(template.New("audit").Parse(auditPromptRaw))
