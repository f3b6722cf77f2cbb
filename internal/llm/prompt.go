package llm

import (
	"fmt"
	"strings"
)

// PromptSchema describes the JSON object the model must return.
type PromptSchema struct {
	Description string
	Fields      []SchemaField
}

// SchemaField is one expected output field.
type SchemaField struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Section is a labelled block of input text.
type Section struct {
	Label string
	Text  string
}

// BuildPrompt renders schema instructions followed by the input sections.
func BuildPrompt(schema PromptSchema, sections ...Section) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  %q: %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")
	sb.WriteString("Return ONLY the JSON object, no markdown, no explanation.\n")

	for _, s := range sections {
		sb.WriteString("\n")
		sb.WriteString(s.Label)
		sb.WriteString(":\n\"\"\"\n")
		sb.WriteString(s.Text)
		sb.WriteString("\n\"\"\"\n")
	}

	return sb.String()
}

// ScreeningSchema is the output contract for scoring a resume against a job description.
func ScreeningSchema() PromptSchema {
	return PromptSchema{
		Description: `You are an experienced technical recruiter screening a candidate.
Compare the resume with the job description and score how well the candidate fits the role.
Base every strength and gap on evidence in the resume.`,
		Fields: []SchemaField{
			{Name: "fitScore", Type: "integer 0-100", Description: "overall fit", Required: true},
			{Name: "fitCategory", Type: `"Strong" | "Medium" | "Low"`, Description: "Strong for 75+, Medium for 50-74, Low below 50", Required: true},
			{Name: "screeningSummary", Type: `"string"`, Description: "two or three sentence assessment", Required: true},
			{Name: "strengths", Type: `["string"]`, Description: "requirements the candidate clearly meets", Required: true},
			{Name: "gaps", Type: `["string"]`, Description: "requirements that are missing or weak", Required: true},
			{Name: "recommendedAction", Type: `"Interview" | "Review" | "Reject"`, Required: true},
		},
	}
}
