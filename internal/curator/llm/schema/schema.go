// Package schema validates structured LLM output against a JSON schema
// before decoding it into the concrete Go struct the caller expects
// (SearchPlan, ResearchAnswer, ContentProcessingLLMOutput).
//
// Grounded verbatim on registry/service.go's
// validatePayloadJSONAgainstSchema: compile the schema with
// jsonschema.NewCompiler, decode the candidate payload, and validate
// before trusting it.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateAndDecode validates payloadJSON against schemaDoc (a JSON
// schema as a Go value, e.g. map[string]any) and, if it passes,
// unmarshals it into dst.
func ValidateAndDecode(payloadJSON []byte, schemaDoc any, dst any) error {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return fmt.Errorf("schema: add resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("schema: compile: %w", err)
	}

	var payloadDoc any
	if err := json.Unmarshal(payloadJSON, &payloadDoc); err != nil {
		return fmt.Errorf("schema: unmarshal payload: %w", err)
	}
	if err := compiled.Validate(payloadDoc); err != nil {
		return fmt.Errorf("schema: validate: %w", err)
	}
	return json.Unmarshal(payloadJSON, dst)
}

// SearchPlanSchema is the structured-output contract for the research
// planner node (model.SearchPlan).
var SearchPlanSchema = map[string]any{
	"type":     "object",
	"required": []string{"subQueries", "sources", "rationale"},
	"properties": map[string]any{
		"subQueries": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "string"},
		},
		"sources": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "enum": []string{"keyword", "vector"}},
		},
		"rationale": map[string]any{"type": "string"},
	},
}

// ResearchAnswerSchema is the structured-output contract for the writer
// node (model.ResearchAnswer).
var ResearchAnswerSchema = map[string]any{
	"type":     "object",
	"required": []string{"answer", "answerType", "confidence", "needsMoreInfo"},
	"properties": map[string]any{
		"answer": map[string]any{"type": "string"},
		"answerType": map[string]any{
			"type": "string",
			"enum": []string{"comparison", "explanation", "recommendation", "summary"},
		},
		"sources":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"confidence":    map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"needsMoreInfo": map[string]any{"type": "boolean"},
		"followUps":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
}

// ContentProcessingSchema is the structured-output contract for the
// distillation activity.
var ContentProcessingSchema = map[string]any{
	"type":     "object",
	"required": []string{"mainContentStartLine", "mainContentEndLine", "summary"},
	"properties": map[string]any{
		"mainContentStartLine": map[string]any{"type": "integer", "minimum": 1},
		"mainContentEndLine":   map[string]any{"type": "integer", "minimum": 1},
		"summary":              map[string]any{"type": "string"},
	},
}
