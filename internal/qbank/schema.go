package qbank

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
)

// questionSchema is the record shape downstream emitters rely on.
var questionSchema = map[string]any{
	"$schema":  "https://json-schema.org/draft/2020-12/schema",
	"type":     "object",
	"required": []string{"stem", "options", "answer_indices", "type", "explanation", "subject", "difficulty"},
	"properties": map[string]any{
		"ordinal":     map[string]any{"type": "string"},
		"stem":        map[string]any{"type": "string", "minLength": 1},
		"shared_stem": map[string]any{"type": "string"},
		"options": map[string]any{
			"type":     "array",
			"minItems": 2,
			"maxItems": parser.MaxOptions,
			"items":    map[string]any{"type": "string"},
		},
		"answer_indices": map[string]any{
			"type":        "array",
			"minItems":    1,
			"maxItems":    parser.MaxOptions,
			"uniqueItems": true,
			"items":       map[string]any{"type": "integer", "minimum": 0, "maximum": parser.MaxOptions - 1},
		},
		"type":        map[string]any{"enum": []string{string(parser.Single), string(parser.Multiple)}},
		"explanation": map[string]any{"type": "string", "minLength": 1},
		"subject":     map[string]any{"type": "string", "minLength": 1},
		"difficulty":  map[string]any{"type": "integer", "minimum": parser.MinDifficulty, "maximum": parser.MaxDifficulty},
	},
}

func compileSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(questionSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("question.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("question.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validate checks every record against the schema and that each answer
// index points at an existing option.
func validate(schema *jsonschema.Schema, qs []parser.Question) error {
	for i, q := range qs {
		b, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if err := schema.Validate(v); err != nil {
			return fmt.Errorf("record %d does not match schema: %w", i, err)
		}
		for _, a := range q.AnswerIndices {
			if a >= len(q.Options) {
				return fmt.Errorf("record %d: answer index %d out of range", i, a)
			}
		}
	}
	return nil
}
