package generation

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema document.
type Schema struct {
	Name       string
	Definition map[string]any
}

// FlashcardSchema is the expected shape of a flashcard response.
var FlashcardSchema = &Schema{
	Name: "flashcards",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cards": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":        map[string]any{"type": "integer"},
						"frontHTML": map[string]any{"type": "string", "minLength": 1},
						"backHTML":  map[string]any{"type": "string", "minLength": 1},
					},
					"required": []any{"frontHTML", "backHTML"},
				},
			},
		},
		"required": []any{"cards"},
	},
}

// ModuleSchema is the expected shape of a learning-path response.
var ModuleSchema = &Schema{
	Name: "learning_path_modules",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modules": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":       map[string]any{"type": "string", "minLength": 1},
						"description": map[string]any{"type": "string"},
						"topics": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required": []any{"title"},
				},
			},
		},
		"required": []any{"modules"},
	},
}

// compiled schemas by name
var schemaCache sync.Map

// Validate checks raw JSON against s. It returns an error wrapping
// ErrInvalidResponse when raw is not JSON or does not conform.
func (s *Schema) Validate(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrInvalidResponse, err)
	}

	compiled, err := s.compile()
	if err != nil {
		return fmt.Errorf("%w: compile schema %q: %v", ErrInvalidResponse, s.Name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("%w: schema %q: %v", ErrInvalidResponse, s.Name, err)
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(s.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// round-trip so the compiler sees plain JSON values
	defBytes, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", s.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(s.Name, compiled)
	return compiled, nil
}
