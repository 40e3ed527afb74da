package verify

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const resultSchemaURL = "schema://check-answer-response.json"

// resultSchema is the response contract of the check-answer endpoint.
var resultSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"correct": map[string]any{"type": "boolean"},
		"correct_letters": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "string",
				"enum": []any{"A", "B", "C", "D", "E"},
			},
		},
		"explanation": map[string]any{"type": "string"},
		"explain":     map[string]any{"type": "string"},
	},
	"required": []any{"correct", "correct_letters"},
}

// wireResult accepts both spellings of the explanation servers send.
type wireResult struct {
	Correct        bool     `json:"correct"`
	CorrectLetters []string `json:"correct_letters"`
	Explanation    string   `json:"explanation"`
	Explain        string   `json:"explain"`
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON value, so round-trip the Go literal.
		defBytes, err := json.Marshal(resultSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(resultSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(resultSchemaURL)
	})
	return compiled, compileErr
}

// decodeResult validates raw against the response schema and decodes it.
// Returns *InvalidResponseError on failure.
func decodeResult(raw []byte) (Result, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, &InvalidResponseError{Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := compiledSchema()
	if err != nil {
		return Result{}, &InvalidResponseError{Body: raw, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := schema.Validate(parsed); err != nil {
		return Result{}, &InvalidResponseError{Body: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return Result{}, &InvalidResponseError{Body: raw, Err: err}
	}
	res := Result{Correct: w.Correct, CorrectLetters: w.CorrectLetters, Explanation: w.Explanation}
	if res.Explanation == "" {
		res.Explanation = w.Explain
	}
	return res, nil
}
