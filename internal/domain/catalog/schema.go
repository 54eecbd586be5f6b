package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// ValidationError lists every schema violation of a submitted answer set.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidAnswers, strings.Join(e.Details, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidAnswers }

// Schema returns the JSON schema of an answer object: known ids only, numbers
// everywhere, and choice answers restricted to their declared values. When
// complete is set every question must be answered.
func (c *Catalog) Schema(complete bool) map[string]any {
	props := make(map[string]any, len(c.questions))
	required := make([]any, 0, len(c.questions))
	for _, q := range c.questions {
		prop := map[string]any{"type": "number"}
		if q.Type == TypeChoice {
			// enum items must be unique; several labels may share a value
			enum := make([]any, 0, len(q.Choices))
			seen := make(map[float64]bool, len(q.Choices))
			for _, ch := range q.Choices {
				if seen[ch.Value] {
					continue
				}
				seen[ch.Value] = true
				enum = append(enum, ch.Value)
			}
			prop["enum"] = enum
		}
		props[q.ID] = prop
		required = append(required, q.ID)
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if complete {
		schema["required"] = required
	}
	return schema
}

// ParseAnswers validates a decoded JSON answer object against Schema and
// converts it into model.Answers.
func (c *Catalog) ParseAnswers(raw map[string]any, complete bool) (model.Answers, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(c.Schema(complete)),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAnswers, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, &ValidationError{Details: details}
	}

	answers := make(model.Answers, len(raw))
	for id, v := range raw {
		f, err := toFloat(v)
		if err != nil {
			return nil, &ValidationError{Details: []string{fmt.Sprintf("%s: %v", id, err)}}
		}
		answers[id] = f
	}
	return answers, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
