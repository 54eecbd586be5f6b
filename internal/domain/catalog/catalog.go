// Package catalog holds the weighted questionnaire that every scoring
// component reads: question definitions, category grouping in declaration
// order, default answers and answer validation.
package catalog

import (
	"fmt"
	"math"

	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// Type is the answer kind of a question.
type Type string

const (
	TypeNumeric Type = "numeric"
	TypeChoice  Type = "choice"
)

// Choice is one pre-scored option of a choice question.
type Choice struct {
	Label string  `json:"label" koanf:"label"`
	Value float64 `json:"value" koanf:"value"`
}

// Question is a single weighted questionnaire entry.
type Question struct {
	ID       string   `json:"id" koanf:"id"`
	Category string   `json:"category" koanf:"category"`
	Label    string   `json:"label" koanf:"label"`
	Help     string   `json:"help,omitempty" koanf:"help"`
	Type     Type     `json:"type" koanf:"type"`
	Weight   float64  `json:"weight" koanf:"weight"`
	Min      float64  `json:"min,omitempty" koanf:"min"`
	Max      float64  `json:"max,omitempty" koanf:"max"`
	Step     float64  `json:"step,omitempty" koanf:"step"`
	Unit     string   `json:"unit,omitempty" koanf:"unit"`
	Choices  []Choice `json:"choices,omitempty" koanf:"choices"`
}

// Catalog is an immutable, validated set of questions.
type Catalog struct {
	questions  []Question
	index      map[string]int
	categories []string
	byCategory map[string][]int
}

// New validates questions and builds a Catalog preserving declaration order.
func New(questions []Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidCatalog)
	}
	c := &Catalog{
		questions:  make([]Question, len(questions)),
		index:      make(map[string]int, len(questions)),
		byCategory: make(map[string][]int),
	}
	copy(c.questions, questions)

	for i, q := range c.questions {
		if err := validateQuestion(q); err != nil {
			return nil, err
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidCatalog, q.ID)
		}
		c.index[q.ID] = i
		if _, seen := c.byCategory[q.Category]; !seen {
			c.categories = append(c.categories, q.Category)
		}
		c.byCategory[q.Category] = append(c.byCategory[q.Category], i)
	}
	return c, nil
}

func validateQuestion(q Question) error {
	switch {
	case q.ID == "":
		return fmt.Errorf("%w: question without id", ErrInvalidCatalog)
	case q.Category == "":
		return fmt.Errorf("%w: question %q has no category", ErrInvalidCatalog, q.ID)
	case q.Weight <= 0 || math.IsNaN(q.Weight):
		return fmt.Errorf("%w: question %q weight must be positive", ErrInvalidCatalog, q.ID)
	}
	switch q.Type {
	case TypeNumeric:
		if q.Min > q.Max {
			return fmt.Errorf("%w: question %q min %v exceeds max %v", ErrInvalidCatalog, q.ID, q.Min, q.Max)
		}
	case TypeChoice:
		if len(q.Choices) == 0 {
			return fmt.Errorf("%w: choice question %q has no choices", ErrInvalidCatalog, q.ID)
		}
		for _, ch := range q.Choices {
			if ch.Value < 0 || ch.Value > 100 {
				return fmt.Errorf("%w: question %q choice %q value %v outside [0,100]", ErrInvalidCatalog, q.ID, ch.Label, ch.Value)
			}
		}
	default:
		return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalidCatalog, q.ID, q.Type)
	}
	return nil
}

// Questions returns all questions in declaration order.
func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Question looks up a question by id.
func (c *Catalog) Question(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Categories returns category names in the order they first appear.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// ByCategory returns the questions of one category in declaration order.
func (c *Catalog) ByCategory(category string) []Question {
	idx := c.byCategory[category]
	out := make([]Question, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.questions[i])
	}
	return out
}

// TotalWeight is the sum of all question weights.
func (c *Catalog) TotalWeight() float64 {
	var total float64
	for _, q := range c.questions {
		total += q.Weight
	}
	return total
}

// DefaultAnswers returns a complete Answers map: the lower bound of every
// numeric question and the first choice of every choice question.
func (c *Catalog) DefaultAnswers() model.Answers {
	out := make(model.Answers, len(c.questions))
	for _, q := range c.questions {
		if q.Type == TypeChoice {
			out[q.ID] = q.Choices[0].Value
			continue
		}
		out[q.ID] = q.Min
	}
	return out
}

// MissingAnswers lists, in declaration order, the questions of category that
// have no answer. Unknown categories are an error.
func (c *Catalog) MissingAnswers(answers model.Answers, category string) ([]string, error) {
	idx, ok := c.byCategory[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	var missing []string
	for _, i := range idx {
		id := c.questions[i].ID
		if _, ok := answers.Lookup(id); !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Progress is the completion percentage once the wizard step at index is
// reached, counting categories in declaration order.
func (c *Catalog) Progress(index int) int {
	n := len(c.categories)
	switch {
	case index < 0:
		return 0
	case index >= n:
		return 100
	}
	return int(math.Round(float64(index+1) * 100 / float64(n)))
}
