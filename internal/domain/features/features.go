// Package features turns questionnaire answers into the fixed-size input
// vector of the predictive model.
package features

import (
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// Size is the input width of the predictive model.
const Size = 200

const (
	defaultImportance    = 100
	importanceNormalizer = 300
)

// Vector is one model input.
type Vector [Size]float64

// Slice returns the vector as a slice, the shape the wire format expects.
func (v Vector) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// Defaults returns the default-mean vector.
func Defaults() Vector {
	return Vector(defaultMeans)
}

// Weight is the blend factor of index i, in (0,1).
func Weight(i int) float64 {
	imp, ok := importance[i]
	if !ok {
		imp = defaultImportance
	}
	return imp / importanceNormalizer
}

// Normalize rescales value from [srcMin,srcMax] into [dstMin,dstMax], clamping
// the fraction to [0,1] and inverting it first when inverted is set.
func Normalize(value, srcMin, srcMax, dstMin, dstMax float64, inverted bool) float64 {
	var frac float64
	if srcMax != srcMin {
		frac = (value - srcMin) / (srcMax - srcMin)
	}
	frac = max(0, min(1, frac))
	if inverted {
		frac = 1 - frac
	}
	return dstMin + frac*(dstMax-dstMin)
}

// Transformer builds model inputs for the questions of a catalog.
type Transformer struct {
	questions []string
	mappings  map[string]Mapping
}

// NewTransformer binds the built-in mapping table to c. Questions are visited
// in catalog order.
func NewTransformer(c *catalog.Catalog) *Transformer {
	t := &Transformer{mappings: make(map[string]Mapping)}
	for _, q := range c.Questions() {
		m, ok := mappings[q.ID]
		if !ok {
			continue
		}
		t.questions = append(t.questions, q.ID)
		t.mappings[q.ID] = m
	}
	return t
}

// Transform computes the vector for answers. Every index touched by at least
// one answered question becomes (1-w)*default + w*mean(contributions); the
// result does not depend on the order answers are applied in. Untouched
// indices keep their default mean.
func (t *Transformer) Transform(answers model.Answers) Vector {
	var sum, count [Size]float64
	for _, id := range t.questions {
		value, ok := answers.Lookup(id)
		if !ok {
			continue
		}
		m := t.mappings[id]
		tv := m.Transform(value)
		for _, i := range m.Indices {
			sum[i] += tv
			count[i]++
		}
	}

	v := Defaults()
	for i := range v {
		if count[i] == 0 {
			continue
		}
		w := Weight(i)
		v[i] = (1-w)*v[i] + w*(sum[i]/count[i])
	}
	return v
}
