// Package model loads frozen model artifacts (classifier ensemble, categorical
// encoding tables, label table) and serves inference for the assessment
// pipeline. Artifacts are produced by the offline trainer as JSON, loaded once
// at process start, and treated as read-only and shared across requests.
package model

import (
	"fmt"

	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/internal/domain/student"
)

// ColumnOrder is the feature order fixed at training time. Encoding keys
// features by name and materializes them in this order only at the very end,
// so a column reordering in one place cannot silently corrupt the vector.
var ColumnOrder = []string{
	"school", "sex", "age", "address", "famsize", "Pstatus",
	"Medu", "Fedu", "Mjob", "Fjob", "reason", "guardian",
	"traveltime", "studytime", "failures", "schoolsup", "famsup", "paid",
	"activities", "nursery", "higher", "internet", "romantic", "famrel",
	"freetime", "goout", "Dalc", "Walc", "health", "absences",
	"G1", "G2", "average_grade", "grade_change",
}

// FieldEncoding is the fitted encoder of a single categorical field.
// The code of a class is its index in Classes. Values outside the fitted
// domain encode to DefaultCode.
type FieldEncoding struct {
	Classes     []string `json:"classes"`
	DefaultCode int      `json:"default_code"`
}

// Encode returns the integer code for a raw value. The bool reports whether
// the value was in the fitted domain; when false the default code is used.
func (f FieldEncoding) Encode(raw string) (int, bool) {
	for i, c := range f.Classes {
		if c == raw {
			return i, true
		}
	}
	return f.DefaultCode, false
}

// EncodingTable holds one fitted encoder per categorical field. Built at
// training time, immutable at inference time.
type EncodingTable struct {
	Fields map[string]FieldEncoding `json:"fields"`
}

// Validate checks that the table covers every categorical column.
func (t *EncodingTable) Validate() error {
	if t == nil || t.Fields == nil {
		return shared.ErrEncodersNotLoaded
	}
	for name := range student.CategoricalDomains {
		enc, ok := t.Fields[name]
		if !ok {
			return shared.WrapError("prediction", "Encode", shared.ErrEncodingUnavailable,
				fmt.Sprintf("encoding table missing field %s", name), nil)
		}
		if len(enc.Classes) == 0 {
			return shared.WrapError("prediction", "Encode", shared.ErrEncodingUnavailable,
				fmt.Sprintf("encoding table for field %s has no classes", name), nil)
		}
	}
	return nil
}

// BuildVector materializes the engineered record into the frozen column
// order. Categorical fields are replaced by their fitted codes, numeric
// fields pass through. The returned slice of field names lists categorical
// values that fell outside their fitted domain and were substituted with the
// default code; callers log these.
func BuildVector(rec student.Record, table *EncodingTable) ([]float64, []string, error) {
	if table == nil || table.Fields == nil {
		return nil, nil, shared.ErrEncodersNotLoaded
	}

	vector := make([]float64, len(ColumnOrder))
	var unknown []string

	for i, name := range ColumnOrder {
		if enc, ok := table.Fields[name]; ok {
			raw, isCategorical := rec.CategoricalValue(name)
			if !isCategorical {
				return nil, nil, shared.WrapError("prediction", "Encode", shared.ErrEncodingUnavailable,
					fmt.Sprintf("encoding table covers non-categorical column %s", name), nil)
			}
			code, known := enc.Encode(raw)
			if !known {
				unknown = append(unknown, name)
			}
			vector[i] = float64(code)
			continue
		}

		v, ok := rec.NumericValue(name)
		if !ok {
			return nil, nil, shared.WrapError("prediction", "Encode", shared.ErrEncodingUnavailable,
				fmt.Sprintf("record has no value for column %s", name), nil)
		}
		vector[i] = v
	}

	return vector, unknown, nil
}
