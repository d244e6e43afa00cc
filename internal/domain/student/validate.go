package student

import (
	"fmt"
	"regexp"

	"github.com/edurisk/student-risk-hub/internal/domain/shared"
)

// numericRange describes the allowed bounds of a numeric field.
type numericRange struct {
	Name string
	Min  int
	Max  int
}

// NumericRanges lists every numeric field with its allowed range.
// The order matches the training dataset column order for readability.
var NumericRanges = []numericRange{
	{"age", 15, 22},
	{"Medu", 0, 4},
	{"Fedu", 0, 4},
	{"traveltime", 1, 4},
	{"studytime", 1, 4},
	{"failures", 0, 4},
	{"famrel", 1, 5},
	{"freetime", 1, 5},
	{"goout", 1, 5},
	{"Dalc", 1, 5},
	{"Walc", 1, 5},
	{"health", 1, 5},
	{"absences", 0, 93},
	{"G1", int(shared.GradeMin), int(shared.GradeMax)},
	{"G2", int(shared.GradeMin), int(shared.GradeMax)},
}

// categoricalValuePattern accepts short identifier-like values only.
// Unknown-but-well-formed values pass validation and are handled by the
// encoder's default code; garbage like "F@#" is rejected here.
var categoricalValuePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,49}$`)

// Validate checks structural validity of the record: every categorical field
// present and well formed, every numeric field inside its allowed range.
// Values outside an enumerated categorical domain are deliberately not
// rejected; the encoder maps them to a default code.
func (r Record) Validate() error {
	for name := range CategoricalDomains {
		raw, _ := r.CategoricalValue(name)
		if raw == "" {
			return shared.WrapError("student", "Validate", shared.ErrMissingField,
				fmt.Sprintf("missing required field: %s", name), nil)
		}
		if !categoricalValuePattern.MatchString(raw) {
			return shared.WrapError("student", "Validate", shared.ErrInvalidFormat,
				fmt.Sprintf("field %s contains invalid characters", name), nil)
		}
	}

	for _, nr := range NumericRanges {
		v, _ := r.NumericValue(nr.Name)
		iv := int(v)
		if iv < nr.Min || iv > nr.Max {
			return shared.WrapError("student", "Validate", shared.ErrValueOutOfRange,
				fmt.Sprintf("%s must be between %d and %d", nr.Name, nr.Min, nr.Max), nil)
		}
	}

	return nil
}

// InDomain reports whether the raw value belongs to the fitted domain of the
// named categorical field.
func InDomain(field, raw string) bool {
	domain, ok := CategoricalDomains[field]
	if !ok {
		return false
	}
	for _, v := range domain {
		if v == raw {
			return true
		}
	}
	return false
}
