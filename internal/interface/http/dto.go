package http

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/edurisk/student-risk-hub/internal/application/command"
	"github.com/edurisk/student-risk-hub/internal/application/query"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DTO
// ══════════════════════════════════════════════════════════════════════════════

// IntField is an integer that accepts both JSON numbers and numeric strings,
// and tracks whether the field was present at all. Form-originated clients
// send every numeric as a string, so "17" and 17 are equivalent.
type IntField struct {
	value int
	set   bool
}

// Int returns the parsed value (zero when unset).
func (f IntField) Int() int { return f.value }

// Set reports whether the field was present in the request body.
func (f IntField) Set() bool { return f.set }

// UnmarshalJSON implements json.Unmarshaler.
func (f *IntField) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a whole number: %q", s)
		}
		f.value, f.set = v, true
		return nil
	}

	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

// AssessRequest is the inbound assessment body: every student record field
// plus the optional custom advice instruction.
type AssessRequest struct {
	School     string `json:"school"`
	Sex        string `json:"sex"`
	Address    string `json:"address"`
	Famsize    string `json:"famsize"`
	Pstatus    string `json:"Pstatus"`
	Mjob       string `json:"Mjob"`
	Fjob       string `json:"Fjob"`
	Reason     string `json:"reason"`
	Guardian   string `json:"guardian"`
	Schoolsup  string `json:"schoolsup"`
	Famsup     string `json:"famsup"`
	Paid       string `json:"paid"`
	Activities string `json:"activities"`
	Nursery    string `json:"nursery"`
	Higher     string `json:"higher"`
	Internet   string `json:"internet"`
	Romantic   string `json:"romantic"`

	Age        IntField `json:"age"`
	Medu       IntField `json:"Medu"`
	Fedu       IntField `json:"Fedu"`
	Traveltime IntField `json:"traveltime"`
	Studytime  IntField `json:"studytime"`
	Failures   IntField `json:"failures"`
	Famrel     IntField `json:"famrel"`
	Freetime   IntField `json:"freetime"`
	Goout      IntField `json:"goout"`
	Dalc       IntField `json:"Dalc"`
	Walc       IntField `json:"Walc"`
	Health     IntField `json:"health"`
	Absences   IntField `json:"absences"`
	G1         IntField `json:"G1"`
	G2         IntField `json:"G2"`

	CustomPrompt string `json:"customPrompt"`
}

// numericFields pairs each numeric field name with its accessor, in the
// dataset column order used by validation messages.
func (r AssessRequest) numericFields() []struct {
	Name  string
	Field IntField
} {
	return []struct {
		Name  string
		Field IntField
	}{
		{"age", r.Age},
		{"Medu", r.Medu},
		{"Fedu", r.Fedu},
		{"traveltime", r.Traveltime},
		{"studytime", r.Studytime},
		{"failures", r.Failures},
		{"famrel", r.Famrel},
		{"freetime", r.Freetime},
		{"goout", r.Goout},
		{"Dalc", r.Dalc},
		{"Walc", r.Walc},
		{"health", r.Health},
		{"absences", r.Absences},
		{"G1", r.G1},
		{"G2", r.G2},
	}
}

// ToCommand converts the request to an assessment command. Numeric fields
// must be present; a zero G1 and an absent G1 are different things. Range and
// categorical checks happen in the domain validator.
func (r AssessRequest) ToCommand(correlationID string) (command.AssessStudentCommand, error) {
	var missing []string
	for _, nf := range r.numericFields() {
		if !nf.Field.Set() {
			missing = append(missing, nf.Name)
		}
	}
	if len(missing) > 0 {
		return command.AssessStudentCommand{}, shared.WrapError(
			"http", "Decode", shared.ErrMissingField,
			fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", ")), nil)
	}

	rec := student.Record{
		School:     strings.TrimSpace(r.School),
		Sex:        strings.TrimSpace(r.Sex),
		Address:    strings.TrimSpace(r.Address),
		Famsize:    strings.TrimSpace(r.Famsize),
		Pstatus:    strings.TrimSpace(r.Pstatus),
		Mjob:       strings.TrimSpace(r.Mjob),
		Fjob:       strings.TrimSpace(r.Fjob),
		Reason:     strings.TrimSpace(r.Reason),
		Guardian:   strings.TrimSpace(r.Guardian),
		Schoolsup:  strings.TrimSpace(r.Schoolsup),
		Famsup:     strings.TrimSpace(r.Famsup),
		Paid:       strings.TrimSpace(r.Paid),
		Activities: strings.TrimSpace(r.Activities),
		Nursery:    strings.TrimSpace(r.Nursery),
		Higher:     strings.TrimSpace(r.Higher),
		Internet:   strings.TrimSpace(r.Internet),
		Romantic:   strings.TrimSpace(r.Romantic),

		Age:        r.Age.Int(),
		Medu:       r.Medu.Int(),
		Fedu:       r.Fedu.Int(),
		Traveltime: r.Traveltime.Int(),
		Studytime:  r.Studytime.Int(),
		Failures:   r.Failures.Int(),
		Famrel:     r.Famrel.Int(),
		Freetime:   r.Freetime.Int(),
		Goout:      r.Goout.Int(),
		Dalc:       r.Dalc.Int(),
		Walc:       r.Walc.Int(),
		Health:     r.Health.Int(),
		Absences:   r.Absences.Int(),
		G1:         r.G1.Int(),
		G2:         r.G2.Int(),
	}

	return command.AssessStudentCommand{
		Record:        rec,
		CustomPrompt:  r.CustomPrompt,
		CorrelationID: correlationID,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// ShapValueDTO is one (feature, signed importance) attribution entry.
type ShapValueDTO struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// AssessResponse is the decision-and-explanation bundle on the wire.
type AssessResponse struct {
	AssessmentID    string             `json:"assessment_id"`
	Prediction      int                `json:"prediction"` // estimated grade 0..20
	RiskCategory    string             `json:"risk_category"`
	RiskDescriptor  string             `json:"risk_descriptor"`
	Confidence      float64            `json:"confidence"`
	Probabilities   map[string]float64 `json:"probabilities"` // null when unavailable
	ShapValues      []ShapValueDTO     `json:"shap_values"`
	MentoringAdvice string             `json:"mentoring_advice"`
	Status          string             `json:"status"`
}

// AssessmentListResponse is the history query response.
type AssessmentListResponse struct {
	Assessments []query.AssessmentEntryDTO `json:"assessments"`
	Count       int                        `json:"count"`
	Status      string                     `json:"status"`
}

// GradeAveragesResponse carries the dataset-level grade means.
type GradeAveragesResponse struct {
	G1           float64 `json:"g1"`
	G2           float64 `json:"g2"`
	AverageGrade float64 `json:"average_grade"`
	SampleCount  int     `json:"sample_count"`
	FromCache    bool    `json:"from_cache"`
	Status       string  `json:"status"`
}
