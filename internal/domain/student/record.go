package student

// Record is a single student profile submitted for assessment.
// Numeric fields are bounded integers, categorical fields are short
// enumerated strings. The two derived fields are always recomputed from
// G1/G2 and never trusted from caller input.
type Record struct {
	// Categorical
	School     string `json:"school"`     // GP, MS
	Sex        string `json:"sex"`        // M, F
	Address    string `json:"address"`    // U, R
	Famsize    string `json:"famsize"`    // GT3, LE3
	Pstatus    string `json:"Pstatus"`    // T, A
	Mjob       string `json:"Mjob"`       // at_home, health, other, services, teacher
	Fjob       string `json:"Fjob"`       // at_home, health, other, services, teacher
	Reason     string `json:"reason"`     // course, other, home, reputation
	Guardian   string `json:"guardian"`   // mother, father, other
	Schoolsup  string `json:"schoolsup"`  // yes, no
	Famsup     string `json:"famsup"`     // yes, no
	Paid       string `json:"paid"`       // yes, no
	Activities string `json:"activities"` // yes, no
	Nursery    string `json:"nursery"`    // yes, no
	Higher     string `json:"higher"`     // yes, no
	Internet   string `json:"internet"`   // yes, no
	Romantic   string `json:"romantic"`   // yes, no

	// Numeric-ordinal
	Age        int `json:"age"`
	Medu       int `json:"Medu"`
	Fedu       int `json:"Fedu"`
	Traveltime int `json:"traveltime"`
	Studytime  int `json:"studytime"`
	Failures   int `json:"failures"`
	Famrel     int `json:"famrel"`
	Freetime   int `json:"freetime"`
	Goout      int `json:"goout"`
	Dalc       int `json:"Dalc"`
	Walc       int `json:"Walc"`
	Health     int `json:"health"`
	Absences   int `json:"absences"`
	G1         int `json:"G1"`
	G2         int `json:"G2"`

	// Derived (see features.go)
	GradeChange  int     `json:"grade_change"`
	AverageGrade float64 `json:"average_grade"`
}

// CategoricalDomains maps each categorical field to its fitted value domain.
// Values outside the domain are not rejected here; the encoder substitutes
// a default code for them (a documented lossy-but-available tradeoff).
var CategoricalDomains = map[string][]string{
	"school":     {"GP", "MS"},
	"sex":        {"M", "F"},
	"address":    {"U", "R"},
	"famsize":    {"GT3", "LE3"},
	"Pstatus":    {"T", "A"},
	"Mjob":       {"at_home", "health", "other", "services", "teacher"},
	"Fjob":       {"at_home", "health", "other", "services", "teacher"},
	"reason":     {"course", "other", "home", "reputation"},
	"guardian":   {"mother", "father", "other"},
	"schoolsup":  {"yes", "no"},
	"famsup":     {"yes", "no"},
	"paid":       {"yes", "no"},
	"activities": {"yes", "no"},
	"nursery":    {"yes", "no"},
	"higher":     {"yes", "no"},
	"internet":   {"yes", "no"},
	"romantic":   {"yes", "no"},
}

// CategoricalValue returns the raw value of the named categorical field.
// The bool reports whether the name is a categorical field at all.
func (r Record) CategoricalValue(name string) (string, bool) {
	switch name {
	case "school":
		return r.School, true
	case "sex":
		return r.Sex, true
	case "address":
		return r.Address, true
	case "famsize":
		return r.Famsize, true
	case "Pstatus":
		return r.Pstatus, true
	case "Mjob":
		return r.Mjob, true
	case "Fjob":
		return r.Fjob, true
	case "reason":
		return r.Reason, true
	case "guardian":
		return r.Guardian, true
	case "schoolsup":
		return r.Schoolsup, true
	case "famsup":
		return r.Famsup, true
	case "paid":
		return r.Paid, true
	case "activities":
		return r.Activities, true
	case "nursery":
		return r.Nursery, true
	case "higher":
		return r.Higher, true
	case "internet":
		return r.Internet, true
	case "romantic":
		return r.Romantic, true
	default:
		return "", false
	}
}

// NumericValue returns the value of the named numeric field, including the
// two derived features. The bool reports whether the name is known.
func (r Record) NumericValue(name string) (float64, bool) {
	switch name {
	case "age":
		return float64(r.Age), true
	case "Medu":
		return float64(r.Medu), true
	case "Fedu":
		return float64(r.Fedu), true
	case "traveltime":
		return float64(r.Traveltime), true
	case "studytime":
		return float64(r.Studytime), true
	case "failures":
		return float64(r.Failures), true
	case "famrel":
		return float64(r.Famrel), true
	case "freetime":
		return float64(r.Freetime), true
	case "goout":
		return float64(r.Goout), true
	case "Dalc":
		return float64(r.Dalc), true
	case "Walc":
		return float64(r.Walc), true
	case "health":
		return float64(r.Health), true
	case "absences":
		return float64(r.Absences), true
	case "G1":
		return float64(r.G1), true
	case "G2":
		return float64(r.G2), true
	case "grade_change":
		return float64(r.GradeChange), true
	case "average_grade":
		return r.AverageGrade, true
	default:
		return 0, false
	}
}
