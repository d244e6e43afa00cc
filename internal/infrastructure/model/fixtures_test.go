package model

import (
	"github.com/edurisk/student-risk-hub/internal/domain/student"
)

// avgGradeColumn is the index of average_grade in the frozen column order.
const avgGradeColumn = 32

// testEnsemble builds a small deterministic ensemble over the real column
// order. One tree per class, all splitting on average_grade:
//
//	avg <= 9.5            -> High wins
//	9.5 < avg <= 13.5     -> Medium wins
//	avg > 13.5            -> Low wins
func testEnsemble() *Ensemble {
	return &Ensemble{
		Classes:   []string{"High", "Low", "Medium"},
		Features:  append([]string(nil), ColumnOrder...),
		BaseScore: []float64{0, 0, 0},
		Trees: []Tree{
			{
				Class: 0, // High
				Nodes: []Node{
					{Feature: avgGradeColumn, Threshold: 9.5, Left: 1, Right: 2, Value: -0.5},
					{Feature: leafFeature, Value: 2.0},
					{Feature: leafFeature, Value: -2.0},
				},
			},
			{
				Class: 1, // Low
				Nodes: []Node{
					{Feature: avgGradeColumn, Threshold: 13.5, Left: 1, Right: 2, Value: -0.5},
					{Feature: leafFeature, Value: -2.0},
					{Feature: leafFeature, Value: 2.0},
				},
			},
			{
				Class: 2, // Medium
				Nodes: []Node{
					{Feature: avgGradeColumn, Threshold: 9.5, Left: 1, Right: 2, Value: 0.0},
					{Feature: leafFeature, Value: -1.0},
					{Feature: avgGradeColumn, Threshold: 13.5, Left: 3, Right: 4, Value: 0.5},
					{Feature: leafFeature, Value: 2.0},
					{Feature: leafFeature, Value: -1.0},
				},
			},
		},
	}
}

// testEncodingTable mirrors an alphabetically fitted label encoder per field.
func testEncodingTable() *EncodingTable {
	yesNo := FieldEncoding{Classes: []string{"no", "yes"}}
	jobs := FieldEncoding{Classes: []string{"at_home", "health", "other", "services", "teacher"}}

	return &EncodingTable{
		Fields: map[string]FieldEncoding{
			"school":     {Classes: []string{"GP", "MS"}},
			"sex":        {Classes: []string{"F", "M"}},
			"address":    {Classes: []string{"R", "U"}},
			"famsize":    {Classes: []string{"GT3", "LE3"}},
			"Pstatus":    {Classes: []string{"A", "T"}},
			"Mjob":       jobs,
			"Fjob":       jobs,
			"reason":     {Classes: []string{"course", "home", "other", "reputation"}},
			"guardian":   {Classes: []string{"father", "mother", "other"}},
			"schoolsup":  yesNo,
			"famsup":     yesNo,
			"paid":       yesNo,
			"activities": yesNo,
			"nursery":    yesNo,
			"higher":     yesNo,
			"internet":   yesNo,
			"romantic":   yesNo,
		},
	}
}

func testContext() *Context {
	return &Context{
		Classifier: testEnsemble(),
		Encoders:   testEncodingTable(),
		Labels:     []string{"High", "Low", "Medium"},
	}
}

// weakRecord averages 7.5 and should classify High.
func weakRecord() student.Record {
	r := baseRecord()
	r.G1 = 8
	r.G2 = 7
	r.Failures = 2
	r.Absences = 20
	return r.WithDerivedFeatures()
}

// strongRecord averages 18.5 and should classify Low.
func strongRecord() student.Record {
	r := baseRecord()
	r.G1 = 18
	r.G2 = 19
	r.Failures = 0
	r.Absences = 1
	return r.WithDerivedFeatures()
}

// middlingRecord averages 11 and should classify Medium.
func middlingRecord() student.Record {
	r := baseRecord()
	r.G1 = 10
	r.G2 = 12
	return r.WithDerivedFeatures()
}

func baseRecord() student.Record {
	return student.Record{
		School: "GP", Sex: "F", Address: "U", Famsize: "GT3", Pstatus: "T",
		Mjob: "teacher", Fjob: "services", Reason: "course", Guardian: "mother",
		Schoolsup: "no", Famsup: "yes", Paid: "no", Activities: "yes",
		Nursery: "yes", Higher: "yes", Internet: "yes", Romantic: "no",
		Age: 17, Medu: 3, Fedu: 2, Traveltime: 1, Studytime: 2, Failures: 0,
		Famrel: 4, Freetime: 3, Goout: 2, Dalc: 1, Walc: 1, Health: 5,
		Absences: 4, G1: 12, G2: 13,
	}
}
