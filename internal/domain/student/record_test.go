package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		School:     "GP",
		Sex:        "F",
		Address:    "U",
		Famsize:    "GT3",
		Pstatus:    "T",
		Mjob:       "teacher",
		Fjob:       "services",
		Reason:     "course",
		Guardian:   "mother",
		Schoolsup:  "no",
		Famsup:     "yes",
		Paid:       "no",
		Activities: "yes",
		Nursery:    "yes",
		Higher:     "yes",
		Internet:   "yes",
		Romantic:   "no",
		Age:        17,
		Medu:       3,
		Fedu:       2,
		Traveltime: 1,
		Studytime:  2,
		Failures:   0,
		Famrel:     4,
		Freetime:   3,
		Goout:      2,
		Dalc:       1,
		Walc:       1,
		Health:     5,
		Absences:   4,
		G1:         12,
		G2:         13,
	}
}

func TestValidate_ValidRecord(t *testing.T) {
	rec := validRecord()
	assert.NoError(t, rec.Validate())
}

func TestValidate_MissingCategoricalField(t *testing.T) {
	rec := validRecord()
	rec.School = ""

	err := rec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field: school")
}

func TestValidate_OutOfRangeAge(t *testing.T) {
	rec := validRecord()
	rec.Age = 50

	err := rec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age must be between 15 and 22")
}

func TestValidate_OutOfRangeGrade(t *testing.T) {
	rec := validRecord()
	rec.G2 = 25

	err := rec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "G2 must be between 0 and 20")
}

func TestValidate_InvalidCharactersInCategorical(t *testing.T) {
	rec := validRecord()
	rec.Sex = "F@#"

	err := rec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid characters")
}

func TestValidate_UnknownButWellFormedCategoricalPasses(t *testing.T) {
	// Unknown values are an encoder concern, not a validation failure.
	rec := validRecord()
	rec.Mjob = "unknown_job"

	assert.NoError(t, rec.Validate())
}

func TestValidate_BoundaryValues(t *testing.T) {
	rec := validRecord()
	rec.Age = 15
	rec.Absences = 93
	rec.G1 = 0
	rec.G2 = 20
	assert.NoError(t, rec.Validate())

	rec.Age = 22
	rec.Absences = 0
	assert.NoError(t, rec.Validate())
}

func TestWithDerivedFeatures(t *testing.T) {
	rec := validRecord()
	rec.G1 = 8
	rec.G2 = 7

	out := rec.WithDerivedFeatures()

	assert.Equal(t, -1, out.GradeChange)
	assert.InDelta(t, 7.5, out.AverageGrade, 1e-9)
}

func TestWithDerivedFeatures_OverwritesCallerValues(t *testing.T) {
	rec := validRecord()
	rec.GradeChange = 99
	rec.AverageGrade = 99.0

	out := rec.WithDerivedFeatures()

	assert.Equal(t, rec.G2-rec.G1, out.GradeChange)
	assert.InDelta(t, float64(rec.G1+rec.G2)/2, out.AverageGrade, 1e-9)
}

func TestInDomain(t *testing.T) {
	assert.True(t, InDomain("Mjob", "teacher"))
	assert.False(t, InDomain("Mjob", "astronaut"))
	assert.False(t, InDomain("not_a_field", "x"))
}

func TestCategoricalValue_CoversAllDomains(t *testing.T) {
	rec := validRecord()
	for name := range CategoricalDomains {
		v, ok := rec.CategoricalValue(name)
		assert.True(t, ok, "field %s must be addressable", name)
		assert.NotEmpty(t, v)
	}
}
