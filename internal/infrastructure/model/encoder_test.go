package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/internal/domain/student"
)

func TestColumnOrder_CoversAllFields(t *testing.T) {
	assert.Len(t, ColumnOrder, 34)

	// Every categorical domain has a column.
	seen := make(map[string]bool, len(ColumnOrder))
	for _, name := range ColumnOrder {
		seen[name] = true
	}
	for name := range student.CategoricalDomains {
		assert.True(t, seen[name], "column order missing %s", name)
	}
	assert.True(t, seen["average_grade"])
	assert.True(t, seen["grade_change"])
}

func TestBuildVector_MaterializesInColumnOrder(t *testing.T) {
	rec := weakRecord()

	vector, unknown, err := BuildVector(rec, testEncodingTable())
	require.NoError(t, err)
	require.Len(t, vector, len(ColumnOrder))
	assert.Empty(t, unknown)

	// school=GP -> 0, sex=F -> 0, age passes through
	assert.Equal(t, 0.0, vector[0])
	assert.Equal(t, 0.0, vector[1])
	assert.Equal(t, 17.0, vector[2])

	// Mjob=teacher -> 4 (alphabetical), guardian=mother -> 1
	assert.Equal(t, 4.0, vector[8])
	assert.Equal(t, 1.0, vector[11])

	// G1, G2, derived features at the tail
	assert.Equal(t, 8.0, vector[30])
	assert.Equal(t, 7.0, vector[31])
	assert.Equal(t, 7.5, vector[32])
	assert.Equal(t, -1.0, vector[33])
}

func TestBuildVector_UnknownCategoricalUsesDefaultCode(t *testing.T) {
	rec := weakRecord()
	rec.Mjob = "unknown_job"

	vector, unknown, err := BuildVector(rec, testEncodingTable())
	require.NoError(t, err)

	assert.Equal(t, 0.0, vector[8])
	assert.Equal(t, []string{"Mjob"}, unknown)
}

func TestBuildVector_NilTable(t *testing.T) {
	_, _, err := BuildVector(weakRecord(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrEncodingUnavailable)
}

func TestFieldEncoding_Encode(t *testing.T) {
	enc := FieldEncoding{Classes: []string{"no", "yes"}, DefaultCode: 0}

	code, known := enc.Encode("yes")
	assert.Equal(t, 1, code)
	assert.True(t, known)

	code, known = enc.Encode("maybe")
	assert.Equal(t, 0, code)
	assert.False(t, known)
}

func TestEncodingTable_Validate(t *testing.T) {
	table := testEncodingTable()
	assert.NoError(t, table.Validate())

	delete(table.Fields, "Mjob")
	err := table.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrEncodingUnavailable)
	assert.Contains(t, err.Error(), "Mjob")
}

func TestEncodingTable_ValidateNil(t *testing.T) {
	var table *EncodingTable
	assert.Error(t, table.Validate())
}
