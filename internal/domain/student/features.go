package student

// WithDerivedFeatures returns a copy of the record with grade_change and
// average_grade recomputed from G1/G2. Caller-supplied values for the derived
// fields are always overwritten. Pure and total: G1/G2 are range-checked by
// Validate before this runs.
func (r Record) WithDerivedFeatures() Record {
	r.GradeChange = r.G2 - r.G1
	r.AverageGrade = float64(r.G1+r.G2) / 2.0
	return r
}
