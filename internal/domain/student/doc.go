// Package student contains the student record entity, its validation rules,
// and derived feature computation. The package is pure domain logic with no
// infrastructure dependencies: encoding, classification, and persistence of
// records happen elsewhere.
package student
