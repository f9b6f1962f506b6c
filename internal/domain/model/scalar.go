package model

// Scalar is a nullable float64. Null values arise from undefined arithmetic
// (division by zero, zero-variance normalization) and must propagate through
// every downstream stage rather than silently becoming zero.
type Scalar struct {
	Float64 float64
	Valid   bool
}

// Some wraps a concrete value.
func Some(v float64) Scalar { return Scalar{Float64: v, Valid: true} }

// Null is the absent value.
func Null() Scalar { return Scalar{} }
