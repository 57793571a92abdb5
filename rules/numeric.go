package rules

import (
	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
)

// Positive fails unless the value is greater than zero.
func Positive[T Numeric]() rule.Rule[T] {
	return rule.New(IDPositive, nil, func(v T) bool {
		return v > 0
	})
}

// NonNegative fails when the value is below zero.
func NonNegative[T Numeric]() rule.Rule[T] {
	return rule.New(IDNonNegative, nil, func(v T) bool {
		return v >= 0
	})
}

// Min fails when the value is below minimum.
func Min[T Numeric](minimum T) rule.Rule[T] {
	return rule.New(IDMin, ex.Params{"min": minimum}, func(v T) bool {
		return v >= minimum
	})
}

// Max fails when the value is above maximum.
func Max[T Numeric](maximum T) rule.Rule[T] {
	return rule.New(IDMax, ex.Params{"max": maximum}, func(v T) bool {
		return v <= maximum
	})
}

// Between fails when the value is outside [minimum, maximum].
func Between[T Numeric](minimum, maximum T) rule.Rule[T] {
	return rule.New(IDBetween, ex.Params{"min": minimum, "max": maximum}, func(v T) bool {
		return v >= minimum && v <= maximum
	})
}
