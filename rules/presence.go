package rules

import (
	"reflect"
	"strings"

	"github.com/gofhir/examiner/rule"
)

// NotNil fails when the value is nil. Non-nillable values always pass.
func NotNil[V any]() rule.Rule[V] {
	return rule.New(IDNotNull, nil, func(v V) bool {
		return !isNil(v)
	})
}

// Required fails when the value is its type's zero value.
func Required[V comparable]() rule.Rule[V] {
	return rule.New(IDRequired, nil, func(v V) bool {
		var zero V
		return v != zero
	})
}

// NotBlank fails when the string is empty after trimming whitespace.
func NotBlank() rule.Rule[string] {
	return rule.New(IDNotBlank, nil, func(v string) bool {
		return strings.TrimSpace(v) != ""
	})
}

// NotEmpty fails when the slice has no elements.
func NotEmpty[E any]() rule.Rule[[]E] {
	return rule.New(IDNotEmpty, nil, func(v []E) bool {
		return len(v) > 0
	})
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
