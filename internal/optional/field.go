// Package optional provides a three-state value for partial updates.
package optional

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	absent state = iota
	cleared
	set
)

// Field distinguishes a value that was not supplied, one that was explicitly
// cleared and one that was provided. The zero value is Absent, so a Field
// that is missing from decoded JSON stays Absent.
type Field[T any] struct {
	state state
	value T
}

// Absent returns a Field that leaves the target unchanged.
func Absent[T any]() Field[T] {
	return Field[T]{}
}

// Clear returns a Field that resets the target.
func Clear[T any]() Field[T] {
	return Field[T]{state: cleared}
}

// Set returns a Field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{state: set, value: v}
}

// FromPtr maps nil to Clear and a non-nil pointer to Set.
func FromPtr[T any](v *T) Field[T] {
	if v == nil {
		return Clear[T]()
	}
	return Set(*v)
}

func (f Field[T]) IsAbsent() bool  { return f.state == absent }
func (f Field[T]) IsCleared() bool { return f.state == cleared }
func (f Field[T]) IsSet() bool     { return f.state == set }

// Value returns the carried value and whether the Field is Set.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == set
}

// Ptr returns nil unless the Field is Set.
func (f Field[T]) Ptr() *T {
	if f.state != set {
		return nil
	}
	v := f.value
	return &v
}

// UnmarshalJSON is only invoked for keys present in the payload:
// null clears, anything else sets.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Clear[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Set(v)
	return nil
}

// MarshalJSON writes null for Absent and Clear.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != set {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
