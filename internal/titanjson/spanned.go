package titanjson

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Range is a half-open byte range [Start, End) into a source document.
type Range struct {
	Start int
	End   int
}

// Spanned wraps a value with the location it was read from, if any.
// Values synthesized in memory carry no location.
type Spanned[T any] struct {
	Value T
	Path  string
	Text  string
	Range *Range
}

// NewSpanned wraps v without location information.
func NewSpanned[T any](v T) Spanned[T] {
	return Spanned[T]{Value: v}
}

// WithRange returns a copy of s pointing at [start, end).
func (s Spanned[T]) WithRange(start, end int) Spanned[T] {
	s.Range = &Range{Start: start, End: end}
	return s
}

// Equal compares only the wrapped values; location is ignored.
func (s Spanned[T]) Equal(o Spanned[T]) bool {
	return reflect.DeepEqual(s.Value, o.Value)
}

// Snippet returns the source text the value was read from, or "" when
// the value has no location.
func (s Spanned[T]) Snippet() string {
	if s.Range == nil || s.Range.End > len(s.Text) || s.Range.Start > s.Range.End {
		return ""
	}
	return s.Text[s.Range.Start:s.Range.End]
}

// Location formats the value's origin as "path:line:col".
func (s Spanned[T]) Location() string {
	if s.Range == nil || s.Range.Start > len(s.Text) {
		return s.Path
	}
	line, col := 1, 1
	for _, c := range s.Text[:s.Range.Start] {
		if c == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return fmt.Sprintf("%s:%d:%d", s.Path, line, col)
}

// MarshalJSON encodes the wrapped value only.
func (s Spanned[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

// UnmarshalJSON decodes into the wrapped value.
func (s *Spanned[T]) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.Value)
}

// MarshalYAML encodes the wrapped value only.
func (s Spanned[T]) MarshalYAML() (any, error) {
	return s.Value, nil
}
