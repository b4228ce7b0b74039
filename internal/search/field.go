// Package search implements the textual-descriptor matching machinery:
// fields a pattern can target, the pattern kinds themselves, and the
// single/multi search combinators built on top of them.
package search

import (
	"fmt"
	"strings"
)

// Field is one of the descriptor attributes a pattern can be matched
// against.
type Field int

const (
	FieldDescription Field = iota
	FieldName
	FieldVendor
	FieldModel
	FieldSerial
)

func (f Field) asChar() byte {
	switch f {
	case FieldDescription:
		return 'd'
	case FieldName:
		return 'n'
	case FieldVendor:
		return 'v'
	case FieldModel:
		return 'm'
	case FieldSerial:
		return 's'
	default:
		return '?'
	}
}

func fieldFromChar(c byte) (Field, bool) {
	switch c {
	case 'd':
		return FieldDescription, true
	case 'n':
		return FieldName, true
	case 'v':
		return FieldVendor, true
	case 'm':
		return FieldModel, true
	case 's':
		return FieldSerial, true
	default:
		return 0, false
	}
}

// N is the number of distinct fields a FieldSet can hold.
const N = 5

// FieldSet is an ordered, duplicate-free subset of at most N fields,
// insertion order preserved. An empty set means "use the default
// declaration order with default-priority weighting" (see Weight).
type FieldSet struct {
	fields []Field
}

// ErrFieldSetFull is returned by TryInsert when the set already holds N
// fields.
var ErrFieldSetFull = fmt.Errorf("search: field set already holds %d fields", N)

// ErrFieldAlreadyInside is returned by TryInsert on a duplicate field.
var ErrFieldAlreadyInside = fmt.Errorf("search: field already present in set")

// TryInsert appends field to the set, preserving insertion order.
func (fs *FieldSet) TryInsert(f Field) error {
	if len(fs.fields) >= N {
		return ErrFieldSetFull
	}
	for _, existing := range fs.fields {
		if existing == f {
			return ErrFieldAlreadyInside
		}
	}
	fs.fields = append(fs.fields, f)
	return nil
}

// Contains reports whether f is present in the set.
func (fs FieldSet) Contains(f Field) bool {
	for _, existing := range fs.fields {
		if existing == f {
			return true
		}
	}
	return false
}

// Iter returns the fields in insertion order.
func (fs FieldSet) Iter() []Field {
	return append([]Field(nil), fs.fields...)
}

// Empty reports whether the set holds no fields.
func (fs FieldSet) Empty() bool { return len(fs.fields) == 0 }

// defaultOrder is the fixed declaration order used both to fill an empty
// set and as the fallback weighting basis.
var defaultOrder = []Field{FieldDescription, FieldName, FieldVendor, FieldModel, FieldSerial}

// FillDefault populates an empty set with every field in the fixed
// declaration order: Description, Name, Vendor, Model, Serial.
func (fs *FieldSet) FillDefault() {
	fs.fields = append([]Field(nil), defaultOrder...)
}

// Weight returns the positional weight of f within the set: 2^position,
// position counted from the end (last-inserted field has weight 1). If
// the set is empty, field position falls back to its place in the fixed
// declaration order. Result.Specificity does not use this weight; it
// scales by position within the satisfied-field list.
func (fs FieldSet) Weight(f Field) (uint64, bool) {
	if fs.Empty() {
		for i, df := range defaultOrder {
			if df == f {
				return 1 << uint(len(defaultOrder)-1-i), true
			}
		}
		return 0, false
	}
	for i, existing := range fs.fields {
		if existing == f {
			return 1 << uint(len(fs.fields)-1-i), true
		}
	}
	return 0, false
}

// String renders the set in the `[dnvms]`-subset text form, one
// character per present field in insertion order.
func (fs FieldSet) String() string {
	var b strings.Builder
	for _, f := range fs.fields {
		b.WriteByte(f.asChar())
	}
	return b.String()
}

// ParseFieldSet parses the leading run of field characters (any subset of
// dnvms, no repeats) from s, returning the parsed set and the remainder of
// the string.
func ParseFieldSet(s string) (FieldSet, string, error) {
	var fs FieldSet
	i := 0
	for i < len(s) {
		f, ok := fieldFromChar(s[i])
		if !ok {
			break
		}
		if err := fs.TryInsert(f); err != nil {
			return FieldSet{}, "", err
		}
		i++
	}
	return fs, s[i:], nil
}
