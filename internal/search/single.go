package search

import (
	"sort"
	"strings"
)

// CompareMethod governs how many of the declared fields must match for a
// SingleSearch to be considered satisfied.
type CompareMethod int

const (
	// AtLeastOne is satisfied by any single matching field.
	AtLeastOne CompareMethod = iota
	// Exact requires every declared field to match, in the declared order.
	Exact
)

// Query is the subject a SingleSearch is run against: the descriptor
// values of one candidate head.
type Query struct {
	Description string
	Name        string
	Vendor      string
	Model       string
	Serial      string
}

func (q Query) field(f Field) string {
	switch f {
	case FieldDescription:
		return q.Description
	case FieldName:
		return q.Name
	case FieldVendor:
		return q.Vendor
	case FieldModel:
		return q.Model
	case FieldSerial:
		return q.Serial
	default:
		return ""
	}
}

// SingleSearch is one field-set-qualified pattern.
type SingleSearch struct {
	Fields  FieldSet
	Pattern Pattern
	Method  CompareMethod
}

// satisfiedField pairs a matched field with the weight its match earned.
type satisfiedField struct {
	field  Field
	weight uint64
}

// Result is the outcome of running a SingleSearch against a Query.
type Result struct {
	search          SingleSearch
	satisfiedFields []satisfiedField
}

// Run iterates the search's fields in declared order (or the fixed
// default order, if the field set is empty), testing the pattern against
// each, and records every field that matched.
func (s SingleSearch) Run(q Query) Result {
	fields := s.Fields.Iter()
	if len(fields) == 0 {
		fields = append([]Field(nil), defaultOrder...)
	}
	res := Result{search: s}
	for _, f := range fields {
		text := q.field(f)
		ok, weight := s.Pattern.Matches(text)
		if !ok {
			continue
		}
		res.satisfiedFields = append(res.satisfiedFields, satisfiedField{field: f, weight: weight})
	}
	return res
}

// IsOK reports whether the result satisfies the search's CompareMethod:
// AtLeastOne requires a non-empty satisfied-field list; Exact requires
// the satisfied fields to equal the declared fields, in order.
func (r Result) IsOK() bool {
	switch r.search.Method {
	case AtLeastOne:
		return len(r.satisfiedFields) > 0
	case Exact:
		declared := r.search.Fields.Iter()
		if len(declared) == 0 {
			declared = append([]Field(nil), defaultOrder...)
		}
		if len(declared) != len(r.satisfiedFields) {
			return false
		}
		for i, f := range declared {
			if r.satisfiedFields[i].field != f {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Specificity sums weight*2^(N-1-i) over the satisfied fields, i being
// the field's position within the satisfied-field list (not the declared
// field set): fields that matched earlier in iteration order dominate.
func (r Result) Specificity() uint64 {
	var total uint64
	for i, sf := range r.satisfiedFields {
		total += sf.weight * (1 << uint(N-1-i))
	}
	return total
}

// SatisfiedFields returns the fields that matched, in the order they were
// matched.
func (r Result) SatisfiedFields() []Field {
	out := make([]Field, len(r.satisfiedFields))
	for i, sf := range r.satisfiedFields {
		out[i] = sf.field
	}
	return out
}

// String renders the search's text form: field-set prefix (only under
// Exact; AtLeastOne omits it since it is the default), kind char, literal.
func (s SingleSearch) String() string {
	var out string
	if s.Method == Exact {
		out += s.Fields.String()
	}
	out += s.Pattern.AsStr()
	return out
}

// MultiSearch is a sequence of SingleSearches all of which must succeed
// against the same Query for the multi-search to succeed.
type MultiSearch struct {
	Searches []SingleSearch
}

// MultiResult is the outcome of running a MultiSearch.
type MultiResult struct {
	Results []Result
}

// String renders the ';'-joined text form ParseMulti accepts back.
func (m MultiSearch) String() string {
	parts := make([]string, len(m.Searches))
	for i, s := range m.Searches {
		parts[i] = s.String()
	}
	return strings.Join(parts, ";")
}

// Run evaluates every inner search against q.
func (m MultiSearch) Run(q Query) MultiResult {
	results := make([]Result, len(m.Searches))
	for i, s := range m.Searches {
		results[i] = s.Run(q)
	}
	return MultiResult{Results: results}
}

// IsOK requires every inner result to be OK.
func (mr MultiResult) IsOK() bool {
	for _, r := range mr.Results {
		if !r.IsOK() {
			return false
		}
	}
	return true
}

// Specificity sums the specificity of every inner result.
func (mr MultiResult) Specificity() uint64 {
	var total uint64
	for _, r := range mr.Results {
		total += r.Specificity()
	}
	return total
}

// SortBySpecificityDesc orders results by descending specificity; used by
// callers that want a ranked view of which fields contributed most.
func SortBySpecificityDesc(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Specificity() > results[j].Specificity()
	})
}
