package search

import (
	"fmt"
	"strings"
)

// Parse parses the `[fields][kind][pattern]` text form into a
// SingleSearch. An empty (or absent) fields prefix means the default
// field set under AtLeastOne; a non-empty prefix switches the compare
// method to Exact, since declaring specific fields only makes sense when
// every one of them must match.
func Parse(s string) (SingleSearch, error) {
	fields, rest, err := ParseFieldSet(s)
	if err != nil {
		return SingleSearch{}, fmt.Errorf("search: parse %q: %w", s, err)
	}
	if rest == "" {
		return SingleSearch{}, fmt.Errorf("search: parse %q: missing pattern kind", s)
	}
	kind, ok := kindFromChar(rest[0])
	if !ok {
		return SingleSearch{}, fmt.Errorf("search: parse %q: unknown pattern kind %q", s, rest[0])
	}
	literal := rest[1:]
	pattern := Pattern{Kind: kind, Literal: literal}
	if err := pattern.Compile(); err != nil {
		return SingleSearch{}, err
	}
	method := AtLeastOne
	if !fields.Empty() {
		method = Exact
	}
	return SingleSearch{Fields: fields, Pattern: pattern, Method: method}, nil
}

// ParseMulti splits s on ';' and parses each segment as a SingleSearch.
func ParseMulti(s string) (MultiSearch, error) {
	m := MultiSearch{}
	for _, seg := range strings.Split(s, ";") {
		ss, err := Parse(seg)
		if err != nil {
			return MultiSearch{}, err
		}
		m.Searches = append(m.Searches, ss)
	}
	return m, nil
}
