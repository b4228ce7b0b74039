package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind selects how Pattern.Matches interprets its literal.
type Kind int

const (
	KindRegex Kind = iota
	KindSubstring
	KindFulltext
)

func (k Kind) asChar() byte {
	switch k {
	case KindRegex:
		return '/'
	case KindSubstring:
		return '%'
	case KindFulltext:
		return '='
	default:
		return '%'
	}
}

func kindFromChar(c byte) (Kind, bool) {
	switch c {
	case '/':
		return KindRegex, true
	case '%':
		return KindSubstring, true
	case '=':
		return KindFulltext, true
	default:
		return 0, false
	}
}

// Base weight constants. Scaled integers keep ordering total and
// deterministic: no Substring match outranks a Fulltext match (a needle
// spanning the whole text ties it), and a Substring match outranks a
// Regex match only while the needle is longer than 1/1024 of the text.
const (
	weightRegex    uint64 = 1000
	weightFulltext uint64 = 1000 * 1024
)

// Pattern is a literal plus the Kind that interprets it.
type Pattern struct {
	Kind    Kind
	Literal string

	re *regexp.Regexp // compiled lazily, only for KindRegex
}

// Compile compiles the pattern's regexp literal, if it is one. Patterns of
// other kinds are no-ops. Callers constructing a Pattern from config must
// call Compile once before the first Matches call.
func (p *Pattern) Compile() error {
	if p.Kind != KindRegex {
		return nil
	}
	re, err := regexp.Compile(p.Literal)
	if err != nil {
		return fmt.Errorf("search: compile regex %q: %w", p.Literal, err)
	}
	p.re = re
	return nil
}

// Matches reports whether the pattern matches text, and the weight the
// match should contribute to specificity.
//
//   - Regex: boolean match; weight = 1000.
//   - Substring: weight = 1000 * 1024 * (len(needle)/len(text)); longer
//     needles relative to the target score higher.
//   - Fulltext: exact equality; weight = 1000 * 1024.
func (p *Pattern) Matches(text string) (bool, uint64) {
	switch p.Kind {
	case KindRegex:
		if p.re == nil {
			if err := p.Compile(); err != nil {
				return false, 0
			}
		}
		if p.re.MatchString(text) {
			return true, weightRegex
		}
		return false, 0
	case KindFulltext:
		if text == p.Literal {
			return true, weightFulltext
		}
		return false, 0
	case KindSubstring:
		fallthrough
	default:
		if len(text) == 0 || !containsSubstring(text, p.Literal) {
			return false, 0
		}
		ratio := float64(len(p.Literal)) / float64(len(text))
		weight := uint64(float64(weightFulltext) * ratio)
		return true, weight
	}
}

func containsSubstring(text, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(text, needle)
}

// AsStr renders the pattern's kind char followed by its literal, the tail
// of the single-search text form.
func (p Pattern) AsStr() string {
	return string(p.Kind.asChar()) + p.Literal
}
