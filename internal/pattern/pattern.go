// Package pattern compiles the user's search terms into a single matcher.
//
// Several terms can be searched in one pass: each is parenthesised and the
// group is joined with "|", so a file is read once no matter how many terms
// were given. The compiled Pattern is immutable and shared by every worker.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrPattern is returned when a search term is not a valid regular expression.
var ErrPattern = errors.New("invalid pattern")

// Pattern is a compiled, read-only OR of one or more regular expressions.
type Pattern struct {
	re              *regexp.Regexp
	terms           []string
	caseInsensitive bool
}

// Compile builds a Pattern from raw terms. Terms are case-insensitive unless
// caseInsensitive is false.
func Compile(raw []string, caseInsensitive bool) (*Pattern, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no pattern given", ErrPattern)
	}

	groups := make([]string, 0, len(raw))
	for _, term := range raw {
		// Compile alone first so the error names the offending term.
		if _, err := regexp.Compile(term); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrPattern, term, err)
		}
		groups = append(groups, "("+term+")")
	}

	expr := strings.Join(groups, "|")
	if caseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrPattern, expr, err)
	}

	terms := make([]string, len(raw))
	copy(terms, raw)
	return &Pattern{re: re, terms: terms, caseInsensitive: caseInsensitive}, nil
}

// Match reports whether line contains a match for any term.
func (p *Pattern) Match(line string) bool {
	return p.re.MatchString(line)
}

// Find returns the byte span of the leftmost match in line. When several
// terms match, the leftmost span wins regardless of which term produced it.
func (p *Pattern) Find(line string) (start, end int, ok bool) {
	loc := p.re.FindStringIndex(line)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

// Terms returns a copy of the raw terms the Pattern was built from.
func (p *Pattern) Terms() []string {
	out := make([]string, len(p.terms))
	copy(out, p.terms)
	return out
}

// CaseInsensitive reports whether the Pattern ignores case.
func (p *Pattern) CaseInsensitive() bool { return p.caseInsensitive }

// String returns the combined expression.
func (p *Pattern) String() string { return p.re.String() }
