package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Filter matches a text value such as an event type or title.
type Filter interface {
	Match(value string) bool
}

// Parse builds a filter from an expression:
// - Comma-separated exact values: "futures,options"
// - Glob: "*expiry*"
// - Regex: "/^FOMC/"
// - Anything else: case-insensitive substring
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always(true), nil
	}
	if strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2 {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Regex{re: re}, nil
	}
	if strings.Contains(expr, ",") {
		set := map[string]struct{}{}
		for _, p := range strings.Split(expr, ",") {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			set[p] = struct{}{}
		}
		return ExactSet{set: set}, nil
	}
	if strings.ContainsAny(expr, "*?") {
		return Glob{pattern: strings.ToLower(expr)}, nil
	}
	return SubstrCI{needle: expr}, nil
}

// Any reports whether f matches at least one of values.
func Any(f Filter, values ...string) bool {
	for _, v := range values {
		if f.Match(v) {
			return true
		}
	}
	return false
}

type Always bool

func (a Always) Match(string) bool { return bool(a) }

// ExactSet matches case-insensitively against a set of values.
type ExactSet struct{ set map[string]struct{} }

func (e ExactSet) Match(value string) bool {
	_, ok := e.set[strings.ToLower(value)]
	return ok
}

type Glob struct{ pattern string }

func (g Glob) Match(value string) bool {
	ok, _ := filepath.Match(g.pattern, strings.ToLower(value))
	return ok
}

type Regex struct{ re *regexp.Regexp }

func (r Regex) Match(value string) bool { return r.re.MatchString(value) }

// SubstrCI matches if value contains needle, case-insensitively.
type SubstrCI struct{ needle string }

func (s SubstrCI) Match(value string) bool {
	if s.needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(s.needle))
}

func (g Glob) String() string     { return fmt.Sprintf("glob:%s", g.pattern) }
func (r Regex) String() string    { return fmt.Sprintf("regex:%s", r.re) }
func (s SubstrCI) String() string { return fmt.Sprintf("substr-ci:%s", s.needle) }
