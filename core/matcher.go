package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fold normalizes a string for case-insensitive matching using the same
// Unicode case-folding chronos uses for config-driven group/name filters.
var fold = cases.Fold()

func caseFold(s string) string {
	return fold.String(s)
}

// Matcher is a boolean predicate on a Key, used to scope listener delivery
// and to select groups of jobs/triggers for bulk pause/resume operations.
type Matcher interface {
	IsMatch(k Key) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(k Key) bool

// IsMatch implements Matcher.
func (f MatcherFunc) IsMatch(k Key) bool { return f(k) }

// EverythingMatcher matches every key.
type EverythingMatcher struct{}

// IsMatch implements Matcher.
func (EverythingMatcher) IsMatch(Key) bool { return true }

// NameOp enumerates the string comparison a NameMatcher/GroupMatcher applies.
type NameOp int

const (
	NameEquals NameOp = iota
	NameStartsWith
	NameEndsWith
	NameContains
	NameAnything
)

func nameMatches(op NameOp, value, candidate string) bool {
	switch op {
	case NameEquals:
		return candidate == value
	case NameStartsWith:
		return strings.HasPrefix(candidate, value)
	case NameEndsWith:
		return strings.HasSuffix(candidate, value)
	case NameContains:
		return strings.Contains(candidate, value)
	case NameAnything:
		return true
	default:
		return false
	}
}

// NameMatcher matches a Key's Name field.
type NameMatcher struct {
	Op    NameOp
	Value string
}

// IsMatch implements Matcher.
func (m NameMatcher) IsMatch(k Key) bool { return nameMatches(m.Op, m.Value, k.Name) }

// GroupMatcher matches a Key's Group field. NameAnything matches any group,
// including the zero-value default group.
type GroupMatcher struct {
	Op    NameOp
	Value string
}

// IsMatch implements Matcher.
func (m GroupMatcher) IsMatch(k Key) bool { return nameMatches(m.Op, m.Value, k.Group) }

// AnyGroup returns a GroupMatcher that matches every key, regardless of
// group — the "anyGroup" matcher named in spec.md §8.
func AnyGroup() GroupMatcher {
	return GroupMatcher{Op: NameAnything}
}

// GroupEquals returns a GroupMatcher matching keys in exactly group.
func GroupEquals(group string) GroupMatcher {
	return GroupMatcher{Op: NameEquals, Value: group}
}

// KeyMatcher matches one specific key exactly.
type KeyMatcher struct {
	Key Key
}

// IsMatch implements Matcher.
func (m KeyMatcher) IsMatch(k Key) bool { return m.Key == k }

// GroupMatcherFold is a case-insensitive GroupMatcher, for config files
// where operators may type group names inconsistently.
type GroupMatcherFold struct {
	Op    NameOp
	Value string
}

// IsMatch implements Matcher.
func (m GroupMatcherFold) IsMatch(k Key) bool {
	return nameMatches(m.Op, caseFold(m.Value), caseFold(k.Group))
}

// And combines matchers: the result matches iff all of them do.
func And(matchers ...Matcher) Matcher {
	return MatcherFunc(func(k Key) bool {
		for _, m := range matchers {
			if !m.IsMatch(k) {
				return false
			}
		}
		return true
	})
}

// Or combines matchers: the result matches iff any of them does.
func Or(matchers ...Matcher) Matcher {
	return MatcherFunc(func(k Key) bool {
		for _, m := range matchers {
			if m.IsMatch(k) {
				return true
			}
		}
		return false
	})
}

// Not negates a matcher.
func Not(m Matcher) Matcher {
	return MatcherFunc(func(k Key) bool { return !m.IsMatch(k) })
}
