package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEverythingMatcher(t *testing.T) {
	m := EverythingMatcher{}
	assert.True(t, m.IsMatch(NewKey("anything", "any-group")))
}

func TestNameMatcherOps(t *testing.T) {
	cases := []struct {
		op        NameOp
		value     string
		candidate string
		want      bool
	}{
		{NameEquals, "ping", "ping", true},
		{NameEquals, "ping", "pingpong", false},
		{NameStartsWith, "pi", "ping", true},
		{NameStartsWith, "xx", "ping", false},
		{NameEndsWith, "ng", "ping", true},
		{NameEndsWith, "xx", "ping", false},
		{NameContains, "in", "ping", true},
		{NameContains, "zz", "ping", false},
		{NameAnything, "", "anything", true},
	}
	for _, c := range cases {
		m := NameMatcher{Op: c.op, Value: c.value}
		assert.Equal(t, c.want, m.IsMatch(NewKey(c.candidate, "DEFAULT")))
	}
}

func TestGroupMatcher(t *testing.T) {
	m := GroupEquals("network")
	assert.True(t, m.IsMatch(NewKey("ping", "network")))
	assert.False(t, m.IsMatch(NewKey("ping", "other")))
}

func TestAnyGroupMatchesEveryGroup(t *testing.T) {
	m := AnyGroup()
	assert.True(t, m.IsMatch(NewKey("ping", "network")))
	assert.True(t, m.IsMatch(NewKey("ping", DefaultGroup)))
}

func TestKeyMatcher(t *testing.T) {
	k := NewKey("ping", "network")
	m := KeyMatcher{Key: k}
	assert.True(t, m.IsMatch(k))
	assert.False(t, m.IsMatch(NewKey("pong", "network")))
}

func TestGroupMatcherFoldIsCaseInsensitive(t *testing.T) {
	m := GroupMatcherFold{Op: NameEquals, Value: "Network"}
	assert.True(t, m.IsMatch(NewKey("ping", "network")))
	assert.True(t, m.IsMatch(NewKey("ping", "NETWORK")))
	assert.False(t, m.IsMatch(NewKey("ping", "other")))
}

func TestAndCombinator(t *testing.T) {
	m := And(GroupEquals("network"), NameMatcher{Op: NameStartsWith, Value: "pi"})
	assert.True(t, m.IsMatch(NewKey("ping", "network")))
	assert.False(t, m.IsMatch(NewKey("pong", "network")))
	assert.False(t, m.IsMatch(NewKey("ping", "other")))
}

func TestOrCombinator(t *testing.T) {
	m := Or(GroupEquals("network"), GroupEquals("storage"))
	assert.True(t, m.IsMatch(NewKey("ping", "network")))
	assert.True(t, m.IsMatch(NewKey("ping", "storage")))
	assert.False(t, m.IsMatch(NewKey("ping", "other")))
}

func TestNotCombinator(t *testing.T) {
	m := Not(GroupEquals("network"))
	assert.False(t, m.IsMatch(NewKey("ping", "network")))
	assert.True(t, m.IsMatch(NewKey("ping", "other")))
}
