package core

import "fmt"

// DefaultGroup is the canonical group name used when a Key is constructed
// without an explicit group.
const DefaultGroup = "DEFAULT"

// Key uniquely names a job or a trigger within its own namespace. Jobs and
// triggers live in disjoint key spaces, so a job and a trigger may share a
// (group, name) pair without colliding.
type Key struct {
	Group string
	Name  string
}

// NewKey builds a Key, defaulting group to DefaultGroup when empty.
func NewKey(name, group string) Key {
	if group == "" {
		group = DefaultGroup
	}
	return Key{Group: group, Name: name}
}

// String renders the key as "group.name", used in logs and error messages.
func (k Key) String() string {
	return fmt.Sprintf("%s.%s", k.Group, k.Name)
}

// Less implements the (group, name) ordering used as the final tie-break in
// the store's sorted trigger index.
func (k Key) Less(other Key) bool {
	if k.Group != other.Group {
		return k.Group < other.Group
	}
	return k.Name < other.Name
}
