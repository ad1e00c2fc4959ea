package core

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hashNested struct {
	Inner string `hash:"true"`
}

type hashFixture struct {
	Name    string            `hash:"true"`
	Count   int               `hash:"true"`
	Enabled bool              `hash:"true"`
	Tags    []string          `hash:"true"`
	Data    map[string]string `hash:"true"`
	Ptr     *string           `hash:"true"`
	Ignored string
	Nested  hashNested
}

func TestGetHashCombinesTaggedFieldsAndRecursesIntoNestedStructs(t *testing.T) {
	ptrVal := "ptr-value"
	f := hashFixture{
		Name:    "job-a",
		Count:   3,
		Enabled: true,
		Tags:    []string{"x", "y"},
		Data:    map[string]string{"b": "2", "a": "1"},
		Ptr:     &ptrVal,
		Ignored: "does-not-count",
		Nested:  hashNested{Inner: "nested-value"},
	}

	var hash string
	require.NoError(t, GetHash(reflect.TypeOf(f), reflect.ValueOf(f), &hash))

	assert.Contains(t, hash, "job-a")
	assert.Contains(t, hash, "nested-value")
	assert.NotContains(t, hash, "does-not-count")

	// map keys hash in sorted order regardless of map iteration order.
	var hash2 string
	require.NoError(t, GetHash(reflect.TypeOf(f), reflect.ValueOf(f), &hash2))
	assert.Equal(t, hash, hash2)
}

func TestGetHashNilPointerHashesAsSentinel(t *testing.T) {
	f := hashFixture{Tags: []string{}, Data: map[string]string{}}
	var hash string
	require.NoError(t, GetHash(reflect.TypeOf(f), reflect.ValueOf(f), &hash))
	assert.Contains(t, hash, "<nil>")
}

type hashUnsupported struct {
	Value float64 `hash:"true"`
}

func TestGetHashRejectsUnsupportedFieldType(t *testing.T) {
	f := hashUnsupported{Value: 1.5}
	var hash string
	err := GetHash(reflect.TypeOf(f), reflect.ValueOf(f), &hash)
	assert.ErrorIs(t, err, ErrUnsupportedFieldType)
}

type hashBadSlice struct {
	Values []int `hash:"true"`
}

func TestGetHashRejectsNonStringSlice(t *testing.T) {
	f := hashBadSlice{Values: []int{1, 2}}
	var hash string
	err := GetHash(reflect.TypeOf(f), reflect.ValueOf(f), &hash)
	assert.ErrorIs(t, err, ErrUnsupportedFieldType)
}
