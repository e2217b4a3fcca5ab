package utils

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalLess(t *testing.T) {
	assert.True(t, NaturalLess("Grup 2", "Grup 10"))
	assert.False(t, NaturalLess("Grup 10", "Grup 2"))
	assert.True(t, NaturalLess("slot_1", "slot_2"))
	assert.True(t, NaturalLess("slot_2", "slot_10"))
	assert.False(t, NaturalLess("abc", "abc"))
	assert.True(t, NaturalLess("abc", "abd"))
}

func TestNaturalSortOrder(t *testing.T) {
	names := []string{"Grup 10", "Grup 2", "Grup 1", "Alpha", "Grup 21"}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })

	assert.Equal(t, []string{"Alpha", "Grup 1", "Grup 2", "Grup 10", "Grup 21"}, names)
}
