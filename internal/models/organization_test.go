package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrgName(t *testing.T) {
	cases := map[string]string{
		"Society of Women Engineers (SWE)": "society of women engineers",
		"Arts & Crafts Club":               "arts and crafts club",
		"  IEEE -- NJIT Student Branch! ":  "ieee njit student branch",
		"Hillel":                           "hillel",
		"":                                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeOrgName(in), "input %q", in)
	}
}

func TestCategoryMappingIndex(t *testing.T) {
	m := CategoryMapping{
		Organizations: []OrganizationMapping{
			{Name: "Chess Club", Tags: []string{"Games"}},
			{Name: "chess club!", Tags: []string{"Strategy"}},
			{Name: "(none)", Tags: []string{"Ignored"}},
		},
	}
	idx := m.Index()
	assert.Equal(t, []string{"Games", "Strategy"}, idx["chess club"])
	assert.Len(t, idx, 1)
}
