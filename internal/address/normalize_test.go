package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_FoldsStreetTypes(t *testing.T) {
	assert.Equal(t, Normalize("1234 MAIN ST NW"), Normalize("1234 Main Street NW"))
	assert.Equal(t, Normalize("500 Georgia Ave SE"), Normalize("500 GEORGIA AVENUE SE"))
	assert.Equal(t, "1234 Main St Nw", Normalize("1234 Main Street NW"))
}

func TestNormalize_UnitWords(t *testing.T) {
	a := Normalize("1234 Main St Apartment 5")
	b := Normalize("1234 Main St Apt 5")
	c := Normalize("1234 MAIN STREET UNIT 5")
	d := Normalize("1234 Main St #5")
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Equal(t, a, d)
}

func TestNormalize_UnitWordMatchesHashForm(t *testing.T) {
	assert.Equal(t,
		Normalize("1234 Main Street Apt 5, Washington DC 20010"),
		Normalize("1234 main st #5 washington dc 20010"))
}

func TestNormalize_StripsPunctuation(t *testing.T) {
	assert.Equal(t, Normalize("1234 Main Street NW"), Normalize("1234 Main St., N.W."))
}

func TestNormalize_AlsoKnownAs(t *testing.T) {
	assert.Equal(t, Normalize("123 Oak St"), Normalize("123 Oak St a/k/a 125 Oak Street"))
}

func TestNormalize_Whitespace(t *testing.T) {
	assert.Equal(t, Normalize("1234 Main St NW"), Normalize("  1234   Main  St   NW "))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"1234 Main Street NW",
		"500 GEORGIA AVENUE SE APT 5",
		"123 Oak St a/k/a 125 Oak Street",
		"1234 Main St., N.W.",
		"VACANT LOT",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_DistinctAddressesStayDistinct(t *testing.T) {
	assert.NotEqual(t, Normalize("1234 Main St NW"), Normalize("1236 Main St NW"))
	assert.NotEqual(t, Normalize("1234 Main St NW"), Normalize("1234 Main St SE"))
}
