package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Poland", "poland"},
		{"  PoLaNd  ", "poland"},
		{"Województwo Śląskie", "wojewodztwo slaskie"},
		{"ŁÓDŹ", "lodz"},
		{"São Tomé", "sao tome"},
		{"Rzeczpospolita   Polska", "rzeczpospolita polska"},
		{"Éire", "eire"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestMatchesAny(t *testing.T) {
	names := []string{"United Kingdom", "Wielka Brytania", "UK"}

	assert.True(t, matchesAny("united kingdom", names))
	assert.True(t, matchesAny("  uk ", names))
	assert.True(t, matchesAny("WIELKA BRYTANIA", names))
	assert.False(t, matchesAny("England", names))
	assert.False(t, matchesAny("", names))
}
