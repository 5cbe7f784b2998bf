// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 100},
		{"", "abc", 0},
		{"abc", "abc", 100},
		{"abc", "abd", 67},
		{"this is a test", "this is a test!", 97},
		{"juan garcia", "maria lopez", 36},
		{"pedro sanchez ruiz", "pedro sanz ruiz", 91},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.a, tt.b))
			assert.Equal(t, tt.want, Ratio(tt.b, tt.a), "ratio must be symmetric")
		})
	}
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "juan garcia lopez", "juan garcia lopez", 100},
		{"reordered", "garcia lopez juan", "juan garcia lopez", 100},
		{"subset", "maria jose fernandez", "fernandez maria", 100},
		{"repeated token", "fuzzy was a bear", "fuzzy fuzzy was a bear", 100},
		{"missing middle name", "jose luis martinez", "jose martinez", 100},
		{"initial for given name", "juan garcia lopez", "j garcia lopez", 92},
		{"one token differs at boundary", "maria fernandez ruiz", "maria fernandez luis", 90},
		{"one token differs below boundary", "maria fernandez ruiz", "ana fernandez ruiz", 89},
		{"disjoint", "juan garcia", "maria lopez", 36},
		{"partial overlap", "ana belen gomez", "ana gomez perez", 80},
		{"empty left", "", "juan", 0},
		{"punctuation only", "...", "juan", 0},
		{"case and punctuation ignored", "J. GARCIA-LOPEZ", "j garcia lopez", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenSetRatio(tt.a, tt.b))
			assert.Equal(t, tt.want, TokenSetRatio(tt.b, tt.a), "score must be symmetric")
		})
	}
}

func TestAccept_Boundary(t *testing.T) {
	assert.False(t, Accept(89, DefaultThreshold))
	assert.True(t, Accept(90, DefaultThreshold))
	assert.True(t, Accept(100, DefaultThreshold))
}

func TestExactOrAlternate(t *testing.T) {
	alts := []string{"j garcia lopez", "juan g lopez"}
	assert.True(t, ExactOrAlternate("juan garcia lopez", "juan garcia lopez", nil))
	assert.True(t, ExactOrAlternate("juan g lopez", "juan garcia", alts))
	assert.False(t, ExactOrAlternate("juan lopez", "juan garcia", alts))
	assert.False(t, ExactOrAlternate("", "", alts), "empty local name never matches")
}
