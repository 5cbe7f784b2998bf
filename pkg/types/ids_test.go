// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortID(t *testing.T) {
	assert.Equal(t, "A5023888391", ShortID("https://openalex.org/A5023888391"))
	assert.Equal(t, "W1", ShortID(" W1 "))
	assert.Equal(t, "", ShortID(""))
}

func TestAlexURI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://openalex.org/A5023888391", "https://openalex.org/A5023888391"},
		{"A5023888391", "https://openalex.org/A5023888391"},
		{"5023888391", "https://openalex.org/A5023888391"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlexURI(tt.in), tt.in)
	}
}

func TestBareDOI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://doi.org/10.1000/ABC", "10.1000/abc"},
		{"http://dx.doi.org/10.1000/abc", "10.1000/abc"},
		{"doi:10.1000/abc", "10.1000/abc"},
		{" 10.1000/Abc ", "10.1000/abc"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BareDOI(tt.in), tt.in)
	}
}

func TestInvestigator_DisplayName(t *testing.T) {
	assert.Equal(t, "Ana Ruiz", Investigator{FullName: "Ana Ruiz", Name: "X"}.DisplayName())
	assert.Equal(t, "Ana Ruiz Gil", Investigator{Name: "Ana", Surname1: "Ruiz", Surname2: "Gil"}.DisplayName())
	assert.Equal(t, "Ruiz", Investigator{Surname1: "Ruiz"}.DisplayName())
	assert.False(t, Investigator{ID: "1"}.HasName())
}

func TestInvestigator_BlankNameFields(t *testing.T) {
	assert.False(t, Investigator{ID: "1", FullName: "   "}.HasName())
	assert.False(t, Investigator{ID: "1", FullName: "\t", Name: " ", Surname1: "\n"}.HasName())
	assert.Equal(t, "Ana Gil", Investigator{FullName: "  ", Name: "Ana", Surname1: " ", Surname2: "Gil"}.DisplayName())
	assert.True(t, Investigator{FullName: " Ana Ruiz "}.HasName())
}

func TestClassification_Text(t *testing.T) {
	for _, c := range []Classification{Unseen, ExactMatched, InstitutionMatched, TopicMatched, Rejected} {
		b, err := c.MarshalText()
		assert.NoError(t, err)
		var back Classification
		assert.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, c, back)
	}
	assert.True(t, TopicMatched.Accepted())
	assert.False(t, Rejected.Accepted())
	assert.False(t, Unseen.Accepted())
}
