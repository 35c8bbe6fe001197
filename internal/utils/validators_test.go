package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.True(t, IsValidEmail("a.b+c@sub.example.co"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("@example.com"))
	assert.False(t, IsValidEmail("user@nodot"))
}

func TestIsComplexPassword(t *testing.T) {
	assert.True(t, IsComplexPassword("Passw0rd"))
	assert.False(t, IsComplexPassword("short1A"))
	assert.False(t, IsComplexPassword("alllowercase1"))
	assert.False(t, IsComplexPassword("ALLUPPERCASE1"))
	assert.False(t, IsComplexPassword("NoDigitsHere"))
}

func TestEmailLocalPart(t *testing.T) {
	assert.Equal(t, "user", EmailLocalPart("user@example.com"))
	assert.Equal(t, "no-at-sign", EmailLocalPart("no-at-sign"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", TruncateRunes("hello", 10))
	assert.Equal(t, "hel", TruncateRunes("hello", 3))
	assert.Equal(t, strings.Repeat("a", 50), TruncateRunes(strings.Repeat("a", 60), 50))

	// Multi-byte input truncates on rune boundaries.
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
}
