package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLToken_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"Men's & Women's / Accessories",
		`C:\Drivers @ 100%`,
		"plain",
		"",
	} {
		assert.Equal(t, s, DecodeURLToken(EncodeURLToken(s)), s)
	}
}

func TestEncodeURLToken_UsesTokens(t *testing.T) {
	assert.Equal(t, "TV-slash-Audio", EncodeURLToken("TV/Audio"))
	assert.Equal(t, "Tom-and-Jerry", EncodeURLToken("Tom&Jerry"))
	assert.Equal(t, "Men%27s%20Wear", EncodeURLToken("Men's Wear"))
}

func TestDecodeURLToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Home-slash-Kitchen", "Home/Kitchen"},
		{"Home%20-and-%20Garden", "Home & Garden"},
		{"info-at-shop", "info@shop"},
		{"a-backslash-b", `a\b`},
		{"50-percent-", "50%"},
		{"bad%zz", "bad%zz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecodeURLToken(tt.in), tt.in)
	}
}
