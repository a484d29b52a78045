package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"budi santoso", "Budi Santoso"},
		{"  citra   lestari  ", "Citra Lestari"},
		{"Dewi ANGGRAINI", "Dewi ANGGRAINI"}, // mixed case is preserved
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}
