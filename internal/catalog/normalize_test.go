package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Men's   Wear ", "men's wear"},
		{"Shirts", "shirts"},
		{"\tT-Shirts\n and  Tops", "t-shirts and tops"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got))
		})
	}
}

func TestNormalizeNames(t *testing.T) {
	got := normalizeNames([]string{"Men", " men ", "", "Women", "MEN"})
	assert.Equal(t, []string{"men", "women"}, got)
}
