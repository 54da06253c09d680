package jp2k

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveDimension(t *testing.T) {
	tests := []struct {
		u, d uint32
		want uint32
	}{
		{512, 3, 64},
		{513, 3, 65},
		{512, 0, 512},
		{1, 1, 1},
		{0, 0, 0},
		{0, 5, 0},
		{7, 1, 4},
		{1 << 31, 31, 1},
		{^uint32(0), 31, 2},
		{100, 32, 1},
		{0, 40, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EffectiveDimension(tt.u, tt.d), "u=%d d=%d", tt.u, tt.d)
	}
}
