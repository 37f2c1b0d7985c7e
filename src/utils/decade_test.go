package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecadeRounding(t *testing.T) {
	tests := []struct {
		year     int
		previous int
		next     int
	}{
		{1695, 1690, 1700},
		{1696, 1690, 1700},
		{1690, 1690, 1690},
		{1700, 1700, 1700},
		{1671, 1670, 1680},
		{0, 0, 0},
		{-5, -10, 0},
		{-10, -10, -10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.previous, PreviousDecade(tt.year), "PreviousDecade(%d)", tt.year)
		assert.Equal(t, tt.next, NextDecade(tt.year), "NextDecade(%d)", tt.year)
	}
}

func TestDecadeBracketsYear(t *testing.T) {
	for y := -200; y <= 2100; y++ {
		prev, next := PreviousDecade(y), NextDecade(y)
		if y%10 == 0 {
			assert.Equal(t, y, prev)
			assert.Equal(t, y, next)
			continue
		}
		assert.Less(t, prev, y)
		assert.Greater(t, next, y)
		assert.Equal(t, 10, next-prev)
	}
}
