package account

import (
	"math"
	"testing"
)

func TestNextLevelXP(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 120},
		{3, 144},
		{4, 172},
		{5, 207},
		{6, 248},
		{10, 515},
		{0, 100},
		{-3, 100},
	}

	for _, tt := range tests {
		got := NextLevelXP(tt.level)
		if got != tt.want {
			t.Errorf("NextLevelXP(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestNextLevelXP_Increasing(t *testing.T) {
	prev := NextLevelXP(1)
	for level := 2; level <= 60; level++ {
		got := NextLevelXP(level)
		if got <= prev {
			t.Fatalf("NextLevelXP(%d) = %d, not above NextLevelXP(%d) = %d", level, got, level-1, prev)
		}
		prev = got
	}
}

func TestNextLevelXP_SaturatesAtMaxInt(t *testing.T) {
	if got := NextLevelXP(1000); got != math.MaxInt {
		t.Errorf("NextLevelXP(1000) = %d, want math.MaxInt", got)
	}
	if got := NextLevelXP(200); got <= 0 {
		t.Errorf("NextLevelXP(200) = %d, want positive", got)
	}
}
