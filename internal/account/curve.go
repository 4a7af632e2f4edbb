package account

import "math"

const (
	// BaseLevelXP is the XP needed to go from level 1 to level 2.
	BaseLevelXP = 100.0

	// LevelGrowth is the per-level multiplier on the XP requirement.
	LevelGrowth = 1.20
)

// NextLevelXP returns the XP required to advance from level to level+1:
// floor(100 * 1.2^(level-1)). Levels below 1 are treated as 1. Requirements
// beyond the int range saturate at math.MaxInt.
func NextLevelXP(level int) int {
	if level < 1 {
		level = 1
	}
	req := math.Floor(BaseLevelXP * math.Pow(LevelGrowth, float64(level-1)))
	if req >= math.MaxInt {
		return math.MaxInt
	}
	return int(req)
}
