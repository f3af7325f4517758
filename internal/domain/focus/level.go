package focus

import "math"

// xpPerLevelUnit scales the continuous level curve.
const xpPerLevelUnit = 100

// Rank is the read-only presentation of lifetime XP. Title comes from the
// tier table; Level and Progress come from the continuous curve. The two are
// independent and can disagree near tier boundaries.
type Rank struct {
	Title      string  `json:"title"`
	Level      int     `json:"level"`
	Progress   float64 `json:"progress"`
	XPForLevel int     `json:"xp_for_level"`
	XP         int     `json:"xp"`
}

// TierFor returns the highest tier whose MinXP is at most xp. Tiers must be
// sorted ascending.
func TierFor(xp int, tiers []Tier) Tier {
	if len(tiers) == 0 {
		return Tier{}
	}
	current := tiers[0]
	for _, t := range tiers[1:] {
		if xp < t.MinXP {
			break
		}
		current = t
	}
	return current
}

// ContinuousLevel computes level = floor(sqrt(xp/100)) + 1 together with the
// fraction (xp mod level²·100) / (level²·100).
func ContinuousLevel(xp int) (level int, progress float64, xpForLevel int) {
	if xp < 0 {
		xp = 0
	}
	level = int(math.Floor(math.Sqrt(float64(xp)/xpPerLevelUnit))) + 1
	xpForLevel = level * level * xpPerLevelUnit
	progress = float64(xp%xpForLevel) / float64(xpForLevel)
	return level, progress, xpForLevel
}

// RankFor combines both level forms for xp.
func RankFor(xp int, params *Params) Rank {
	level, progress, need := ContinuousLevel(xp)
	return Rank{
		Title:      TierFor(xp, params.Tiers).Name,
		Level:      level,
		Progress:   progress,
		XPForLevel: need,
		XP:         xp,
	}
}
