package focus

import "time"

// Tier is a named rank reached once lifetime XP is at least MinXP.
type Tier struct {
	MinXP int    `json:"min_xp"`
	Name  string `json:"name"`
}

// Params defines all configurable parameters for session rewards, streaks and
// review scheduling.
type Params struct {
	// Rewards
	BaseReward       int
	ComboReward      int
	ComboThreshold   int
	MultiplierFactor int

	// Review delay in days for each mastery level, indexed 0..MaxMastery.
	MasteryDelayDays []int

	// Ranks in ascending MinXP order. The first tier must start at 0.
	Tiers []Tier

	// Location decides which calendar day a completion belongs to.
	Location *time.Location
}

// MaxMastery is the highest accepted mastery rating.
const MaxMastery = 5

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	BaseReward       int
	ComboReward      int
	ComboThreshold   int
	MultiplierFactor int
	Location         *time.Location
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		BaseReward:       10,
		ComboReward:      20,
		ComboThreshold:   5,
		MultiplierFactor: 2,

		// ≤2 → 1 day, 3-4 → 7 days, 5 → 30 days
		MasteryDelayDays: []int{1, 1, 1, 7, 7, 30},

		Tiers: []Tier{
			{MinXP: 0, Name: "Novice"},
			{MinXP: 501, Name: "Focused Student"},
			{MinXP: 2001, Name: "Scholar"},
		},

		Location: time.Local,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.BaseReward > 0 {
		params.BaseReward = config.BaseReward
	}
	if config.ComboReward > 0 {
		params.ComboReward = config.ComboReward
	}
	if config.ComboThreshold > 0 {
		params.ComboThreshold = config.ComboThreshold
	}
	if config.MultiplierFactor > 0 {
		params.MultiplierFactor = config.MultiplierFactor
	}
	if config.Location != nil {
		params.Location = config.Location
	}

	return params
}
