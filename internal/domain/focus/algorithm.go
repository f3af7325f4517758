package focus

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/domain"
)

// Completion describes what a finished session granted.
type Completion struct {
	Day            string  `json:"day"`
	Reward         int     `json:"reward"`
	Streak         int     `json:"streak"`
	ComboActive    bool    `json:"combo_active"`
	MultiplierUsed bool    `json:"multiplier_used"`
	HoursAdded     float64 `json:"hours_added"`
}

// calculateReward returns the neurons granted for one session.
func calculateReward(comboActive, multiplier bool, params *Params) int {
	reward := params.BaseReward
	if comboActive {
		reward = params.ComboReward
	}
	if multiplier {
		reward *= params.MultiplierFactor
	}
	return reward
}

// calculateCompletion applies a finished session to stats and returns the
// next snapshot. The day is recorded before the streak is measured, so the
// session being completed counts toward its own combo. Consuming the
// multiplier and crediting the doubled reward happen in this same snapshot.
func calculateCompletion(
	stats domain.UserStats,
	durationSeconds int,
	now time.Time,
	params *Params,
) (domain.UserStats, Completion) {
	day := DayOf(now, params.Location)
	next := stats.MarkStudied(day)

	streak := CurrentStreak(next.StudyHistory, day)
	combo := ComboActive(streak, params)
	multiplier := next.MultiplierActive
	reward := calculateReward(combo, multiplier, params)
	hours := float64(durationSeconds) / 3600

	next.MultiplierActive = false
	next.Neurons += reward
	next.TotalNeuronsEarned += reward
	next.CompletedSessions++
	next.FocusHours += hours

	return next, Completion{
		Day:            day,
		Reward:         reward,
		Streak:         streak,
		ComboActive:    combo,
		MultiplierUsed: multiplier,
		HoursAdded:     hours,
	}
}

// calculateReviewDate maps a mastery level to the next review time.
func calculateReviewDate(level int, now time.Time, params *Params) time.Time {
	return now.AddDate(0, 0, params.MasteryDelayDays[level])
}

// calculateReview appends a review for label to stats.
func calculateReview(
	stats domain.UserStats,
	label string,
	level int,
	now time.Time,
	params *Params,
) (domain.UserStats, domain.Review) {
	review := domain.Review{
		ID:             uuid.NewString(),
		TaskLabel:      label,
		NextReviewDate: calculateReviewDate(level, now, params),
	}
	next := stats.Clone()
	next.ScheduledReviews = append(next.ScheduledReviews, review)
	return next, review
}
