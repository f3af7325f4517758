package focus

import (
	"time"

	"github.com/phrazzld/focus-api/internal/domain"
)

// summaryDays is the width of the activity window.
const summaryDays = 7

// DayActivity marks whether a calendar day has a completed session.
type DayActivity struct {
	Day     string `json:"day"`
	Studied bool   `json:"studied"`
}

// Summary is the evolution overview shown next to the timer.
type Summary struct {
	Week              []DayActivity `json:"week"`
	CompletedSessions int           `json:"completed_sessions"`
	FocusHours        float64       `json:"focus_hours"`
	HoursPerSession   float64       `json:"hours_per_session"`
	CompletedLessons  int           `json:"completed_lessons"`
	TotalLessons      int           `json:"total_lessons"`
	OverallProgress   int           `json:"overall_progress"`
	Streak            int           `json:"streak"`
	ComboActive       bool          `json:"combo_active"`
	PendingReviews    int           `json:"pending_reviews"`
	Rank              Rank          `json:"rank"`
}

func (s *defaultService) Summary(stats domain.UserStats, now time.Time) Summary {
	today, _ := time.Parse(domain.DateLayout, s.Today(now))

	week := make([]DayActivity, 0, summaryDays)
	for i := summaryDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(domain.DateLayout)
		week = append(week, DayActivity{Day: day, Studied: stats.HasStudied(day)})
	}

	done, total := 0, 0
	for _, subj := range stats.Subjects {
		done += subj.CompletedLessons()
		total += len(subj.Lessons)
	}

	pending := 0
	for _, r := range stats.ScheduledReviews {
		if !r.NextReviewDate.After(now) {
			pending++
		}
	}

	sessions := max(stats.CompletedSessions, 1)
	streak := s.Streak(stats, now)

	return Summary{
		Week:              week,
		CompletedSessions: stats.CompletedSessions,
		FocusHours:        stats.FocusHours,
		HoursPerSession:   stats.FocusHours / float64(sessions),
		CompletedLessons:  done,
		TotalLessons:      total,
		OverallProgress:   domain.OverallProgress(stats),
		Streak:            streak,
		ComboActive:       ComboActive(streak, s.params),
		PendingReviews:    pending,
		Rank:              s.Rank(stats),
	}
}
