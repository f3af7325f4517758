package focus

import (
	"errors"
	"time"

	"github.com/phrazzld/focus-api/internal/domain"
)

// Common errors
var (
	ErrInvalidDuration     = errors.New("session duration must be positive")
	ErrInvalidMasteryLevel = errors.New("mastery level must be between 0 and 5")
)

// Service defines the interface for session reward, streak and rank rules
type Service interface {
	// CompleteSession applies the reward and ledger update of a finished session
	CompleteSession(
		stats domain.UserStats,
		durationSeconds int,
		now time.Time,
	) (domain.UserStats, Completion, error)

	// ScheduleReview appends a spaced-repetition review for a rated session
	ScheduleReview(
		stats domain.UserStats,
		label string,
		level int,
		now time.Time,
	) (domain.UserStats, domain.Review, error)

	// Streak computes the current consecutive-day streak as of now
	Streak(stats domain.UserStats, now time.Time) int

	// ComboActive reports whether the streak as of now earns the combo reward
	ComboActive(stats domain.UserStats, now time.Time) bool

	// Rank derives the rank title and level from lifetime XP
	Rank(stats domain.UserStats) Rank

	// Summary builds the read-only evolution overview
	Summary(stats domain.UserStats, now time.Time) Summary

	// Today returns the current calendar day string
	Today(now time.Time) string
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new focus service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new focus service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

func (s *defaultService) CompleteSession(
	stats domain.UserStats,
	durationSeconds int,
	now time.Time,
) (domain.UserStats, Completion, error) {
	if durationSeconds <= 0 {
		return stats, Completion{}, ErrInvalidDuration
	}
	next, completion := calculateCompletion(stats, durationSeconds, now, s.params)
	return next, completion, nil
}

func (s *defaultService) ScheduleReview(
	stats domain.UserStats,
	label string,
	level int,
	now time.Time,
) (domain.UserStats, domain.Review, error) {
	if !s.isValidLevel(level) {
		return stats, domain.Review{}, ErrInvalidMasteryLevel
	}
	next, review := calculateReview(stats, label, level, now, s.params)
	return next, review, nil
}

func (s *defaultService) Streak(stats domain.UserStats, now time.Time) int {
	return CurrentStreak(stats.StudyHistory, s.Today(now))
}

func (s *defaultService) ComboActive(stats domain.UserStats, now time.Time) bool {
	return ComboActive(s.Streak(stats, now), s.params)
}

func (s *defaultService) Rank(stats domain.UserStats) Rank {
	return RankFor(stats.TotalNeuronsEarned, s.params)
}

func (s *defaultService) Today(now time.Time) string {
	return DayOf(now, s.params.Location)
}

// isValidLevel checks if the given mastery level has a configured delay
func (s *defaultService) isValidLevel(level int) bool {
	return level >= 0 && level <= MaxMastery && level < len(s.params.MasteryDelayDays)
}
