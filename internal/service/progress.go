package service

import (
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/domain/focus"
)

// Overview is the aggregate plus the values derived from it on read.
type Overview struct {
	Stats       domain.UserStats `json:"stats"`
	Streak      int              `json:"streak"`
	ComboActive bool             `json:"combo_active"`
	Rank        focus.Rank       `json:"rank"`
}

// ProgressService answers read-only questions about the aggregate.
type ProgressService struct {
	rules focus.Service
}

// NewProgressService creates a ProgressService.
func NewProgressService(rules focus.Service) *ProgressService {
	if rules == nil {
		panic("focus rules cannot be nil")
	}
	return &ProgressService{rules: rules}
}

// Overview returns the snapshot with streak, combo and rank.
func (s *ProgressService) Overview(ws *Workspace) Overview {
	st := ws.Stats()
	now := ws.Now()
	return Overview{
		Stats:       st,
		Streak:      s.rules.Streak(st, now),
		ComboActive: s.rules.ComboActive(st, now),
		Rank:        s.rules.Rank(st),
	}
}

// Summary returns the evolution overview.
func (s *ProgressService) Summary(ws *Workspace) focus.Summary {
	return s.rules.Summary(ws.Stats(), ws.Now())
}

// Reviews returns the scheduled reviews.
func (s *ProgressService) Reviews(ws *Workspace) []domain.Review {
	return ws.Stats().ScheduledReviews
}
