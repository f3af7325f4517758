package domain

import (
	"encoding/json"
	"fmt"
)

// HydrateSnapshot decodes a stored snapshot, tolerating older and looser
// shapes. Fields absent from raw keep their default values, nil collections
// (including each subject's lessons, exercises and flashcards) become empty,
// and a missing, null or zero lifetime total falls back to the stored
// balance. Totals start at InitialNeurons and never drop, so a zero beside a
// balance only comes from snapshots written before the total was tracked.
func HydrateSnapshot(raw []byte) (UserStats, error) {
	stats := NewDefaultUserStats()
	if len(raw) == 0 {
		return stats, nil
	}

	if err := json.Unmarshal(raw, &stats); err != nil {
		return NewDefaultUserStats(), fmt.Errorf("%w: decode snapshot: %v", ErrValidation, err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return NewDefaultUserStats(), fmt.Errorf("%w: decode snapshot keys: %v", ErrValidation, err)
	}
	if !present(keys, "total_neurons_earned") || stats.TotalNeuronsEarned == 0 {
		if present(keys, "neurons") {
			stats.TotalNeuronsEarned = stats.Neurons
		} else {
			stats.TotalNeuronsEarned = 0
		}
	}

	return Normalize(stats), nil
}

func present(keys map[string]json.RawMessage, key string) bool {
	v, ok := keys[key]
	return ok && string(v) != "null"
}

// Normalize replaces nil collections with empty ones, keeps one study history
// entry per date and clamps counters that an older snapshot may have left
// negative.
func Normalize(s UserStats) UserStats {
	s = s.Clone()
	if s.ScheduledReviews == nil {
		s.ScheduledReviews = []Review{}
	}
	if s.StudyHistory == nil {
		s.StudyHistory = []string{}
	}
	s.StudyHistory = uniqueDates(s.StudyHistory)
	if s.Subjects == nil {
		s.Subjects = []Subject{}
	}
	if s.PurchasedItems == nil {
		s.PurchasedItems = []string{}
	}
	if s.UploadedAudio == nil {
		s.UploadedAudio = []CustomAudio{}
	}
	if s.ChatHistory == nil {
		s.ChatHistory = []ChatMessage{}
	}
	for i := range s.Subjects {
		if s.Subjects[i].Lessons == nil {
			s.Subjects[i].Lessons = []Lesson{}
		}
		if s.Subjects[i].Exercises == nil {
			s.Subjects[i].Exercises = []Exercise{}
		}
		if s.Subjects[i].Flashcards == nil {
			s.Subjects[i].Flashcards = []Flashcard{}
		}
	}
	if s.Neurons < 0 {
		s.Neurons = 0
	}
	if s.TotalNeuronsEarned < 0 {
		s.TotalNeuronsEarned = 0
	}
	if s.ActiveTheme == "" {
		s.ActiveTheme = DefaultTheme
	}
	return s
}

// uniqueDates drops repeated dates, keeping the first occurrence of each.
func uniqueDates(history []string) []string {
	seen := make(map[string]struct{}, len(history))
	out := history[:0]
	for _, day := range history {
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	return out
}
