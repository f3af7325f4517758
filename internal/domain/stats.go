package domain

import (
	"slices"
	"time"
)

// DateLayout is the calendar-day format used in the study history.
const DateLayout = "2006-01-02"

// DefaultTheme is the theme every aggregate starts with.
const DefaultTheme = "default"

// DefaultAlarm is the alarm sound configured for new aggregates.
const DefaultAlarm = "https://assets.mixkit.co/active_storage/sfx/2869/2869-preview.mp3"

// InitialNeurons is the balance and lifetime total granted to a new aggregate.
const InitialNeurons = 100

// UserStats is the complete persisted state of one user. It is replaced
// wholesale on every mutation; callers never update it in place.
type UserStats struct {
	Neurons            int           `json:"neurons"`
	TotalNeuronsEarned int           `json:"total_neurons_earned"`
	MultiplierActive   bool          `json:"multiplier_active"`
	CompletedSessions  int           `json:"completed_sessions"`
	FocusHours         float64       `json:"focus_hours"`
	ScheduledReviews   []Review      `json:"scheduled_reviews"`
	StudyHistory       []string      `json:"study_history"`
	Subjects           []Subject     `json:"subjects"`
	PurchasedItems     []string      `json:"purchased_items"`
	ActiveTheme        string        `json:"active_theme"`
	ActiveSound        *string       `json:"active_sound"`
	ActiveAlarm        *string       `json:"active_alarm"`
	UploadedAudio      []CustomAudio `json:"uploaded_audio"`
	ChatHistory        []ChatMessage `json:"chat_history"`
	SidebarOpen        bool          `json:"sidebar_open"`
}

// Review is a spaced-repetition entry created by a mastery rating.
type Review struct {
	ID             string    `json:"id"`
	TaskLabel      string    `json:"task_label"`
	NextReviewDate time.Time `json:"next_review_date"`
}

// Subject groups planner content for one area of study.
type Subject struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Lessons    []Lesson    `json:"lessons"`
	Exercises  []Exercise  `json:"exercises"`
	Flashcards []Flashcard `json:"flashcards"`
	AIStrategy string      `json:"ai_strategy,omitempty"`
}

// Lesson is a checklist item inside a subject, optionally linking to material.
type Lesson struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Link      string `json:"link,omitempty"`
}

// Exercise is a practice checklist item inside a subject.
type Exercise struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Flashcard is a question/answer pair attached to a subject.
type Flashcard struct {
	ID             string    `json:"id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	NextReviewDate time.Time `json:"next_review_date"`
}

// ChatRole identifies the author of a mentor chat message.
type ChatRole string

// Chat roles understood by the generation backend.
const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one turn of the mentor conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AudioKind says where an uploaded sound may be used.
type AudioKind string

// Supported audio kinds.
const (
	AudioKindAlarm   AudioKind = "alarm"
	AudioKindAmbient AudioKind = "ambient"
)

// IsValid reports whether k is a known audio kind.
func (k AudioKind) IsValid() bool {
	return k == AudioKindAlarm || k == AudioKindAmbient
}

// CustomAudio is a user-uploaded sound stored as a data URL.
type CustomAudio struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Data string    `json:"data"`
	Kind AudioKind `json:"kind"`
}

// NewDefaultUserStats returns the aggregate used when nothing is stored for an
// identity or when loading fails.
func NewDefaultUserStats() UserStats {
	alarm := DefaultAlarm
	return UserStats{
		Neurons:            InitialNeurons,
		TotalNeuronsEarned: InitialNeurons,
		ScheduledReviews:   []Review{},
		StudyHistory:       []string{},
		Subjects:           []Subject{},
		PurchasedItems:     []string{},
		ActiveTheme:        DefaultTheme,
		ActiveAlarm:        &alarm,
		UploadedAudio:      []CustomAudio{},
		ChatHistory:        []ChatMessage{},
		SidebarOpen:        true,
	}
}

// Clone returns a deep copy of s so that mutations on the copy never leak into
// a snapshot another goroutine may still be reading.
func (s UserStats) Clone() UserStats {
	out := s
	out.ScheduledReviews = cloneSlice(s.ScheduledReviews)
	out.StudyHistory = cloneSlice(s.StudyHistory)
	out.PurchasedItems = cloneSlice(s.PurchasedItems)
	out.UploadedAudio = cloneSlice(s.UploadedAudio)
	out.ChatHistory = cloneSlice(s.ChatHistory)
	out.ActiveSound = clonePtr(s.ActiveSound)
	out.ActiveAlarm = clonePtr(s.ActiveAlarm)

	if s.Subjects != nil {
		out.Subjects = make([]Subject, len(s.Subjects))
		for i, subj := range s.Subjects {
			out.Subjects[i] = subj.clone()
		}
	}
	return out
}

func (s Subject) clone() Subject {
	out := s
	out.Lessons = cloneSlice(s.Lessons)
	out.Exercises = cloneSlice(s.Exercises)
	out.Flashcards = cloneSlice(s.Flashcards)
	return out
}

// HasStudied reports whether day (DateLayout) is present in the study history.
func (s UserStats) HasStudied(day string) bool {
	return slices.Contains(s.StudyHistory, day)
}

// Owns reports whether itemID has been purchased.
func (s UserStats) Owns(itemID string) bool {
	return slices.Contains(s.PurchasedItems, itemID)
}

// MarkStudied returns a copy of s with day added to the study history.
// Adding a day that is already present is a no-op.
func (s UserStats) MarkStudied(day string) UserStats {
	out := s.Clone()
	if !out.HasStudied(day) {
		out.StudyHistory = append(out.StudyHistory, day)
	}
	return out
}

// Spend returns a copy of s with amount deducted from the balance. The lifetime
// total is never touched. Returns ErrInsufficientNeurons without mutating when
// the balance is too low.
func (s UserStats) Spend(amount int) (UserStats, error) {
	if amount < 0 {
		return s, NewValidationError("amount", "cannot be negative", ErrValidation)
	}
	if s.Neurons < amount {
		return s, ErrInsufficientNeurons
	}
	out := s.Clone()
	out.Neurons -= amount
	return out, nil
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
