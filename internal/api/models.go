package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/session"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Token  string    `json:"token"`
}

// StartSessionRequest is the body of POST /api/session/start. Minutes of
// zero uses the configured duration.
type StartSessionRequest struct {
	Task    string `json:"task"    validate:"required"`
	Minutes int    `json:"minutes" validate:"gte=0,lte=600"`
}

// DurationRequest is the body of PUT /api/session/duration.
type DurationRequest struct {
	Minutes int `json:"minutes" validate:"required,gt=0,lte=600"`
}

// MasteryRequest is the body of POST /api/session/mastery. Level is a
// pointer so that an explicit 0 is distinguishable from a missing field.
type MasteryRequest struct {
	Level *int `json:"level" validate:"required,gte=0,lte=5"`
}

// SessionResponse is the machine status plus the sounds a client should play.
type SessionResponse struct {
	Status session.Status    `json:"status"`
	Cues   session.AudioCues `json:"cues"`
}

// NameRequest carries a single name, for subjects, lessons and exercises.
type NameRequest struct {
	Name string `json:"name" validate:"required"`
}

// LinkRequest is the body of PUT .../lessons/{lessonID}/link. An empty link
// removes it.
type LinkRequest struct {
	Link string `json:"link" validate:"omitempty,url"`
}

// FlashcardRequest is the body of POST .../flashcards.
type FlashcardRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer"   validate:"required"`
}

// ThemeRequest is the body of PUT /api/preferences/theme.
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required"`
}

// SoundRequest is the body of PUT /api/preferences/sound; null turns the
// ambient sound off.
type SoundRequest struct {
	Sound *string `json:"sound"`
}

// AlarmRequest is the body of PUT /api/preferences/alarm; null silences it.
type AlarmRequest struct {
	Alarm *string `json:"alarm"`
}

// AudioRequest is the body of POST /api/preferences/audio.
type AudioRequest struct {
	Name string           `json:"name" validate:"required"`
	Data string           `json:"data" validate:"required"`
	Kind domain.AudioKind `json:"kind" validate:"required,oneof=alarm ambient"`
}

// ChatRequest is the body of POST /api/mentor/chat.
type ChatRequest struct {
	Text string `json:"text" validate:"required"`
}

// ChatResponse is the mentor conversation with its quick prompts.
type ChatResponse struct {
	Messages     []domain.ChatMessage       `json:"messages"`
	QuickPrompts []domain.MentorQuickPrompt `json:"quick_prompts"`
	Cost         int                        `json:"cost"`
}

// TipResponse is returned by GET /api/mentor/tip.
type TipResponse struct {
	Tip string `json:"tip"`
}
