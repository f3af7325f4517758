package domain

import (
	"strings"
	"time"
)

// MentorMessageCost is the neuron price of one mentor question.
const MentorMessageCost = 5

// PostMentorQuestion spends MentorMessageCost and appends the user's message in
// one mutation, before the reply is known.
func PostMentorQuestion(s UserStats, text string, now time.Time) (UserStats, error) {
	if strings.TrimSpace(text) == "" {
		return s, NewValidationError("text", "is required", ErrEmptyContent)
	}
	out, err := s.Spend(MentorMessageCost)
	if err != nil {
		return s, err
	}
	out.ChatHistory = append(out.ChatHistory, ChatMessage{Role: ChatRoleUser, Text: text, Timestamp: now})
	return out, nil
}

// AppendMentorReply records a model reply in the conversation.
func AppendMentorReply(s UserStats, text string, now time.Time) UserStats {
	out := s.Clone()
	out.ChatHistory = append(out.ChatHistory, ChatMessage{Role: ChatRoleModel, Text: text, Timestamp: now})
	return out
}

// ClearChat empties the mentor conversation.
func ClearChat(s UserStats) UserStats {
	out := s.Clone()
	out.ChatHistory = []ChatMessage{}
	return out
}

// SubjectNames lists subject names in planner order, used as mentor context.
func (s UserStats) SubjectNames() []string {
	names := make([]string, 0, len(s.Subjects))
	for _, subj := range s.Subjects {
		names = append(names, subj.Name)
	}
	return names
}

// MentorQuickPrompt is a canned question offered next to the chat input.
type MentorQuickPrompt struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
	// NeedsTopic is true when the prompt contains a placeholder the user must fill.
	NeedsTopic bool `json:"needs_topic"`
}

// MentorQuickPrompts are the shortcuts shown in the mentor view.
var MentorQuickPrompts = []MentorQuickPrompt{
	{Label: "Strategy", Prompt: "Create a study strategy for my current subjects."},
	{Label: "Explain", Prompt: "Explain the concept of [TOPIC] in simple terms.", NeedsTopic: true},
	{Label: "Motivation", Prompt: "Give me a dose of motivation to stay focused right now!"},
	{Label: "Quiz", Prompt: "Ask me 3 quick questions about the subjects I am studying."},
}
