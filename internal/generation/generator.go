package generation

import (
	"context"

	"github.com/phrazzld/focus-api/internal/domain"
)

// Generator is the boundary between the application and the language model.
// Every method returns plain text; callers never see model-specific types.
type Generator interface {
	// MotivationalTip returns a short motivational phrase about studying.
	MotivationalTip(ctx context.Context) (string, error)

	// StudyStrategy returns three practical tips for studying subject, given
	// the names of its lessons.
	StudyStrategy(ctx context.Context, subject string, topics []string) (string, error)

	// MentorReply answers prompt as the study mentor. history holds the
	// conversation so far (oldest first, excluding prompt) and subjects names
	// what the user is studying.
	MentorReply(ctx context.Context, prompt string, history []domain.ChatMessage, subjects []string) (string, error)
}
