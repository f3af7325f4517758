package generation

import (
	"context"
	"math/rand/v2"

	"github.com/phrazzld/focus-api/internal/domain"
)

var offlineTips = []string{
	FallbackTip,
	FallbackEmptyTip,
	"Uma sessão de cada vez. Comece agora e ajuste depois.",
	"Revisar hoje custa menos do que reaprender amanhã.",
}

// Static is the Generator used when no model is configured. It never fails.
type Static struct{}

var _ Generator = Static{}

// MotivationalTip returns one of a few built-in tips.
func (Static) MotivationalTip(context.Context) (string, error) {
	return offlineTips[rand.IntN(len(offlineTips))], nil
}

// StudyStrategy returns the generic three-step strategy.
func (Static) StudyStrategy(context.Context, string, []string) (string, error) {
	return FallbackEmptyStrategy, nil
}

// MentorReply explains that the mentor is offline.
func (Static) MentorReply(context.Context, string, []domain.ChatMessage, []string) (string, error) {
	return "O mentor está offline no momento. Continue focado e tente novamente mais tarde.", nil
}
