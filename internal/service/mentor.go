package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/generation"
	"github.com/phrazzld/focus-api/internal/platform/logger"
)

// MentorService serves motivational tips and the paid mentor chat.
type MentorService struct {
	generator generation.Generator
	logger    *slog.Logger
}

// NewMentorService creates a MentorService. generator should already be
// wrapped with generation.WithFallback.
func NewMentorService(generator generation.Generator, logger *slog.Logger) *MentorService {
	if generator == nil {
		panic("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MentorService{generator: generator, logger: logger.With(slog.String("component", "mentor_service"))}
}

// Tip returns a motivational tip.
func (s *MentorService) Tip(ctx context.Context) (string, error) {
	return s.generator.MotivationalTip(ctx)
}

// History returns the mentor conversation.
func (s *MentorService) History(ws *Workspace) []domain.ChatMessage {
	return ws.Stats().ChatHistory
}

// Ask charges for and records the user's question, then records the
// mentor's reply in a second mutation. The charge stands even if the model
// fails; the fallback text is recorded in that case.
func (s *MentorService) Ask(ctx context.Context, ws *Workspace, text string) (domain.ChatMessage, error) {
	var prior []domain.ChatMessage
	var subjects []string
	_, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		prior = st.ChatHistory
		subjects = st.SubjectNames()
		return domain.PostMentorQuestion(st, text, ws.Now())
	})
	if err != nil {
		return domain.ChatMessage{}, err
	}

	reply, err := s.generator.MentorReply(ctx, text, prior, subjects)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("mentor reply failed",
			slog.String("identity", ws.Name()),
			slog.String("error", err.Error()))
		reply = generation.FallbackMentorReply
	}

	out, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		return domain.AppendMentorReply(st, reply, ws.Now()), nil
	})
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return out.ChatHistory[len(out.ChatHistory)-1], nil
}

// Clear empties the conversation.
func (s *MentorService) Clear(ws *Workspace) error {
	_, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		return domain.ClearChat(st), nil
	})
	return err
}
