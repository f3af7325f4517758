package generation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/platform/logger"
)

// Fixed texts used whenever the model fails or answers with nothing.
const (
	FallbackTip           = "O foco é a chave para o domínio de qualquer habilidade."
	FallbackEmptyTip      = "O sucesso é a soma de pequenos esforços repetidos dia após dia."
	FallbackStrategy      = "Tente dividir o conteúdo em blocos menores e fazer mapas mentais."
	FallbackEmptyStrategy = "1. Revise conceitos base. 2. Pratique exercícios diários. 3. Ensine o que aprendeu."
	FallbackMentorReply   = "Desculpe, tive um problema ao processar sua pergunta. Tente novamente em instantes."
)

// Fallback wraps a Generator so that its methods never fail: errors and empty
// answers are logged and replaced with fixed text.
type Fallback struct {
	next   Generator
	logger *slog.Logger
}

var _ Generator = (*Fallback)(nil)

// WithFallback decorates next.
func WithFallback(next Generator, logger *slog.Logger) *Fallback {
	if next == nil {
		panic("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{next: next, logger: logger.With(slog.String("component", "generation_fallback"))}
}

// MotivationalTip implements Generator.
func (f *Fallback) MotivationalTip(ctx context.Context) (string, error) {
	text, err := f.next.MotivationalTip(ctx)
	return f.resolve(ctx, "tip", text, err, FallbackTip, FallbackEmptyTip), nil
}

// StudyStrategy implements Generator.
func (f *Fallback) StudyStrategy(ctx context.Context, subject string, topics []string) (string, error) {
	text, err := f.next.StudyStrategy(ctx, subject, topics)
	return f.resolve(ctx, "strategy", text, err, FallbackStrategy, FallbackEmptyStrategy), nil
}

// MentorReply implements Generator.
func (f *Fallback) MentorReply(ctx context.Context, prompt string, history []domain.ChatMessage, subjects []string) (string, error) {
	text, err := f.next.MentorReply(ctx, prompt, history, subjects)
	return f.resolve(ctx, "mentor", text, err, FallbackMentorReply, FallbackMentorReply), nil
}

func (f *Fallback) resolve(ctx context.Context, kind, text string, err error, onError, onEmpty string) string {
	if err != nil {
		logger.FromContextOrDefault(ctx, f.logger).Warn("generation failed, using fallback",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
		return onError
	}
	if strings.TrimSpace(text) == "" {
		return onEmpty
	}
	return text
}
