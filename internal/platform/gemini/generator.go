package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/generation"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"google.golang.org/genai"
)

// Sampling settings per request kind.
const (
	tipTemperature      = 0.8
	tipTopP             = 0.9
	strategyTemperature = 0.7
	mentorTemperature   = 0.7
)

// contentGenerator is the part of *genai.Models the generator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Config holds the generator settings.
type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	// Timeout bounds each attempt, not the whole call.
	Timeout time.Duration
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	api    contentGenerator
	cfg    Config
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed generator.
func NewGenerator(ctx context.Context, cfg Config, logger *slog.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(client.Models, cfg, logger)
}

func newGenerator(api contentGenerator, cfg Config, logger *slog.Logger) (*Generator, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return &Generator{
		api:    api,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "gemini_generator"), slog.String("model", cfg.Model)),
		sleep:  sleepContext,
	}, nil
}

// MotivationalTip implements generation.Generator.
func (g *Generator) MotivationalTip(ctx context.Context) (string, error) {
	prompt, err := render("tip", nil)
	if err != nil {
		return "", err
	}
	return g.generate(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](tipTemperature),
			TopP:        genai.Ptr[float32](tipTopP),
		})
}

// StudyStrategy implements generation.Generator.
func (g *Generator) StudyStrategy(ctx context.Context, subject string, topics []string) (string, error) {
	prompt, err := render("strategy", strategyData{Subject: subject, Topics: topics})
	if err != nil {
		return "", err
	}
	return g.generate(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](strategyTemperature)})
}

// MentorReply implements generation.Generator. The conversation is sent as
// alternating turns with the mentor persona as system instruction.
func (g *Generator) MentorReply(
	ctx context.Context,
	prompt string,
	history []domain.ChatMessage,
	subjects []string,
) (string, error) {
	system, err := render("mentor", mentorData{Subjects: subjects})
	if err != nil {
		return "", err
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role == domain.ChatRoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	return g.generate(ctx, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](mentorTemperature),
	})
}

// generate calls the model with exponential backoff and jitter:
// delay = RetryDelay * 2^attempt * [0.5, 1.0).
func (g *Generator) generate(
	ctx context.Context,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	for attempt := 0; ; attempt++ {
		text, err := g.attempt(ctx, contents, config)
		if err == nil {
			log.Debug("gemini call succeeded", slog.Int("attempt", attempt+1))
			return text, nil
		}

		if !errors.Is(err, generation.ErrTransientFailure) {
			log.Warn("gemini call failed permanently",
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()))
			return "", err
		}
		if attempt >= g.cfg.MaxRetries {
			log.Warn("gemini retries exhausted",
				slog.Int("max_retries", g.cfg.MaxRetries),
				slog.String("error", err.Error()))
			return "", err
		}

		backoff := float64(g.cfg.RetryDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5))
		log.Info("retrying gemini call",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay))

		if err := g.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
	}
}

func (g *Generator) attempt(
	ctx context.Context,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.api.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		return "", classify(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", generation.ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", generation.ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", generation.ErrEmptyResponse
	}
	return text, nil
}

// classify sorts a client error into transient or permanent.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
		return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
