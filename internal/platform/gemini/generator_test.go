package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type call struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModels struct {
	mu        sync.Mutex
	calls     []call
	responses []func() (*genai.GenerateContentResponse, error)
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{model: model, contents: contents, config: config})
	next := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return next()
}

func textResponse(text string) func() (*genai.GenerateContentResponse, error) {
	return func() (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}}}, nil
	}
}

func failure(err error) func() (*genai.GenerateContentResponse, error) {
	return func() (*genai.GenerateContentResponse, error) { return nil, err }
}

func newTestGenerator(t *testing.T, api *fakeModels, retries int) (*Generator, *[]time.Duration) {
	t.Helper()
	g, err := newGenerator(api, Config{Model: "gemini-test", MaxRetries: retries, RetryDelay: time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	var slept []time.Duration
	g.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return g, &slept
}

func TestMotivationalTip(t *testing.T) {
	t.Parallel()
	api := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){
		textResponse("  Persistência vence talento.  "),
	}}
	g, _ := newTestGenerator(t, api, 0)

	tip, err := g.MotivationalTip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Persistência vence talento.", tip)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "gemini-test", api.calls[0].model)
	assert.InDelta(t, tipTemperature, *api.calls[0].config.Temperature, 1e-6)
	assert.InDelta(t, tipTopP, *api.calls[0].config.TopP, 1e-6)
}

func TestStudyStrategyPrompt(t *testing.T) {
	t.Parallel()
	api := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){
		textResponse("1. Faça resumos."),
	}}
	g, _ := newTestGenerator(t, api, 0)

	_, err := g.StudyStrategy(context.Background(), "Biologia", []string{"Células", "Genética"})
	require.NoError(t, err)

	prompt := api.calls[0].contents[0].Parts[0].Text
	assert.Contains(t, prompt, `"Biologia"`)
	assert.Contains(t, prompt, "Células, Genética")
	assert.Contains(t, prompt, "3 dicas")
}

func TestMentorReplySendsHistory(t *testing.T) {
	t.Parallel()
	api := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){
		textResponse("Comece pelos fundamentos."),
	}}
	g, _ := newTestGenerator(t, api, 0)

	history := []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Text: "Oi"},
		{Role: domain.ChatRoleModel, Text: "Olá! Como posso ajudar?"},
	}
	reply, err := g.MentorReply(context.Background(), "Como estudo física?", history, []string{"Física"})
	require.NoError(t, err)
	assert.Equal(t, "Comece pelos fundamentos.", reply)

	contents := api.calls[0].contents
	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleModel), string(contents[1].Role))
	assert.Equal(t, "Como estudo física?", contents[2].Parts[0].Text)
	assert.Contains(t, api.calls[0].config.SystemInstruction.Parts[0].Text, "Física")
}

func TestRetryOnTransientErrors(t *testing.T) {
	t.Parallel()
	api := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){
		failure(genai.APIError{Code: 503, Message: "overloaded"}),
		failure(errors.New("connection reset")),
		textResponse("ok"),
	}}
	g, slept := newTestGenerator(t, api, 3)

	text, err := g.MotivationalTip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Len(t, api.calls, 3)

	require.Len(t, *slept, 2)
	assert.GreaterOrEqual(t, (*slept)[0], 500*time.Millisecond)
	assert.Less(t, (*slept)[0], time.Second)
	assert.GreaterOrEqual(t, (*slept)[1], time.Second)
	assert.Less(t, (*slept)[1], 2*time.Second)
}

func TestRetriesExhausted(t *testing.T) {
	t.Parallel()
	api := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){
		failure(genai.APIError{Code: 429, Message: "quota"}),
	}}
	g, _ := newTestGenerator(t, api, 2)

	_, err := g.MotivationalTip(context.Background())
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Len(t, api.calls, 3)
}

func TestPermanentFailuresAreNotRetried(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp func() (*genai.GenerateContentResponse, error)
		want error
	}{
		{"bad request", failure(genai.APIError{Code: 400, Message: "bad"}), generation.ErrGenerationFailed},
		{"no candidates", func() (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		}, generation.ErrEmptyResponse},
		{"blank text", textResponse("   "), generation.ErrEmptyResponse},
		{"safety block", func() (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonSafety,
			}}}, nil
		}, generation.ErrContentBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){tt.resp}}
			g, _ := newTestGenerator(t, api, 3)

			_, err := g.MotivationalTip(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.Len(t, api.calls, 1)
		})
	}
}

func TestCancelledDuringBackoff(t *testing.T) {
	t.Parallel()
	api := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){
		failure(errors.New("timeout")),
	}}
	g, _ := newTestGenerator(t, api, 3)
	g.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.MotivationalTip(ctx)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Len(t, api.calls, 1)
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(context.Background(), Config{Model: "m"}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = newGenerator(&fakeModels{}, Config{}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
