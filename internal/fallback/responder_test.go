package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"restaurant-chatbot/internal/domain"
)

type chatResponse struct {
	answer string
	err    error
}

type mockGenerator struct {
	responses []chatResponse
	calls     [][]domain.ChatMessage
	models    []string
	maxTokens []int
	deadlines []bool
}

func (m *mockGenerator) Chat(ctx context.Context, model string, messages []domain.ChatMessage, maxTokens int) (string, error) {
	_, hasDeadline := ctx.Deadline()
	m.deadlines = append(m.deadlines, hasDeadline)
	m.calls = append(m.calls, messages)
	m.models = append(m.models, model)
	m.maxTokens = append(m.maxTokens, maxTokens)
	if len(m.responses) == 0 {
		return "", errors.New("no response configured")
	}
	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx].answer, m.responses[idx].err
}

type mockScreener struct {
	flagged bool
	err     error
	calls   int
}

func (m *mockScreener) Moderate(_ context.Context, _ string) (bool, error) {
	m.calls++
	return m.flagged, m.err
}

type blockingGenerator struct{}

func (blockingGenerator) Chat(ctx context.Context, _ string, _ []domain.ChatMessage, _ int) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerate_NotConfigured(t *testing.T) {
	r := New(nil, Config{})
	require.False(t, r.Available())
	require.Equal(t, UnavailableMessage, r.Generate(context.Background(), "hola"))
}

func TestGenerate_HappyPath(t *testing.T) {
	gen := &mockGenerator{responses: []chatResponse{{answer: " ¡Claro! Abrimos a las 9. "}}}
	r := New(gen, Config{})
	require.True(t, r.Available())

	out := r.Generate(context.Background(), "¿a qué hora abren?")
	require.Equal(t, "¡Claro! Abrimos a las 9.", out)
	require.Len(t, gen.calls, 1)
	require.Equal(t, DefaultModel, gen.models[0])
	require.Equal(t, DefaultMaxTokens, gen.maxTokens[0])
	require.True(t, gen.deadlines[0])
	require.Equal(t, []domain.ChatMessage{
		{Role: "system", Content: DefaultSystemPrompt},
		{Role: "user", Content: "¿a qué hora abren?"},
	}, gen.calls[0])
}

func TestGenerate_CustomConfig(t *testing.T) {
	gen := &mockGenerator{responses: []chatResponse{{answer: "ok"}}}
	r := New(gen, Config{Model: "gpt-x", SystemPrompt: "be terse", MaxTokens: 42})
	r.Generate(context.Background(), "hola")
	require.Equal(t, "gpt-x", gen.models[0])
	require.Equal(t, 42, gen.maxTokens[0])
	require.Equal(t, "be terse", gen.calls[0][0].Content)
}

func TestGenerate_FailureBecomesApology(t *testing.T) {
	gen := &mockGenerator{responses: []chatResponse{{err: errors.New("503")}}}
	require.Equal(t, ApologyMessage, New(gen, Config{}).Generate(context.Background(), "hola"))

	gen = &mockGenerator{responses: []chatResponse{{answer: "   "}}}
	require.Equal(t, ApologyMessage, New(gen, Config{}).Generate(context.Background(), "hola"))
}

func TestGenerate_Timeout(t *testing.T) {
	r := New(blockingGenerator{}, Config{Timeout: 20 * time.Millisecond})
	start := time.Now()
	require.Equal(t, ApologyMessage, r.Generate(context.Background(), "hola"))
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestGenerate_Screening(t *testing.T) {
	gen := &mockGenerator{responses: []chatResponse{{answer: "ok"}}}
	screener := &mockScreener{flagged: true}
	r := New(gen, Config{}, WithScreener(screener))
	require.Equal(t, RejectedMessage, r.Generate(context.Background(), "algo feo"))
	require.Equal(t, 1, screener.calls)
	require.Empty(t, gen.calls)

	screener = &mockScreener{err: errors.New("moderation down")}
	r = New(gen, Config{}, WithScreener(screener))
	require.Equal(t, ApologyMessage, r.Generate(context.Background(), "hola"))
	require.Empty(t, gen.calls)

	screener = &mockScreener{}
	r = New(gen, Config{}, WithScreener(screener))
	require.Equal(t, "ok", r.Generate(context.Background(), "hola"))
}

func TestGenerate_Refine(t *testing.T) {
	gen := &mockGenerator{responses: []chatResponse{{answer: "Abrimos 9-22."}, {answer: "¡Te esperamos de 9 a 22!"}}}
	r := New(gen, Config{Refine: true})
	require.Equal(t, "¡Te esperamos de 9 a 22!", r.Generate(context.Background(), "horario"))
	require.Len(t, gen.calls, 2)
	require.Equal(t, DefaultRefinePrompt, gen.calls[1][0].Content)
	require.Equal(t, "Abrimos 9-22.", gen.calls[1][1].Content)
}

func TestGenerate_RefineFailureKeepsFirstAnswer(t *testing.T) {
	gen := &mockGenerator{responses: []chatResponse{{answer: "Abrimos 9-22."}, {err: errors.New("429")}}}
	r := New(gen, Config{Refine: true})
	require.Equal(t, "Abrimos 9-22.", r.Generate(context.Background(), "horario"))
}

func TestGenerate_RefineOffByDefault(t *testing.T) {
	gen := &mockGenerator{responses: []chatResponse{{answer: "uno"}, {answer: "dos"}}}
	require.Equal(t, "uno", New(gen, Config{}).Generate(context.Background(), "hola"))
	require.Len(t, gen.calls, 1)
}
