// Package fallback answers utterances no intent rule claimed by delegating
// to a generative text service.
package fallback

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"restaurant-chatbot/internal/domain"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 150
	DefaultTimeout   = 10 * time.Second

	DefaultSystemPrompt = "You are a helpful restaurant assistant. Answer briefly, in the customer's language."
	DefaultRefinePrompt = "Rewrite the following restaurant assistant answer so it sounds warm and natural. Keep its meaning and language, and keep it short."

	UnavailableMessage = "Lo siento, no puedo procesar consultas generales en este momento."
	ApologyMessage     = "Lo siento, hubo un problema al procesar tu consulta. Por favor, inténtalo de nuevo más tarde."
	RejectedMessage    = "Lo siento, tu mensaje no es apropiado. Por favor, intenta de nuevo."
)

// Generator is the chat completion call.
type Generator interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage, maxTokens int) (string, error)
}

// Screener flags input that must not reach the generator.
type Screener interface {
	Moderate(ctx context.Context, input string) (bool, error)
}

// Config tunes the generation call. Zero values take the defaults above.
type Config struct {
	Model        string
	SystemPrompt string
	MaxTokens    int
	Timeout      time.Duration

	// Refine runs a second call that rewrites the first answer. A failed
	// refinement keeps the first answer.
	Refine       bool
	RefinePrompt string
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if strings.TrimSpace(c.SystemPrompt) == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(c.RefinePrompt) == "" {
		c.RefinePrompt = DefaultRefinePrompt
	}
	return c
}

// Responder never fails: every problem becomes a user-facing message.
type Responder struct {
	gen      Generator
	screener Screener
	cfg      Config
	logger   *slog.Logger
}

type Option func(*Responder)

// WithScreener checks input with s before generating.
func WithScreener(s Screener) Option {
	return func(r *Responder) {
		r.screener = s
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Responder) {
		if l != nil {
			r.logger = l
		}
	}
}

// New builds a Responder. A nil gen means the service is not configured and
// Generate answers with UnavailableMessage.
func New(gen Generator, cfg Config, opts ...Option) *Responder {
	r := &Responder{
		gen:    gen,
		cfg:    cfg.withDefaults(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available reports whether a generator is configured.
func (r *Responder) Available() bool {
	return r.gen != nil
}

// Generate answers utterance within the configured timeout.
func (r *Responder) Generate(ctx context.Context, utterance string) string {
	if !r.Available() {
		return UnavailableMessage
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	if r.screener != nil {
		flagged, err := r.screener.Moderate(ctx, utterance)
		if err != nil {
			r.logger.WarnContext(ctx, "fallback screening failed", "err", err)
			return ApologyMessage
		}
		if flagged {
			return RejectedMessage
		}
	}

	answer, err := r.gen.Chat(ctx, r.cfg.Model, []domain.ChatMessage{
		{Role: "system", Content: r.cfg.SystemPrompt},
		{Role: "user", Content: utterance},
	}, r.cfg.MaxTokens)
	answer = strings.TrimSpace(answer)
	if err != nil || answer == "" {
		r.logger.WarnContext(ctx, "fallback generation failed", "err", err, "empty", answer == "")
		return ApologyMessage
	}
	if !r.cfg.Refine {
		return answer
	}
	return r.refine(ctx, answer)
}

func (r *Responder) refine(ctx context.Context, answer string) string {
	refined, err := r.gen.Chat(ctx, r.cfg.Model, []domain.ChatMessage{
		{Role: "system", Content: r.cfg.RefinePrompt},
		{Role: "user", Content: answer},
	}, r.cfg.MaxTokens)
	refined = strings.TrimSpace(refined)
	if err != nil || refined == "" {
		r.logger.WarnContext(ctx, "fallback refinement failed, keeping first answer", "err", err)
		return answer
	}
	return refined
}
