// Package conversation keeps the append-only transcript of the chat.
package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"restaurant-chatbot/internal/domain"
)

// Recorder mirrors turns somewhere durable. seq is the 0-based position of
// the turn in the log.
type Recorder interface {
	AppendTurn(ctx context.Context, sessionID string, seq int, turn domain.Turn) error
}

// Log is an append-only, chronologically ordered list of turns. Turns are
// never edited or removed.
type Log struct {
	mu    sync.RWMutex
	turns []domain.Turn

	recorder  Recorder
	sessionID string
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Log)

// WithRecorder mirrors every appended turn to r under sessionID. Mirror
// failures are logged and otherwise ignored.
func WithRecorder(sessionID string, r Recorder) Option {
	return func(l *Log) {
		l.sessionID = sessionID
		l.recorder = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the turn timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

func NewLog(opts ...Option) *Log {
	l := &Log{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append adds a turn and returns it.
func (l *Log) Append(ctx context.Context, speaker domain.Speaker, text string) domain.Turn {
	turn := domain.Turn{Speaker: speaker, Text: text, At: l.now()}

	l.mu.Lock()
	seq := len(l.turns)
	l.turns = append(l.turns, turn)
	l.mu.Unlock()

	if l.recorder != nil {
		if err := l.recorder.AppendTurn(ctx, l.sessionID, seq, turn); err != nil {
			l.logger.WarnContext(ctx, "failed to mirror conversation turn", "session", l.sessionID, "seq", seq, "err", err)
		}
	}
	return turn
}

// Turns returns a copy of the transcript.
func (l *Log) Turns() []domain.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Turn(nil), l.turns...)
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
