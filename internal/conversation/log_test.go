package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"restaurant-chatbot/internal/domain"
)

type recorded struct {
	session string
	seq     int
	turn    domain.Turn
}

type fakeRecorder struct {
	got []recorded
	err error
}

func (f *fakeRecorder) AppendTurn(_ context.Context, sessionID string, seq int, turn domain.Turn) error {
	f.got = append(f.got, recorded{session: sessionID, seq: seq, turn: turn})
	return f.err
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestAppend_KeepsChronologicalOrder(t *testing.T) {
	l := NewLog(WithClock(fixedClock()))
	l.Append(context.Background(), domain.SpeakerUser, "hola")
	l.Append(context.Background(), domain.SpeakerBot, "¡Hola!")

	turns := l.Turns()
	require.Len(t, turns, 2)
	require.Equal(t, 2, l.Len())
	require.Equal(t, domain.SpeakerUser, turns[0].Speaker)
	require.Equal(t, "¡Hola!", turns[1].Text)
	require.True(t, turns[0].At.Before(turns[1].At))
}

func TestTurns_ReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Append(context.Background(), domain.SpeakerUser, "hola")
	turns := l.Turns()
	turns[0].Text = "mutated"
	require.Equal(t, "hola", l.Turns()[0].Text)
}

func TestAppend_MirrorsToRecorder(t *testing.T) {
	rec := &fakeRecorder{}
	l := NewLog(WithRecorder("sess-1", rec), WithClock(fixedClock()))
	l.Append(context.Background(), domain.SpeakerUser, "menú")
	l.Append(context.Background(), domain.SpeakerBot, "Aquí está nuestro menú")

	require.Len(t, rec.got, 2)
	require.Equal(t, "sess-1", rec.got[0].session)
	require.Equal(t, 0, rec.got[0].seq)
	require.Equal(t, 1, rec.got[1].seq)
	require.Equal(t, domain.SpeakerBot, rec.got[1].turn.Speaker)
}

func TestAppend_RecorderFailureIsIgnored(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("throttled")}
	l := NewLog(WithRecorder("sess-1", rec))
	turn := l.Append(context.Background(), domain.SpeakerUser, "hola")
	require.Equal(t, "hola", turn.Text)
	require.Equal(t, 1, l.Len())
}
