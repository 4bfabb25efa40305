package domain

import "time"

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser Speaker = "User"
	SpeakerBot  Speaker = "Bot"
)

// Turn is a single entry of the conversation transcript.
type Turn struct {
	Speaker Speaker
	Text    string
	At      time.Time
}

// TranscriptItem is a persisted transcript turn. Seq is the turn's position
// in its session.
type TranscriptItem struct {
	PK        string
	SK        string
	SessionID string
	Seq       int
	Speaker   Speaker
	Text      string
	At        string
	TTL       int64
}
